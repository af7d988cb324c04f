package cli

import (
	"encoding/json"
	"strings"
	"testing"
)

type rewriteJSON struct {
	Text         string `json:"text"`
	Target       string `json:"target"`
	Replacement  string `json:"replacement"`
	Replacements int    `json:"replacements"`
}

func TestRewriteCmd_PreservesCase(t *testing.T) {
	path := writeTempInput(t, "Utilize this. UTILIZE that. utilize more.")

	out, err := execute(t, "rewrite", "--target", "utilize", "--with", "use", "--output", "json", path)
	if err != nil {
		t.Fatalf("execution failed: %v", err)
	}

	var result rewriteJSON
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}

	if result.Text != "Use this. USE that. use more." {
		t.Errorf("unexpected rewritten text: %q", result.Text)
	}
	if result.Replacements != 3 {
		t.Errorf("expected 3 replacements, got %d", result.Replacements)
	}
}

func TestRewriteCmd_SuggestionFallback(t *testing.T) {
	path := writeTempInput(t, "This stuff works.")

	out, err := execute(t, "rewrite", "--target", "stuff", "--output", "json", path)
	if err != nil {
		t.Fatalf("execution failed: %v", err)
	}

	var result rewriteJSON
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if result.Replacement != "material" {
		t.Errorf("expected configured suggestion 'material', got %q", result.Replacement)
	}
	if result.Text != "This material works." {
		t.Errorf("unexpected rewritten text: %q", result.Text)
	}
}

func TestRewriteCmd_NoSuggestionForTarget(t *testing.T) {
	_, err := executeWithInput(t, "Any text.", "rewrite", "--target", "zeppelin")
	if err == nil {
		t.Fatal("expected error when no suggestion exists and --with omitted")
	}
	if !strings.Contains(err.Error(), "no suggestion configured") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestRewriteCmd_ExplicitEmptyWithRemoves(t *testing.T) {
	path := writeTempInput(t, "really great")

	out, err := execute(t, "rewrite", "--target", "really", "--with", "", "--output", "json", path)
	if err != nil {
		t.Fatalf("execution failed: %v", err)
	}

	var result rewriteJSON
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if strings.Contains(result.Text, "really") {
		t.Errorf("expected 'really' removed, got %q", result.Text)
	}
	if result.Replacements != 1 {
		t.Errorf("expected 1 replacement, got %d", result.Replacements)
	}
}

func TestRewriteCmd_MissingTarget(t *testing.T) {
	_, err := executeWithInput(t, "text", "rewrite")
	if err == nil {
		t.Fatal("expected error for missing --target")
	}
	if !strings.Contains(err.Error(), "target") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestRewriteCmd_TextOutputIsBareText(t *testing.T) {
	path := writeTempInput(t, "We should utilize it.")

	out, err := execute(t, "rewrite", "--target", "utilize", "--with", "use", path)
	if err != nil {
		t.Fatalf("execution failed: %v", err)
	}
	if out != "We should use it.\n" {
		t.Errorf("text output should be the bare rewritten text, got %q", out)
	}
}
