// Package integration exercises the assembled engine end to end: the
// application service built from real configuration files, the rules watcher
// reacting to edits on disk, and the full surface under concurrent load.
// Everything runs in-process against temp dirs, but the suite is slower and
// touchier than the unit tests, so it is gated behind an environment flag.
package integration

import (
	"os"
	"testing"
	"time"

	"github.com/quillflow/QuillScope-Engine/internal/application/analysis"
	"github.com/quillflow/QuillScope-Engine/internal/config"
	"github.com/quillflow/QuillScope-Engine/internal/engine/common"
	"github.com/quillflow/QuillScope-Engine/internal/infrastructure/monitoring/logging"
)

const (
	// EnvIntegrationEnabled controls whether integration tests run.
	EnvIntegrationEnabled = "QUILLSCOPE_INTEGRATION_TEST"

	// ReloadTimeout is the longest a test waits for the rules watcher to
	// pick up a file edit before failing.
	ReloadTimeout = 5 * time.Second

	// WatchDebounce keeps the watcher responsive in tests; the production
	// default is tuned for editors, not for programmatic writes.
	WatchDebounce = 50 * time.Millisecond
)

// ---------------------------------------------------------------------------
// SkipIfNoIntegration skips the calling test when the integration flag is unset.
// ---------------------------------------------------------------------------

func SkipIfNoIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv(EnvIntegrationEnabled) == "" {
		t.Skipf("skipping integration test: set %s=1 to enable", EnvIntegrationEnabled)
	}
}

// ---------------------------------------------------------------------------
// Construction helpers
// ---------------------------------------------------------------------------

// NewTestLogger returns a console logger that stays quiet unless something
// goes wrong; engine debug output would drown the test log otherwise.
func NewTestLogger(t *testing.T) logging.Logger {
	t.Helper()
	logger, err := logging.NewLogger(logging.LogConfig{
		Level:            "error",
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
	if err != nil {
		t.Fatalf("building test logger: %v", err)
	}
	return logger
}

// NewSessionService builds a service with in-memory metrics, failing the test
// on any construction error.  A nil cfg runs on engine defaults.
func NewSessionService(t *testing.T, cfg *config.Config) analysis.Service {
	t.Helper()
	svc, err := analysis.NewService(cfg, NewTestLogger(t), common.NewInMemoryAnalysisMetrics())
	if err != nil {
		t.Fatalf("building analysis service: %v", err)
	}
	return svc
}

// WriteRulesFile writes a configuration file the way an editor save would.
func WriteRulesFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing rules file %s: %v", path, err)
	}
}

// ---------------------------------------------------------------------------
// Assertion helpers
// ---------------------------------------------------------------------------

// AssertNoError fails the test if err is non-nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// WaitForSignal blocks until ch delivers or the timeout lapses.
func WaitForSignal(t *testing.T, ch <-chan struct{}, timeout time.Duration, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(timeout):
		t.Fatalf("timed out after %v waiting for %s", timeout, what)
	}
}
