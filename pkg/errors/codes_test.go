package errors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quillflow/QuillScope-Engine/pkg/errors"
)

func TestModuleForCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code errors.ErrorCode
		want string
	}{
		{errors.ErrCodeInternal, "COMMON"},
		{errors.ErrCodePatternCompile, "WKL"},
		{errors.ErrCodeSuffixRuleInvalid, "POS"},
		{errors.ErrCodeAlgorithmUnknown, "TOP"},
		{errors.ErrCodeConfigLoad, "CFG"},
		{errors.CodeUnknown, "UNKNOWN"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, errors.ModuleForCode(tc.code), "code %s", tc.code)
	}
}

func TestDefaultMessageForCode(t *testing.T) {
	t.Parallel()

	// Every registered code has a non-empty default message.
	for code, msg := range errors.ErrorCodeMessage {
		assert.NotEmpty(t, msg, "code %s has empty default message", code)
	}

	assert.Equal(t, "unexpected error", errors.DefaultMessageForCode(errors.ErrorCode("NOPE_999")))
	assert.Equal(t, "weak-language pattern failed to compile",
		errors.DefaultMessageForCode(errors.ErrCodePatternCompile))
}
