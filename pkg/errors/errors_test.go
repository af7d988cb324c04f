// Package errors_test exercises the AppError type, factory functions, and
// error-chain helpers defined in pkg/errors.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillflow/QuillScope-Engine/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// New / Newf
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal", errors.ErrCodeInternal, "unexpected failure"},
		{"pattern compile", errors.ErrCodePatternCompile, "category filler: bad pattern"},
		{"invalid param", errors.ErrCodeInvalidParam, "text must not be empty"},
		{"algorithm", errors.ErrCodeAlgorithmUnknown, "no such algorithm"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
		})
	}
}

func TestNewf_FormatsMessage(t *testing.T) {
	t.Parallel()

	ae := errors.Newf(errors.ErrCodeSuffixRuleInvalid, "rule %d: empty pattern", 3)
	require.NotNil(t, ae)
	assert.Equal(t, "rule 3: empty pattern", ae.Message)
}

func TestNew_StackIsPopulated(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeInternal, "test")
	require.NotNil(t, ae)
	assert.Contains(t, ae.Stack, "errors_test")
}

// ─────────────────────────────────────────────────────────────────────────────
// Wrap
// ─────────────────────────────────────────────────────────────────────────────

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()

	result := errors.Wrap(nil, errors.ErrCodeInternal, "should not matter")
	assert.Nil(t, result)
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("regexp: missing closing )")
	wrapped := errors.Wrap(root, errors.ErrCodePatternCompile, "compiling category pattern")

	require.NotNil(t, wrapped)
	assert.Equal(t, errors.ErrCodePatternCompile, wrapped.Code)
	assert.Equal(t, "compiling category pattern", wrapped.Message)
	assert.Equal(t, root, wrapped.Cause)
	assert.Equal(t, root, stderrors.Unwrap(wrapped))
}

func TestWrap_UnknownCodeKeepsOriginalClassification(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeConfigInvalid, "bad rule set")
	outer := errors.Wrap(inner, errors.CodeUnknown, "loading configuration")

	require.NotNil(t, outer)
	assert.Equal(t, errors.ErrCodeConfigInvalid, outer.Code)
}

func TestWrap_ErrorsIsTraversesChain(t *testing.T) {
	t.Parallel()

	root := stderrors.New("root")
	mid := errors.Wrap(root, errors.ErrCodeConfigLoad, "mid")
	top := fmt.Errorf("top: %w", mid)

	assert.True(t, stderrors.Is(top, root))

	var ae *errors.AppError
	require.True(t, stderrors.As(top, &ae))
	assert.Equal(t, errors.ErrCodeConfigLoad, ae.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Error formatting
// ─────────────────────────────────────────────────────────────────────────────

func TestError_FormatWithAndWithoutDetail(t *testing.T) {
	t.Parallel()

	bare := errors.New(errors.ErrCodeRuleSetInvalid, "empty category")
	assert.Equal(t, "[WKL_001] empty category", bare.Error())

	detailed := bare.WithDetail("category=filler")
	assert.Equal(t, "[WKL_001] empty category: category=filler", detailed.Error())
	// The original is untouched.
	assert.Empty(t, bare.Detail)
}

func TestWithCause_ReturnsClone(t *testing.T) {
	t.Parallel()

	base := errors.New(errors.ErrCodeConfigWatch, "watch failed")
	cause := stderrors.New("inotify: too many open files")
	withCause := base.WithCause(cause)

	assert.Nil(t, base.Cause)
	assert.Equal(t, cause, withCause.Cause)
}

func TestWithDetail_NilReceiverIsSafe(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(stderrors.New("x")))
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain inspection
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("outer: %w", errors.New(errors.ErrCodePatternCompile, "boom"))

	assert.True(t, errors.IsCode(err, errors.ErrCodePatternCompile))
	assert.False(t, errors.IsCode(err, errors.ErrCodeConfigLoad))
	assert.False(t, errors.IsCode(nil, errors.ErrCodePatternCompile))
}

func TestIsConfigError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"cfg code", errors.New(errors.ErrCodeConfigInvalid, "x"), true},
		{"wkl code", errors.New(errors.ErrCodePatternCompile, "x"), true},
		{"pos code", errors.New(errors.ErrCodeSuffixRuleInvalid, "x"), true},
		{"common code", errors.New(errors.ErrCodeInternal, "x"), false},
		{"foreign error", stderrors.New("plain"), false},
		{"nil", nil, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, errors.IsConfigError(tc.err))
		})
	}
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeAlgorithmUnknown,
		errors.GetCode(errors.New(errors.ErrCodeAlgorithmUnknown, "x")))
}

// ─────────────────────────────────────────────────────────────────────────────
// Convenience factories
// ─────────────────────────────────────────────────────────────────────────────

func TestConvenienceFactories(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.ErrCodeInvalidParam, errors.InvalidParam("x").Code)
	assert.Equal(t, errors.ErrCodeInternal, errors.Internal("x").Code)

	v := errors.Validation("topics.cache_capacity", "must be positive")
	assert.Equal(t, errors.ErrCodeValidation, v.Code)
	assert.True(t, strings.HasPrefix(v.Message, "topics.cache_capacity:"))
}
