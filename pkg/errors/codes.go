package errors

import "strings"

// ErrorCode is a string identifier for a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes
const (
	ErrCodeInternal       ErrorCode = "COMMON_001"
	ErrCodeInvalidParam   ErrorCode = "COMMON_002"
	ErrCodeNotFound       ErrorCode = "COMMON_003"
	ErrCodeValidation     ErrorCode = "COMMON_004"
	ErrCodeNotImplemented ErrorCode = "COMMON_005"
)

// Configuration error codes
const (
	ErrCodeConfigLoad     ErrorCode = "CFG_001"
	ErrCodeConfigInvalid  ErrorCode = "CFG_002"
	ErrCodeConfigWatch    ErrorCode = "CFG_003"
	ErrCodeConfigNotFound ErrorCode = "CFG_004"
)

// Weak-language detector error codes
const (
	ErrCodeRuleSetInvalid    ErrorCode = "WKL_001"
	ErrCodePatternCompile    ErrorCode = "WKL_002"
	ErrCodeCategoryUnknown   ErrorCode = "WKL_003"
	ErrCodeSeverityDuplicate ErrorCode = "WKL_004"
)

// POS tagger error codes
const (
	ErrCodeSuffixRuleInvalid ErrorCode = "POS_001"
	ErrCodeLabelUnknown      ErrorCode = "POS_002"
)

// Topic extractor error codes
const (
	ErrCodeAlgorithmUnknown ErrorCode = "TOP_001"
	ErrCodeCapacityInvalid  ErrorCode = "TOP_002"
)

// CodeUnknown marks an error whose code could not be determined, and CodeOK
// is the zero-failure sentinel returned by GetCode for nil errors.
const (
	CodeUnknown ErrorCode = "UNKNOWN"
	CodeOK      ErrorCode = "OK"
)

// ErrorCodeMessage maps every code to its default human-readable message,
// used when a call site has no better wording to offer.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:       "internal error",
	ErrCodeInvalidParam:   "invalid parameter",
	ErrCodeNotFound:       "resource not found",
	ErrCodeValidation:     "validation failed",
	ErrCodeNotImplemented: "not implemented",

	ErrCodeConfigLoad:     "failed to load configuration",
	ErrCodeConfigInvalid:  "configuration is invalid",
	ErrCodeConfigWatch:    "failed to watch configuration file",
	ErrCodeConfigNotFound: "configuration file not found",

	ErrCodeRuleSetInvalid:    "weak-language rule set is invalid",
	ErrCodePatternCompile:    "weak-language pattern failed to compile",
	ErrCodeCategoryUnknown:   "unknown weak-language category",
	ErrCodeSeverityDuplicate: "duplicate severity rank in rule set",

	ErrCodeSuffixRuleInvalid: "part-of-speech suffix rule is invalid",
	ErrCodeLabelUnknown:      "unknown part-of-speech label",

	ErrCodeAlgorithmUnknown: "unknown keyword extraction algorithm",
	ErrCodeCapacityInvalid:  "capacity must be positive",
}

// DefaultMessageForCode returns the default message for a code, or a generic
// fallback when the code is not registered.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unexpected error"
}

// ModuleForCode extracts the module prefix from a code, e.g. "WKL" from
// "WKL_002".  Codes without an underscore are returned unchanged.
func ModuleForCode(code ErrorCode) string {
	s := code.String()
	if i := strings.Index(s, "_"); i > 0 {
		return s[:i]
	}
	return s
}
