package errors

import (
	"net/http"
	"strings"
)

// ErrorCode identifies a failure category.  The prefix before the underscore
// names the module that owns the code.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common codes.
const (
	ErrCodeOK                 ErrorCode = "OK"
	ErrCodeUnknown            ErrorCode = "COMMON_000"
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeInvalidParam       ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
)

// Storage codes.
const (
	ErrCodeDatabaseError ErrorCode = "STORE_001"
	ErrCodeCacheError    ErrorCode = "STORE_002"
	ErrCodeObjectStorage ErrorCode = "STORE_003"
	ErrCodeMigration     ErrorCode = "STORE_004"
	ErrCodeDataset       ErrorCode = "STORE_005"
)

// Coverage engine codes.
const (
	ErrCodePlatformNotFound   ErrorCode = "COVERAGE_001"
	ErrCodeInvalidFilter      ErrorCode = "COVERAGE_002"
	ErrCodeInvalidWeights     ErrorCode = "COVERAGE_003"
	ErrCodeComputationFailed  ErrorCode = "COVERAGE_004"
	ErrCodeSnapshotFailed     ErrorCode = "COVERAGE_005"
	ErrCodeUnknownRecruitment ErrorCode = "COVERAGE_006"
)

// Messaging codes.
const (
	ErrCodePublishFailed  ErrorCode = "MSG_001"
	ErrCodeProducerClosed ErrorCode = "MSG_002"
)

var errorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeOK:                 http.StatusOK,
	ErrCodeUnknown:            http.StatusInternalServerError,
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeInvalidParam:       http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeSerialization:      http.StatusInternalServerError,

	ErrCodeDatabaseError: http.StatusInternalServerError,
	ErrCodeCacheError:    http.StatusInternalServerError,
	ErrCodeObjectStorage: http.StatusBadGateway,
	ErrCodeMigration:     http.StatusInternalServerError,
	ErrCodeDataset:       http.StatusInternalServerError,

	ErrCodePlatformNotFound:   http.StatusNotFound,
	ErrCodeInvalidFilter:      http.StatusBadRequest,
	ErrCodeInvalidWeights:     http.StatusInternalServerError,
	ErrCodeComputationFailed:  http.StatusInternalServerError,
	ErrCodeSnapshotFailed:     http.StatusBadGateway,
	ErrCodeUnknownRecruitment: http.StatusInternalServerError,

	ErrCodePublishFailed:  http.StatusBadGateway,
	ErrCodeProducerClosed: http.StatusServiceUnavailable,
}

// HTTPStatusForCode maps a code to an HTTP status, defaulting to 500.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsClientError reports whether the code maps to a 4xx status.
func IsClientError(code ErrorCode) bool {
	s := HTTPStatusForCode(code)
	return s >= 400 && s < 500
}

// IsServerError reports whether the code maps to a 5xx status.
func IsServerError(code ErrorCode) bool {
	return HTTPStatusForCode(code) >= 500
}

// ModuleForCode returns the module prefix of a code, e.g. "COVERAGE".
func ModuleForCode(code ErrorCode) string {
	s := string(code)
	if i := strings.IndexByte(s, '_'); i > 0 {
		return s[:i]
	}
	return s
}
