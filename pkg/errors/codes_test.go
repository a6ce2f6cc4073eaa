package errors

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "COMMON_001", ErrCodeInternal.String())
}

func TestHTTPStatusForCode(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrCodeInternal, 500},
		{ErrCodeInvalidParam, 400},
		{ErrCodeNotFound, 404},
		{ErrCodePlatformNotFound, 404},
		{ErrCodeInvalidFilter, 400},
		{ErrCodeDatabaseError, 500},
		{ErrCodeServiceUnavailable, 503},
		{ErrorCode("NOPE_999"), 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, HTTPStatusForCode(tt.code), tt.code)
	}
}

func TestIsClientAndServerError(t *testing.T) {
	assert.True(t, IsClientError(ErrCodeInvalidFilter))
	assert.False(t, IsClientError(ErrCodeDatabaseError))
	assert.True(t, IsServerError(ErrCodeDatabaseError))
	assert.False(t, IsServerError(ErrCodeNotFound))
}

func TestModuleForCode(t *testing.T) {
	assert.Equal(t, "COMMON", ModuleForCode(ErrCodeInternal))
	assert.Equal(t, "STORE", ModuleForCode(ErrCodeDatabaseError))
	assert.Equal(t, "COVERAGE", ModuleForCode(ErrCodePlatformNotFound))
	assert.Equal(t, "MSG", ModuleForCode(ErrCodePublishFailed))
	assert.Equal(t, "OK", ModuleForCode(ErrCodeOK))
}

func TestAllCodesHaveStatusAndFormat(t *testing.T) {
	re := regexp.MustCompile(`^([A-Z]+_\d{3}|OK)$`)
	for code := range errorCodeHTTPStatus {
		assert.Regexp(t, re, string(code))
	}
}
