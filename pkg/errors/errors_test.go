package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/coverage-intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// New / Error
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSet(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal", errors.ErrCodeInternal, "unexpected failure"},
		{"platform", errors.ErrCodePlatformNotFound, "platform lawyers not found"},
		{"filter", errors.ErrCodeInvalidFilter, "unknown sort field"},
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

func TestError_Format(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeInvalidParam, "bad limit")
	assert.Equal(t, "[COMMON_002] bad limit", ae.Error())

	withDetail := ae.WithDetail("limit=0")
	assert.Equal(t, "[COMMON_002] bad limit: limit=0", withDetail.Error())
	assert.Empty(t, ae.Detail, "WithDetail must not mutate the receiver")

	withCause := withDetail.WithCause(stderrors.New("boom"))
	assert.Equal(t, "[COMMON_002] bad limit: limit=0 (boom)", withCause.Error())
}

func TestNewf(t *testing.T) {
	t.Parallel()

	ae := errors.Newf(errors.ErrCodeInvalidFilter, "status %q is not a bucket", "great")
	assert.Equal(t, `status "great" is not a bucket`, ae.Message)
}

func TestWithDetail_NilReceiver(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(stderrors.New("x")))
}

// ─────────────────────────────────────────────────────────────────────────────
// Wrap
// ─────────────────────────────────────────────────────────────────────────────

func TestWrap_NilReturnsNil(t *testing.T) {
	t.Parallel()

	assert.NoError(t, errors.Wrap(nil, errors.ErrCodeInternal, "ignored"))
}

func TestWrap_ChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("connection reset")
	wrapped := errors.Wrap(root, errors.ErrCodeDatabaseError, "fetch country content")

	require.Error(t, wrapped)
	assert.True(t, stderrors.Is(wrapped, root))
	assert.Equal(t, errors.ErrCodeDatabaseError, errors.GetCode(wrapped))

	var ae *errors.AppError
	require.True(t, stderrors.As(wrapped, &ae))
	assert.Equal(t, "fetch country content", ae.Message)
}

func TestWrap_UnknownCodeInheritsInner(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodePlatformNotFound, "missing")
	outer := errors.Wrap(inner, errors.ErrCodeUnknown, "load platform")
	assert.Equal(t, errors.ErrCodePlatformNotFound, errors.GetCode(outer))
}

func TestWrap_ExplicitCodeOverrides(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodePlatformNotFound, "missing")
	outer := errors.Wrap(inner, errors.ErrCodeInternal, "unexpected")
	assert.Equal(t, errors.ErrCodeInternal, errors.GetCode(outer))
	assert.True(t, errors.IsCode(outer, errors.ErrCodePlatformNotFound), "inner code stays reachable")
}

func TestIsCode_SearchesJoinedErrors(t *testing.T) {
	t.Parallel()

	joined := errors.Join(
		errors.Wrap(errors.New(errors.ErrCodePublishFailed, "broker"), errors.ErrCodeSnapshotFailed, "publish"),
		errors.Wrap(errors.New(errors.ErrCodePlatformNotFound, "ghost"), errors.ErrCodeSnapshotFailed, "compute"),
	)
	assert.True(t, errors.IsCode(joined, errors.ErrCodePublishFailed))
	assert.True(t, errors.IsCode(joined, errors.ErrCodePlatformNotFound))
	assert.False(t, errors.IsCode(joined, errors.ErrCodeDatabaseError))
	assert.False(t, errors.IsCode(errors.Join(), errors.ErrCodeUnknown))
}

// ─────────────────────────────────────────────────────────────────────────────
// Inspection helpers
// ─────────────────────────────────────────────────────────────────────────────

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", stderrors.New("x"), false},
		{"generic not found", errors.NotFound("x"), true},
		{"platform not found", errors.New(errors.ErrCodePlatformNotFound, "x"), true},
		{"wrapped platform", errors.Wrap(errors.New(errors.ErrCodePlatformNotFound, "x"), errors.ErrCodeUnknown, "ctx"), true},
		{"fmt wrapped", fmt.Errorf("outer: %w", errors.NotFound("x")), true},
		{"internal", errors.Internal("x"), false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, errors.IsNotFound(tc.err))
		})
	}
}

func TestIsValidation(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsValidation(errors.InvalidParam("x")))
	assert.True(t, errors.IsValidation(errors.New(errors.ErrCodeInvalidFilter, "x")))
	assert.False(t, errors.IsValidation(errors.Internal("x")))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.ErrCodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.ErrCodeUnknown, errors.GetCode(stderrors.New("x")))
	assert.Equal(t, errors.ErrCodeServiceUnavailable, errors.GetCode(errors.Unavailable("x")))
}

func TestHTTPStatusMethod(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 404, errors.NotFound("x").HTTPStatus())
	assert.Equal(t, 400, errors.InvalidParam("x").HTTPStatus())
}
