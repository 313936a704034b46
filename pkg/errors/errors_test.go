package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchErrorTransientMessage(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewFetchError("billing", "/openapi.json", true, cause)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.True(t, fetchErr.Transient)
	assert.Contains(t, err.Error(), "transient fetch error")
	assert.Contains(t, err.Error(), "billing")
	assert.Contains(t, err.Error(), "/openapi.json")
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestFetchErrorNonTransientMessage(t *testing.T) {
	err := NewFetchError("billing", "", false, fmt.Errorf("bad payload"))
	assert.Contains(t, err.Error(), "fetch error for service billing")
	assert.NotContains(t, err.Error(), "transient")
}

func TestAuthErrorStatusCode(t *testing.T) {
	err := NewAuthError("billing", 403, nil)

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, 403, authErr.StatusCode)
	assert.Contains(t, err.Error(), "status 403")
}

func TestInvalidDescriptorErrorCountsPaths(t *testing.T) {
	err := NewInvalidDescriptorError("billing", []string{"/a", "/b"}, fmt.Errorf("not a descriptor"))
	assert.Contains(t, err.Error(), "2 path(s)")
}

func TestGenerationErrorIncludesKind(t *testing.T) {
	cause := fmt.Errorf("template render failed")
	err := NewGenerationError("billing", "client-stub", cause)
	assert.Contains(t, err.Error(), "client-stub")
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestStoreErrorWithAndWithoutService(t *testing.T) {
	withService := NewStoreError("set", "billing", fmt.Errorf("disk full"))
	assert.Contains(t, withService.Error(), "for service billing")

	withoutService := NewStoreError("open", "", fmt.Errorf("locked"))
	assert.Contains(t, withoutService.Error(), "checksum store open failed:")
}

func TestParseErrorLineMetadata(t *testing.T) {
	err := NewParseError("services.yaml", 12, fmt.Errorf("bad indentation"))
	assert.Contains(t, err.Error(), "services.yaml:12")

	noLine := NewParseError("services.yaml", 0, fmt.Errorf("oops"))
	assert.NotContains(t, noLine.Error(), ":0:")
}

func TestValidationErrorField(t *testing.T) {
	err := NewValidationError("services[0].name", "required", nil)
	assert.Contains(t, err.Error(), "services[0].name")
}

func TestNotificationErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("broker unavailable")
	err := NewNotificationError("billing", cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}
