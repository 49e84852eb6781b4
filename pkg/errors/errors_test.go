package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	appErr := Internal("Failed to load roster", cause)

	assert.Equal(t, "Failed to load roster: connection refused", appErr.Error())
	assert.ErrorIs(t, appErr, cause)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
}

func TestGetAppError(t *testing.T) {
	wrapped := Wrap(ErrTripNotFound, "assign driver")
	assert.True(t, IsAppError(wrapped))
	assert.Equal(t, "NOT_FOUND", GetAppError(wrapped).Code)

	plain := errors.New("boom")
	assert.False(t, IsAppError(plain))
	assert.Equal(t, "INTERNAL_ERROR", GetAppError(plain).Code)
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "ignored"))
}
