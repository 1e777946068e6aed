package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/vytor/wordflow/internal/errors"
)

func TestStateUnavailableWrapsCause(t *testing.T) {
	cause := stderrors.New("database is locked")
	err := apperrors.NewStateUnavailableError("item-1", cause)

	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "STATE_UNAVAILABLE")
	assert.Contains(t, err.Error(), "item-1")
}

func TestAsFindsWrappedAppError(t *testing.T) {
	wrapped := fmt.Errorf("grade: %w", apperrors.NewConflictError("busy"))

	appErr, ok := apperrors.As(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.True(t, apperrors.HasCode(wrapped, apperrors.ErrCodeConflict))
	assert.False(t, apperrors.HasCode(stderrors.New("plain"), apperrors.ErrCodeConflict))
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		err    *apperrors.AppError
		code   string
		status int
	}{
		{apperrors.NewNotFoundError("session", "abc"), apperrors.ErrCodeNotFound, http.StatusNotFound},
		{apperrors.NewValidationError("rating", "required"), apperrors.ErrCodeValidation, http.StatusBadRequest},
		{apperrors.NewBadRequestError("bad"), apperrors.ErrCodeBadRequest, http.StatusBadRequest},
		{apperrors.NewInternalError(stderrors.New("x")), apperrors.ErrCodeInternal, http.StatusInternalServerError},
		{apperrors.NewSessionCompleteError("s1", nil), apperrors.ErrCodeSessionComplete, http.StatusConflict},
		{apperrors.NewStoreUnavailableError("due items", stderrors.New("locked")), apperrors.ErrCodeStateUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.err.Code)
		assert.Equal(t, tt.status, tt.err.Status)
	}
}
