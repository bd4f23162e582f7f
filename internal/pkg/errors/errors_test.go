package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nearby-places/internal/pkg/errors"
)

func TestAppError_WrapKeepsIdentity(t *testing.T) {
	cause := fmt.Errorf("dial tcp: timeout")
	err := errors.ErrPlacesSearchFailed.Wrap(cause)

	assert.True(t, stderrors.Is(err, errors.ErrPlacesSearchFailed))
	assert.True(t, stderrors.Is(err, cause))
	assert.False(t, stderrors.Is(err, errors.ErrPermissionDenied))
	assert.Contains(t, err.Error(), "PLACES_SEARCH_FAILED")
	assert.Contains(t, err.Error(), "dial tcp")

	assert.Nil(t, errors.ErrPlacesSearchFailed.Unwrap(), "sentinel must stay untouched")
}

func TestAppError_WithDetailsCopies(t *testing.T) {
	err := errors.ErrInvalidRequest.WithDetails(map[string]interface{}{"field": "limit"})

	assert.Equal(t, "limit", err.Details["field"])
	assert.Nil(t, errors.ErrInvalidRequest.Details)

	var appErr *errors.AppError
	wrapped := fmt.Errorf("handler: %w", err)
	assert.True(t, stderrors.As(wrapped, &appErr))
	assert.Equal(t, 400, appErr.StatusCode)
}
