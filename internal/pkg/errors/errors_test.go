package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDetails_DoesNotMutateCatalog(t *testing.T) {
	detailed := ErrInvalidCoordinates.WithDetails(map[string]interface{}{"lat": 100.0})

	assert.Nil(t, ErrInvalidCoordinates.Details)
	assert.Equal(t, 100.0, detailed.Details["lat"])
	assert.Equal(t, http.StatusBadRequest, detailed.StatusCode)
}

func TestAs_WrappedAppError(t *testing.T) {
	wrapped := fmt.Errorf("search: %w", ErrEmptyQuery.WithMessage("query is blank"))

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "EMPTY_QUERY", appErr.Code)
	assert.ErrorIs(t, wrapped, ErrEmptyQuery)
	assert.NotErrorIs(t, wrapped, ErrShapeNotFound)

	_, ok = As(fmt.Errorf("plain"))
	assert.False(t, ok)
}
