package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"go-tone-inspector/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	cause := stderrors.New("boom")

	tests := []struct {
		name   string
		err    *AppError
		typ    ErrorType
		status int
	}{
		{"validation", NewValidationError("bad", cause), ErrorTypeValidation, http.StatusBadRequest},
		{"network", NewNetworkError("bad", cause), ErrorTypeNetwork, http.StatusBadGateway},
		{"processing", NewProcessingError("bad", cause), ErrorTypeProcessing, http.StatusUnprocessableEntity},
		{"timeout", NewTimeoutError("bad", cause), ErrorTypeTimeout, http.StatusGatewayTimeout},
		{"internal", NewInternalError("bad", cause), ErrorTypeInternal, http.StatusInternalServerError},
		{"not found", NewNotFoundError("bad", cause), ErrorTypeNotFound, http.StatusNotFound},
		{"invalid buffer", NewInvalidBufferError("bad", cause), ErrorTypeInvalidBuffer, http.StatusUnprocessableEntity},
		{"empty image", NewEmptyImageError("bad", cause), ErrorTypeEmptyImage, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.err.Type)
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.Equal(t, tt.status, GetStatusCode(tt.err))
			assert.True(t, IsType(tt.err, tt.typ))
			assert.ErrorIs(t, tt.err, cause)
		})
	}
}

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "validation: bad input", NewValidationError("bad input", nil).Error())
	assert.Equal(t, "network: unreachable (caused by: dial failed)",
		NewNetworkError("unreachable", stderrors.New("dial failed")).Error())
}

func TestAppError_WithDetails(t *testing.T) {
	err := NewValidationError("unknown tone type", nil).WithDetails("low-key short tone")
	assert.Equal(t, "low-key short tone", err.Details)
}

func TestFromAnalysisError(t *testing.T) {
	assert.Nil(t, FromAnalysisError(nil))

	empty := FromAnalysisError(fmt.Errorf("summarize: %w", validation.ErrEmptyImage))
	assert.Equal(t, ErrorTypeEmptyImage, empty.Type)

	buffer := FromAnalysisError(fmt.Errorf("rgb: %w", validation.ErrInvalidBuffer))
	assert.Equal(t, ErrorTypeInvalidBuffer, buffer.Type)

	other := FromAnalysisError(stderrors.New("unexpected"))
	assert.Equal(t, ErrorTypeProcessing, other.Type)

	original := NewTimeoutError("slow", nil)
	require.Same(t, original, FromAnalysisError(fmt.Errorf("wrapped: %w", original)))
}

func TestHelpers_NonAppError(t *testing.T) {
	plain := stderrors.New("plain")
	assert.False(t, IsType(plain, ErrorTypeInternal))
	assert.Equal(t, http.StatusInternalServerError, GetStatusCode(plain))
}
