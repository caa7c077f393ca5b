package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

func TestToDomainError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"not authenticated", fmt.Errorf("update: %w", domain.ErrNotAuthenticated), "UNAUTHORIZED", http.StatusUnauthorized},
		{"permission denied", fmt.Errorf("delete: %w", domain.ErrPermissionDenied), "FORBIDDEN", http.StatusForbidden},
		{"bad credentials", domain.ErrInvalidCredentials, "INVALID_CREDENTIALS", http.StatusUnauthorized},
		{"not found", domain.ErrNotFound, "NOT_FOUND", http.StatusNotFound},
		{"conflict", domain.ErrAlreadyExists, "CONFLICT", http.StatusConflict},
		{"validation", fmt.Errorf("%w: bad sort", domain.ErrValidation), "VALIDATION_FAILED", http.StatusBadRequest},
		{"operation failed", fmt.Errorf("create ticket: %w", domain.ErrOperationFailed), "OPERATION_FAILED", http.StatusBadGateway},
		{"fiber not found", fiber.ErrNotFound, "NOT_FOUND", http.StatusNotFound},
		{"unknown", errors.New("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			de := ToDomainError(tc.err)
			assert.Equal(t, tc.code, de.Code)
			assert.Equal(t, tc.status, de.HTTPStatus)
		})
	}
}

func TestToDomainError_PassThrough(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	orig := NewValidationError("title required", map[string]any{"field": "title"})
	de := ToDomainError(fmt.Errorf("wrapped: %w", orig))
	assert.Same(t, orig, de)
}
