package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromWrapsUnknownAsInternal(t *testing.T) {
	cause := errors.New("connection reset")

	err := From(fmt.Errorf("list products: %w", cause))

	assert.Equal(t, http.StatusInternalServerError, err.Code)
	assert.Equal(t, "internal server error", err.Message)
	assert.ErrorIs(t, err, cause)
}

func TestFromKeepsAppErrors(t *testing.T) {
	wrapped := fmt.Errorf("update product: %w", NotFound("product"))

	assert.Equal(t, http.StatusNotFound, HTTPStatus(wrapped))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsConflict(wrapped))
}

func TestValidationUsesFirstMessage(t *testing.T) {
	err := Validation(
		FieldError{Field: "title", Message: "title is required"},
		FieldError{Field: "price", Message: "price must be 0 or greater"},
	)

	assert.Equal(t, "title is required", err.Message)
	assert.Len(t, err.Fields, 2)
	assert.True(t, IsValidation(err))
}

func TestSentinelMatching(t *testing.T) {
	err := fmt.Errorf("login: %w", ErrInvalidCredentials)

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NotErrorIs(t, err, ErrUnauthenticated)
	assert.True(t, IsUnauthenticated(err))
}
