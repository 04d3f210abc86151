package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	notFound := NotFound("Order not found")

	t.Run("Direct", func(t *testing.T) {
		assert.Equal(t, KindNotFound, KindOf(notFound))
	})

	t.Run("Wrapped with fmt", func(t *testing.T) {
		err := fmt.Errorf("load order: %w", notFound)
		assert.Equal(t, KindNotFound, KindOf(err))
		assert.True(t, errors.Is(err, notFound))
	})

	t.Run("Plain error", func(t *testing.T) {
		assert.Equal(t, KindUnexpected, KindOf(errors.New("boom")))
	})
}

func TestWrap(t *testing.T) {
	sentinel := Validation("Invalid order items")
	cause := errors.New("size: value XXL not allowed")

	err := Wrap(sentinel, cause)

	assert.True(t, errors.Is(err, sentinel))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "Invalid order items", MessageOf(err, "fallback"))
	assert.Equal(t, "Invalid order items: size: value XXL not allowed", err.Error())
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "Order not found", MessageOf(NotFound("Order not found"), "Internal server error"))
	assert.Equal(t, "Internal server error", MessageOf(errors.New("pq: connection refused"), "Internal server error"))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindConflict, http.StatusBadRequest},
		{KindAuthorization, http.StatusUnauthorized},
		{KindNotFound, http.StatusNotFound},
		{KindUnexpected, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.kind))
		})
	}
}
