package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("post", "7"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("title", "title is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("post", "title"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "InvalidCredentials wraps ErrInvalidCredentials",
			err:       InvalidCredentials(),
			target:    ErrInvalidCredentials,
			wantMatch: true,
		},
		{
			name:      "DeliveryFailed wraps ErrDelivery",
			err:       DeliveryFailed(errors.New("dial tcp: refused")),
			target:    ErrDelivery,
			wantMatch: true,
		},
		{
			name:      "NotFound does not match ErrValidation",
			err:       NotFound("post", "7"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "wrapped NotFound still matches",
			err:       fmt.Errorf("getting post: %w", NotFound("post", "7")),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "FieldErrors match ErrValidation",
			err:       FieldErrors{"email": "email is required"},
			target:    ErrValidation,
			wantMatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMatch, errors.Is(tt.err, tt.target))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{"NotFound message includes resource and id", NotFound("post", "7"), "post not found with id 7"},
		{"ValidationFailed uses custom message", ValidationFailed("body", "body is required"), "body is required"},
		{"Conflict names the colliding field", Conflict("post", "title"), "post with this title already exists"},
		{"InvalidCredentials is vague", InvalidCredentials(), "invalid email or password"},
		{"DeliveryFailed hides the cause", DeliveryFailed(errors.New("535 auth failed")), "message could not be delivered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.err.Error())
		})
	}
}

func TestDeliveryFailedKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := DeliveryFailed(cause)

	assert.ErrorIs(t, err, cause)
}

func TestFieldErrors(t *testing.T) {
	fe := FieldErrors{}
	assert.NoError(t, fe.Err())

	fe.Add("email", "email is required")
	fe.Add("email", "email is invalid")
	fe.Add("name", "name is required")

	assert.Equal(t, "email is required", fe["email"], "first message wins")
	assert.EqualError(t, fe.Err(), "validation failed: email: email is required; name: name is required")
}

func TestFields(t *testing.T) {
	t.Run("field errors", func(t *testing.T) {
		err := fmt.Errorf("creating post: %w", FieldErrors{"title": "title is required"})
		assert.Equal(t, FieldErrors{"title": "title is required"}, Fields(err))
	})

	t.Run("single field app error", func(t *testing.T) {
		err := ValidationFailed("title", "a post with this title already exists")
		assert.Equal(t, FieldErrors{"title": "a post with this title already exists"}, Fields(err))
	})

	t.Run("no field information", func(t *testing.T) {
		assert.Nil(t, Fields(NotFound("post", "1")))
		assert.Nil(t, Fields(errors.New("boom")))
	})
}
