package apperrors_test

import (
	"fmt"
	"testing"

	"foodgram/internal/apperrors"

	"github.com/stretchr/testify/assert"
)

func TestErrorKindsSurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("create recipe: %w", apperrors.Validation("ingredients", "duplicate ingredient %d in recipe", 7))
	assert.True(t, apperrors.IsValidation(wrapped))
	assert.False(t, apperrors.IsConflict(wrapped))
	assert.Equal(t, "create recipe: ingredients: duplicate ingredient 7 in recipe", wrapped.Error())

	assert.True(t, apperrors.IsConflict(fmt.Errorf("x: %w", apperrors.Conflict("already there"))))
	assert.True(t, apperrors.IsPermission(apperrors.Forbidden("not yours")))
	assert.False(t, apperrors.IsNotFound(nil))
}

func TestNotInListIsNotFound(t *testing.T) {
	err := apperrors.NotInList("recipe %d is not in your favorites", 3)
	assert.True(t, apperrors.IsNotFound(err))

	nf := err.(*apperrors.NotFoundError)
	assert.True(t, nf.Membership)
	assert.False(t, apperrors.NotFound("recipe 3 not found").(*apperrors.NotFoundError).Membership)
}

func TestValidationWithoutField(t *testing.T) {
	assert.Equal(t, "you cannot subscribe to yourself", apperrors.Validation("", "you cannot subscribe to yourself").Error())
}
