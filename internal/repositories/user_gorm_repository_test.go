package repositories_test

import (
	"context"
	"testing"

	"foodgram/internal/apperrors"
	"foodgram/internal/models"
	"foodgram/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	users := repositories.NewGORMUserRepository(f.db)

	byEmail, err := users.GetByEmail(ctx, "chef@example.com")
	require.NoError(t, err)
	assert.Equal(t, f.author.ID, byEmail.ID)

	_, err = users.GetByUsername(ctx, "ghost")
	assert.True(t, apperrors.IsNotFound(err))

	err = users.Create(ctx, &models.User{Email: "chef@example.com", Username: "other", Password: "x"})
	assert.True(t, apperrors.IsConflict(err))

	list, total, err := users.List(ctx, repositories.Page{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 1)
	assert.Equal(t, "chef", list[0].Username)
}
