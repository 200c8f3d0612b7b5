package repositories

import (
	"context"

	"foodgram/internal/models"
)

// Page selects a window of a list. A zero Limit means no limit.
type Page struct {
	Offset int
	Limit  int
}

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	List(ctx context.Context, page Page) ([]models.User, int64, error)
}
