package repositories

import (
	"context"

	"foodgram/internal/models"
)

// RecipeFilter narrows a recipe listing. Zero values disable a criterion.
type RecipeFilter struct {
	AuthorID    uint
	TagSlugs    []string // OR-combined
	FavoritedBy uint
	InCartOf    uint
}

// RecipeRepository defines the interface for recipe data access. Create and
// Update write the recipe together with its full composition in one transaction.
type RecipeRepository interface {
	List(ctx context.Context, filter RecipeFilter, page Page) ([]models.Recipe, int64, error)
	GetByID(ctx context.Context, id uint) (*models.Recipe, error)
	Create(ctx context.Context, recipe *models.Recipe, composition models.Composition) error
	Update(ctx context.Context, recipe *models.Recipe, composition models.Composition) error
	Delete(ctx context.Context, id uint) error
	ListByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Recipe, error)
	CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error)
}
