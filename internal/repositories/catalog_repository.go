package repositories

import (
	"context"

	"foodgram/internal/models"
)

// TagRepository defines the interface for tag data access.
type TagRepository interface {
	GetAll(ctx context.Context) ([]models.Tag, error)
	GetByID(ctx context.Context, id uint) (*models.Tag, error)
	GetBySlugs(ctx context.Context, slugs []string) ([]models.Tag, error)
}

// IngredientRepository defines the interface for ingredient data access.
type IngredientRepository interface {
	Search(ctx context.Context, namePrefix string) ([]models.Ingredient, error)
	GetByID(ctx context.Context, id uint) (*models.Ingredient, error)
}

// ImportResult counts the rows an import created.
type ImportResult struct {
	Tags        int
	Ingredients int
}

// CatalogImporter loads reference data atomically. Rows that already exist
// are skipped, so an import can be repeated.
type CatalogImporter interface {
	Import(ctx context.Context, tags []models.Tag, ingredients []models.Ingredient) (ImportResult, error)
}
