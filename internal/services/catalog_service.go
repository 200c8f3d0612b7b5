package services

import (
	"context"
	"fmt"

	"foodgram/internal/models"
	"foodgram/internal/repositories"
)

// CatalogService serves the read-only tag and ingredient reference data.
type CatalogService struct {
	tags        repositories.TagRepository
	ingredients repositories.IngredientRepository
	importer    repositories.CatalogImporter
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(tags repositories.TagRepository, ingredients repositories.IngredientRepository, importer repositories.CatalogImporter) *CatalogService {
	return &CatalogService{tags: tags, ingredients: ingredients, importer: importer}
}

// ListTags returns every tag.
func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.tags.GetAll(ctx)
}

// GetTag returns one tag.
func (s *CatalogService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	return s.tags.GetByID(ctx, id)
}

// SearchIngredients returns ingredients whose name starts with namePrefix.
func (s *CatalogService) SearchIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	return s.ingredients.Search(ctx, namePrefix)
}

// GetIngredient returns one ingredient.
func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	return s.ingredients.GetByID(ctx, id)
}

// Import bulk-loads reference data. Either everything new is written or
// nothing is; rows that already exist are skipped.
func (s *CatalogService) Import(ctx context.Context, tags []models.Tag, ingredients []models.Ingredient) (repositories.ImportResult, error) {
	result, err := s.importer.Import(ctx, tags, ingredients)
	if err != nil {
		return repositories.ImportResult{}, fmt.Errorf("failed to import reference data: %w", err)
	}
	return result, nil
}
