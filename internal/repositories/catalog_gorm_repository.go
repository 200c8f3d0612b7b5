package repositories

import (
	"context"
	"fmt"
	"strings"

	"foodgram/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const batchSize = 500

// GORMTagRepository is a GORM implementation of TagRepository.
type GORMTagRepository struct {
	db *gorm.DB
}

// NewGORMTagRepository creates a new instance of GORMTagRepository.
func NewGORMTagRepository(db *gorm.DB) *GORMTagRepository {
	return &GORMTagRepository{db: db}
}

// GetAll returns every tag, newest first.
func (r *GORMTagRepository) GetAll(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to get all tags: %w", err)
	}
	return tags, nil
}

// GetByID retrieves a single tag.
func (r *GORMTagRepository) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, translateError(err, "get tag by ID", fmt.Sprintf("tag with ID %d", id))
	}
	return &tag, nil
}

// GetBySlugs returns the tags whose slug is in slugs. Unknown slugs are simply absent.
func (r *GORMTagRepository) GetBySlugs(ctx context.Context, slugs []string) ([]models.Tag, error) {
	var tags []models.Tag
	if len(slugs) == 0 {
		return tags, nil
	}
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to get tags by slug: %w", err)
	}
	return tags, nil
}

// CreateBatch inserts tags in batches and returns how many were created. Tags
// whose name or slug is already taken are skipped.
func (r *GORMTagRepository) CreateBatch(ctx context.Context, tags []models.Tag) (int, error) {
	if len(tags) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&tags, batchSize)
	if res.Error != nil {
		return 0, translateError(res.Error, "create tags", "tag")
	}
	return int(res.RowsAffected), nil
}

// GORMIngredientRepository is a GORM implementation of IngredientRepository.
type GORMIngredientRepository struct {
	db *gorm.DB
}

// NewGORMIngredientRepository creates a new instance of GORMIngredientRepository.
func NewGORMIngredientRepository(db *gorm.DB) *GORMIngredientRepository {
	return &GORMIngredientRepository{db: db}
}

// Search returns ingredients whose name starts with namePrefix, ignoring case,
// ordered by name. An empty prefix returns everything.
func (r *GORMIngredientRepository) Search(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	q := r.db.WithContext(ctx).Order("name")
	if namePrefix != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, escapeLike(strings.ToLower(namePrefix))+"%")
	}

	var ingredients []models.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to search ingredients: %w", err)
	}
	return ingredients, nil
}

// GetByID retrieves a single ingredient.
func (r *GORMIngredientRepository) GetByID(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, translateError(err, "get ingredient by ID", fmt.Sprintf("ingredient with ID %d", id))
	}
	return &ingredient, nil
}

// CreateBatch inserts ingredients in batches and returns how many were
// created. A (name, measurement unit) pair that already exists, in the table or
// earlier in the batch, is skipped. Ingredients carry no unique index, so the
// check is a lookup.
func (r *GORMIngredientRepository) CreateBatch(ctx context.Context, ingredients []models.Ingredient) (int, error) {
	if len(ingredients) == 0 {
		return 0, nil
	}

	var existing []models.Ingredient
	if err := r.db.WithContext(ctx).Select("name", "measurement_unit").Find(&existing).Error; err != nil {
		return 0, fmt.Errorf("failed to load existing ingredients: %w", err)
	}
	seen := make(map[ingredientKey]struct{}, len(existing)+len(ingredients))
	for _, i := range existing {
		seen[ingredientKey{i.Name, i.MeasurementUnit}] = struct{}{}
	}

	fresh := make([]models.Ingredient, 0, len(ingredients))
	for _, i := range ingredients {
		key := ingredientKey{i.Name, i.MeasurementUnit}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		fresh = append(fresh, models.Ingredient{Name: i.Name, MeasurementUnit: i.MeasurementUnit})
	}
	if len(fresh) == 0 {
		return 0, nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(&fresh, batchSize).Error; err != nil {
		return 0, translateError(err, "create ingredients", "ingredient")
	}
	return len(fresh), nil
}

type ingredientKey struct {
	name, unit string
}

// GORMCatalogImporter is a GORM implementation of CatalogImporter.
type GORMCatalogImporter struct {
	db *gorm.DB
}

// NewGORMCatalogImporter creates a new instance of GORMCatalogImporter.
func NewGORMCatalogImporter(db *gorm.DB) *GORMCatalogImporter {
	return &GORMCatalogImporter{db: db}
}

// Import writes tags and ingredients in one transaction.
func (r *GORMCatalogImporter) Import(ctx context.Context, tags []models.Tag, ingredients []models.Ingredient) (ImportResult, error) {
	var result ImportResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if result.Tags, err = NewGORMTagRepository(tx).CreateBatch(ctx, tags); err != nil {
			return err
		}
		result.Ingredients, err = NewGORMIngredientRepository(tx).CreateBatch(ctx, ingredients)
		return err
	})
	if err != nil {
		return ImportResult{}, err
	}
	return result, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
