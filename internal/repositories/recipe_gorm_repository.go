package repositories

import (
	"context"
	"fmt"
	"time"

	"foodgram/internal/apperrors"
	"foodgram/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMRecipeRepository is a GORM implementation of RecipeRepository.
type GORMRecipeRepository struct {
	db *gorm.DB
}

// NewGORMRecipeRepository creates a new instance of GORMRecipeRepository.
func NewGORMRecipeRepository(db *gorm.DB) *GORMRecipeRepository {
	return &GORMRecipeRepository{
		db: db,
	}
}

func withComposition(q *gorm.DB) *gorm.DB {
	return q.Preload("Author").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_tags.id") }).
		Preload("Tags.Tag")
}

func (r *GORMRecipeRepository) filtered(ctx context.Context, f RecipeFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Recipe{})
	if f.AuthorID != 0 {
		q = q.Where("recipes.author_id = ?", f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		tagged := r.db.Model(&models.RecipeTag{}).
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.TagSlugs)
		q = q.Where("recipes.id IN (?)", tagged)
	}
	if f.FavoritedBy != 0 {
		q = q.Where("recipes.id IN (?)", r.db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", f.FavoritedBy))
	}
	if f.InCartOf != 0 {
		q = q.Where("recipes.id IN (?)", r.db.Model(&models.ShoppingCartEntry{}).Select("recipe_id").Where("user_id = ?", f.InCartOf))
	}
	return q
}

// List returns one page of recipes matching filter, newest first, with their
// compositions loaded, and the total number of matches.
func (r *GORMRecipeRepository) List(ctx context.Context, filter RecipeFilter, page Page) ([]models.Recipe, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	var recipes []models.Recipe
	q := paginate(withComposition(r.filtered(ctx, filter)).Order("recipes.id DESC"), page)
	if err := q.Find(&recipes).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, total, nil
}

// GetByID retrieves a recipe with its author, ingredients and tags.
func (r *GORMRecipeRepository) GetByID(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := withComposition(r.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		return nil, translateError(err, "get recipe by ID", fmt.Sprintf("recipe with ID %d", id))
	}
	return &recipe, nil
}

// Create inserts the recipe and its composition atomically. A repeated
// ingredient rolls the whole recipe back.
func (r *GORMRecipeRepository) Create(ctx context.Context, recipe *models.Recipe, composition models.Composition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return translateError(err, "create recipe", "recipe")
		}
		return writeComposition(tx, recipe.ID, composition)
	})
}

// Update replaces the scalar fields and the whole composition of an existing
// recipe atomically. Old ingredient and tag rows are deleted, not diffed.
func (r *GORMRecipeRepository) Update(ctx context.Context, recipe *models.Recipe, composition models.Composition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeTag{}).Error; err != nil {
			return fmt.Errorf("failed to clear recipe tags: %w", err)
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("failed to clear recipe ingredients: %w", err)
		}

		recipe.UpdatedAt = time.Now()
		res := tx.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Updates(map[string]interface{}{
			"name":         recipe.Name,
			"description":  recipe.Description,
			"cooking_time": recipe.CookingTime,
			"image":        recipe.Image,
			"updated_at":   recipe.UpdatedAt,
		})
		if res.Error != nil {
			return translateError(res.Error, "update recipe", "recipe")
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("recipe with ID %d not found for update", recipe.ID)
		}
		return writeComposition(tx, recipe.ID, composition)
	})
}

// writeComposition inserts tag links and ingredient amounts for recipeID.
// Every ingredient row is checked against the ids already written in this
// transaction before it is inserted.
func writeComposition(tx *gorm.DB, recipeID uint, composition models.Composition) error {
	tagIDs := uniqueIDs(composition.TagIDs)
	if err := requireAll(tx, &models.Tag{}, "tag", tagIDs); err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		link := models.RecipeTag{RecipeID: recipeID, TagID: tagID}
		if err := tx.Omit(clause.Associations).Create(&link).Error; err != nil {
			return translateError(err, "link tag", fmt.Sprintf("tag with ID %d", tagID))
		}
	}

	ingredientIDs := make([]uint, 0, len(composition.Ingredients))
	for _, item := range composition.Ingredients {
		ingredientIDs = append(ingredientIDs, item.IngredientID)
	}
	if err := requireAll(tx, &models.Ingredient{}, "ingredient", uniqueIDs(ingredientIDs)); err != nil {
		return err
	}

	written := make(map[uint]struct{}, len(composition.Ingredients))
	for _, item := range composition.Ingredients {
		if _, dup := written[item.IngredientID]; dup {
			return apperrors.Validation("ingredients", "duplicate ingredient %d in recipe", item.IngredientID)
		}
		row := models.RecipeIngredient{RecipeID: recipeID, IngredientID: item.IngredientID, Amount: item.Amount}
		if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
			return translateError(err, "add ingredient", fmt.Sprintf("ingredient with ID %d", item.IngredientID))
		}
		written[item.IngredientID] = struct{}{}
	}
	return nil
}

// requireAll fails with a NotFoundError naming the first id of ids that has no row in model's table.
func requireAll(tx *gorm.DB, model interface{}, kind string, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	var found []uint
	if err := tx.Model(model).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return fmt.Errorf("failed to look up %ss: %w", kind, err)
	}
	present := make(map[uint]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			return apperrors.NotFound("%s with ID %d not found", kind, id)
		}
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Delete removes a recipe. Association rows go with it through ON DELETE CASCADE.
func (r *GORMRecipeRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Recipe{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete recipe: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("recipe with ID %d not found for deletion", id)
	}
	return nil
}

// ListByAuthor returns up to limit recipes of an author ordered by id.
// A non-positive limit returns all of them.
func (r *GORMRecipeRepository) ListByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Recipe, error) {
	var recipes []models.Recipe
	q := r.db.WithContext(ctx).Where("author_id = ?", authorID).Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes of author %d: %w", authorID, err)
	}
	return recipes, nil
}

// CountByAuthors returns the number of recipes per author. Authors without
// recipes are absent from the map.
func (r *GORMRecipeRepository) CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		AuthorID uint
		Total    int64
	}
	err := r.db.WithContext(ctx).Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count recipes by author: %w", err)
	}
	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}
