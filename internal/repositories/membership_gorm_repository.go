package repositories

import (
	"context"
	"errors"
	"fmt"

	"foodgram/internal/apperrors"
	"foodgram/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMRecipeMarkRepository is a GORM implementation of RecipeMarkRepository
// over one (user_id, recipe_id) table.
type GORMRecipeMarkRepository struct {
	db     *gorm.DB
	table  string
	list   string // human name of the list in error messages
	newRow func(userID, recipeID uint) interface{}
}

// NewGORMFavoriteRepository returns the favorites relation.
func NewGORMFavoriteRepository(db *gorm.DB) *GORMRecipeMarkRepository {
	return &GORMRecipeMarkRepository{
		db:    db,
		table: "favorites",
		list:  "favorites",
		newRow: func(userID, recipeID uint) interface{} {
			return &models.Favorite{UserID: userID, RecipeID: recipeID}
		},
	}
}

// GORMShoppingCartRepository is the shopping cart relation with aggregation.
type GORMShoppingCartRepository struct {
	*GORMRecipeMarkRepository
}

// NewGORMShoppingCartRepository returns the shopping cart relation.
func NewGORMShoppingCartRepository(db *gorm.DB) *GORMShoppingCartRepository {
	return &GORMShoppingCartRepository{&GORMRecipeMarkRepository{
		db:    db,
		table: "shopping_cart_entries",
		list:  "shopping cart",
		newRow: func(userID, recipeID uint) interface{} {
			return &models.ShoppingCartEntry{UserID: userID, RecipeID: recipeID}
		},
	}}
}

// Add creates the (user, recipe) row inside a transaction. The unique index
// settles concurrent adds: the loser gets a ConflictError.
func (r *GORMRecipeMarkRepository) Add(ctx context.Context, userID, recipeID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipes int64
		if err := tx.Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&recipes).Error; err != nil {
			return fmt.Errorf("failed to look up recipe %d: %w", recipeID, err)
		}
		if recipes == 0 {
			return apperrors.NotFound("recipe with ID %d not found", recipeID)
		}

		var existing int64
		if err := tx.Table(r.table).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check %s: %w", r.list, err)
		}
		if existing > 0 {
			return apperrors.Conflict("recipe %d is already in your %s", recipeID, r.list)
		}

		return insertOnce(tx, r.newRow(userID, recipeID),
			apperrors.Conflict("recipe %d is already in your %s", recipeID, r.list),
			fmt.Sprintf("add recipe %d to %s", recipeID, r.list))
	})
}

// insertOnce creates row and maps a unique index violation to conflict. The
// count checks before it only narrow the race; the index decides.
func insertOnce(tx *gorm.DB, row interface{}, conflict error, op string) error {
	if err := tx.Omit(clause.Associations).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return conflict
		}
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	return nil
}

// Remove deletes the (user, recipe) row.
func (r *GORMRecipeMarkRepository) Remove(ctx context.Context, userID, recipeID uint) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(r.newRow(0, 0))
	if res.Error != nil {
		return fmt.Errorf("failed to remove recipe %d from %s: %w", recipeID, r.list, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotInList("recipe %d is not in your %s", recipeID, r.list)
	}
	return nil
}

// MarkedAmong reports which of recipeIDs the user has in this list.
func (r *GORMRecipeMarkRepository) MarkedAmong(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	marked := make(map[uint]bool, len(recipeIDs))
	if userID == 0 || len(recipeIDs) == 0 {
		return marked, nil
	}

	var found []uint
	err := r.db.WithContext(ctx).Table(r.table).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &found).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.list, err)
	}
	for _, id := range found {
		marked[id] = true
	}
	return marked, nil
}

// ListRecipes returns the user's recipes in this list, most recently added first.
func (r *GORMRecipeMarkRepository) ListRecipes(ctx context.Context, userID uint) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := r.db.WithContext(ctx).
		Joins(fmt.Sprintf("JOIN %s marks ON marks.recipe_id = recipes.id", r.table)).
		Where("marks.user_id = ?", userID).
		Order("marks.id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.list, err)
	}
	return recipes, nil
}

// AggregateIngredients sums ingredient amounts over every recipe in the user's
// cart. Rows are grouped by ingredient name and unit, not by ingredient id, so
// distinct ingredients sharing both are merged. Output is ordered by name.
func (r *GORMShoppingCartRepository) AggregateIngredients(ctx context.Context, userID uint) ([]models.ShoppingListItem, error) {
	var items []models.ShoppingListItem
	err := r.db.WithContext(ctx).
		Table("shopping_cart_entries AS cart").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = cart.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("cart.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name, ingredients.measurement_unit").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate shopping list: %w", err)
	}
	return items, nil
}

// GORMFollowRepository is a GORM implementation of FollowRepository.
type GORMFollowRepository struct {
	db *gorm.DB
}

// NewGORMFollowRepository creates a new instance of GORMFollowRepository.
func NewGORMFollowRepository(db *gorm.DB) *GORMFollowRepository {
	return &GORMFollowRepository{db: db}
}

// Add subscribes userID to authorID inside a transaction.
func (r *GORMFollowRepository) Add(ctx context.Context, userID, authorID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var authors int64
		if err := tx.Model(&models.User{}).Where("id = ?", authorID).Count(&authors).Error; err != nil {
			return fmt.Errorf("failed to look up author %d: %w", authorID, err)
		}
		if authors == 0 {
			return apperrors.NotFound("user with ID %d not found", authorID)
		}

		var existing int64
		if err := tx.Model(&models.Follow{}).Where("user_id = ? AND author_id = ?", userID, authorID).Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check subscriptions: %w", err)
		}
		if existing > 0 {
			return apperrors.Conflict("you are already subscribed to user %d", authorID)
		}

		return insertOnce(tx, &models.Follow{UserID: userID, AuthorID: authorID},
			apperrors.Conflict("you are already subscribed to user %d", authorID),
			fmt.Sprintf("subscribe to user %d", authorID))
	})
}

// Remove unsubscribes userID from authorID.
func (r *GORMFollowRepository) Remove(ctx context.Context, userID, authorID uint) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&models.Follow{})
	if res.Error != nil {
		return fmt.Errorf("failed to unsubscribe from user %d: %w", authorID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotInList("you are not subscribed to user %d", authorID)
	}
	return nil
}

// FollowingAmong reports which of authorIDs the user is subscribed to.
func (r *GORMFollowRepository) FollowingAmong(ctx context.Context, userID uint, authorIDs []uint) (map[uint]bool, error) {
	following := make(map[uint]bool, len(authorIDs))
	if userID == 0 || len(authorIDs) == 0 {
		return following, nil
	}

	var found []uint
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Pluck("author_id", &found).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read subscriptions: %w", err)
	}
	for _, id := range found {
		following[id] = true
	}
	return following, nil
}

// ListAuthors returns one page of the authors userID follows, in subscription order.
func (r *GORMFollowRepository) ListAuthors(ctx context.Context, userID uint, page Page) ([]models.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	var authors []models.User
	q := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.user_id = ?", userID).
		Order("follows.id")
	if err := paginate(q, page).Find(&authors).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return authors, total, nil
}
