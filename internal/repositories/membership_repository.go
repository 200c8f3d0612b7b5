package repositories

import (
	"context"

	"foodgram/internal/models"
)

// RecipeMarkRepository manages a unique (user, recipe) relation such as
// favorites or the shopping cart.
type RecipeMarkRepository interface {
	// Add fails with a ConflictError when the pair exists and a NotFoundError
	// when the recipe does not.
	Add(ctx context.Context, userID, recipeID uint) error
	// Remove fails with a membership NotFoundError when the pair does not exist.
	Remove(ctx context.Context, userID, recipeID uint) error
	MarkedAmong(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error)
	ListRecipes(ctx context.Context, userID uint) ([]models.Recipe, error)
}

// ShoppingCartRepository is the cart relation plus the shopping list aggregate.
type ShoppingCartRepository interface {
	RecipeMarkRepository
	AggregateIngredients(ctx context.Context, userID uint) ([]models.ShoppingListItem, error)
}

// FollowRepository manages the unique (follower, author) relation.
type FollowRepository interface {
	Add(ctx context.Context, userID, authorID uint) error
	Remove(ctx context.Context, userID, authorID uint) error
	FollowingAmong(ctx context.Context, userID uint, authorIDs []uint) (map[uint]bool, error)
	ListAuthors(ctx context.Context, userID uint, page Page) ([]models.User, int64, error)
}
