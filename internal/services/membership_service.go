package services

import (
	"context"

	"foodgram/internal/apperrors"
	"foodgram/internal/repositories"
)

// MembershipService toggles recipes in the requester's favorites and shopping cart.
type MembershipService struct {
	recipes   repositories.RecipeRepository
	favorites repositories.RecipeMarkRepository
	cart      repositories.RecipeMarkRepository
	events    EventPublisher
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(recipes repositories.RecipeRepository, favorites, cart repositories.RecipeMarkRepository, events EventPublisher) *MembershipService {
	return &MembershipService{
		recipes:   recipes,
		favorites: favorites,
		cart:      cart,
		events:    events,
	}
}

// AddFavorite marks a recipe as favorite.
func (s *MembershipService) AddFavorite(ctx context.Context, req Requester, recipeID uint) (*RecipeInfo, error) {
	return s.add(ctx, s.favorites, EventFavoriteAdded, req, recipeID)
}

// RemoveFavorite unmarks a favorite recipe.
func (s *MembershipService) RemoveFavorite(ctx context.Context, req Requester, recipeID uint) error {
	return s.remove(ctx, s.favorites, EventFavoriteRemoved, req, recipeID)
}

// ListFavorites returns the requester's favorite recipes.
func (s *MembershipService) ListFavorites(ctx context.Context, req Requester) ([]RecipeInfo, error) {
	return s.list(ctx, s.favorites, req)
}

// AddToCart puts a recipe into the shopping cart.
func (s *MembershipService) AddToCart(ctx context.Context, req Requester, recipeID uint) (*RecipeInfo, error) {
	return s.add(ctx, s.cart, EventCartAdded, req, recipeID)
}

// RemoveFromCart takes a recipe out of the shopping cart.
func (s *MembershipService) RemoveFromCart(ctx context.Context, req Requester, recipeID uint) error {
	return s.remove(ctx, s.cart, EventCartRemoved, req, recipeID)
}

// ListCart returns the recipes in the requester's shopping cart.
func (s *MembershipService) ListCart(ctx context.Context, req Requester) ([]RecipeInfo, error) {
	return s.list(ctx, s.cart, req)
}

func (s *MembershipService) add(ctx context.Context, marks repositories.RecipeMarkRepository, event string, req Requester, recipeID uint) (*RecipeInfo, error) {
	if req.Anonymous() {
		return nil, apperrors.Forbidden("authentication required")
	}
	if err := marks.Add(ctx, req.UserID, recipeID); err != nil {
		return nil, err
	}
	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	publish(s.events, event, map[string]interface{}{"user_id": req.UserID, "recipe_id": recipeID})
	info := newRecipeInfo(*recipe)
	return &info, nil
}

func (s *MembershipService) remove(ctx context.Context, marks repositories.RecipeMarkRepository, event string, req Requester, recipeID uint) error {
	if req.Anonymous() {
		return apperrors.Forbidden("authentication required")
	}
	if err := marks.Remove(ctx, req.UserID, recipeID); err != nil {
		return err
	}
	publish(s.events, event, map[string]interface{}{"user_id": req.UserID, "recipe_id": recipeID})
	return nil
}

func (s *MembershipService) list(ctx context.Context, marks repositories.RecipeMarkRepository, req Requester) ([]RecipeInfo, error) {
	if req.Anonymous() {
		return nil, apperrors.Forbidden("authentication required")
	}
	recipes, err := marks.ListRecipes(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	return newRecipeInfos(recipes), nil
}
