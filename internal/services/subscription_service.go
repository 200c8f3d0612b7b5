package services

import (
	"context"

	"foodgram/internal/apperrors"
	"foodgram/internal/models"
	"foodgram/internal/repositories"
)

// SubscriptionService manages who follows whom.
type SubscriptionService struct {
	users   repositories.UserRepository
	recipes repositories.RecipeRepository
	follows repositories.FollowRepository
	events  EventPublisher
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(users repositories.UserRepository, recipes repositories.RecipeRepository, follows repositories.FollowRepository, events EventPublisher) *SubscriptionService {
	return &SubscriptionService{
		users:   users,
		recipes: recipes,
		follows: follows,
		events:  events,
	}
}

// Subscribe makes the requester follow authorID and returns the author with
// up to recipesLimit of their recipes. A non-positive limit returns all of them.
func (s *SubscriptionService) Subscribe(ctx context.Context, req Requester, authorID uint, recipesLimit int) (*AuthorView, error) {
	if req.Anonymous() {
		return nil, apperrors.Forbidden("authentication required")
	}
	if req.UserID == authorID {
		return nil, apperrors.Validation("author", "you cannot subscribe to yourself")
	}
	if err := s.follows.Add(ctx, req.UserID, authorID); err != nil {
		return nil, err
	}
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	views, err := s.authorViews(ctx, []models.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	publish(s.events, EventSubscriptionAdded, map[string]interface{}{"user_id": req.UserID, "author_id": authorID})
	return &views[0], nil
}

// Unsubscribe stops the requester following authorID.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, req Requester, authorID uint) error {
	if req.Anonymous() {
		return apperrors.Forbidden("authentication required")
	}
	// A missing author is a 404, not "not subscribed".
	if _, err := s.users.GetByID(ctx, authorID); err != nil {
		return err
	}
	if err := s.follows.Remove(ctx, req.UserID, authorID); err != nil {
		return err
	}
	publish(s.events, EventSubscriptionRemoved, map[string]interface{}{"user_id": req.UserID, "author_id": authorID})
	return nil
}

// List returns one page of the authors the requester follows.
func (s *SubscriptionService) List(ctx context.Context, req Requester, page repositories.Page, recipesLimit int) ([]AuthorView, int64, error) {
	if req.Anonymous() {
		return nil, 0, apperrors.Forbidden("authentication required")
	}
	authors, total, err := s.follows.ListAuthors(ctx, req.UserID, page)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.authorViews(ctx, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// authorViews builds views of authors the requester is known to follow.
func (s *SubscriptionService) authorViews(ctx context.Context, authors []models.User, recipesLimit int) ([]AuthorView, error) {
	ids := make([]uint, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.ID)
	}
	counts, err := s.recipes.CountByAuthors(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]AuthorView, 0, len(authors))
	for _, a := range authors {
		recipes, err := s.recipes.ListByAuthor(ctx, a.ID, recipesLimit)
		if err != nil {
			return nil, err
		}
		views = append(views, AuthorView{
			UserView:     newUserView(a, true),
			Recipes:      newRecipeInfos(recipes),
			RecipesCount: counts[a.ID],
		})
	}
	return views, nil
}
