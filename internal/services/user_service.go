package services

import (
	"context"

	"foodgram/internal/apperrors"
	"foodgram/internal/models"
	"foodgram/internal/repositories"
)

// UserService exposes user profiles with the requester's subscription flag.
type UserService struct {
	users   repositories.UserRepository
	follows repositories.FollowRepository
}

// NewUserService creates a new UserService.
func NewUserService(users repositories.UserRepository, follows repositories.FollowRepository) *UserService {
	return &UserService{users: users, follows: follows}
}

// List returns one page of users.
func (s *UserService) List(ctx context.Context, req Requester, page repositories.Page) ([]UserView, int64, error) {
	users, total, err := s.users.List(ctx, page)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.views(ctx, req, users)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// Get returns a single user.
func (s *UserService) Get(ctx context.Context, req Requester, id uint) (*UserView, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, req, []models.User{*user})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Me returns the requester's own profile.
func (s *UserService) Me(ctx context.Context, req Requester) (*UserView, error) {
	if req.Anonymous() {
		return nil, apperrors.Forbidden("authentication required")
	}
	user, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	view := newUserView(*user, false)
	return &view, nil
}

func (s *UserService) views(ctx context.Context, req Requester, users []models.User) ([]UserView, error) {
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	following, err := s.follows.FollowingAmong(ctx, req.UserID, ids)
	if err != nil {
		return nil, err
	}
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, newUserView(u, following[u.ID]))
	}
	return views, nil
}
