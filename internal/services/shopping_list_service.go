package services

import (
	"bytes"
	"context"
	"fmt"

	"foodgram/internal/apperrors"
	"foodgram/internal/models"
	"foodgram/internal/repositories"
)

// ShoppingList is the downloadable rendering of a shopping cart.
type ShoppingList struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ShoppingListService aggregates the requester's cart into a shopping list.
type ShoppingListService struct {
	cart        repositories.ShoppingCartRepository
	filename    string
	contentType string
}

// NewShoppingListService creates a new ShoppingListService.
func NewShoppingListService(cart repositories.ShoppingCartRepository, filename, contentType string) *ShoppingListService {
	return &ShoppingListService{cart: cart, filename: filename, contentType: contentType}
}

// Download sums the ingredients of every recipe in the cart. An empty cart
// yields an empty list.
func (s *ShoppingListService) Download(ctx context.Context, req Requester) (*ShoppingList, error) {
	if req.Anonymous() {
		return nil, apperrors.Forbidden("authentication required")
	}
	items, err := s.cart.AggregateIngredients(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	return &ShoppingList{
		Filename:    s.filename,
		ContentType: s.contentType,
		Content:     RenderShoppingList(items),
	}, nil
}

// RenderShoppingList writes one "<name>: <total><unit>" line per item.
func RenderShoppingList(items []models.ShoppingListItem) []byte {
	var buf bytes.Buffer
	for _, item := range items {
		fmt.Fprintf(&buf, "%s: %d%s\n", item.Name, item.Total, item.MeasurementUnit)
	}
	return buf.Bytes()
}
