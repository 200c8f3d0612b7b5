package services_test

import (
	"context"
	"errors"
	"testing"

	"foodgram/internal/apperrors"
	"foodgram/internal/models"
	"foodgram/internal/repositories"
	"foodgram/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recipeMocks struct {
	recipes   *MockRecipeRepository
	tags      *MockTagRepository
	favorites *MockMarkRepository
	cart      *MockMarkRepository
	follows   *MockFollowRepository
	images    *MockImageSaver
	events    *MockPublisher
}

func newRecipeService() (*services.RecipeService, recipeMocks) {
	m := recipeMocks{
		recipes:   new(MockRecipeRepository),
		tags:      new(MockTagRepository),
		favorites: new(MockMarkRepository),
		cart:      new(MockMarkRepository),
		follows:   new(MockFollowRepository),
		images:    new(MockImageSaver),
		events:    new(MockPublisher),
	}
	svc := services.NewRecipeService(services.RecipeServiceDeps{
		Recipes:        m.recipes,
		Tags:           m.tags,
		Favorites:      m.favorites,
		Cart:           m.cart,
		Follows:        m.follows,
		Images:         m.images,
		Events:         m.events,
		MinCookingTime: 1,
	})
	return svc, m
}

func sampleRecipe() *models.Recipe {
	return &models.Recipe{
		ID:          10,
		AuthorID:    1,
		Author:      models.User{ID: 1, Username: "chef", Email: "chef@example.com"},
		Name:        "Pancakes",
		Image:       "/media/recipes/p.png",
		Description: "Mix and fry",
		CookingTime: 15,
		Ingredients: []models.RecipeIngredient{
			{IngredientID: 3, Amount: 200, Ingredient: models.Ingredient{ID: 3, Name: "Flour", MeasurementUnit: "g"}},
		},
		Tags: []models.RecipeTag{{TagID: 5, Tag: models.Tag{ID: 5, Name: "Breakfast", Slug: "breakfast", Color: "#E26C2D"}}},
	}
}

func validInput() services.RecipeInput {
	return services.RecipeInput{
		Name:        "Pancakes",
		Text:        "Mix and fry",
		CookingTime: 15,
		Image:       "data:image/png;base64,iVBORw0KGgo=",
		Ingredients: []models.IngredientAmount{{IngredientID: 3, Amount: 200}},
		Tags:        []uint{5},
	}
}

func (m recipeMocks) expectFlags(userID uint, favorited, inCart, following bool) {
	m.favorites.On("MarkedAmong", mock.Anything, userID, []uint{10}).Return(map[uint]bool{10: favorited}, nil)
	m.cart.On("MarkedAmong", mock.Anything, userID, []uint{10}).Return(map[uint]bool{10: inCart}, nil)
	m.follows.On("FollowingAmong", mock.Anything, userID, []uint{1}).Return(map[uint]bool{1: following}, nil)
}

func TestRecipeService_GetComputesFlags(t *testing.T) {
	ctx := context.Background()
	svc, m := newRecipeService()
	m.recipes.On("GetByID", ctx, uint(10)).Return(sampleRecipe(), nil)
	m.expectFlags(2, true, false, true)

	view, err := svc.Get(ctx, services.Requester{UserID: 2}, 10)
	require.NoError(t, err)
	assert.True(t, view.IsFavorited)
	assert.False(t, view.IsInShoppingCart)
	assert.True(t, view.Author.IsSubscribed)
	assert.Equal(t, "Mix and fry", view.Text)
	require.Len(t, view.Ingredients, 1)
	assert.Equal(t, services.RecipeIngredientView{ID: 3, Name: "Flour", MeasurementUnit: "g", Amount: 200}, view.Ingredients[0])
	require.Len(t, view.Tags, 1)
	assert.Equal(t, "breakfast", view.Tags[0].Slug)
}

func TestRecipeService_AnonymousFlagsAreFalse(t *testing.T) {
	ctx := context.Background()
	svc, m := newRecipeService()
	m.recipes.On("GetByID", ctx, uint(10)).Return(sampleRecipe(), nil)
	m.favorites.On("MarkedAmong", ctx, uint(0), []uint{10}).Return(map[uint]bool{}, nil)
	m.cart.On("MarkedAmong", ctx, uint(0), []uint{10}).Return(map[uint]bool{}, nil)
	m.follows.On("FollowingAmong", ctx, uint(0), []uint{1}).Return(map[uint]bool{}, nil)

	view, err := svc.Get(ctx, services.Requester{}, 10)
	require.NoError(t, err)
	assert.False(t, view.IsFavorited)
	assert.False(t, view.IsInShoppingCart)
	assert.False(t, view.Author.IsSubscribed)
}

func TestRecipeService_Create(t *testing.T) {
	ctx := context.Background()
	svc, m := newRecipeService()
	in := validInput()

	m.images.On("Save", ctx, in.Image).Return("/media/recipes/p.png", nil).Once()
	m.recipes.On("Create", ctx, mock.AnythingOfType("*models.Recipe"), models.Composition{Ingredients: in.Ingredients, TagIDs: in.Tags}).
		Run(func(args mock.Arguments) {
			r := args.Get(1).(*models.Recipe)
			assert.Equal(t, uint(1), r.AuthorID)
			assert.Equal(t, "/media/recipes/p.png", r.Image)
			r.ID = 10
		}).Return(nil).Once()
	m.events.On("PublishEvent", services.EventRecipeCreated, mock.Anything).Return(errors.New("broker down")).Once()
	m.recipes.On("GetByID", ctx, uint(10)).Return(sampleRecipe(), nil).Once()
	m.expectFlags(1, false, false, false)

	view, err := svc.Create(ctx, services.Requester{UserID: 1}, in)
	require.NoError(t, err, "a failed event must not fail the request")
	assert.Equal(t, uint(10), view.ID)
	m.recipes.AssertExpectations(t)
	m.images.AssertExpectations(t)
	m.events.AssertExpectations(t)
}

func TestRecipeService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		edit  func(*services.RecipeInput)
		field string
	}{
		{"zero cooking time", func(in *services.RecipeInput) { in.CookingTime = 0 }, "cooking_time"},
		{"zero amount", func(in *services.RecipeInput) { in.Ingredients[0].Amount = 0 }, "ingredients"},
		{"no ingredients", func(in *services.RecipeInput) { in.Ingredients = nil }, "ingredients"},
		{"no tags", func(in *services.RecipeInput) { in.Tags = nil }, "tags"},
		{"no image", func(in *services.RecipeInput) { in.Image = "" }, "image"},
		{"no name", func(in *services.RecipeInput) { in.Name = "" }, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newRecipeService()
			in := validInput()
			tt.edit(&in)

			_, err := svc.Create(ctx, services.Requester{UserID: 1}, in)
			var verr *apperrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			m.recipes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRecipeService_CreateRespectsConfiguredMinimum(t *testing.T) {
	svc := services.NewRecipeService(services.RecipeServiceDeps{MinCookingTime: 20})
	in := validInput()
	_, err := svc.Create(context.Background(), services.Requester{UserID: 1}, in)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "at least 20")
}

func TestRecipeService_CreateDuplicateIngredientPassesThrough(t *testing.T) {
	ctx := context.Background()
	svc, m := newRecipeService()
	in := validInput()
	in.Ingredients = []models.IngredientAmount{{IngredientID: 1, Amount: 5}, {IngredientID: 1, Amount: 3}}

	m.images.On("Save", ctx, in.Image).Return("/media/x.png", nil)
	m.recipes.On("Create", ctx, mock.Anything, mock.Anything).
		Return(apperrors.Validation("ingredients", "duplicate ingredient 1 in recipe"))

	_, err := svc.Create(ctx, services.Requester{UserID: 1}, in)
	assert.True(t, apperrors.IsValidation(err))
	m.events.AssertNotCalled(t, "PublishEvent", mock.Anything, mock.Anything)
}

func TestRecipeService_UpdateOnlyByAuthor(t *testing.T) {
	ctx := context.Background()
	svc, m := newRecipeService()
	m.recipes.On("GetByID", ctx, uint(10)).Return(sampleRecipe(), nil)

	_, err := svc.Update(ctx, services.Requester{UserID: 2}, 10, validInput())
	assert.True(t, apperrors.IsPermission(err))

	err = svc.Delete(ctx, services.Requester{UserID: 2}, 10)
	assert.True(t, apperrors.IsPermission(err))
	m.recipes.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestRecipeService_UpdateKeepsImageWhenOmitted(t *testing.T) {
	ctx := context.Background()
	svc, m := newRecipeService()
	in := validInput()
	in.Image = ""
	in.Name = "Crepes"

	m.recipes.On("GetByID", ctx, uint(10)).Return(sampleRecipe(), nil)
	m.recipes.On("Update", ctx, mock.AnythingOfType("*models.Recipe"), mock.Anything).
		Run(func(args mock.Arguments) {
			r := args.Get(1).(*models.Recipe)
			assert.Equal(t, "/media/recipes/p.png", r.Image)
			assert.Equal(t, "Crepes", r.Name)
		}).Return(nil).Once()
	m.events.On("PublishEvent", services.EventRecipeUpdated, mock.Anything).Return(nil).Once()
	m.expectFlags(1, false, false, false)

	_, err := svc.Update(ctx, services.Requester{UserID: 1}, 10, in)
	require.NoError(t, err)
	m.images.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	m.recipes.AssertExpectations(t)
}

func TestRecipeService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, m := newRecipeService()
	m.recipes.On("GetByID", ctx, uint(10)).Return(sampleRecipe(), nil)
	m.recipes.On("Delete", ctx, uint(10)).Return(nil).Once()
	m.events.On("PublishEvent", services.EventRecipeDeleted, map[string]interface{}{"recipe_id": uint(10), "author_id": uint(1)}).Return(nil).Once()

	require.NoError(t, svc.Delete(ctx, services.Requester{UserID: 1}, 10))
	m.recipes.AssertExpectations(t)
	m.events.AssertExpectations(t)

	_, err := svc.Create(ctx, services.Requester{}, validInput())
	assert.True(t, apperrors.IsPermission(err))
}

func TestRecipeService_ListFilters(t *testing.T) {
	ctx := context.Background()
	svc, m := newRecipeService()
	m.tags.On("GetBySlugs", ctx, []string{"breakfast"}).Return([]models.Tag{{ID: 5, Slug: "breakfast"}}, nil)
	m.recipes.On("List", ctx, repositories.RecipeFilter{TagSlugs: []string{"breakfast"}, FavoritedBy: 2}, repositories.Page{Limit: 6}).
		Return([]models.Recipe{*sampleRecipe()}, int64(1), nil).Once()
	m.expectFlags(2, true, false, false)

	views, total, err := svc.List(ctx, services.Requester{UserID: 2}, services.RecipeQuery{
		Tags:        []string{"breakfast"},
		IsFavorited: true,
		Page:        repositories.Page{Limit: 6},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, views, 1)
	assert.True(t, views[0].IsFavorited)
	m.recipes.AssertExpectations(t)
}

func TestRecipeService_ListIgnoresPersonalFiltersForAnonymous(t *testing.T) {
	ctx := context.Background()
	svc, m := newRecipeService()
	m.recipes.On("List", ctx, repositories.RecipeFilter{}, repositories.Page{}).Return([]models.Recipe{}, int64(0), nil).Once()
	m.favorites.On("MarkedAmong", ctx, uint(0), []uint{}).Return(map[uint]bool{}, nil)
	m.cart.On("MarkedAmong", ctx, uint(0), []uint{}).Return(map[uint]bool{}, nil)
	m.follows.On("FollowingAmong", ctx, uint(0), []uint{}).Return(map[uint]bool{}, nil)

	views, _, err := svc.List(ctx, services.Requester{}, services.RecipeQuery{IsFavorited: true, IsInShoppingCart: true})
	require.NoError(t, err)
	assert.Empty(t, views)
	m.recipes.AssertExpectations(t)
}

func TestRecipeService_ListUnknownTag(t *testing.T) {
	ctx := context.Background()
	svc, m := newRecipeService()
	m.tags.On("GetBySlugs", ctx, []string{"breakfast", "nope"}).Return([]models.Tag{{ID: 5, Slug: "breakfast"}}, nil)

	_, _, err := svc.List(ctx, services.Requester{}, services.RecipeQuery{Tags: []string{"breakfast", "nope"}})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "tags", verr.Field)
	m.recipes.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}
