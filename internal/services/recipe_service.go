package services

import (
	"context"
	"fmt"

	"foodgram/internal/apperrors"
	"foodgram/internal/models"
	"foodgram/internal/repositories"
)

// ImageSaver stores an encoded image and returns its public reference.
type ImageSaver interface {
	Save(ctx context.Context, encoded string) (string, error)
}

// RecipeInput is the client-supplied content of a recipe.
type RecipeInput struct {
	Name        string
	Text        string
	CookingTime int
	// Image is a base64 data URI. Empty keeps the current image on update.
	Image       string
	Ingredients []models.IngredientAmount
	Tags        []uint
}

// RecipeQuery filters a recipe listing.
type RecipeQuery struct {
	AuthorID         uint
	Tags             []string
	IsFavorited      bool
	IsInShoppingCart bool
	Page             repositories.Page
}

// RecipeService handles business logic for recipes and their computed views.
type RecipeService struct {
	recipes        repositories.RecipeRepository
	tags           repositories.TagRepository
	favorites      repositories.RecipeMarkRepository
	cart           repositories.RecipeMarkRepository
	follows        repositories.FollowRepository
	images         ImageSaver
	events         EventPublisher
	minCookingTime int
}

// RecipeServiceDeps groups the collaborators of a RecipeService.
type RecipeServiceDeps struct {
	Recipes        repositories.RecipeRepository
	Tags           repositories.TagRepository
	Favorites      repositories.RecipeMarkRepository
	Cart           repositories.RecipeMarkRepository
	Follows        repositories.FollowRepository
	Images         ImageSaver
	Events         EventPublisher
	MinCookingTime int
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(deps RecipeServiceDeps) *RecipeService {
	if deps.MinCookingTime < 1 {
		deps.MinCookingTime = 1
	}
	return &RecipeService{
		recipes:        deps.Recipes,
		tags:           deps.Tags,
		favorites:      deps.Favorites,
		cart:           deps.Cart,
		follows:        deps.Follows,
		images:         deps.Images,
		events:         deps.Events,
		minCookingTime: deps.MinCookingTime,
	}
}

// List returns one page of recipes matching q and the total number of matches.
// The favorited and cart filters only apply to authenticated requesters.
func (s *RecipeService) List(ctx context.Context, req Requester, q RecipeQuery) ([]RecipeView, int64, error) {
	if err := s.checkTagSlugs(ctx, q.Tags); err != nil {
		return nil, 0, err
	}

	filter := repositories.RecipeFilter{AuthorID: q.AuthorID, TagSlugs: q.Tags}
	if !req.Anonymous() {
		if q.IsFavorited {
			filter.FavoritedBy = req.UserID
		}
		if q.IsInShoppingCart {
			filter.InCartOf = req.UserID
		}
	}

	recipes, total, err := s.recipes.List(ctx, filter, q.Page)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.views(ctx, req, recipes)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *RecipeService) checkTagSlugs(ctx context.Context, slugs []string) error {
	if len(slugs) == 0 {
		return nil
	}
	found, err := s.tags.GetBySlugs(ctx, slugs)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(found))
	for _, t := range found {
		known[t.Slug] = struct{}{}
	}
	for _, slug := range slugs {
		if _, ok := known[slug]; !ok {
			return apperrors.Validation("tags", "unknown tag %q", slug)
		}
	}
	return nil
}

// Get returns one recipe as seen by req.
func (s *RecipeService) Get(ctx context.Context, req Requester, id uint) (*RecipeView, error) {
	recipe, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, req, []models.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Create validates in, stores the image and writes the recipe with its composition.
func (s *RecipeService) Create(ctx context.Context, req Requester, in RecipeInput) (*RecipeView, error) {
	if req.Anonymous() {
		return nil, apperrors.Forbidden("authentication required")
	}
	if in.Image == "" {
		return nil, apperrors.Validation("image", "image is required")
	}
	if err := s.validate(in); err != nil {
		return nil, err
	}

	image, err := s.images.Save(ctx, in.Image)
	if err != nil {
		return nil, err
	}
	recipe := &models.Recipe{
		AuthorID:    req.UserID,
		Name:        in.Name,
		Image:       image,
		Description: in.Text,
		CookingTime: in.CookingTime,
	}
	if err := s.recipes.Create(ctx, recipe, composition(in)); err != nil {
		return nil, err
	}

	publish(s.events, EventRecipeCreated, map[string]interface{}{"recipe_id": recipe.ID, "author_id": req.UserID})
	return s.Get(ctx, req, recipe.ID)
}

// Update replaces the content of a recipe. Only its author may do so.
func (s *RecipeService) Update(ctx context.Context, req Requester, id uint, in RecipeInput) (*RecipeView, error) {
	recipe, err := s.ownRecipe(ctx, req, id, "change")
	if err != nil {
		return nil, err
	}
	if err := s.validate(in); err != nil {
		return nil, err
	}

	if in.Image != "" {
		image, err := s.images.Save(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		recipe.Image = image
	}
	recipe.Name = in.Name
	recipe.Description = in.Text
	recipe.CookingTime = in.CookingTime
	if err := s.recipes.Update(ctx, recipe, composition(in)); err != nil {
		return nil, err
	}

	publish(s.events, EventRecipeUpdated, map[string]interface{}{"recipe_id": id, "author_id": req.UserID})
	return s.Get(ctx, req, id)
}

// Delete removes a recipe. Only its author may do so.
func (s *RecipeService) Delete(ctx context.Context, req Requester, id uint) error {
	if _, err := s.ownRecipe(ctx, req, id, "delete"); err != nil {
		return err
	}
	if err := s.recipes.Delete(ctx, id); err != nil {
		return err
	}
	publish(s.events, EventRecipeDeleted, map[string]interface{}{"recipe_id": id, "author_id": req.UserID})
	return nil
}

func (s *RecipeService) ownRecipe(ctx context.Context, req Requester, id uint, action string) (*models.Recipe, error) {
	if req.Anonymous() {
		return nil, apperrors.Forbidden("authentication required")
	}
	recipe, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != req.UserID {
		return nil, apperrors.Forbidden("only the author can %s recipe %d", action, id)
	}
	return recipe, nil
}

func (s *RecipeService) validate(in RecipeInput) error {
	if in.Name == "" {
		return apperrors.Validation("name", "name is required")
	}
	if in.Text == "" {
		return apperrors.Validation("text", "text is required")
	}
	if in.CookingTime < s.minCookingTime {
		return apperrors.Validation("cooking_time", "cooking time must be at least %d", s.minCookingTime)
	}
	if len(in.Ingredients) == 0 {
		return apperrors.Validation("ingredients", "at least one ingredient is required")
	}
	for _, item := range in.Ingredients {
		if item.Amount < 1 {
			return apperrors.Validation("ingredients", "amount of ingredient %d must be at least 1", item.IngredientID)
		}
	}
	if len(in.Tags) == 0 {
		return apperrors.Validation("tags", "at least one tag is required")
	}
	return nil
}

func composition(in RecipeInput) models.Composition {
	return models.Composition{Ingredients: in.Ingredients, TagIDs: in.Tags}
}

// views materializes recipes with the requester's favorite, cart and
// subscription flags. Anonymous requesters get every flag false.
func (s *RecipeService) views(ctx context.Context, req Requester, recipes []models.Recipe) ([]RecipeView, error) {
	recipeIDs := make([]uint, 0, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	favorited, err := s.favorites.MarkedAmong(ctx, req.UserID, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to compute favorites: %w", err)
	}
	inCart, err := s.cart.MarkedAmong(ctx, req.UserID, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to compute shopping cart: %w", err)
	}
	following, err := s.follows.FollowingAmong(ctx, req.UserID, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to compute subscriptions: %w", err)
	}

	views := make([]RecipeView, 0, len(recipes))
	for _, r := range recipes {
		tags := make([]models.Tag, 0, len(r.Tags))
		for _, link := range r.Tags {
			tags = append(tags, link.Tag)
		}
		ingredients := make([]RecipeIngredientView, 0, len(r.Ingredients))
		for _, line := range r.Ingredients {
			ingredients = append(ingredients, RecipeIngredientView{
				ID:              line.IngredientID,
				Name:            line.Ingredient.Name,
				MeasurementUnit: line.Ingredient.MeasurementUnit,
				Amount:          line.Amount,
			})
		}
		views = append(views, RecipeView{
			ID:               r.ID,
			Tags:             tags,
			Author:           newUserView(r.Author, following[r.AuthorID]),
			Ingredients:      ingredients,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Description,
			CookingTime:      r.CookingTime,
		})
	}
	return views, nil
}
