package handlers

import (
	"context"

	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// RecipeHandler handles HTTP requests for recipes, favorites and the shopping cart.
type RecipeHandler struct {
	recipes      *services.RecipeService
	memberships  *services.MembershipService
	shoppingList *services.ShoppingListService
	validate     *validator.Validate
	guards       Guards
	pageSize     int
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(recipes *services.RecipeService, memberships *services.MembershipService, shoppingList *services.ShoppingListService, guards Guards, pageSize int) *RecipeHandler {
	return &RecipeHandler{
		recipes:      recipes,
		memberships:  memberships,
		shoppingList: shoppingList,
		validate:     newValidator(),
		guards:       guards,
		pageSize:     pageSize,
	}
}

// RegisterRoutes registers the recipe routes with the Fiber app.
func (h *RecipeHandler) RegisterRoutes(router fiber.Router) {
	recipeRoutes := router.Group("/recipes")
	recipeRoutes.Get("/", h.guards.Optional, h.HandleList)
	recipeRoutes.Get("/download_shopping_cart", h.guards.Required, h.HandleDownloadShoppingCart)
	recipeRoutes.Get("/:id", h.guards.Optional, h.HandleGet)
	recipeRoutes.Post("/", withHandler(h.guards.write(), h.HandleCreate)...)
	recipeRoutes.Patch("/:id", withHandler(h.guards.write(), h.HandleUpdate)...)
	recipeRoutes.Delete("/:id", withHandler(h.guards.write(), h.HandleDelete)...)
	recipeRoutes.Post("/:id/favorite", withHandler(h.guards.write(), h.HandleAddFavorite)...)
	recipeRoutes.Delete("/:id/favorite", withHandler(h.guards.write(), h.HandleRemoveFavorite)...)
	recipeRoutes.Post("/:id/shopping_cart", withHandler(h.guards.write(), h.HandleAddToCart)...)
	recipeRoutes.Delete("/:id/shopping_cart", withHandler(h.guards.write(), h.HandleRemoveFromCart)...)

	router.Get("/favorites", h.guards.Required, h.HandleListFavorites)
	router.Get("/shopping_cart", h.guards.Required, h.HandleListCart)
}

// IngredientAmountRequest is one ingredient line of a recipe payload.
type IngredientAmountRequest struct {
	ID     uint `json:"id" validate:"required"`
	Amount int  `json:"amount"`
}

// RecipeRequest is the body of recipe create and update requests.
type RecipeRequest struct {
	Ingredients []IngredientAmountRequest `json:"ingredients" validate:"dive"`
	Tags        []uint                    `json:"tags"`
	Image       string                    `json:"image"`
	Name        string                    `json:"name" validate:"max=200"`
	Text        string                    `json:"text"`
	CookingTime int                       `json:"cooking_time"`
}

func (r RecipeRequest) input() services.RecipeInput {
	ingredients := make([]models.IngredientAmount, 0, len(r.Ingredients))
	for _, item := range r.Ingredients {
		ingredients = append(ingredients, models.IngredientAmount{IngredientID: item.ID, Amount: item.Amount})
	}
	return services.RecipeInput{
		Name:        r.Name,
		Text:        r.Text,
		CookingTime: r.CookingTime,
		Image:       r.Image,
		Ingredients: ingredients,
		Tags:        r.Tags,
	}
}

// parseRecipe decodes and validates the body. When ok is false the error
// response has already been written.
func (h *RecipeHandler) parseRecipe(c *fiber.Ctx) (req RecipeRequest, ok bool, err error) {
	if err := c.BodyParser(&req); err != nil {
		return req, false, badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return req, false, validationFailed(c, err)
	}
	return req, true, nil
}

// HandleList returns one page of recipes.
// Query: author, tags (repeatable), is_favorited, is_in_shopping_cart, page, limit.
func (h *RecipeHandler) HandleList(c *fiber.Ctx) error {
	page, err := parsePage(c, h.pageSize)
	if err != nil {
		return respondError(c, err)
	}
	authorID, err := queryID(c, "author")
	if err != nil {
		return respondError(c, err)
	}

	query := services.RecipeQuery{
		AuthorID:         authorID,
		IsFavorited:      queryBool(c, "is_favorited"),
		IsInShoppingCart: queryBool(c, "is_in_shopping_cart"),
		Page:             page.repo(),
	}
	for _, slug := range c.Request().URI().QueryArgs().PeekMulti("tags") {
		query.Tags = append(query.Tags, string(slug))
	}

	recipes, total, err := h.recipes.List(c.UserContext(), middleware.Requester(c), query)
	if err != nil {
		return respondError(c, err)
	}
	return paginated(c, recipes, total, page)
}

// HandleGet returns one recipe.
func (h *RecipeHandler) HandleGet(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	recipe, err := h.recipes.Get(c.UserContext(), middleware.Requester(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recipe)
}

// HandleCreate publishes a new recipe.
func (h *RecipeHandler) HandleCreate(c *fiber.Ctx) error {
	req, ok, err := h.parseRecipe(c)
	if !ok {
		return err
	}
	recipe, err := h.recipes.Create(c.UserContext(), middleware.Requester(c), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(recipe)
}

// HandleUpdate replaces the content of a recipe. The image may be omitted.
func (h *RecipeHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	req, ok, err := h.parseRecipe(c)
	if !ok {
		return err
	}
	recipe, err := h.recipes.Update(c.UserContext(), middleware.Requester(c), id, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recipe)
}

// HandleDelete removes a recipe.
func (h *RecipeHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.recipes.Delete(c.UserContext(), middleware.Requester(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *RecipeHandler) HandleAddFavorite(c *fiber.Ctx) error {
	return h.toggleOn(c, h.memberships.AddFavorite)
}

func (h *RecipeHandler) HandleRemoveFavorite(c *fiber.Ctx) error {
	return h.toggleOff(c, h.memberships.RemoveFavorite)
}

func (h *RecipeHandler) HandleAddToCart(c *fiber.Ctx) error {
	return h.toggleOn(c, h.memberships.AddToCart)
}

func (h *RecipeHandler) HandleRemoveFromCart(c *fiber.Ctx) error {
	return h.toggleOff(c, h.memberships.RemoveFromCart)
}

func (h *RecipeHandler) HandleListFavorites(c *fiber.Ctx) error {
	return h.listMarked(c, h.memberships.ListFavorites)
}

func (h *RecipeHandler) HandleListCart(c *fiber.Ctx) error {
	return h.listMarked(c, h.memberships.ListCart)
}

func (h *RecipeHandler) toggleOn(c *fiber.Ctx, add func(context.Context, services.Requester, uint) (*services.RecipeInfo, error)) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	info, err := add(c.UserContext(), middleware.Requester(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(info)
}

func (h *RecipeHandler) toggleOff(c *fiber.Ctx, remove func(context.Context, services.Requester, uint) error) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := remove(c.UserContext(), middleware.Requester(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *RecipeHandler) listMarked(c *fiber.Ctx, list func(context.Context, services.Requester) ([]services.RecipeInfo, error)) error {
	recipes, err := list(c.UserContext(), middleware.Requester(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recipes)
}

// HandleDownloadShoppingCart sends the aggregated shopping list as an attachment.
func (h *RecipeHandler) HandleDownloadShoppingCart(c *fiber.Ctx) error {
	list, err := h.shoppingList.Download(c.UserContext(), middleware.Requester(c))
	if err != nil {
		return respondError(c, err)
	}
	c.Attachment(list.Filename)
	c.Set(fiber.HeaderContentType, list.ContentType)
	return c.Send(list.Content)
}
