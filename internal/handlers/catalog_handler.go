package handlers

import (
	"foodgram/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves tags and ingredients. Both are read-only and unpaginated.
type CatalogHandler struct {
	service *services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// RegisterRoutes registers the tag and ingredient routes.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/tags", h.HandleListTags)
	router.Get("/tags/:id", h.HandleGetTag)
	router.Get("/ingredients", h.HandleSearchIngredients)
	router.Get("/ingredients/:id", h.HandleGetIngredient)
}

func (h *CatalogHandler) HandleListTags(c *fiber.Ctx) error {
	tags, err := h.service.ListTags(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tags)
}

func (h *CatalogHandler) HandleGetTag(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	tag, err := h.service.GetTag(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tag)
}

// HandleSearchIngredients filters by the name query parameter as a prefix.
func (h *CatalogHandler) HandleSearchIngredients(c *fiber.Ctx) error {
	ingredients, err := h.service.SearchIngredients(c.UserContext(), c.Query("name"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ingredients)
}

func (h *CatalogHandler) HandleGetIngredient(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	ingredient, err := h.service.GetIngredient(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ingredient)
}
