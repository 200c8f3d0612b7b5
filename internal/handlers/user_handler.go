package handlers

import (
	"foodgram/internal/middleware"
	"foodgram/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler serves user profiles and subscriptions.
type UserHandler struct {
	users         *services.UserService
	subscriptions *services.SubscriptionService
	guards        Guards
	pageSize      int
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *services.UserService, subscriptions *services.SubscriptionService, guards Guards, pageSize int) *UserHandler {
	return &UserHandler{users: users, subscriptions: subscriptions, guards: guards, pageSize: pageSize}
}

// RegisterRoutes registers the user routes. Fixed paths come before /:id.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/", h.guards.Optional, h.HandleList)
	userRoutes.Get("/me", h.guards.Required, h.HandleMe)
	userRoutes.Get("/subscriptions", h.guards.Required, h.HandleSubscriptions)
	userRoutes.Get("/:id", h.guards.Optional, h.HandleGet)
	userRoutes.Post("/:id/subscribe", withHandler(h.guards.write(), h.HandleSubscribe)...)
	userRoutes.Delete("/:id/subscribe", withHandler(h.guards.write(), h.HandleUnsubscribe)...)
}

// HandleList returns one page of users.
func (h *UserHandler) HandleList(c *fiber.Ctx) error {
	page, err := parsePage(c, h.pageSize)
	if err != nil {
		return respondError(c, err)
	}
	users, total, err := h.users.List(c.UserContext(), middleware.Requester(c), page.repo())
	if err != nil {
		return respondError(c, err)
	}
	return paginated(c, users, total, page)
}

// HandleGet returns one user.
func (h *UserHandler) HandleGet(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	user, err := h.users.Get(c.UserContext(), middleware.Requester(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// HandleMe returns the requester's profile.
func (h *UserHandler) HandleMe(c *fiber.Ctx) error {
	user, err := h.users.Me(c.UserContext(), middleware.Requester(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// HandleSubscriptions returns the authors the requester follows.
func (h *UserHandler) HandleSubscriptions(c *fiber.Ctx) error {
	page, err := parsePage(c, h.pageSize)
	if err != nil {
		return respondError(c, err)
	}
	authors, total, err := h.subscriptions.List(c.UserContext(), middleware.Requester(c), page.repo(), c.QueryInt("recipes_limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return paginated(c, authors, total, page)
}

// HandleSubscribe follows an author.
func (h *UserHandler) HandleSubscribe(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	author, err := h.subscriptions.Subscribe(c.UserContext(), middleware.Requester(c), id, c.QueryInt("recipes_limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(author)
}

// HandleUnsubscribe stops following an author.
func (h *UserHandler) HandleUnsubscribe(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.subscriptions.Unsubscribe(c.UserContext(), middleware.Requester(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
