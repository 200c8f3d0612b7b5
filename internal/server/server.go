// Package server assembles the Fiber application: repositories, services,
// handlers and middleware wired from one Config.
package server

import (
	"time"

	"foodgram/internal/config"
	"foodgram/internal/handlers"
	"foodgram/internal/logging"
	"foodgram/internal/metrics"
	"foodgram/internal/middleware"
	"foodgram/internal/repositories"
	"foodgram/internal/services"
	"foodgram/internal/storage"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the external resources the application runs against.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	// Media receives uploaded recipe images.
	Media storage.Backend
	// Events is optional. Nil disables event publication.
	Events services.EventPublisher
	// Redis is optional. Nil disables rate limiting of write routes.
	Redis redis.Cmdable
	// Quiet disables the request log, e.g. in tests.
	Quiet bool
}

// Services exposes the assembled services for callers outside HTTP, such as
// the load-data command.
type Services struct {
	Auth          *services.AuthService
	Users         *services.UserService
	Recipes       *services.RecipeService
	Memberships   *services.MembershipService
	Subscriptions *services.SubscriptionService
	ShoppingList  *services.ShoppingListService
	Catalog       *services.CatalogService
}

// NewServices wires repositories into services.
func NewServices(deps Deps) *Services {
	cfg := deps.Config

	userRepo := repositories.NewGORMUserRepository(deps.DB)
	recipeRepo := repositories.NewGORMRecipeRepository(deps.DB)
	tagRepo := repositories.NewGORMTagRepository(deps.DB)
	ingredientRepo := repositories.NewGORMIngredientRepository(deps.DB)
	favoriteRepo := repositories.NewGORMFavoriteRepository(deps.DB)
	cartRepo := repositories.NewGORMShoppingCartRepository(deps.DB)
	followRepo := repositories.NewGORMFollowRepository(deps.DB)

	return &Services{
		Auth:  services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL),
		Users: services.NewUserService(userRepo, followRepo),
		Recipes: services.NewRecipeService(services.RecipeServiceDeps{
			Recipes:        recipeRepo,
			Tags:           tagRepo,
			Favorites:      favoriteRepo,
			Cart:           cartRepo,
			Follows:        followRepo,
			Images:         storage.NewImageStore(deps.Media),
			Events:         deps.Events,
			MinCookingTime: cfg.MinCookingTime,
		}),
		Memberships:   services.NewMembershipService(recipeRepo, favoriteRepo, cartRepo, deps.Events),
		Subscriptions: services.NewSubscriptionService(userRepo, recipeRepo, followRepo, deps.Events),
		ShoppingList:  services.NewShoppingListService(cartRepo, cfg.ShoppingListFilename, cfg.ShoppingListContentType),
		Catalog:       services.NewCatalogService(tagRepo, ingredientRepo, repositories.NewGORMCatalogImporter(deps.DB)),
	}
}

// NewApp builds the HTTP application. API routes live under /api.
func NewApp(deps Deps) *fiber.App {
	cfg := deps.Config
	svc := NewServices(deps)

	app := fiber.New(fiber.Config{
		AppName:     "foodgram",
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})

	app.Use(recover.New())
	if !deps.Quiet {
		app.Use(logger.New())
	}
	app.Use(metrics.Middleware())

	guards := handlers.Guards{
		Required: middleware.AuthRequired(svc.Auth),
		Optional: middleware.OptionalAuth(svc.Auth),
	}
	if deps.Redis != nil {
		limiter := middleware.NewRateLimiter(deps.Redis, middleware.RateLimitConfig{
			Window: cfg.RateWindow,
			Limit:  cfg.RateLimit,
		})
		guards.WriteLimit = limiter.Handler()
		logging.Info().Int("limit", cfg.RateLimit).Dur("window", cfg.RateWindow).Msg("rate limiting enabled")
	}

	api := app.Group("/api")
	handlers.NewAuthHandler(svc.Auth, guards).RegisterRoutes(api)
	handlers.NewUserHandler(svc.Users, svc.Subscriptions, guards, cfg.PageSize).RegisterRoutes(api)
	handlers.NewCatalogHandler(svc.Catalog).RegisterRoutes(api)
	handlers.NewRecipeHandler(svc.Recipes, svc.Memberships, svc.ShoppingList, guards, cfg.PageSize).RegisterRoutes(api)

	if cfg.MediaBackend == "local" {
		app.Static(cfg.MediaURL, cfg.MediaRoot)
	}

	app.Get("/health", healthHandler(deps))
	app.Get("/metrics", metrics.Handler())

	return app
}

func healthHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := fiber.StatusOK
		body := fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "connected",
			"broker":   "disabled",
		}
		if deps.Events != nil {
			body["broker"] = "connected"
		}

		sqlDB, err := deps.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			status = fiber.StatusServiceUnavailable
			body["status"] = "unhealthy"
			body["database"] = err.Error()
		}
		return c.Status(status).JSON(body)
	}
}
