package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"foodgram/internal/apperrors"
	"foodgram/internal/logging"
	"foodgram/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Guards are the middleware a handler attaches to its routes. A nil
// WriteLimit disables rate limiting.
type Guards struct {
	Required   fiber.Handler
	Optional   fiber.Handler
	WriteLimit fiber.Handler
}

func (g Guards) write() []fiber.Handler {
	if g.WriteLimit == nil {
		return []fiber.Handler{g.Required}
	}
	return []fiber.Handler{g.Required, g.WriteLimit}
}

func withHandler(chain []fiber.Handler, h fiber.Handler) []fiber.Handler {
	return append(append([]fiber.Handler{}, chain...), h)
}

// respondError maps the application error vocabulary onto HTTP statuses.
func respondError(c *fiber.Ctx, err error) error {
	var validationErr *apperrors.ValidationError
	var notFoundErr *apperrors.NotFoundError
	switch {
	case errors.As(err, &validationErr):
		field := validationErr.Field
		if field == "" {
			field = "non_field_errors"
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  map[string]string{field: validationErr.Message},
		})
	case errors.As(err, &notFoundErr):
		status := fiber.StatusNotFound
		if notFoundErr.Membership {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(fiber.Map{
			"message": "Not found",
			"error":   notFoundErr.Message,
		})
	case apperrors.IsConflict(err):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Conflict",
			"error":   err.Error(),
		})
	case apperrors.IsPermission(err):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Permission denied",
			"error":   err.Error(),
		})
	}

	logging.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal server error",
	})
}

func badBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

// validationFailed renders validator errors as a field -> message map.
func validationFailed(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return badBody(c, err)
	}
	errorMessages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON names so clients see the fields they sent.
	v.RegisterTagNameFunc(jsonFieldName)
	return v
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.Validation(name, "must be a positive integer")
	}
	return uint(id), nil
}

// queryID reads an optional positive id from the query string. Absent means 0.
func queryID(c *fiber.Ctx, key string) (uint, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.Validation(key, "must be a positive integer")
	}
	return uint(id), nil
}

func queryBool(c *fiber.Ctx, key string) bool {
	switch c.Query(key) {
	case "1", "true", "True":
		return true
	}
	return false
}

const (
	// maxPageSize caps ?limit=; larger values are clamped, not rejected.
	maxPageSize = 100
	// maxPageNumber keeps the row offset within an int32.
	maxPageNumber = math.MaxInt32 / maxPageSize
)

// pageRequest is a 1-based page number and its size.
type pageRequest struct {
	Number int
	Size   int
}

func (p pageRequest) repo() repositories.Page {
	return repositories.Page{Offset: (p.Number - 1) * p.Size, Limit: p.Size}
}

func parsePage(c *fiber.Ctx, defaultSize int) (pageRequest, error) {
	p := pageRequest{Number: c.QueryInt("page", 1), Size: c.QueryInt("limit", defaultSize)}
	if p.Number < 1 || p.Number > maxPageNumber {
		return p, apperrors.Validation("page", "must be an integer between 1 and %d", maxPageNumber)
	}
	if p.Size < 1 {
		return p, apperrors.Validation("limit", "must be a positive integer")
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return p, nil
}

// paginated wraps one page of results in the {count, next, previous, results} envelope.
func paginated(c *fiber.Ctx, results interface{}, total int64, p pageRequest) error {
	var next, previous interface{}
	if int64(p.Number*p.Size) < total {
		next = pageURL(c, p.Number+1)
	}
	if p.Number > 1 {
		previous = pageURL(c, p.Number-1)
	}
	return c.JSON(fiber.Map{
		"count":    total,
		"next":     next,
		"previous": previous,
		"results":  results,
	})
}

func pageURL(c *fiber.Ctx, number int) string {
	query := url.Values{}
	c.Request().URI().QueryArgs().VisitAll(func(key, value []byte) {
		query.Add(string(key), string(value))
	})
	query.Set("page", strconv.Itoa(number))
	return c.BaseURL() + c.Path() + "?" + query.Encode()
}
