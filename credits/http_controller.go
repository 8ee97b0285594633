package credits

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/JamieOgun/PixelPanel/auth"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPController serves the credits JSON API. Routes expect the JWT
// middleware to have stored claims in the request locals.
type HTTPController struct {
	service    *Service
	contextKey string
}

// NewHTTPController builds a credits controller.
func NewHTTPController(service *Service, contextKey string) *HTTPController {
	if contextKey == "" {
		contextKey = "user"
	}
	return &HTTPController{
		service:    service,
		contextKey: contextKey,
	}
}

// RegisterRoutes mounts the credits API. The provided middleware should be
// the authenticated route guard.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar, protected router.MiddlewareFunc) {
	group.Get("/api/credits", c.GetBalance, protected)
	group.Get("/api/credits/name", c.GetName, protected)
	group.Post("/api/credits/name", c.UpdateName, protected)
}

func (c *HTTPController) currentUser(ctx router.Context) (uuid.UUID, error) {
	id, ok := auth.UserUUIDFromRouter(ctx, c.contextKey)
	if !ok {
		return uuid.Nil, auth.ErrUnableToFindSession
	}
	return uuid.Parse(id)
}

// GetBalance returns the caller's credit balance.
func (c *HTTPController) GetBalance(ctx router.Context) error {
	userID, err := c.currentUser(ctx)
	if err != nil {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "invalid session",
		})
	}

	balance, err := c.service.GetCredits(ctx.Context(), userID)
	if err != nil {
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"credits": balance,
	})
}

// GetName returns the caller's profile name.
func (c *HTTPController) GetName(ctx router.Context) error {
	userID, err := c.currentUser(ctx)
	if err != nil {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "invalid session",
		})
	}

	name, err := c.service.GetName(ctx.Context(), userID)
	if err != nil {
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"name": name,
	})
}

// UpdateNamePayload is the profile rename payload
type UpdateNamePayload struct {
	Name string `form:"name" json:"name"`
}

// Validate will run validation rules
func (r UpdateNamePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
	)
}

// UpdateName sets the caller's profile name.
func (c *HTTPController) UpdateName(ctx router.Context) error {
	userID, err := c.currentUser(ctx)
	if err != nil {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "invalid session",
		})
	}

	payload := new(UpdateNamePayload)
	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "failed to parse body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	if err := c.service.UpdateName(ctx.Context(), userID, payload.Name); err != nil {
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"success": true,
		"name":    payload.Name,
	})
}
