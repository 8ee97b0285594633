package billing

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/JamieOgun/PixelPanel/auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPController serves the payments API. The webhook route stays
// public, Stripe authenticates it with its signature header.
type HTTPController struct {
	service    *Service
	contextKey string
}

// NewHTTPController builds a billing controller.
func NewHTTPController(service *Service, contextKey string) *HTTPController {
	if contextKey == "" {
		contextKey = "user"
	}
	return &HTTPController{
		service:    service,
		contextKey: contextKey,
	}
}

// RegisterRoutes mounts the payments API. The provided middleware
// should be the authenticated route guard.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar, protected router.MiddlewareFunc) {
	group.Post("/api/payments/create-payment-intent", c.CreatePaymentIntent, protected)
	group.Post("/api/payments/webhook", c.Webhook)
}

func (c *HTTPController) currentUser(ctx router.Context) (uuid.UUID, error) {
	id, ok := auth.UserUUIDFromRouter(ctx, c.contextKey)
	if !ok {
		return uuid.Nil, auth.ErrUnableToFindSession
	}
	return uuid.Parse(id)
}

// CreatePaymentIntentPayload selects the credit package to buy
type CreatePaymentIntentPayload struct {
	PackageID string `form:"packageId" json:"packageId"`
}

// Validate will run validation rules
func (r CreatePaymentIntentPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PackageID, validation.Required),
	)
}

// CreatePaymentIntent starts a credit purchase for the caller.
func (c *HTTPController) CreatePaymentIntent(ctx router.Context) error {
	userID, err := c.currentUser(ctx)
	if err != nil {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "invalid session",
		})
	}

	payload := new(CreatePaymentIntentPayload)
	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "failed to parse body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"error": err.Error(),
		})
	}

	secret, err := c.service.CreatePaymentIntent(ctx.Context(), userID, payload.PackageID)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryBadInput {
			return ctx.JSON(router.StatusBadRequest, map[string]string{
				"error": richErr.Message,
			})
		}
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": "failed to create payment intent",
		})
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"clientSecret": secret,
	})
}

// Webhook receives Stripe events. Bad signatures and payloads come
// back as 400 so Stripe retries only what might succeed.
func (c *HTTPController) Webhook(ctx router.Context) error {
	err := c.service.HandleWebhook(ctx.Context(), ctx.Body(), ctx.Header("Stripe-Signature"))
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			switch richErr.Category {
			case goerrors.CategoryAuth:
				return ctx.JSON(router.StatusBadRequest, map[string]string{
					"error": "Invalid signature",
				})
			case goerrors.CategoryBadInput:
				return ctx.JSON(router.StatusBadRequest, map[string]string{
					"error": "Invalid payload",
				})
			}
		}
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": "webhook processing failed",
		})
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "success",
	})
}
