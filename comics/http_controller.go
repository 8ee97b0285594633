package comics

import (
	"encoding/base64"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/JamieOgun/PixelPanel/auth"
	"github.com/JamieOgun/PixelPanel/credits"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPController serves the comics JSON API. Generation burns credits,
// save endpoints push images into the object store, and the context
// tracker keeps panel-to-panel continuity per user.
type HTTPController struct {
	service    *Service
	generator  ArtGenerator
	tracker    *ContextTracker
	credits    *credits.Service
	saveComic  *SaveComicHandler
	savePanel  *SavePanelHandler
	logger     Logger
	contextKey string
}

type ControllerOption func(*HTTPController)

func WithControllerLogger(logger Logger) ControllerOption {
	return func(c *HTTPController) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithContextKey(key string) ControllerOption {
	return func(c *HTTPController) {
		if key != "" {
			c.contextKey = key
		}
	}
}

// NewHTTPController builds a comics controller around the service, the
// art generator, and the credits ledger.
func NewHTTPController(
	service *Service,
	generator ArtGenerator,
	tracker *ContextTracker,
	creditsService *credits.Service,
	saveComic *SaveComicHandler,
	savePanel *SavePanelHandler,
	opts ...ControllerOption,
) *HTTPController {
	c := &HTTPController{
		service:    service,
		generator:  generator,
		tracker:    tracker,
		credits:    creditsService,
		saveComic:  saveComic,
		savePanel:  savePanel,
		logger:     defLogger{},
		contextKey: "user",
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// RegisterRoutes mounts the comics API. The provided middleware should
// be the authenticated route guard.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar, protected router.MiddlewareFunc) {
	group.Post("/api/comics/generate", c.Generate, protected)
	group.Post("/api/comics/save-comic", c.SaveComic, protected)
	group.Post("/api/comics/save-panel", c.SavePanel, protected)
	group.Post("/api/comics/reset-context", c.ResetContext, protected)
	group.Get("/api/comics", c.ListComics, protected)
	group.Get("/api/comics/:id", c.LoadComic, protected)
	group.Delete("/api/comics/:id", c.DeleteComic, protected)
}

func (c *HTTPController) currentUser(ctx router.Context) (uuid.UUID, error) {
	id, ok := auth.UserUUIDFromRouter(ctx, c.contextKey)
	if !ok {
		return uuid.Nil, auth.ErrUnableToFindSession
	}
	return uuid.Parse(id)
}

// GeneratePayload is the art generation request body
type GeneratePayload struct {
	Prompt         string `form:"prompt" json:"prompt"`
	PanelNumber    int    `form:"panel_number" json:"panel_number"`
	ReferenceImage string `form:"reference_image" json:"reference_image"`
	UseContext     bool   `form:"use_context" json:"use_context"`
}

// Validate will run validation rules
func (r GeneratePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Prompt, validation.Required, validation.Length(1, 4000)),
		validation.Field(&r.PanelNumber, validation.Required, validation.Min(1)),
	)
}

// Generate creates panel art from a text prompt. Costs one credit,
// charged only after a successful generation.
func (c *HTTPController) Generate(ctx router.Context) error {
	userID, err := c.currentUser(ctx)
	if err != nil {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "invalid session",
		})
	}

	payload := new(GeneratePayload)
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

	ok, err := c.credits.HasSufficient(ctx.Context(), userID, credits.DefaultGenerationCost)
	if err != nil {
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": "failed to check credits",
		})
	}

	if !ok {
		return ctx.JSON(router.StatusPaymentRequired, map[string]string{
			"error": "Insufficient credits. Please purchase more credits to continue.",
		})
	}

	req := ArtRequest{Prompt: payload.Prompt}

	if payload.ReferenceImage != "" {
		img, err := decodeImageData(payload.ReferenceImage)
		if err != nil {
			return ctx.JSON(router.StatusBadRequest, map[string]string{
				"error": "invalid reference image",
			})
		}
		req.ReferenceImage = img
	}

	if payload.UseContext {
		if prev, ok := c.tracker.Previous(userID.String(), payload.PanelNumber); ok {
			req.Prompt = ChainPrompt(prev, payload.Prompt)
			req.ContextImage = prev.Image
		}
	}

	image, err := c.generator.GenerateArt(ctx.Context(), req)
	if err != nil {
		c.logger.Error("art generation failed for user %s: %v", userID, err)
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": goErrorMessage(err),
		})
	}

	c.tracker.Store(userID.String(), payload.PanelNumber, PanelContext{
		Prompt: payload.Prompt,
		Image:  image,
	})

	balance, err := c.credits.DeductCredits(ctx.Context(), userID, credits.DefaultGenerationCost)
	if err != nil {
		// the art exists, charge failures only get logged
		c.logger.Error("credit deduction failed for user %s: %v", userID, err)
	}

	return ctx.JSON(router.StatusOK, generateArtResponse(image, balance, err))
}

// generateArtResponse reports the remaining balance only when the
// deduction went through, a failed charge must not read as zero credits.
func generateArtResponse(image []byte, balance int, deductErr error) map[string]any {
	body := map[string]any{
		"success":    true,
		"image_data": base64.StdEncoding.EncodeToString(image),
		"message":    "Comic art generated successfully",
	}
	if deductErr == nil {
		body["credits"] = balance
	}
	return body
}

// PanelPayload is one panel in a comic save request
type PanelPayload struct {
	PanelNumber int    `form:"panel_number" json:"panel_number"`
	ImageData   string `form:"image_data" json:"image_data"`
}

// SaveComicPayload is the full comic save body
type SaveComicPayload struct {
	Title  string         `form:"title" json:"title"`
	Panels []PanelPayload `form:"panels" json:"panels"`
}

// Validate will run validation rules
func (r SaveComicPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Panels, validation.Required),
	)
}

// SaveComic stores every panel of a comic plus the stitched sheet.
func (c *HTTPController) SaveComic(ctx router.Context) error {
	userID, err := c.currentUser(ctx)
	if err != nil {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "invalid session",
		})
	}

	payload := new(SaveComicPayload)
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

	uploads := make([]PanelUpload, 0, len(payload.Panels))
	for _, panel := range payload.Panels {
		data, err := decodeImageData(panel.ImageData)
		if err != nil {
			return ctx.JSON(router.StatusBadRequest, map[string]string{
				"error": "invalid panel image data",
			})
		}
		uploads = append(uploads, PanelUpload{
			Number: panel.PanelNumber,
			Data:   data,
		})
	}

	var resp *SaveComicResponse

	err = c.saveComic.Execute(ctx.Context(), SaveComicMessage{
		UserID: userID,
		Title:  payload.Title,
		Panels: uploads,
		OnResponse: func(r *SaveComicResponse) {
			resp = r
		},
	})
	if err != nil {
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": goErrorMessage(err),
		})
	}

	result := map[string]any{
		"success": true,
		"message": "Comic saved successfully",
	}
	if resp != nil {
		result["comic_id"] = resp.ComicID
		result["composite_public_url"] = resp.CompositeURL
	}

	return ctx.JSON(router.StatusOK, result)
}

// SavePanelPayload is the single panel save body
type SavePanelPayload struct {
	Title       string `form:"title" json:"title"`
	PanelNumber int    `form:"panel_number" json:"panel_number"`
	ImageData   string `form:"image_data" json:"image_data"`
}

// Validate will run validation rules
func (r SavePanelPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.PanelNumber, validation.Required, validation.Min(1)),
		validation.Field(&r.ImageData, validation.Required),
	)
}

// SavePanel stores one panel, creating the comic on first save.
func (c *HTTPController) SavePanel(ctx router.Context) error {
	userID, err := c.currentUser(ctx)
	if err != nil {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "invalid session",
		})
	}

	payload := new(SavePanelPayload)
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

	data, err := decodeImageData(payload.ImageData)
	if err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "invalid panel image data",
		})
	}

	var resp *SavePanelResponse

	err = c.savePanel.Execute(ctx.Context(), SavePanelMessage{
		UserID:      userID,
		Title:       payload.Title,
		PanelNumber: payload.PanelNumber,
		Data:        data,
		OnResponse: func(r *SavePanelResponse) {
			resp = r
		},
	})
	if err != nil {
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": goErrorMessage(err),
		})
	}

	result := map[string]any{
		"success": true,
		"message": "Panel saved successfully",
	}
	if resp != nil {
		result["comic_id"] = resp.ComicID
		result["panel_number"] = resp.PanelNumber
		result["public_url"] = resp.PublicURL
	}

	return ctx.JSON(router.StatusOK, result)
}

// ResetContext forgets the caller's panel continuity state.
func (c *HTTPController) ResetContext(ctx router.Context) error {
	userID, err := c.currentUser(ctx)
	if err != nil {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "invalid session",
		})
	}

	c.tracker.Reset(userID.String())

	return ctx.JSON(router.StatusOK, map[string]any{
		"success": true,
		"message": "Context reset successfully",
	})
}

// ListComics returns the caller's comics, newest first.
func (c *HTTPController) ListComics(ctx router.Context) error {
	userID, err := c.currentUser(ctx)
	if err != nil {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "invalid session",
		})
	}

	comics, err := c.service.ListComics(ctx.Context(), userID)
	if err != nil {
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": goErrorMessage(err),
		})
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"comics": comics,
	})
}

// LoadComic returns one comic with its panels.
func (c *HTTPController) LoadComic(ctx router.Context) error {
	userID, err := c.currentUser(ctx)
	if err != nil {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "invalid session",
		})
	}

	comicID, err := uuid.Parse(ctx.Param("id", ""))
	if err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "invalid comic id",
		})
	}

	comic, err := c.service.LoadComic(ctx.Context(), userID, comicID)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ctx.JSON(router.StatusNotFound, map[string]string{
				"error": "comic not found",
			})
		}
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": goErrorMessage(err),
		})
	}

	return ctx.JSON(router.StatusOK, comic)
}

// DeleteComic removes a comic, its panels, and its stored objects.
func (c *HTTPController) DeleteComic(ctx router.Context) error {
	userID, err := c.currentUser(ctx)
	if err != nil {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "invalid session",
		})
	}

	comicID, err := uuid.Parse(ctx.Param("id", ""))
	if err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "invalid comic id",
		})
	}

	if err := c.service.DeleteComic(ctx.Context(), userID, comicID); err != nil {
		if goerrors.IsNotFound(err) {
			return ctx.JSON(router.StatusNotFound, map[string]string{
				"error": "comic not found",
			})
		}
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": goErrorMessage(err),
		})
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"success": true,
		"message": "Comic deleted successfully",
	})
}

// decodeImageData accepts raw base64 or a data URL.
func decodeImageData(s string) ([]byte, error) {
	if idx := strings.Index(s, ";base64,"); idx >= 0 {
		s = s[idx+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(s)
}

// goErrorMessage surfaces the rich error message when available.
func goErrorMessage(err error) string {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Message
	}
	return err.Error()
}
