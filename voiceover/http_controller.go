package voiceover

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPController serves the narration API.
type HTTPController struct {
	stories *StoryGenerator
	speech  *SpeechGenerator
	logger  Logger
}

// NewHTTPController builds a voiceover controller.
func NewHTTPController(stories *StoryGenerator, speech *SpeechGenerator) *HTTPController {
	return &HTTPController{
		stories: stories,
		speech:  speech,
		logger:  defLogger{},
	}
}

func (c *HTTPController) WithLogger(logger Logger) *HTTPController {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// RegisterRoutes mounts the voiceover API. The provided middleware
// should be the authenticated route guard.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar, protected router.MiddlewareFunc) {
	group.Post("/api/voice-over/generate-story", c.GenerateStory, protected)
	group.Post("/api/voice-over/generate-voiceover", c.GenerateVoiceover, protected)
}

// GenerateStoryPayload carries the comic prompts to narrate
type GenerateStoryPayload struct {
	Story string `form:"story" json:"story"`
}

// Validate will run validation rules
func (r GenerateStoryPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Story, validation.Required),
	)
}

// GenerateStory writes a short narration for the given comic prompts.
func (c *HTTPController) GenerateStory(ctx router.Context) error {
	payload := new(GenerateStoryPayload)
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

	story := c.stories.GenerateStory(ctx.Context(), payload.Story)

	return ctx.JSON(router.StatusOK, story)
}

// GenerateVoiceoverPayload carries the narration text to speak
type GenerateVoiceoverPayload struct {
	Narration string `form:"narration" json:"narration"`
}

// Validate will run validation rules
func (r GenerateVoiceoverPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Narration, validation.Required),
	)
}

// GenerateVoiceover speaks a narration and returns base64 WAV audio.
// Generation failures come back as a payload the client can inspect
// rather than an HTTP error.
func (c *HTTPController) GenerateVoiceover(ctx router.Context) error {
	payload := new(GenerateVoiceoverPayload)
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

	audio, err := c.speech.GenerateAudioBase64(ctx.Context(), payload.Narration)
	if err != nil {
		c.logger.Error("voiceover generation failed: %v", err)
		return ctx.JSON(router.StatusOK, map[string]any{
			"error": err.Error(),
			"audio": nil,
		})
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"audio": audio,
	})
}
