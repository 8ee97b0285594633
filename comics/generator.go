package comics

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"google.golang.org/genai"
)

// DefaultImageModel is the Gemini model used for panel art.
const DefaultImageModel = "gemini-2.5-flash-image-preview"

const standardArtPrompt = "You are a comic art generator. You generate art for panels based on a reference sketch from the user. " +
	"Create clean, professional comic book style artwork that matches the reference sketch's composition and elements. " +
	"Use bold lines, clear forms, and comic book aesthetics. Maintain the same perspective, character positions, " +
	"and scene composition as shown in the reference sketch. " +
	"Fill the entire image frame with artwork - the composition should extend edge-to-edge without empty borders. " +
	"Do NOT include white borders or empty white space around the artwork unless specifically requested in the prompt."

const contextArtPrompt = "You are a comic art generator creating the next scene in a comic sequence. " +
	"You have been provided with the previous panel as context. Create a new scene that follows naturally from the context, " +
	"maintaining visual consistency in style, characters, and setting. Use the reference sketch as a guide for composition. " +
	"Create clean, professional comic book style artwork with bold lines, clear forms, and comic book aesthetics. " +
	"The new scene should feel like a natural continuation of the story. " +
	"Fill the entire image frame with artwork - the composition should extend edge-to-edge without empty borders. " +
	"Do NOT include white borders or empty white space around the artwork unless specifically requested in the prompt."

// ArtRequest describes one panel generation.
type ArtRequest struct {
	Prompt         string
	ReferenceImage []byte
	ContextImage   []byte
}

// ArtGenerator produces a PNG for a panel description.
type ArtGenerator interface {
	GenerateArt(ctx context.Context, req ArtRequest) ([]byte, error)
}

// GeminiGenerator generates panel art with the Gemini image model.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a generator backed by the Google GenAI API.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, goerrors.New("google api key is required", goerrors.CategoryBadInput)
	}

	if model == "" {
		model = DefaultImageModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to create genai client")
	}

	return &GeminiGenerator{
		client: client,
		model:  model,
	}, nil
}

// GenerateArt returns the PNG bytes for the requested panel. Image inputs
// go first so the model treats the text as the instruction.
func (g *GeminiGenerator) GenerateArt(ctx context.Context, req ArtRequest) ([]byte, error) {
	prompt := standardArtPrompt
	if len(req.ContextImage) > 0 {
		prompt = contextArtPrompt
	}

	var parts []*genai.Part

	if len(req.ContextImage) > 0 {
		parts = append(parts, genai.NewPartFromBytes(req.ContextImage, "image/png"))
	}

	if len(req.ReferenceImage) > 0 {
		parts = append(parts, genai.NewPartFromBytes(req.ReferenceImage, "image/png"))
	}

	parts = append(parts, genai.NewPartFromText(prompt+"\n\nText prompt: "+req.Prompt))

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "comic art generation failed")
	}

	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}

	return nil, goerrors.New("no image data found in response", goerrors.CategoryOperation).
		WithTextCode("NO_IMAGE_DATA")
}
