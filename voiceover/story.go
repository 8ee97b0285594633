package voiceover

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"google.golang.org/genai"
)

// DefaultStoryModel is the Gemini model used to write narrations.
const DefaultStoryModel = "gemini-2.5-flash"

const storyPromptTemplate = `You are a storyteller. You are given prompts users used to generate a comic and you need to create a narration for it. Keep it short and fun.
The prompts are: %s

Please respond with a JSON object containing the generated story narration.`

// Story is the narration payload returned to the client.
type Story struct {
	Story string `json:"story"`
	Error string `json:"error,omitempty"`
}

// StoryGenerator turns panel prompts into a short narration.
type StoryGenerator struct {
	client *genai.Client
	model  string
	logger Logger
}

// NewStoryGenerator creates a generator backed by the Google GenAI API.
func NewStoryGenerator(ctx context.Context, apiKey, model string) (*StoryGenerator, error) {
	if apiKey == "" {
		return nil, goerrors.New("google api key is required", goerrors.CategoryBadInput)
	}

	if model == "" {
		model = DefaultStoryModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to create genai client")
	}

	return &StoryGenerator{
		client: client,
		model:  model,
		logger: defLogger{},
	}, nil
}

func (g *StoryGenerator) WithLogger(logger Logger) *StoryGenerator {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// GenerateStory narrates the given comic prompts. Model failures fall
// back to a canned story so the client always gets something to read.
func (g *StoryGenerator) GenerateStory(ctx context.Context, prompts string) Story {
	contents := []*genai.Content{
		genai.NewContentFromText(fmt.Sprintf(storyPromptTemplate, prompts), genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		g.logger.Error("story generation failed: %v", err)
		return Story{
			Story: fmt.Sprintf("Once upon a time, there was a story about: %s", prompts),
			Error: "Failed to generate custom story",
		}
	}

	return parseStory(result.Text())
}

// parseStory handles both shapes the model answers with, the JSON we
// asked for or plain prose, optionally wrapped in a markdown fence.
func parseStory(text string) Story {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.ReplaceAll(text, "```json", "")
		text = strings.ReplaceAll(text, "```", "")
		text = strings.TrimSpace(text)
	}

	var story Story
	if err := json.Unmarshal([]byte(text), &story); err == nil && story.Story != "" {
		return story
	}

	return Story{Story: text}
}
