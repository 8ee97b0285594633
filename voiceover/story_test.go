package voiceover

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStoryPlainJSON(t *testing.T) {
	got := parseStory(`{"story": "A dog found a treasure map."}`)
	assert.Equal(t, "A dog found a treasure map.", got.Story)
	assert.Empty(t, got.Error)
}

func TestParseStoryFencedJSON(t *testing.T) {
	got := parseStory("```json\n{\"story\": \"A cat went to space.\"}\n```")
	assert.Equal(t, "A cat went to space.", got.Story)
}

func TestParseStoryProse(t *testing.T) {
	got := parseStory("  Once there was a frog.  ")
	assert.Equal(t, "Once there was a frog.", got.Story)
}

func TestParseStoryEmptyJSONFallsBackToText(t *testing.T) {
	// valid JSON without a story field reads as prose
	got := parseStory(`{"narration": "wrong key"}`)
	assert.Equal(t, `{"narration": "wrong key"}`, got.Story)
}
