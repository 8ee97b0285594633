package comics_test

import (
	"testing"

	"github.com/JamieOgun/PixelPanel/comics"
	"github.com/stretchr/testify/assert"
)

func TestContextTrackerPrevious(t *testing.T) {
	tracker := comics.NewContextTracker()

	tracker.Store("user-a", 1, comics.PanelContext{
		Prompt: "a dog finds a map",
		Image:  []byte{0x01},
	})
	tracker.Store("user-a", 2, comics.PanelContext{
		Prompt: "the dog follows the map",
		Image:  []byte{0x02},
	})

	prev, ok := tracker.Previous("user-a", 2)
	assert.True(t, ok)
	assert.Equal(t, "a dog finds a map", prev.Prompt)

	prev, ok = tracker.Previous("user-a", 3)
	assert.True(t, ok)
	assert.Equal(t, "the dog follows the map", prev.Prompt)
}

func TestContextTrackerFirstPanelHasNoPrevious(t *testing.T) {
	tracker := comics.NewContextTracker()
	tracker.Store("user-a", 1, comics.PanelContext{Prompt: "intro"})

	_, ok := tracker.Previous("user-a", 1)
	assert.False(t, ok)
}

func TestContextTrackerIsolatedPerUser(t *testing.T) {
	tracker := comics.NewContextTracker()
	tracker.Store("user-a", 1, comics.PanelContext{Prompt: "a story"})

	_, ok := tracker.Previous("user-b", 2)
	assert.False(t, ok)
}

func TestContextTrackerReset(t *testing.T) {
	tracker := comics.NewContextTracker()
	tracker.Store("user-a", 1, comics.PanelContext{Prompt: "a story"})
	tracker.Store("user-b", 1, comics.PanelContext{Prompt: "another story"})

	tracker.Reset("user-a")

	_, ok := tracker.Previous("user-a", 2)
	assert.False(t, ok)

	_, ok = tracker.Previous("user-b", 2)
	assert.True(t, ok, "resetting one user must not touch another")
}

func TestChainPrompt(t *testing.T) {
	prev := comics.PanelContext{Prompt: "a dog finds a map"}

	got := comics.ChainPrompt(prev, "the dog digs for treasure")
	assert.Equal(t,
		"Create the next scene using this context: a dog finds a map. the dog digs for treasure",
		got,
	)
}
