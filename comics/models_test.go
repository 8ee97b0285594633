package comics_test

import (
	"fmt"
	"testing"

	"github.com/JamieOgun/PixelPanel/comics"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPanelStoragePath(t *testing.T) {
	userID := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	comicID := uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")

	got := comics.PanelStoragePath(userID, comicID, 3)
	want := fmt.Sprintf("users/%s/comics/%s/panel_3.png", userID, comicID)
	assert.Equal(t, want, got)
}

func TestCompositeStoragePath(t *testing.T) {
	userID := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	comicID := uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")

	got := comics.CompositeStoragePath(userID, comicID)
	want := fmt.Sprintf("users/%s/comics/%s/comic_full.png", userID, comicID)
	assert.Equal(t, want, got)
}

func TestCompositePanelNumberIsReserved(t *testing.T) {
	// Real panels start at 1; slot 0 holds the stitched sheet.
	assert.Equal(t, 0, comics.CompositePanelNumber)
}
