package comics_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/JamieOgun/PixelPanel/comics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func panelPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}

	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func decodeImage(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := comics.DecodePanel(data)
	require.NoError(t, err)
	return img
}

func TestBuildCompositeGrid(t *testing.T) {
	panels := []comics.NumberedImage{
		{Number: 1, Image: decodeImage(t, panelPNG(t, 40, 30, color.RGBA{R: 255, A: 255}))},
		{Number: 2, Image: decodeImage(t, panelPNG(t, 40, 30, color.RGBA{G: 255, A: 255}))},
		{Number: 3, Image: decodeImage(t, panelPNG(t, 40, 30, color.RGBA{B: 255, A: 255}))},
	}

	data, err := comics.BuildComposite(panels)
	require.NoError(t, err)

	sheet, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	// 3 panels in 2 columns means 2 rows
	bounds := sheet.Bounds()
	assert.Equal(t, 80, bounds.Dx())
	assert.Equal(t, 60, bounds.Dy())
}

func TestBuildCompositeOrdersByNumber(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	green := color.RGBA{G: 255, A: 255}

	// deliberately out of order
	panels := []comics.NumberedImage{
		{Number: 2, Image: decodeImage(t, panelPNG(t, 10, 10, green))},
		{Number: 1, Image: decodeImage(t, panelPNG(t, 10, 10, red))},
	}

	data, err := comics.BuildComposite(panels)
	require.NoError(t, err)

	sheet, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	r, _, _, _ := sheet.At(5, 5).RGBA()
	assert.Equal(t, uint32(0xffff), r, "panel 1 should land in the top-left cell")

	_, g, _, _ := sheet.At(15, 5).RGBA()
	assert.Equal(t, uint32(0xffff), g, "panel 2 should land in the top-right cell")
}

func TestBuildCompositeSinglePanel(t *testing.T) {
	panels := []comics.NumberedImage{
		{Number: 1, Image: decodeImage(t, panelPNG(t, 20, 20, color.White))},
	}

	data, err := comics.BuildComposite(panels)
	require.NoError(t, err)

	sheet, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 40, sheet.Bounds().Dx())
	assert.Equal(t, 20, sheet.Bounds().Dy())
}

func TestBuildCompositeEmpty(t *testing.T) {
	_, err := comics.BuildComposite(nil)
	assert.Error(t, err)
}

func TestDecodePanelRejectsGarbage(t *testing.T) {
	_, err := comics.DecodePanel([]byte("not an image"))
	assert.Error(t, err)
}
