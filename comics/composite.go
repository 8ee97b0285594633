package comics

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sort"

	goerrors "github.com/goliatone/go-errors"

	_ "image/jpeg"
)

// compositeColumns is the grid width of the full comic sheet.
const compositeColumns = 2

// NumberedImage pairs a decoded panel with its position in the comic.
type NumberedImage struct {
	Number int
	Image  image.Image
}

// BuildComposite lays the panels out on a white 2-column grid, ordered by
// panel number, and returns the sheet as PNG bytes. Panels are drawn at the
// first panel's size so mismatched panels do not skew the grid.
func BuildComposite(panels []NumberedImage) ([]byte, error) {
	if len(panels) == 0 {
		return nil, goerrors.New("no panels to composite", goerrors.CategoryBadInput)
	}

	sorted := make([]NumberedImage, len(panels))
	copy(sorted, panels)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Number < sorted[j].Number
	})

	cell := sorted[0].Image.Bounds()
	w, h := cell.Dx(), cell.Dy()

	cols := compositeColumns
	rows := (len(sorted) + cols - 1) / cols

	sheet := image.NewRGBA(image.Rect(0, 0, w*cols, h*rows))
	draw.Draw(sheet, sheet.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	for idx, panel := range sorted {
		x := (idx % cols) * w
		y := (idx / cols) * h
		target := image.Rect(x, y, x+w, y+h)
		draw.Draw(sheet, target, panel.Image, panel.Image.Bounds().Min, draw.Src)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, sheet); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode composite sheet")
	}

	return buf.Bytes(), nil
}

// DecodePanel decodes stored panel bytes into an image.
func DecodePanel(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to decode panel image")
	}
	return img, nil
}
