package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sheetOnBackground(w, h int, sheet image.Rectangle) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(20)
			if image.Pt(x, y).In(sheet) {
				v = 220
			}
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func TestDetectDocumentBoundsFindsSheet(t *testing.T) {
	sheet := image.Rect(40, 40, 160, 160)
	img := sheetOnBackground(200, 200, sheet)

	bounds, ok := DetectDocumentBounds(img)

	require.True(t, ok)
	assert.InDelta(t, sheet.Min.X, bounds.Min.X, 3)
	assert.InDelta(t, sheet.Min.Y, bounds.Min.Y, 3)
	assert.InDelta(t, sheet.Max.X, bounds.Max.X, 3)
	assert.InDelta(t, sheet.Max.Y, bounds.Max.Y, 3)
}

func TestDetectDocumentBoundsUniformImage(t *testing.T) {
	img := solidImage(200, 200, color.NRGBA{R: 128, G: 128, B: 128, A: 255})

	_, ok := DetectDocumentBounds(img)

	assert.False(t, ok)
}

func TestDetectDocumentBoundsRejectsSmallRegion(t *testing.T) {
	img := sheetOnBackground(200, 200, image.Rect(10, 10, 30, 30))

	_, ok := DetectDocumentBounds(img)

	assert.False(t, ok, "a region under a tenth of the frame is clutter, not the document")
}

func TestProcessCropsToDocument(t *testing.T) {
	p := NewPreprocessor()
	img := sheetOnBackground(400, 400, image.Rect(100, 100, 300, 300))

	out := p.Process(img, Params{Contrast: 100, CropDocument: true})

	assert.InDelta(t, 200, out.Bounds().Dx(), 4)
	assert.InDelta(t, 200, out.Bounds().Dy(), 4)
}

func TestDetectDocumentBoundsTinyImage(t *testing.T) {
	img := solidImage(2, 2, color.NRGBA{A: 255})

	_, ok := DetectDocumentBounds(img)

	assert.False(t, ok)
}
