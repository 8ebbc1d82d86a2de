package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func bimodalImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(30)
			if x >= w/2 {
				v = 220
			}
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func TestOtsuSeparatesBimodal(t *testing.T) {
	out := OtsuThreshold(bimodalImage(100, 50))

	// Sample away from the split so window effects cannot interfere.
	dark := out.NRGBAAt(10, 25)
	light := out.NRGBAAt(90, 25)
	assert.Equal(t, uint8(0), dark.R)
	assert.Equal(t, uint8(255), light.R)
}

func TestOtsuOutputIsBinary(t *testing.T) {
	out := OtsuThreshold(bimodalImage(60, 60))

	for y := 0; y < 60; y++ {
		for x := 0; x < 60; x++ {
			v := out.NRGBAAt(x, y).R
			assert.True(t, v == 0 || v == 255, "pixel (%d,%d) = %d", x, y, v)
		}
	}
}

func TestAdaptiveMeanThresholdUniformImage(t *testing.T) {
	img := solidImage(80, 80, color.NRGBA{R: 128, G: 128, B: 128, A: 255})

	out := AdaptiveMeanThreshold(img, 11, 2)

	// Every pixel sits above its local mean minus the offset.
	assert.Equal(t, uint8(255), out.NRGBAAt(40, 40).R)
	assert.Equal(t, uint8(255), out.NRGBAAt(0, 0).R)
}

func TestIntensityStatsUniform(t *testing.T) {
	img := solidImage(50, 50, color.NRGBA{R: 128, G: 128, B: 128, A: 255})

	mean, std := IntensityStats(img)

	assert.InDelta(t, 128, mean, 2)
	assert.InDelta(t, 0, std, 0.5)
}

func TestIntensityStatsBimodal(t *testing.T) {
	_, std := IntensityStats(bimodalImage(100, 100))

	assert.Greater(t, std, 50.0)
}

func TestAutoDetectParamsDarkImage(t *testing.T) {
	dark := solidImage(100, 100, color.NRGBA{R: 40, G: 40, B: 40, A: 255})

	p := AutoDetectParams(dark, "")

	assert.Equal(t, 15.0, p.Brightness)
	assert.GreaterOrEqual(t, p.Contrast, 120.0)
}

func TestAutoDetectParamsBrightImage(t *testing.T) {
	bright := solidImage(100, 100, color.NRGBA{R: 240, G: 240, B: 240, A: 255})

	p := AutoDetectParams(bright, "")

	assert.Equal(t, -10.0, p.Brightness)
}

func TestAutoDetectParamsHandwritingHint(t *testing.T) {
	img := solidImage(100, 100, color.NRGBA{R: 128, G: 128, B: 128, A: 255})

	p := AutoDetectParams(img, "handwriting")

	assert.Zero(t, p.Sharpen)
	assert.LessOrEqual(t, p.Contrast, 110.0)
}

func TestCleanBinaryRemovesIsolatedPixel(t *testing.T) {
	img := solidImage(30, 30, color.NRGBA{A: 255})
	img.SetNRGBA(15, 15, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	out := CleanBinary(img)

	assert.Equal(t, uint8(0), out.NRGBAAt(15, 15).R, "lone bright pixel should be opened away")
}
