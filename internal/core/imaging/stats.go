package imaging

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// IntensityStats reports the mean and standard deviation of pixel
// brightness in 0..255. The image is reduced to grayscale first.
func IntensityStats(img image.Image) (mean, std float64) {
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	n := float64(b.Dx() * b.Dy())
	if n == 0 {
		return 0, 0
	}

	var sum, sumSq float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := gray.Pix[(y-b.Min.Y)*gray.Stride:]
		for x := 0; x < b.Dx(); x++ {
			v := float64(row[x*4]) // grayscale NRGBA: R == G == B
			sum += v
			sumSq += v * v
		}
	}

	mean = sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}

// AutoDetectParams inspects image statistics and picks enhancement
// parameters without knowing the document type. Dark scans get lifted,
// overexposed ones get pulled back, and low-contrast images get a
// contrast and sharpness boost.
func AutoDetectParams(img image.Image, docHint string) Params {
	mean, std := IntensityStats(img)

	p := ProfileParams("general")
	p.Denoise = true
	// Statistics-driven runs are usually phone photos, where the
	// document rarely fills the frame.
	p.CropDocument = true

	switch {
	case mean < 100:
		p.Brightness = 15
		p.Contrast = 120
	case mean > 200:
		p.Brightness = -10
		p.Contrast = 110
	}

	if std < 30 {
		if p.Contrast < 130 {
			p.Contrast = 130
		}
		if p.Sharpen < 15 {
			p.Sharpen = 15
		}
	}

	switch docHint {
	case "invoice":
		// Printed tables read best with firm contrast and some edge gain.
		if p.Contrast < 125 {
			p.Contrast = 125
		}
		if p.Sharpen < 10 {
			p.Sharpen = 10
		}
	case "handwriting":
		// Sharpening amplifies stroke noise in handwriting.
		p.Sharpen = 0
		if p.Contrast > 110 {
			p.Contrast = 110
		}
	}

	return p
}
