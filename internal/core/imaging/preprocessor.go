package imaging

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
)

// Preprocessor prepares raw image bytes for recognition. All
// operations are pure: the input image is never mutated and every
// step returns a new frame.
type Preprocessor struct{}

func NewPreprocessor() *Preprocessor {
	return &Preprocessor{}
}

// Decode parses raw image bytes. PNG, JPEG, GIF, TIFF and BMP are
// accepted; anything else is a decode error for the caller to surface.
func (p *Preprocessor) Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Process runs the enhancement chain described by params: crop to the
// document outline, resize into the working range, grayscale, denoise,
// brightness/contrast, sharpen and optionally binarize. Each stage
// feeds the next.
func (p *Preprocessor) Process(img image.Image, params Params) image.Image {
	out := img
	if params.CropDocument {
		if r, ok := DetectDocumentBounds(out); ok {
			out = imaging.Crop(out, r)
		}
	}
	out = p.normalizeSize(out, params.MinWidth, params.MaxWidth, params.MinLongSide)

	if params.Grayscale {
		out = imaging.Grayscale(out)
	}
	if params.Denoise {
		// Mild blur suppresses sensor noise without eating thin strokes.
		out = imaging.Blur(out, 0.6)
	}
	if params.Brightness != 0 {
		out = imaging.AdjustBrightness(out, params.Brightness)
	}
	if params.Contrast != 100 {
		out = imaging.AdjustContrast(out, params.Contrast-100)
	}
	if params.Sharpen > 0 {
		out = imaging.Sharpen(out, params.Sharpen/20)
	}
	if params.Binarize {
		if params.GlobalThreshold {
			out = CleanBinary(OtsuThreshold(out))
		} else {
			out = CleanBinary(AdaptiveMeanThreshold(out, 11, 2))
		}
	}
	return out
}

// ProcessAuto picks parameters from image statistics and runs Process.
func (p *Preprocessor) ProcessAuto(img image.Image, docHint string) image.Image {
	params := AutoDetectParams(img, docHint)
	log.Debug().
		Float64("brightness", params.Brightness).
		Float64("contrast", params.Contrast).
		Float64("sharpen", params.Sharpen).
		Msg("auto-detected preprocessing parameters")
	return p.Process(img, params)
}

// PrepareDigits applies the aggressive chain used for numeric
// displays such as utility meters: heavy upscale, double sharpen and
// adaptive binarization. Seven-segment glyphs survive this treatment;
// ordinary text usually does not, so callers should reserve it for
// digits-only extraction.
func (p *Preprocessor) PrepareDigits(img image.Image) image.Image {
	out := img
	// Meter displays are wide and short; scale on height so the digit
	// strokes themselves gain resolution, not just the margins.
	if out.Bounds().Dy() < 1200 {
		out = imaging.Resize(out, 0, 1200, imaging.Lanczos)
	}
	out = imaging.Grayscale(out)
	out = imaging.AdjustContrast(out, 40)
	out = imaging.Sharpen(out, 1.5)
	out = imaging.Sharpen(out, 1.5)
	return CleanBinary(AdaptiveMeanThreshold(out, 11, 2))
}

// normalizeSize scales the image so its width lands inside
// [minWidth, maxWidth] and its longer dimension reaches minLongSide,
// preserving aspect ratio. A zero bound is ignored.
func (p *Preprocessor) normalizeSize(img image.Image, minWidth, maxWidth, minLongSide int) image.Image {
	out := img
	w := out.Bounds().Dx()
	switch {
	case minWidth > 0 && w < minWidth:
		out = imaging.Resize(out, minWidth, 0, imaging.Lanczos)
	case maxWidth > 0 && w > maxWidth:
		out = imaging.Resize(out, maxWidth, 0, imaging.Lanczos)
	}

	w, h := out.Bounds().Dx(), out.Bounds().Dy()
	if minLongSide > 0 && w < minLongSide && h < minLongSide {
		if w >= h {
			out = imaging.Resize(out, minLongSide, 0, imaging.Lanczos)
		} else {
			out = imaging.Resize(out, 0, minLongSide, imaging.Lanczos)
		}
	}
	return out
}

// EncodeForUpload serializes an image for a size-limited HTTP upload.
// It walks JPEG quality down from 90 to 70 until the payload fits in
// maxBytes, then falls back to PNG, which at least keeps binarized
// frames lossless. Returns the bytes and the file extension used.
func (p *Preprocessor) EncodeForUpload(img image.Image, maxBytes int) ([]byte, string, error) {
	for quality := 90; quality >= 70; quality -= 10 {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return nil, "", fmt.Errorf("failed to encode jpeg: %w", err)
		}
		if maxBytes <= 0 || buf.Len() <= maxBytes {
			return buf.Bytes(), "jpg", nil
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, "", fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), "png", nil
}
