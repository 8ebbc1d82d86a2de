package ocr

import (
	"context"
	"fmt"
	"image"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

// Request carries one recognition job to a provider. Engine selects
// an alternative cloud engine where supported; zero means the
// provider default.
type Request struct {
	Image    image.Image
	Language string
	Engine   int
}

// Result is the raw outcome of a single provider call. Confidence is
// on a 0..100 scale; conversion to the pipeline's 0..1 scale happens
// at the postprocessing boundary.
type Result struct {
	Text       string
	Confidence float64
	Provider   string
	Engine     int
	Duration   time.Duration
}

// Provider recognizes text in a single image. Implementations must
// honor ctx cancellation and return an error rather than a zero-value
// Result on failure. TestConnectivity verifies the backing engine is
// actually reachable so startup can skip providers that would fail
// every request.
type Provider interface {
	Name() string
	Recognize(ctx context.Context, req Request) (*Result, error)
	SupportedLanguages() []string
	TestConnectivity(ctx context.Context) error
}

const (
	minDimension = 100
	maxDimension = 5000
	maxAspect    = 10.0
)

// ValidateImage rejects images that no provider can read. Undersized
// frames are a hard error; oversized or extreme aspect ratios only
// warn, since recognition may still work after downscaling.
func ValidateImage(img image.Image) error {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w < minDimension || h < minDimension {
		return fmt.Errorf("%w: %dx%d, minimum %dx%d", ErrImageTooSmall, w, h, minDimension, minDimension)
	}
	if w > maxDimension || h > maxDimension {
		log.Warn().Int("width", w).Int("height", h).Msg("image exceeds recommended resolution")
	}
	aspect := float64(w) / float64(h)
	if aspect > maxAspect || aspect < 1/maxAspect {
		log.Warn().Float64("aspect", aspect).Msg("extreme aspect ratio, recognition quality may suffer")
	}
	return nil
}

// ocrSpaceLanguages maps ISO 639-1 codes to the 3-letter codes the
// cloud API and Tesseract both use.
var ocrSpaceLanguages = map[string]string{
	"es": "spa",
	"en": "eng",
	"fr": "fre",
	"de": "ger",
	"it": "ita",
	"pt": "por",
	"nl": "dut",
	"ca": "cat",
}

// mapLanguage resolves a 2-letter language code, defaulting to
// Spanish for unrecognized input.
func mapLanguage(code string) string {
	if mapped, ok := ocrSpaceLanguages[code]; ok {
		return mapped
	}
	return "spa"
}

// languageCodes lists the supported 2-letter codes in sorted order.
func languageCodes(m map[string]string) []string {
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
