package imaging

// Params controls a single preprocessing pass. Brightness and contrast
// follow the percentage conventions of the imaging library: brightness
// is additive in -100..100, contrast is relative where 100 means
// unchanged. Sharpen of 0 disables sharpening.
type Params struct {
	Brightness float64
	Contrast   float64
	Sharpen    float64
	Denoise    bool
	Grayscale  bool
	Binarize   bool

	// GlobalThreshold switches binarization from the adaptive local
	// mean to Otsu's global threshold. Only meaningful with Binarize.
	GlobalThreshold bool

	// CropDocument crops to the detected document outline before
	// enhancement, when one dominates the frame.
	CropDocument bool

	// Working size bounds in pixels. Images outside the range are
	// scaled to fit before enhancement.
	MinWidth int
	MaxWidth int

	// MinLongSide upscales small captures so the longer dimension
	// reaches at least this many pixels. Zero disables the floor.
	MinLongSide int
}

const (
	// DefaultMinWidth and DefaultMaxWidth bound the working resolution
	// for local engines. Below the minimum, glyphs drop under the
	// stroke width the recognizer needs; above the maximum, runtime
	// grows without accuracy gains.
	DefaultMinWidth = 300
	DefaultMaxWidth = 3000

	// Cloud uploads use a tighter window so the payload stays within
	// the remote service's size limits.
	CloudMinWidth = 600
	CloudMaxWidth = 2200

	// DefaultMinLongSide keeps phone captures of small receipts from
	// reaching the recognizer at postage-stamp resolution.
	DefaultMinLongSide = 1000
)

// ProfileParams returns the tuned parameter set for a document type.
// Unknown types fall back to the neutral general profile.
func ProfileParams(docType string) Params {
	switch docType {
	case "text":
		return Params{Brightness: 10, Contrast: 120, Sharpen: 20, Denoise: true, Grayscale: true, MinWidth: DefaultMinWidth, MaxWidth: DefaultMaxWidth, MinLongSide: DefaultMinLongSide}
	case "handwriting":
		return Params{Brightness: 5, Contrast: 110, Sharpen: 10, Denoise: false, Grayscale: true, MinWidth: DefaultMinWidth, MaxWidth: DefaultMaxWidth, MinLongSide: DefaultMinLongSide}
	case "invoice":
		return Params{Brightness: 15, Contrast: 130, Sharpen: 25, Denoise: true, Grayscale: true, MinWidth: DefaultMinWidth, MaxWidth: DefaultMaxWidth, MinLongSide: DefaultMinLongSide}
	default:
		return Params{Brightness: 0, Contrast: 100, Sharpen: 0, Grayscale: true, MinWidth: DefaultMinWidth, MaxWidth: DefaultMaxWidth, MinLongSide: DefaultMinLongSide}
	}
}
