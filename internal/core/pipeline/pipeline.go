package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	imgproc "github.com/alexmontero/ocr-pipeline-be/internal/core/imaging"
	"github.com/alexmontero/ocr-pipeline-be/internal/core/ocr"
	"github.com/alexmontero/ocr-pipeline-be/internal/core/textproc"
)

// Confidence blend weights: the provider knows how well recognition
// went, the postprocessor knows whether the output looks like real
// content. The provider's opinion dominates.
const (
	ocrWeight  = 0.7
	postWeight = 0.3
)

// Options selects how one document is processed.
type Options struct {
	// DocType is one of "text", "handwriting", "invoice", "contact",
	// "auto" or "general". It biases preprocessing and selects
	// type-specific text corrections.
	DocType string

	// Language is an ISO 639-1 code; empty uses the pipeline default.
	Language string

	// Params overrides preprocessing entirely. When nil, parameters
	// are auto-detected from image statistics with DocType as a hint.
	Params *imgproc.Params

	// UseCache enables the content-addressed result cache.
	UseCache bool

	// DigitsOnly switches to aggressive numeric-display preprocessing
	// and reduces the answer to the extracted reading.
	DigitsOnly bool
}

// Response is the pipeline's answer for one document. It is always
// well-formed: failures set Success to false and fill Error instead
// of surfacing a Go error to the caller.
type Response struct {
	Success     bool                    `json:"success"`
	Text        string                  `json:"text"`
	DigitsValue string                  `json:"digits_value,omitempty"`
	Confidence  float64                 `json:"confidence"`
	Provider    string                  `json:"provider,omitempty"`
	Engine      int                     `json:"engine,omitempty"`
	Elements    textproc.Elements       `json:"elements"`
	KeyValues   map[string]string       `json:"key_values,omitempty"`
	Quality     textproc.QualityMetrics `json:"quality"`
	Corrections int                     `json:"corrections"`
	DurationMS  int64                   `json:"duration_ms"`
	FromCache   bool                    `json:"from_cache"`
	Error       string                  `json:"error,omitempty"`
}

// Pipeline chains preprocessing, provider orchestration and text
// postprocessing behind a result cache.
type Pipeline struct {
	prep         *imgproc.Preprocessor
	orchestrator *ocr.Orchestrator
	post         *textproc.Postprocessor
	cache        *ResultCache
	stats        *Stats
	defaultLang  string
}

func New(orch *ocr.Orchestrator, post *textproc.Postprocessor, cacheCapacity int, defaultLang string) *Pipeline {
	if defaultLang == "" {
		defaultLang = "es"
	}
	return &Pipeline{
		prep:         imgproc.NewPreprocessor(),
		orchestrator: orch,
		post:         post,
		cache:        NewResultCache(cacheCapacity),
		stats:        NewStats(),
		defaultLang:  defaultLang,
	}
}

// Stats exposes the in-process counters.
func (p *Pipeline) Stats() StatsSnapshot {
	return p.stats.Snapshot()
}

// CacheLen reports how many responses are currently cached.
func (p *Pipeline) CacheLen() int {
	return p.cache.Len()
}

// ProviderNames lists the orchestrator's providers in priority order.
func (p *Pipeline) ProviderNames() []string {
	return p.orchestrator.ProviderNames()
}

// Providers describes the orchestrator's providers with their
// language support, in priority order.
func (p *Pipeline) Providers() []ocr.ProviderInfo {
	return p.orchestrator.Providers()
}

// Threshold returns the orchestrator's confidence bar (0..100 scale).
func (p *Pipeline) Threshold() float64 {
	return p.orchestrator.Threshold()
}

// Run processes one document end to end. It never panics and never
// returns a Go error: every failure mode lands in the Response so the
// transport layer can serialize it directly.
func (p *Pipeline) Run(ctx context.Context, imageData []byte, opts Options) (resp Response) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("pipeline panic recovered")
			resp = Response{Error: "internal processing error", DurationMS: time.Since(start).Milliseconds()}
		}
		p.stats.Record(resp)
	}()

	if len(imageData) == 0 {
		return Response{Error: "empty image data", DurationMS: time.Since(start).Milliseconds()}
	}

	key := CacheKey(imageData)
	if opts.UseCache {
		if cached, ok := p.cache.Get(key); ok {
			cached.FromCache = true
			cached.DurationMS = time.Since(start).Milliseconds()
			log.Debug().Str("key", key[:12]).Msg("cache hit")
			return cached
		}
	}

	img, err := p.prep.Decode(imageData)
	if err != nil {
		return Response{Error: err.Error(), DurationMS: time.Since(start).Milliseconds()}
	}

	lang := opts.Language
	if lang == "" {
		lang = p.defaultLang
	}

	var frame = img
	switch {
	case opts.DigitsOnly:
		frame = p.prep.PrepareDigits(img)
	case opts.Params != nil:
		frame = p.prep.Process(img, *opts.Params)
	default:
		frame = p.prep.ProcessAuto(img, opts.DocType)
	}

	ocrResult, err := p.orchestrator.Run(ctx, ocr.Request{Image: frame, Language: lang})
	if err != nil {
		return Response{Error: err.Error(), DurationMS: time.Since(start).Milliseconds()}
	}

	postResult := p.post.Process(ocrResult.Text, lang, opts.DocType)

	resp = Response{
		Success:     strings.TrimSpace(postResult.Text) != "",
		Text:        postResult.Text,
		Confidence:  blendConfidence(ocrResult.Confidence, postResult.Confidence),
		Provider:    ocrResult.Provider,
		Engine:      ocrResult.Engine,
		Elements:    postResult.Elements,
		KeyValues:   postResult.KeyValues,
		Quality:     postResult.Quality,
		Corrections: postResult.Corrections,
		DurationMS:  time.Since(start).Milliseconds(),
	}

	if !resp.Success {
		resp.Error = "recognition produced no text"
	}

	if opts.DigitsOnly {
		resp.DigitsValue = ocr.ExtractDigits(postResult.Text)
		if resp.DigitsValue == "" {
			resp.Success = false
			resp.Error = "no numeric reading found"
		}
	}

	if opts.UseCache && resp.Success {
		p.cache.Put(key, resp)
	}

	log.Info().
		Bool("success", resp.Success).
		Str("provider", resp.Provider).
		Float64("confidence", resp.Confidence).
		Int64("duration_ms", resp.DurationMS).
		Msg("pipeline run complete")

	return resp
}

// blendConfidence merges the provider score (0..100) with the
// postprocessor score (0..1) onto the 0..1 scale.
func blendConfidence(ocrConfidence, postConfidence float64) float64 {
	blended := ocrWeight*(ocrConfidence/100) + postWeight*postConfidence
	if blended < 0 {
		return 0
	}
	if blended > 1 {
		return 1
	}
	return blended
}
