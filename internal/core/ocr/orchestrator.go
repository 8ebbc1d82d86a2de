package ocr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultBackoffBase = 2 * time.Second

// Orchestrator runs registered providers in priority order until one
// of them produces a result above the confidence threshold. Results
// under the threshold are kept as a fallback: the first sub-threshold
// success wins if no provider ever clears the bar.
type Orchestrator struct {
	providers   []Provider
	threshold   float64
	maxRetries  int
	backoffBase time.Duration
}

func NewOrchestrator(threshold float64, maxRetries int, providers ...Provider) *Orchestrator {
	if threshold <= 0 {
		threshold = 70
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Orchestrator{
		providers:   providers,
		threshold:   threshold,
		maxRetries:  maxRetries,
		backoffBase: defaultBackoffBase,
	}
}

// Threshold returns the configured confidence bar on the 0..100 scale.
func (o *Orchestrator) Threshold() float64 {
	return o.threshold
}

// ProviderNames lists registered providers in priority order.
func (o *Orchestrator) ProviderNames() []string {
	names := make([]string, 0, len(o.providers))
	for _, p := range o.providers {
		names = append(names, p.Name())
	}
	return names
}

// ProviderInfo describes one registered provider for diagnostics.
type ProviderInfo struct {
	Name      string   `json:"name"`
	Languages []string `json:"languages"`
}

// Providers lists registered providers with their language support.
func (o *Orchestrator) Providers() []ProviderInfo {
	infos := make([]ProviderInfo, 0, len(o.providers))
	for _, p := range o.providers {
		infos = append(infos, ProviderInfo{Name: p.Name(), Languages: p.SupportedLanguages()})
	}
	return infos
}

// Run executes the fallback chain. It returns the first result at or
// above the threshold, otherwise the earliest sub-threshold success,
// otherwise ErrNoProviders carrying the last provider error so the
// caller sees what actually went wrong. Context cancellation is
// honored between attempts so a caller deadline cuts the whole chain,
// not just the current call.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	if err := ValidateImage(req.Image); err != nil {
		return nil, err
	}

	var fallback *Result
	var lastErr error
	for _, provider := range o.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := o.runProvider(ctx, provider, req)
		if err != nil {
			log.Warn().Err(err).Str("provider", provider.Name()).Msg("provider exhausted, trying next")
			lastErr = err
			continue
		}

		if result.Confidence >= o.threshold {
			log.Info().
				Str("provider", result.Provider).
				Float64("confidence", result.Confidence).
				Dur("duration", result.Duration).
				Msg("recognition accepted")
			return result, nil
		}

		log.Info().
			Str("provider", result.Provider).
			Float64("confidence", result.Confidence).
			Float64("threshold", o.threshold).
			Msg("confidence below threshold, keeping as fallback")
		if fallback == nil {
			fallback = result
		}
	}

	if fallback != nil {
		return fallback, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: last error: %v", ErrNoProviders, lastErr)
	}
	return nil, ErrNoProviders
}

// runProvider retries one provider with exponential backoff. Rate
// limiting doubles the wait on top of the normal progression. An
// engine-specific failure is not a transient fault, so it rotates to
// the next cloud engine and retries immediately instead of backing
// off on an engine that will fail the same way again.
func (o *Orchestrator) runProvider(ctx context.Context, provider Provider, req Request) (*Result, error) {
	wait := o.backoffBase
	var lastErr error

	for attempt := 1; attempt <= o.maxRetries; attempt++ {
		result, err := provider.Recognize(ctx, req)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, err
		}
		if attempt == o.maxRetries {
			break
		}

		if errors.Is(err, ErrEngineFailed) {
			req.Engine = nextEngine(req.Engine)
			log.Debug().Int("engine", req.Engine).Msg("rotating cloud engine")
			continue
		}

		delay := wait
		if errors.Is(err, ErrRateLimited) {
			delay = wait * 2
		}

		log.Warn().
			Err(err).
			Str("provider", provider.Name()).
			Int("attempt", attempt).
			Dur("wait", delay).
			Msg("provider attempt failed, backing off")

		if err := sleepCtx(ctx, delay); err != nil {
			return nil, err
		}
		wait *= 2
	}

	return nil, fmt.Errorf("provider %s failed after %d attempts: %w", provider.Name(), o.maxRetries, lastErr)
}

// nextEngine cycles through the cloud engines: 2 is the default, 3
// handles dense layouts better, 1 is the legacy engine.
func nextEngine(engine int) int {
	switch engine {
	case 0, 2:
		return 3
	case 3:
		return 1
	default:
		return 2
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
