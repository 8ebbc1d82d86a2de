package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// tesseractLanguages maps ISO 639-1 codes to Tesseract traineddata
// names, which differ from the cloud API codes for some languages.
var tesseractLanguages = map[string]string{
	"es": "spa",
	"en": "eng",
	"fr": "fra",
	"de": "deu",
	"it": "ita",
	"pt": "por",
	"nl": "nld",
	"ca": "cat",
}

var tesseractProbePaths = []string{
	"/usr/bin/tesseract",
	"/usr/local/bin/tesseract",
	"/opt/homebrew/bin/tesseract",
}

// TesseractProvider recognizes text with a locally installed
// Tesseract binary. It is the offline fallback when the cloud
// provider is rate limited or unreachable.
type TesseractProvider struct {
	binary string
}

// NewTesseractProvider locates the engine binary. An explicit path
// wins; otherwise PATH and common install locations are probed. A
// provider with an empty binary is still returned so the orchestrator
// can report it as unavailable instead of panicking.
func NewTesseractProvider(path string) *TesseractProvider {
	if path != "" {
		return &TesseractProvider{binary: path}
	}
	if found, err := exec.LookPath("tesseract"); err == nil {
		return &TesseractProvider{binary: found}
	}
	for _, candidate := range tesseractProbePaths {
		if _, err := os.Stat(candidate); err == nil {
			return &TesseractProvider{binary: candidate}
		}
	}
	log.Warn().Msg("tesseract binary not found, local ocr disabled")
	return &TesseractProvider{}
}

func (p *TesseractProvider) Name() string {
	return "tesseract"
}

// Available reports whether the engine binary was located.
func (p *TesseractProvider) Available() bool {
	return p.binary != ""
}

// SupportedLanguages lists the 2-letter codes with traineddata
// mappings.
func (p *TesseractProvider) SupportedLanguages() []string {
	return languageCodes(tesseractLanguages)
}

// TestConnectivity runs the binary with --version to prove it is
// present and executable before any recognition traffic hits it.
func (p *TesseractProvider) TestConnectivity(ctx context.Context) error {
	if p.binary == "" {
		return fmt.Errorf("tesseract binary not available")
	}
	cmd := exec.CommandContext(ctx, p.binary, "--version")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("tesseract --version failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Recognize writes the frame to a temp file and shells out to the
// engine. Page segmentation mode 6 (uniform block of text) with the
// default LSTM engine covers scanned documents best.
func (p *TesseractProvider) Recognize(ctx context.Context, req Request) (*Result, error) {
	if p.binary == "" {
		return nil, fmt.Errorf("tesseract binary not available")
	}

	lang, ok := tesseractLanguages[req.Language]
	if !ok {
		lang = "spa"
	}

	tmpPath := filepath.Join(os.TempDir(), "ocr-"+uuid.NewString()+".png")
	if err := imaging.Save(req.Image, tmpPath); err != nil {
		return nil, fmt.Errorf("failed to write temp image: %w", err)
	}
	defer os.Remove(tmpPath)

	start := time.Now()
	cmd := exec.CommandContext(ctx, p.binary, tmpPath, "stdout", "-l", lang, "--psm", "6", "--oem", "3")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: tesseract killed after %s", ErrTimeout, time.Since(start))
		}
		return nil, fmt.Errorf("tesseract failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	text := strings.TrimSpace(stdout.String())
	return &Result{
		Text:       text,
		Confidence: estimateEngineConfidence(text),
		Provider:   p.Name(),
		Duration:   time.Since(start),
	}, nil
}
