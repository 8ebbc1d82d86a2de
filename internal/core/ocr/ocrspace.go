package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	imgproc "github.com/alexmontero/ocr-pipeline-be/internal/core/imaging"
)

const (
	// Free-tier upload ceiling on the cloud API.
	maxUploadBytes = 1024 * 1024

	defaultCloudEngine = 2
)

// OCRSpaceProvider recognizes text through the OCR.Space HTTP API.
type OCRSpaceProvider struct {
	apiKey   string
	endpoint string
	client   *http.Client
	prep     *imgproc.Preprocessor
}

func NewOCRSpaceProvider(apiKey, endpoint string, timeout time.Duration) *OCRSpaceProvider {
	return &OCRSpaceProvider{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		prep:     imgproc.NewPreprocessor(),
	}
}

func (p *OCRSpaceProvider) Name() string {
	return "ocr_space"
}

// SupportedLanguages lists the 2-letter codes the cloud engines accept.
func (p *OCRSpaceProvider) SupportedLanguages() []string {
	return languageCodes(ocrSpaceLanguages)
}

// TestConnectivity checks that the API key is configured and the
// endpoint answers HTTP at all. Any status counts as reachable; the
// service rejects bare GETs but a response still proves the route.
func (p *OCRSpaceProvider) TestConnectivity(ctx context.Context) error {
	if p.apiKey == "" {
		return fmt.Errorf("ocr.space api key not configured")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("ocr.space unreachable: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return nil
}

type ocrSpaceResponse struct {
	ParsedResults []struct {
		ParsedText        string `json:"ParsedText"`
		FileParseExitCode int    `json:"FileParseExitCode"`
	} `json:"ParsedResults"`
	OCRExitCode           int         `json:"OCRExitCode"`
	IsErroredOnProcessing bool        `json:"IsErroredOnProcessing"`
	ErrorMessage          interface{} `json:"ErrorMessage"`
}

// Recognize uploads the image and parses the cloud response. The
// frame is rescaled into the cloud working window and compressed
// under the free-tier size limit before upload.
func (p *OCRSpaceProvider) Recognize(ctx context.Context, req Request) (*Result, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("ocr.space api key not configured")
	}

	engine := req.Engine
	if engine == 0 {
		engine = defaultCloudEngine
	}

	frame := p.prep.Process(req.Image, imgproc.Params{
		Grayscale: false,
		Contrast:  100,
		MinWidth:  imgproc.CloudMinWidth,
		MaxWidth:  imgproc.CloudMaxWidth,
	})
	payload, ext, err := p.prep.EncodeForUpload(frame, maxUploadBytes)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	body, err := p.post(ctx, payload, ext, mapLanguage(req.Language), engine)
	if err != nil {
		return nil, err
	}

	var parsed ocrSpaceResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse ocr.space response: %w", err)
	}

	if parsed.IsErroredOnProcessing || parsed.OCRExitCode > 2 {
		msg := flattenErrorMessage(parsed.ErrorMessage)
		log.Warn().Int("engine", engine).Str("error", msg).Msg("ocr.space processing error")
		return nil, fmt.Errorf("%w: engine %d: %s", ErrEngineFailed, engine, msg)
	}
	if len(parsed.ParsedResults) == 0 {
		return nil, fmt.Errorf("%w: engine %d: empty parsed results", ErrEngineFailed, engine)
	}

	var sb strings.Builder
	for _, r := range parsed.ParsedResults {
		sb.WriteString(r.ParsedText)
	}
	text := strings.TrimSpace(sb.String())

	return &Result{
		Text:       text,
		Confidence: estimateConfidence(text),
		Provider:   p.Name(),
		Engine:     engine,
		Duration:   time.Since(start),
	}, nil
}

func (p *OCRSpaceProvider) post(ctx context.Context, payload []byte, ext, language string, engine int) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "image."+ext)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(payload); err != nil {
		return nil, err
	}
	fields := map[string]string{
		"apikey":            p.apiKey,
		"language":          language,
		"OCREngine":         strconv.Itoa(engine),
		"isOverlayRequired": "false",
		"detectOrientation": "true",
		"scale":             "true",
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("ocr.space request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("ocr.space returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// flattenErrorMessage normalizes the API's error field, which the
// service returns either as a string or a list of strings.
func flattenErrorMessage(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return v
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		return "unknown error"
	}
}
