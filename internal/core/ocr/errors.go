package ocr

import "errors"

var (
	// ErrRateLimited signals an HTTP 429 from a cloud provider. The
	// orchestrator doubles its backoff when it sees this.
	ErrRateLimited = errors.New("ocr provider rate limited")

	// ErrTimeout signals the provider gave up waiting on the remote
	// service or the local engine process.
	ErrTimeout = errors.New("ocr provider timed out")

	// ErrEngineFailed signals a recognition failure specific to one
	// cloud engine. Retrying on the next engine may still succeed.
	ErrEngineFailed = errors.New("ocr engine failed")

	// ErrNoProviders is returned when the orchestrator exhausts every
	// registered provider without a usable result.
	ErrNoProviders = errors.New("all ocr providers failed")

	// ErrImageTooSmall rejects images under the minimum recognizable
	// resolution before any provider is called.
	ErrImageTooSmall = errors.New("image too small for recognition")
)
