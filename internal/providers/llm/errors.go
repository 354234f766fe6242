package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyPrompt is returned when a request carries no user text.
var ErrEmptyPrompt = errors.New("prompt text is empty")

// ConfigurationError reports a missing or unusable local setting, usually the API key.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string { return e.Reason }

// UpstreamError is a non-2xx response from the generation endpoint.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return "Gemini API Error: " + e.Message
}

// Hint returns extra user-facing guidance for statuses users can act on.
func (e *UpstreamError) Hint() string {
	switch e.Status {
	case http.StatusBadRequest:
		return "Check that your API key is valid and that the request is well-formed."
	case http.StatusTooManyRequests:
		return "The API quota or rate limit was exceeded. Wait a moment and try again."
	default:
		return ""
	}
}

// GenerationError means the call succeeded but produced no usable text.
type GenerationError struct {
	BlockReason  string
	FinishReason string
}

// Blocked reports whether the prompt itself was blocked, as opposed to the
// generation stopping abnormally.
func (e *GenerationError) Blocked() bool { return e.BlockReason != "" }

func (e *GenerationError) Error() string {
	switch {
	case e.BlockReason != "":
		return fmt.Sprintf("Gemini API Error: Request Blocked: %s.", e.BlockReason)
	case e.FinishReason != "" && e.FinishReason != finishReasonStop:
		return fmt.Sprintf("Gemini API Error: Generation Stopped: %s.", e.FinishReason)
	default:
		return "Gemini API Error: Received no valid text content."
	}
}

// TransportError wraps network failures and unreadable responses.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("network error or failed API call: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// outcome labels an error for metrics.
func outcome(err error) string {
	var (
		cfgErr *ConfigurationError
		upErr  *UpstreamError
		genErr *GenerationError
		trErr  *TransportError
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &cfgErr):
		return "configuration_error"
	case errors.As(err, &upErr):
		return "upstream_error"
	case errors.As(err, &genErr):
		return "generation_error"
	case errors.As(err, &trErr):
		return "transport_error"
	default:
		return "error"
	}
}
