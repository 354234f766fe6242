package llm

import (
	"net/http"

	"github.com/example/trip-refiner/internal/config"
	"github.com/example/trip-refiner/internal/metrics"
)

// New returns the Client selected by cfg.Provider:
// - http (default): direct REST calls, base URL from cfg.BaseURL
// - sdk: github.com/google/generative-ai-go
func New(cfg config.LLMConfig, m *metrics.Metrics) Client {
	switch cfg.Provider {
	case config.ProviderSDK:
		return &GeminiSDKClient{Temperature: cfg.Temperature, Metrics: m}
	default:
		return &GeminiHTTPClient{
			BaseURL:     cfg.BaseURL,
			Temperature: cfg.Temperature,
			HTTPClient:  &http.Client{Timeout: cfg.Timeout},
			Metrics:     m,
		}
	}
}
