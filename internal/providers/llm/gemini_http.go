package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/trip-refiner/internal/logger"
	"github.com/example/trip-refiner/internal/metrics"
)

const (
	DefaultBaseURL     = "https://generativelanguage.googleapis.com/v1beta/models"
	DefaultTemperature = float32(0.7)

	finishReasonStop = "STOP"
)

// GeminiHTTPClient calls the generateContent REST endpoint directly.
type GeminiHTTPClient struct {
	BaseURL     string
	Temperature float32
	HTTPClient  *http.Client
	Metrics     *metrics.Metrics
}

type wirePart struct {
	Text string `json:"text"`
}

type wireContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []wirePart `json:"parts"`
}

type generationConfig struct {
	Temperature float32 `json:"temperature"`
}

type generateRequest struct {
	Contents          []wireContent    `json:"contents"`
	SystemInstruction *wireContent     `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      wireContent `json:"content"`
		FinishReason string      `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c *GeminiHTTPClient) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	logger.Debug("calling generateContent", "model", req.Model, "history_turns", len(req.History), "system_instruction", req.SystemInstruction != "")
	text, err := c.generateText(ctx, req)
	c.Metrics.ObserveLLM(req.Model, outcome(err), time.Since(start))
	if err != nil {
		logger.Error("generateContent failed", "model", req.Model, "error", err)
		return nil, err
	}
	logger.Debug("generateContent complete", "model", req.Model, "chars", len(text), "elapsed", time.Since(start))
	return newResponse(req, text), nil
}

func (c *GeminiHTTPClient) generateText(ctx context.Context, req Request) (string, error) {
	b, err := json.Marshal(c.buildBody(req))
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(req.Model, req.APIKey), bytes.NewReader(b))
	if err != nil {
		return "", &TransportError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient().Do(httpReq)
	if err != nil {
		return "", &TransportError{Err: redactKey(err, req.APIKey)}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", upstreamError(res, body)
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &TransportError{Err: fmt.Errorf("decoding response: %w", err)}
	}
	return out.text()
}

func (c *GeminiHTTPClient) buildBody(req Request) generateRequest {
	contents := make([]wireContent, 0, len(req.History)+1)
	for _, turn := range req.History {
		contents = append(contents, wireContent{Role: wireRole(turn.Role), Parts: []wirePart{{Text: turn.Content}}})
	}
	contents = append(contents, wireContent{Role: "user", Parts: []wirePart{{Text: req.Prompt}}})

	body := generateRequest{
		Contents:         contents,
		GenerationConfig: generationConfig{Temperature: c.Temperature},
	}
	if req.SystemInstruction != "" {
		body.SystemInstruction = &wireContent{Parts: []wirePart{{Text: req.SystemInstruction}}}
	}
	return body
}

func (c *GeminiHTTPClient) endpoint(model, key string) string {
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return fmt.Sprintf("%s/%s:generateContent?key=%s", base, url.PathEscape(model), url.QueryEscape(key))
}

func (c *GeminiHTTPClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// text returns the first candidate's text. An empty completion is only an
// error when generation did not end normally.
func (r *generateResponse) text() (string, error) {
	var text, finishReason string
	if len(r.Candidates) > 0 {
		finishReason = r.Candidates[0].FinishReason
		if parts := r.Candidates[0].Content.Parts; len(parts) > 0 {
			text = parts[0].Text
		}
	}
	if text == "" && finishReason != finishReasonStop {
		ge := &GenerationError{FinishReason: finishReason}
		if r.PromptFeedback != nil {
			ge.BlockReason = r.PromptFeedback.BlockReason
		}
		return "", ge
	}
	return text, nil
}

func upstreamError(res *http.Response, body []byte) *UpstreamError {
	var eresp errorResponse
	msg := ""
	if json.Unmarshal(body, &eresp) == nil {
		msg = eresp.Error.Message
	}
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d %s", res.StatusCode, http.StatusText(res.StatusCode))
	}
	return &UpstreamError{Status: res.StatusCode, Message: msg}
}

// redactKey keeps the API key out of url.Error messages, which embed the request URL.
func redactKey(err error, key string) error {
	if key == "" {
		return err
	}
	msg := strings.ReplaceAll(err.Error(), url.QueryEscape(key), "REDACTED")
	if msg == err.Error() {
		return err
	}
	return &redactedError{msg: msg, err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }
