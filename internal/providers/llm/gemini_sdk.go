package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/example/trip-refiner/internal/logger"
	"github.com/example/trip-refiner/internal/metrics"
	"github.com/example/trip-refiner/internal/models"
)

// GeminiSDKClient serves the same contract through the official Go SDK. A
// client is built per call because the key is read lazily by the session.
type GeminiSDKClient struct {
	Temperature float32
	Metrics     *metrics.Metrics
}

func (c *GeminiSDKClient) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	logger.Debug("calling generateContent via sdk", "model", req.Model, "history_turns", len(req.History))
	text, err := c.generateText(ctx, req)
	c.Metrics.ObserveLLM(req.Model, outcome(err), time.Since(start))
	if err != nil {
		logger.Error("generateContent failed", "model", req.Model, "error", err)
		return nil, err
	}
	return newResponse(req, text), nil
}

func (c *GeminiSDKClient) generateText(ctx context.Context, req Request) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(req.APIKey))
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer client.Close()

	model := client.GenerativeModel(req.Model)
	model.SetTemperature(c.Temperature)
	if req.SystemInstruction != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemInstruction)}}
	}
	cs := model.StartChat()
	cs.History = toGenaiHistory(req.History)

	resp, err := cs.SendMessage(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", classifySDKError(err)
	}
	return sdkText(resp)
}

func toGenaiHistory(history models.Transcript) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		out = append(out, &genai.Content{
			Role:  wireRole(turn.Role),
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}
	return out
}

func sdkText(resp *genai.GenerateContentResponse) (string, error) {
	var (
		text   string
		finish = genai.FinishReasonUnspecified
	)
	if resp != nil && len(resp.Candidates) > 0 {
		cand := resp.Candidates[0]
		finish = cand.FinishReason
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text = string(t)
					break
				}
			}
		}
	}
	if text == "" && finish != genai.FinishReasonStop {
		ge := &GenerationError{}
		if finish != genai.FinishReasonUnspecified {
			ge.FinishReason = finish.String()
		}
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
			ge.BlockReason = resp.PromptFeedback.BlockReason.String()
		}
		return "", ge
	}
	return text, nil
}

// classifySDKError maps SDK failures onto the client error taxonomy.
func classifySDKError(err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		ge := &GenerationError{}
		if blocked.PromptFeedback != nil {
			ge.BlockReason = blocked.PromptFeedback.BlockReason.String()
		}
		if blocked.Candidate != nil {
			ge.FinishReason = blocked.Candidate.FinishReason.String()
		}
		return ge
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d %s", gerr.Code, http.StatusText(gerr.Code))
		}
		return &UpstreamError{Status: gerr.Code, Message: msg}
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
			return &TransportError{Err: err}
		}
		return &UpstreamError{Status: httpStatusFromCode(st.Code()), Message: st.Message()}
	}
	return &TransportError{Err: err}
}

func httpStatusFromCode(c codes.Code) int {
	switch c {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unimplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
