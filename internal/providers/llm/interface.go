package llm

import (
	"context"
	"strings"

	"github.com/example/trip-refiner/internal/models"
)

//go:generate go tool mockgen -source=interface.go -destination=llmmock/mock_client.go -package=llmmock

// Client issues one generateContent call per Generate. Implementations never
// retry and never persist anything.
type Client interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Request is a single generation call. SystemInstruction applies to this call
// only and is not recorded in the returned history.
type Request struct {
	Model             string
	APIKey            string
	Prompt            string
	History           models.Transcript
	SystemInstruction string
}

// Response holds the completion text and History extended by the user prompt
// and the model reply.
type Response struct {
	Text    string
	History models.Transcript
}

func (r Request) validate() error {
	if strings.TrimSpace(r.APIKey) == "" {
		return &ConfigurationError{Reason: "API key is not set. Save a Gemini API key before making requests."}
	}
	if strings.TrimSpace(r.Model) == "" {
		return &ConfigurationError{Reason: "model name is not set"}
	}
	if strings.TrimSpace(r.Prompt) == "" {
		return ErrEmptyPrompt
	}
	return nil
}

func newResponse(req Request, text string) *Response {
	return &Response{
		Text: text,
		History: req.History.Append(
			models.Turn{Role: models.RoleUser, Content: req.Prompt},
			models.Turn{Role: models.RoleModel, Content: text},
		),
	}
}

// wireRole maps transcript roles to the roles the API accepts.
func wireRole(r models.Role) string {
	if r == models.RoleAssistant {
		return string(models.RoleModel)
	}
	return string(r)
}
