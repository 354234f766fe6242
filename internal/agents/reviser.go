package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/trip-refiner/internal/models"
	"github.com/example/trip-refiner/internal/providers/llm"
)

// Reviser produces the final prompt from the draft and its evaluation.
type Reviser struct {
	Client llm.Client
	Model  string
}

func (r *Reviser) Revise(ctx context.Context, apiKey, task, draft string, eval *models.Evaluation, planning bool) (string, error) {
	evalJSON, err := json.MarshalIndent(eval, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding evaluation: %w", err)
	}
	resp, err := r.Client.Generate(ctx, llm.Request{
		Model:             r.Model,
		APIKey:            apiKey,
		Prompt:            buildRevisePrompt(task, draft, string(evalJSON), planning),
		SystemInstruction: reviserSystemInstruction,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
