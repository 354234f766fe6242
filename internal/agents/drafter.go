package agents

import (
	"context"

	"github.com/example/trip-refiner/internal/providers/llm"
)

// Drafter writes the first draft of a prompt for a task description.
type Drafter struct {
	Client llm.Client
	Model  string
}

func (d *Drafter) Draft(ctx context.Context, apiKey, task string, planning bool) (string, error) {
	resp, err := d.Client.Generate(ctx, llm.Request{
		Model:             d.Model,
		APIKey:            apiKey,
		Prompt:            buildDraftPrompt(task, planning),
		SystemInstruction: drafterSystemInstruction,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
