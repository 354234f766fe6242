package orchestrator

import (
	"context"
	"time"

	"github.com/example/trip-refiner/internal/agents"
	"github.com/example/trip-refiner/internal/logger"
	"github.com/example/trip-refiner/internal/metrics"
	"github.com/example/trip-refiner/internal/models"
	"github.com/example/trip-refiner/internal/providers/llm"
)

const (
	StageDraft    = "draft"
	StageEvaluate = "evaluate"
	StageRevise   = "revise"
)

// StageError records which pipeline stage failed. The message is the
// underlying error's so user-facing text is unchanged.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Err.Error() }
func (e *StageError) Unwrap() error { return e.Err }

// Refiner runs the draft, evaluate and revise stages over one task description.
type Refiner struct {
	Drafter   *agents.Drafter
	Evaluator *agents.Evaluator
	Reviser   *agents.Reviser
	Hub       *Hub
	Metrics   *metrics.Metrics
	SessionID string
}

// NewRefiner wires all three stages to the same client and model.
func NewRefiner(client llm.Client, model string, hub *Hub, m *metrics.Metrics) *Refiner {
	return &Refiner{
		Drafter:   &agents.Drafter{Client: client, Model: model},
		Evaluator: &agents.Evaluator{Client: client, Model: model},
		Reviser:   &agents.Reviser{Client: client, Model: model},
		Hub:       hub,
		Metrics:   m,
		SessionID: DefaultSessionID,
	}
}

type refineRun struct {
	apiKey string
	task   string
	result *models.RefineResult
}

type stage struct {
	name string
	run  func(ctx context.Context, r *refineRun) error
}

func (rf *Refiner) stages() []stage {
	return []stage{
		{StageDraft, func(ctx context.Context, r *refineRun) error {
			draft, err := rf.Drafter.Draft(ctx, r.apiKey, r.task, r.result.IsPlanningTask)
			r.result.Draft = draft
			return err
		}},
		{StageEvaluate, func(ctx context.Context, r *refineRun) error {
			eval, err := rf.Evaluator.Evaluate(ctx, r.apiKey, r.result.Draft, r.result.IsPlanningTask)
			r.result.Evaluation = eval
			return err
		}},
		{StageRevise, func(ctx context.Context, r *refineRun) error {
			final, err := rf.Reviser.Revise(ctx, r.apiKey, r.task, r.result.Draft, r.result.Evaluation, r.result.IsPlanningTask)
			r.result.FinalPrompt = final
			return err
		}},
	}
}

// Refine runs the stages in order and stops at the first failure; no partial
// result is returned.
func (rf *Refiner) Refine(ctx context.Context, apiKey, task string) (*models.RefineResult, error) {
	run := &refineRun{
		apiKey: apiKey,
		task:   task,
		result: &models.RefineResult{IsPlanningTask: agents.IsTravelPlanningTask(task)},
	}
	logger.Info("Prompt pipeline started", "planning", run.result.IsPlanningTask)

	for _, st := range rf.stages() {
		rf.publish(EventStageStarted, map[string]any{"stage": st.name})
		start := time.Now()
		err := st.run(ctx, run)
		rf.Metrics.ObserveStage(st.name, time.Since(start))
		if err != nil {
			logger.Error("Prompt pipeline stage failed", "stage", st.name, "error", err)
			rf.publish(EventStageFailed, map[string]any{"stage": st.name, "error": err.Error()})
			rf.Metrics.PipelineRun("error")
			return nil, &StageError{Stage: st.name, Err: err}
		}
		rf.publish(EventStageFinished, map[string]any{"stage": st.name})
	}

	rf.Metrics.PipelineRun("success")
	logger.Info("Prompt pipeline finished", "planning", run.result.IsPlanningTask)
	return run.result, nil
}

func (rf *Refiner) publish(name string, payload map[string]any) {
	rf.Hub.Publish(Event{Event: name, SessionID: rf.SessionID, Payload: payload})
}
