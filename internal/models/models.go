package models

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
	// RoleAssistant is accepted on input and sent to the API as RoleModel.
	RoleAssistant Role = "assistant"
)

// Turn is one message in a planning conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Transcript is the ordered, append-only turn history of one planning session.
type Transcript []Turn

// Roles returns the role of every turn in order.
func (t Transcript) Roles() []Role {
	out := make([]Role, 0, len(t))
	for _, turn := range t {
		out = append(out, turn.Role)
	}
	return out
}

// Append returns a new transcript with turns added; t is left untouched.
func (t Transcript) Append(turns ...Turn) Transcript {
	out := make(Transcript, 0, len(t)+len(turns))
	out = append(out, t...)
	return append(out, turns...)
}

type SessionState string

const (
	StateIdle                SessionState = "idle"
	StateAwaitingInitialPlan SessionState = "awaiting_initial_plan"
	StateHasPlan             SessionState = "has_plan"
	StateAwaitingRefinement  SessionState = "awaiting_refinement"
)

// Evaluation scores a draft prompt for single-shot effectiveness.
// Any criterion may be null; planning-specific ones are null for non-planning tasks.
type Evaluation struct {
	ClarityOfTask                  *bool  `json:"clarity_of_task"`
	CompletenessInstruction        *bool  `json:"completeness_instruction"`
	NoQuestionsInstruction         *bool  `json:"no_questions_instruction"`
	StructuredOutputGuidance       *bool  `json:"structured_output_guidance"`
	HandlingMissingInfo            *bool  `json:"handling_missing_info"`
	OverallEffectivenessSingleShot *bool  `json:"overall_effectiveness_single_shot"`
	Summary                        string `json:"summary"`
}

// RefineResult carries every artifact of one prompt pipeline run.
type RefineResult struct {
	IsPlanningTask bool        `json:"is_planning_task"`
	Draft          string      `json:"draft"`
	Evaluation     *Evaluation `json:"evaluation"`
	FinalPrompt    string      `json:"final_prompt"`
}

// RefineAndPlanResult is a pipeline run optionally followed by a single-shot plan.
type RefineAndPlanResult struct {
	*RefineResult
	Plan *PlanResult `json:"plan,omitempty"`
}

type PlanResult struct {
	Text       string     `json:"text"`
	Transcript Transcript `json:"transcript"`
	CreatedAt  time.Time  `json:"created_at"`
}
