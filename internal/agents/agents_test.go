package agents

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/example/trip-refiner/internal/providers/llm"
	"github.com/example/trip-refiner/internal/providers/llm/llmmock"
)

const validEvaluation = `{
  "clarity_of_task": true,
  "completeness_instruction": true,
  "no_questions_instruction": false,
  "structured_output_guidance": true,
  "handling_missing_info": null,
  "overall_effectiveness_single_shot": false,
  "summary": "Needs an explicit no-questions rule."
}`

func TestDrafter_PlanningInstructions(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := llmmock.NewMockClient(ctrl)

	client.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req llm.Request) (*llm.Response, error) {
		require.Equal(t, "refiner-model", req.Model)
		require.Equal(t, "key", req.APIKey)
		require.Equal(t, drafterSystemInstruction, req.SystemInstruction)
		require.Empty(t, req.History)
		require.Contains(t, req.Prompt, `"Plan a trip to Paris for 5 days"`)
		require.Contains(t, req.Prompt, "NOT** ask clarifying questions")
		require.Contains(t, req.Prompt, "estimated costs")
		return &llm.Response{Text: "draft prompt"}, nil
	})

	d := &Drafter{Client: client, Model: "refiner-model"}
	got, err := d.Draft(context.Background(), "key", "Plan a trip to Paris for 5 days", true)
	require.NoError(t, err)
	require.Equal(t, "draft prompt", got)
}

func TestDrafter_GeneralInstructions(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := llmmock.NewMockClient(ctrl)

	client.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req llm.Request) (*llm.Response, error) {
		require.Contains(t, req.Prompt, "think step-by-step")
		require.NotContains(t, req.Prompt, "travel itinerary")
		return &llm.Response{Text: "draft"}, nil
	})

	d := &Drafter{Client: client, Model: "m"}
	_, err := d.Draft(context.Background(), "key", "Write a poem about the sea", false)
	require.NoError(t, err)
}

func TestEvaluator_ParsesReply(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := llmmock.NewMockClient(ctrl)

	client.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req llm.Request) (*llm.Response, error) {
		require.Empty(t, req.SystemInstruction)
		require.Contains(t, req.Prompt, "the draft")
		require.Contains(t, req.Prompt, "isPlanningTask=true")
		return &llm.Response{Text: "```json\n" + validEvaluation + "\n```"}, nil
	})

	v := &Evaluator{Client: client, Model: "m"}
	eval, err := v.Evaluate(context.Background(), "key", "the draft", true)
	require.NoError(t, err)
	require.NotNil(t, eval.ClarityOfTask)
	require.True(t, *eval.ClarityOfTask)
	require.NotNil(t, eval.NoQuestionsInstruction)
	require.False(t, *eval.NoQuestionsInstruction)
	require.Nil(t, eval.HandlingMissingInfo)
	require.Equal(t, "Needs an explicit no-questions rule.", eval.Summary)
}

func TestEvaluator_PropagatesClientError(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := llmmock.NewMockClient(ctrl)
	upstream := &llm.UpstreamError{Status: 429, Message: "quota"}
	client.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(nil, upstream)

	v := &Evaluator{Client: client, Model: "m"}
	_, err := v.Evaluate(context.Background(), "key", "draft", false)
	require.ErrorIs(t, err, upstream)
}

func TestParseEvaluation_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "  ", "empty response"},
		{"not json", "I think the prompt is good.", ""},
		{"missing key", `{"clarity_of_task": true, "summary": "ok"}`, "completeness_instruction"},
		{"wrong type", strings.Replace(validEvaluation, `"clarity_of_task": true`, `"clarity_of_task": "yes"`, 1), "/clarity_of_task"},
		{"null summary", strings.Replace(validEvaluation, `"summary": "Needs an explicit no-questions rule."`, `"summary": null`, 1), "/summary"},
		{"array", `[1,2]`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEvaluation(tt.raw)
			var perr *EvaluationParseError
			require.ErrorAs(t, err, &perr)
			require.Equal(t, tt.raw, perr.Raw)
			require.Contains(t, err.Error(), "Failed to parse prompt evaluation JSON")
			if tt.want != "" {
				require.Contains(t, err.Error(), tt.want)
			}
		})
	}
}

func TestParseEvaluation_AllowsNullCriteria(t *testing.T) {
	criteria := []string{
		"clarity_of_task",
		"completeness_instruction",
		"no_questions_instruction",
		"structured_output_guidance",
		"handling_missing_info",
		"overall_effectiveness_single_shot",
	}
	for _, key := range criteria {
		t.Run(key, func(t *testing.T) {
			raw := `{"summary": "ok"`
			for _, k := range criteria {
				v := "true"
				if k == key {
					v = "null"
				}
				raw += `, "` + k + `": ` + v
			}
			raw += "}"

			eval, err := ParseEvaluation(raw)
			require.NoError(t, err)
			require.Equal(t, "ok", eval.Summary)
		})
	}

	allNull := `{"clarity_of_task": null, "completeness_instruction": null, "no_questions_instruction": null,
"structured_output_guidance": null, "handling_missing_info": null, "overall_effectiveness_single_shot": null, "summary": "unsure"}`
	eval, err := ParseEvaluation(allNull)
	require.NoError(t, err)
	require.Nil(t, eval.ClarityOfTask)
	require.Nil(t, eval.StructuredOutputGuidance)
	require.Nil(t, eval.OverallEffectivenessSingleShot)
}

func TestParseEvaluation_AllowsExtraKeys(t *testing.T) {
	raw := strings.Replace(validEvaluation, `"summary"`, `"score": 7, "summary"`, 1)
	eval, err := ParseEvaluation(raw)
	require.NoError(t, err)
	require.Equal(t, "Needs an explicit no-questions rule.", eval.Summary)
}

func TestReviser_IncludesEvaluation(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := llmmock.NewMockClient(ctrl)

	eval, err := ParseEvaluation(validEvaluation)
	require.NoError(t, err)

	client.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req llm.Request) (*llm.Response, error) {
		require.Equal(t, reviserSystemInstruction, req.SystemInstruction)
		require.Contains(t, req.Prompt, `Original Task Description: "Plan a trip to Rome"`)
		require.Contains(t, req.Prompt, "the draft")
		require.Contains(t, req.Prompt, `"handling_missing_info": null`)
		require.Contains(t, req.Prompt, "single-shot plan without questions")
		return &llm.Response{Text: "final prompt"}, nil
	})

	r := &Reviser{Client: client, Model: "m"}
	got, err := r.Revise(context.Background(), "key", "Plan a trip to Rome", "the draft", eval, true)
	require.NoError(t, err)
	require.Equal(t, "final prompt", got)
}

func TestItinerarySystemInstructionForbidsQuestions(t *testing.T) {
	require.Contains(t, ItinerarySystemInstruction, "Do NOT ask clarifying questions")
}
