package agents

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/example/trip-refiner/internal/models"
	"github.com/example/trip-refiner/internal/providers/llm"
)

//go:embed evaluation.schema.json
var evaluationSchemaJSON string

var (
	evaluationSchema = mustCompileSchema(evaluationSchemaJSON, "evaluation.schema.json")
	schemaPrinter    = message.NewPrinter(language.English)
)

// EvaluationParseError means the evaluator's reply was not a complete
// evaluation object. It aborts the pipeline.
type EvaluationParseError struct {
	Raw string
	Err error
}

func (e *EvaluationParseError) Error() string {
	return fmt.Sprintf("Internal Error: Failed to parse prompt evaluation JSON. Details: %v", e.Err)
}

func (e *EvaluationParseError) Unwrap() error { return e.Err }

// Evaluator asks the model to score a draft prompt as JSON.
type Evaluator struct {
	Client llm.Client
	Model  string
}

func (v *Evaluator) Evaluate(ctx context.Context, apiKey, draft string, planning bool) (*models.Evaluation, error) {
	resp, err := v.Client.Generate(ctx, llm.Request{
		Model:  v.Model,
		APIKey: apiKey,
		Prompt: buildEvaluatePrompt(draft, planning),
	})
	if err != nil {
		return nil, err
	}
	return ParseEvaluation(resp.Text)
}

// ParseEvaluation validates raw against the evaluation schema before decoding
// it; missing keys or wrong types are rejected, never defaulted.
func ParseEvaluation(raw string) (*models.Evaluation, error) {
	cleaned := normalizeJSONText(raw)
	if cleaned == "" {
		return nil, &EvaluationParseError{Raw: raw, Err: errors.New("LLM returned empty response for evaluation")}
	}
	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(cleaned))
	if err != nil {
		return nil, &EvaluationParseError{Raw: raw, Err: err}
	}
	if err := evaluationSchema.Validate(inst); err != nil {
		return nil, &EvaluationParseError{Raw: raw, Err: schemaError(err)}
	}
	var eval models.Evaluation
	if err := json.Unmarshal([]byte(cleaned), &eval); err != nil {
		return nil, &EvaluationParseError{Raw: raw, Err: err}
	}
	return &eval, nil
}

func mustCompileSchema(raw, name string) *jsonschema.Schema {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}
	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	var msgs []string
	collectSchemaErrors(ve, &msgs)
	return errors.New("evaluation JSON is invalid: " + strings.Join(msgs, "; "))
}

func collectSchemaErrors(ve *jsonschema.ValidationError, msgs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/" + strings.Join(ve.InstanceLocation, "/")
		*msgs = append(*msgs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(schemaPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, msgs)
	}
}
