package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/example/trip-refiner/internal/models"
)

type RefineCmd struct {
	Task []string `arg:"" help:"Task description."`
}

// Run refines a prompt for the task and, for trips, prints the generated plan.
func (c *RefineCmd) Run(ctx *Context) error {
	res, err := ctx.App.Session.RefineAndPlan(ctx.ctx(), strings.Join(c.Task, " "))
	if err != nil {
		return err
	}
	w := ctx.out()

	section(w, "Draft Prompt", res.Draft)
	evalJSON, err := json.MarshalIndent(res.Evaluation, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode evaluation: %w", err)
	}
	section(w, "Evaluation", string(evalJSON))
	section(w, "Final Prompt", res.FinalPrompt)
	if res.Plan == nil {
		fmt.Fprintln(w, mutedStyle.Render("\nNot a travel planning task; no plan generated."))
		return nil
	}
	section(w, "Trip Plan", res.Plan.Text)
	return nil
}

type PlanCmd struct {
	Start  PlanStartCmd  `cmd:"" help:"Start a new trip plan, replacing the current one."`
	Refine PlanRefineCmd `cmd:"" help:"Refine the current trip plan with feedback."`
}

type PlanStartCmd struct {
	Task         []string `arg:"" help:"Trip description."`
	SystemPrompt string   `help:"System instruction for the planner. Defaults to the built-in itinerary instruction."`
}

func (c *PlanStartCmd) Run(ctx *Context) error {
	plan, err := ctx.App.Session.StartPlan(ctx.ctx(), strings.Join(c.Task, " "), c.SystemPrompt)
	if err != nil {
		return err
	}
	printPlan(ctx.out(), plan)
	return nil
}

type PlanRefineCmd struct {
	Feedback []string `arg:"" help:"What to change in the current plan."`
}

func (c *PlanRefineCmd) Run(ctx *Context) error {
	plan, err := ctx.App.Session.RefinePlan(ctx.ctx(), strings.Join(c.Feedback, " "))
	if err != nil {
		return err
	}
	printPlan(ctx.out(), plan)
	return nil
}

type TranscriptCmd struct {
	Show  TranscriptShowCmd  `cmd:"" default:"1" help:"Print the saved planning conversation."`
	Reset TranscriptResetCmd `cmd:"" help:"Forget the saved planning conversation."`
}

type TranscriptShowCmd struct{}

func (c *TranscriptShowCmd) Run(ctx *Context) error {
	t, err := ctx.App.Session.Transcript(ctx.ctx())
	if err != nil {
		return err
	}
	w := ctx.out()
	if len(t) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No saved trip plan."))
		return nil
	}
	for i, turn := range t {
		title := "You"
		if turn.Role != models.RoleUser {
			title = "Planner"
		}
		section(w, fmt.Sprintf("%d. %s", i+1, title), turn.Content)
	}
	return nil
}

type TranscriptResetCmd struct{}

func (c *TranscriptResetCmd) Run(ctx *Context) error {
	if err := ctx.App.Session.Reset(ctx.ctx()); err != nil {
		return err
	}
	fmt.Fprintln(ctx.out(), okStyle.Render("Trip plan cleared."))
	return nil
}

type KeyCmd struct {
	Set KeySetCmd `cmd:"" help:"Save the Gemini API key."`
}

type KeySetCmd struct {
	Key string `arg:"" optional:"" help:"API key. Prompted for when omitted."`
}

func (c *KeySetCmd) Run(ctx *Context) error {
	key := c.Key
	if key == "" {
		err := huh.NewInput().
			Title("Gemini API key").
			EchoMode(huh.EchoModePassword).
			Value(&key).
			Run()
		if err != nil {
			return err
		}
	}
	if err := ctx.App.Session.SetCredential(ctx.ctx(), key); err != nil {
		return err
	}
	fmt.Fprintln(ctx.out(), okStyle.Render("API Key saved successfully!"))
	return nil
}

func section(w io.Writer, title, body string) {
	fmt.Fprintln(w, headingStyle.Render(title))
	fmt.Fprintln(w, body)
}

func printPlan(w io.Writer, plan *models.PlanResult) {
	section(w, "Trip Plan", plan.Text)
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("\n%d turns saved. Use `tripctl plan refine` to adjust.", len(plan.Transcript))))
}
