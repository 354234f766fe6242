package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/example/trip-refiner/internal/logger"
	"github.com/example/trip-refiner/internal/metrics"
	"github.com/example/trip-refiner/internal/models"
	"github.com/example/trip-refiner/internal/render"
)

const (
	ActionRefineAndPotentiallyPlan = "refineAndPotentiallyPlan"
	ActionStartTripPlan            = "startTripPlan"
	ActionRefineTripPlan           = "refineTripPlan"
)

// ActionRequest is the message the web and extension surfaces send.
type ActionRequest struct {
	Action       string `json:"action"`
	Task         string `json:"task"`
	Feedback     string `json:"feedback"`
	SystemPrompt string `json:"systemPrompt"`
	Format       string `json:"format"` // "html" adds planHtml
}

type RefineResponse struct {
	Success           bool               `json:"success"`
	IsPlanningSession bool               `json:"isPlanningSession"`
	DraftPrompt       string             `json:"draftPrompt"`
	EvaluationJSON    *models.Evaluation `json:"evaluationJson"`
	FinalPrompt       string             `json:"finalPrompt"`
	PlanOutput        *string            `json:"planOutput"`
	PlanHTML          string             `json:"planHtml,omitempty"`
}

type PlanResponse struct {
	Success    bool   `json:"success"`
	PlanOutput string `json:"planOutput"`
	PlanHTML   string `json:"planHtml,omitempty"`
	Turns      int    `json:"turns"`
}

// HandleAction dispatches one action. The session call runs on a context
// detached from the request, so a client that disconnects abandons the
// upstream call without cancelling it.
func (s *Server) HandleAction(c *gin.Context) {
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}
	ctx := context.WithoutCancel(c.Request.Context())
	logger.Info("Action received", "action", req.Action)

	var (
		body any
		err  error
	)
	switch req.Action {
	case ActionRefineAndPotentiallyPlan:
		body, err = s.refineAndPotentiallyPlan(ctx, req)
	case ActionStartTripPlan:
		body, err = s.startTripPlan(ctx, req)
	case ActionRefineTripPlan:
		body, err = s.refineTripPlan(ctx, req)
	default:
		s.metrics.Action("unknown", "error")
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": fmt.Sprintf("Unknown action: %s", req.Action)})
		return
	}

	s.metrics.Action(req.Action, metrics.Outcome(err))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) refineAndPotentiallyPlan(ctx context.Context, req ActionRequest) (*RefineResponse, error) {
	res, err := s.session.RefineAndPlan(ctx, req.Task)
	if err != nil {
		return nil, err
	}
	out := &RefineResponse{
		Success:           true,
		IsPlanningSession: res.IsPlanningTask,
		DraftPrompt:       res.Draft,
		EvaluationJSON:    res.Evaluation,
		FinalPrompt:       res.FinalPrompt,
	}
	if res.Plan != nil {
		text := res.Plan.Text
		out.PlanOutput = &text
		if out.PlanHTML, err = planHTML(req.Format, text); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Server) startTripPlan(ctx context.Context, req ActionRequest) (*PlanResponse, error) {
	plan, err := s.session.StartPlan(ctx, req.Task, strings.TrimSpace(req.SystemPrompt))
	if err != nil {
		return nil, err
	}
	return planResponse(req.Format, plan)
}

func (s *Server) refineTripPlan(ctx context.Context, req ActionRequest) (*PlanResponse, error) {
	plan, err := s.session.RefinePlan(ctx, req.Feedback)
	if err != nil {
		return nil, err
	}
	return planResponse(req.Format, plan)
}

func planResponse(format string, plan *models.PlanResult) (*PlanResponse, error) {
	html, err := planHTML(format, plan.Text)
	if err != nil {
		return nil, err
	}
	return &PlanResponse{Success: true, PlanOutput: plan.Text, PlanHTML: html, Turns: len(plan.Transcript)}, nil
}

func planHTML(format, text string) (string, error) {
	if format != "html" {
		return "", nil
	}
	return render.PlanHTML(text)
}

func (s *Server) GetTranscript(c *gin.Context) {
	t, err := s.session.Transcript(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "state": s.session.State(), "transcript": t})
}

func (s *Server) ResetTranscript(c *gin.Context) {
	if err := s.session.Reset(context.WithoutCancel(c.Request.Context())); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) GetOptions(c *gin.Context) {
	ok, err := s.session.HasCredential(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "hasApiKey": ok})
}

type apiKeyRequest struct {
	APIKey string `json:"apiKey"`
}

// SetAPIKey backs the options page.
func (s *Server) SetAPIKey(c *gin.Context) {
	var req apiKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}
	if err := s.session.SetCredential(c.Request.Context(), req.APIKey); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
