package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/example/trip-refiner/internal/agents"
	"github.com/example/trip-refiner/internal/logger"
	"github.com/example/trip-refiner/internal/metrics"
	"github.com/example/trip-refiner/internal/models"
	"github.com/example/trip-refiner/internal/providers/llm"
	"github.com/example/trip-refiner/internal/storage"
)

const (
	DefaultSessionID = "default"

	// Store keys.
	CredentialKey = "googleApiKey"
	TranscriptKey = "tripPlanTranscript"
)

var (
	// ErrBusy is returned when another session operation is still running.
	ErrBusy = errors.New("Another request is still in progress. Please wait for it to finish.")

	ErrEmptyCredential = errors.New("Please enter an API Key.")
)

// InvalidStateError rejects a request the current session state cannot serve.
// No network call is made.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string { return e.Reason }

type SessionConfig struct {
	Store        storage.Store
	Client       llm.Client
	PlannerModel string
	Refiner      *Refiner
	Hub          *Hub
	Metrics      *metrics.Metrics
}

// Session owns the persisted planning transcript and the cached credential.
// At most one operation runs at a time; the transcript is only written after
// a successful upstream call and always as a whole.
type Session struct {
	ID string

	store        storage.Store
	client       llm.Client
	plannerModel string
	refiner      *Refiner
	hub          *Hub
	metrics      *metrics.Metrics
	now          func() time.Time

	inflight *semaphore.Weighted

	mu     sync.Mutex
	apiKey string
	state  models.SessionState
}

// NewSession derives the initial state from the persisted transcript.
func NewSession(ctx context.Context, cfg SessionConfig) (*Session, error) {
	s := &Session{
		ID:           DefaultSessionID,
		store:        cfg.Store,
		client:       cfg.Client,
		plannerModel: cfg.PlannerModel,
		refiner:      cfg.Refiner,
		hub:          cfg.Hub,
		metrics:      cfg.Metrics,
		now:          time.Now,
		inflight:     semaphore.NewWeighted(1),
		state:        models.StateIdle,
	}
	transcript, err := s.loadTranscript(ctx)
	if err != nil {
		return nil, err
	}
	if len(transcript) > 0 {
		s.state = models.StateHasPlan
	}
	return s, nil
}

func (s *Session) State() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st models.SessionState) models.SessionState {
	s.mu.Lock()
	prev := s.state
	s.state = st
	s.mu.Unlock()
	if prev != st {
		s.hub.Publish(Event{Event: EventSessionState, SessionID: s.ID, Payload: map[string]any{"state": st}})
	}
	return prev
}

func (s *Session) acquire() error {
	if !s.inflight.TryAcquire(1) {
		return ErrBusy
	}
	return nil
}

// SetCredential stores a trimmed API key and refreshes the cached copy.
func (s *Session) SetCredential(ctx context.Context, apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return ErrEmptyCredential
	}
	if err := s.store.Set(ctx, CredentialKey, apiKey); err != nil {
		return err
	}
	s.mu.Lock()
	s.apiKey = apiKey
	s.mu.Unlock()
	logger.Info("API key saved")
	return nil
}

// HasCredential reports whether a key is cached or stored.
func (s *Session) HasCredential(ctx context.Context) (bool, error) {
	_, err := s.credential(ctx)
	var cfgErr *llm.ConfigurationError
	if errors.As(err, &cfgErr) {
		return false, nil
	}
	return err == nil, err
}

func (s *Session) credential(ctx context.Context) (string, error) {
	s.mu.Lock()
	cached := s.apiKey
	s.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	v, ok, err := s.store.Get(ctx, CredentialKey)
	if err != nil {
		return "", fmt.Errorf("loading API key: %w", err)
	}
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", &llm.ConfigurationError{Reason: "API Key not set. Please save your Gemini API key on the options page."}
	}
	s.mu.Lock()
	s.apiKey = v
	s.mu.Unlock()
	return v, nil
}

// Transcript returns the persisted transcript, empty when there is none.
func (s *Session) Transcript(ctx context.Context) (models.Transcript, error) {
	return s.loadTranscript(ctx)
}

func (s *Session) loadTranscript(ctx context.Context) (models.Transcript, error) {
	raw, ok, err := s.store.Get(ctx, TranscriptKey)
	if err != nil {
		return nil, fmt.Errorf("loading transcript: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return models.Transcript{}, nil
	}
	var t models.Transcript
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return nil, fmt.Errorf("decoding stored transcript: %w", err)
	}
	return t, nil
}

func (s *Session) saveTranscript(ctx context.Context, t models.Transcript) error {
	b, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding transcript: %w", err)
	}
	if err := s.store.Set(ctx, TranscriptKey, string(b)); err != nil {
		return fmt.Errorf("saving transcript: %w", err)
	}
	return nil
}

// Reset clears the transcript and returns the session to idle.
func (s *Session) Reset(ctx context.Context) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.inflight.Release(1)

	err := s.store.Delete(ctx, TranscriptKey)
	s.metrics.SessionOperation("reset", metrics.Outcome(err), 0)
	if err != nil {
		return fmt.Errorf("clearing transcript: %w", err)
	}
	s.setState(models.StateIdle)
	logger.Info("Planning transcript cleared")
	return nil
}

// StartPlan asks the planner model for a complete itinerary and replaces the
// persisted transcript with the new two-turn conversation. An empty
// systemInstruction selects the built-in itinerary instruction.
func (s *Session) StartPlan(ctx context.Context, task, systemInstruction string) (*models.PlanResult, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.inflight.Release(1)
	if strings.TrimSpace(systemInstruction) == "" {
		systemInstruction = agents.ItinerarySystemInstruction
	}
	return s.startPlan(ctx, task, systemInstruction)
}

// startPlan sends systemInstruction as given; an empty one means none.
func (s *Session) startPlan(ctx context.Context, task, systemInstruction string) (res *models.PlanResult, err error) {
	defer func() { s.observe("start_plan", err, res) }()

	task = strings.TrimSpace(task)
	if task == "" {
		return nil, &InvalidStateError{Reason: "Task description missing."}
	}
	apiKey, err := s.credential(ctx)
	if err != nil {
		return nil, err
	}

	prev := s.setState(models.StateAwaitingInitialPlan)
	logger.Info("Generating trip plan", "model", s.plannerModel)
	resp, err := s.client.Generate(ctx, llm.Request{
		Model:             s.plannerModel,
		APIKey:            apiKey,
		Prompt:            task,
		SystemInstruction: systemInstruction,
	})
	if err == nil {
		err = s.saveTranscript(ctx, resp.History)
	}
	if err != nil {
		s.setState(prev)
		logger.Error("Trip plan generation failed", "error", err)
		return nil, err
	}
	s.setState(models.StateHasPlan)
	return s.planResult(resp), nil
}

// RefinePlan sends feedback as a follow-up turn on the persisted transcript.
func (s *Session) RefinePlan(ctx context.Context, feedback string) (res *models.PlanResult, err error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.inflight.Release(1)
	defer func() { s.observe("refine_plan", err, res) }()

	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return nil, &InvalidStateError{Reason: "Feedback missing."}
	}
	apiKey, err := s.credential(ctx)
	if err != nil {
		return nil, err
	}
	history, err := s.loadTranscript(ctx)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, &InvalidStateError{Reason: "No existing trip plan to refine. Please start a new plan first."}
	}

	prev := s.setState(models.StateAwaitingRefinement)
	logger.Info("Refining trip plan", "model", s.plannerModel, "turns", len(history))
	resp, err := s.client.Generate(ctx, llm.Request{
		Model:   s.plannerModel,
		APIKey:  apiKey,
		Prompt:  feedback,
		History: history,
	})
	if err == nil {
		err = s.saveTranscript(ctx, resp.History)
	}
	if err != nil {
		s.setState(prev)
		logger.Error("Trip plan refinement failed", "error", err)
		return nil, err
	}
	s.setState(models.StateHasPlan)
	return s.planResult(resp), nil
}

// RefineAndPlan runs the prompt pipeline on task and, for travel planning
// tasks, generates a plan with the final prompt as system instruction.
func (s *Session) RefineAndPlan(ctx context.Context, task string) (res *models.RefineAndPlanResult, err error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.inflight.Release(1)
	defer func() { s.metrics.SessionOperation("refine_and_plan", metrics.Outcome(err), -1) }()

	task = strings.TrimSpace(task)
	if task == "" {
		return nil, &InvalidStateError{Reason: "Task description missing."}
	}
	apiKey, err := s.credential(ctx)
	if err != nil {
		return nil, err
	}

	refined, err := s.refiner.Refine(ctx, apiKey, task)
	if err != nil {
		return nil, err
	}
	out := &models.RefineAndPlanResult{RefineResult: refined}
	if !refined.IsPlanningTask {
		return out, nil
	}

	plan, err := s.startPlan(ctx, task, refined.FinalPrompt)
	if err != nil {
		return nil, err
	}
	out.Plan = plan
	return out, nil
}

func (s *Session) planResult(resp *llm.Response) *models.PlanResult {
	res := &models.PlanResult{Text: resp.Text, Transcript: resp.History, CreatedAt: s.now()}
	s.hub.Publish(Event{Event: EventPlan, SessionID: s.ID, Payload: map[string]any{"turns": len(res.Transcript)}})
	return res
}

func (s *Session) observe(op string, err error, res *models.PlanResult) {
	turns := -1
	if res != nil {
		turns = len(res.Transcript)
	}
	s.metrics.SessionOperation(op, metrics.Outcome(err), turns)
}
