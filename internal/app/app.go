// Package app wires configuration, storage, the LLM client and the planning
// session together for the server and the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/example/trip-refiner/internal/config"
	"github.com/example/trip-refiner/internal/logger"
	"github.com/example/trip-refiner/internal/metrics"
	"github.com/example/trip-refiner/internal/orchestrator"
	"github.com/example/trip-refiner/internal/providers/llm"
	"github.com/example/trip-refiner/internal/storage"
)

type App struct {
	Config  *config.Config
	Store   storage.Store
	Hub     *orchestrator.Hub
	Metrics *metrics.Metrics
	Session *orchestrator.Session
}

// New opens the store and builds the session. A configured API key is copied
// into the store only when the store has none, so keys saved by the user win.
func New(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*App, error) {
	store, err := storage.Open(cfg, orchestrator.CredentialKey)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	if cfg.LLM.APIKey != "" {
		if err := seedCredential(ctx, store, cfg.LLM.APIKey); err != nil {
			store.Close()
			return nil, err
		}
	}

	client := llm.New(cfg.LLM, m)
	hub := orchestrator.NewHub()
	session, err := orchestrator.NewSession(ctx, orchestrator.SessionConfig{
		Store:        store,
		Client:       client,
		PlannerModel: cfg.LLM.PlannerModel,
		Refiner:      orchestrator.NewRefiner(client, cfg.LLM.RefinerModel, hub, m),
		Hub:          hub,
		Metrics:      m,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	logger.Info("Planning session ready",
		"provider", cfg.LLM.Provider,
		"refiner_model", cfg.LLM.RefinerModel,
		"planner_model", cfg.LLM.PlannerModel,
		"database", cfg.Database.Type,
		"state", session.State(),
	)
	return &App{Config: cfg, Store: store, Hub: hub, Metrics: m, Session: session}, nil
}

func seedCredential(ctx context.Context, store storage.Store, key string) error {
	_, ok, err := store.Get(ctx, orchestrator.CredentialKey)
	if err != nil {
		return fmt.Errorf("checking stored API key: %w", err)
	}
	if ok {
		return nil
	}
	if err := store.Set(ctx, orchestrator.CredentialKey, key); err != nil {
		return fmt.Errorf("seeding API key: %w", err)
	}
	logger.Info("Seeded API key from configuration")
	return nil
}

func (a *App) Close() error {
	return a.Store.Close()
}
