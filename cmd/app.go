package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/clarifyai/clarify/internal/backend"
	"github.com/clarifyai/clarify/internal/config"
	"github.com/clarifyai/clarify/internal/identity"
	"github.com/clarifyai/clarify/internal/log"
)

// ErrNotLoggedIn indicates a command that needs a session found none.
var ErrNotLoggedIn = errors.New("not logged in (run: clarify login)")

// app bundles the wiring every networked command needs: configuration,
// the persisted identity, and a backend client reading its bearer
// token from the identity store.
type app struct {
	cfg    *config.Config
	store  *identity.Store
	client *backend.Client
}

// newApp loads configuration and connects the identity store to a
// backend client. backendOverride, when non-empty, replaces the
// configured backend URL for this invocation.
func newApp(backendOverride string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	// DEBUG forces debug logging regardless of the configured level.
	if os.Getenv("DEBUG") == "" {
		slog.SetDefault(log.New(log.Config{
			Level: log.ParseLevel(cfg.LogLevel),
			JSON:  cfg.LogJSON,
		}))
	}

	if backendOverride != "" {
		if err := config.ValidateBackendURL(backendOverride); err != nil {
			return nil, err
		}
		cfg.BackendURL = backendOverride
	}

	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}

	logger := slog.Default()
	store := identity.NewStore(identity.DefaultPath(dir), logger)
	if _, err := store.Restore(); err != nil {
		return nil, fmt.Errorf("restoring session: %w", err)
	}

	client, err := backend.New(cfg.BackendURL, store, logger,
		backend.WithTimeouts(cfg.ProbeTimeout(), cfg.RequestTimeout(), cfg.SummarizeTimeout()))
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, store: store, client: client}, nil
}

// requireIdentity returns the restored identity or ErrNotLoggedIn.
func (a *app) requireIdentity() (*identity.Identity, error) {
	id := a.store.Current()
	if id == nil {
		return nil, ErrNotLoggedIn
	}
	return id, nil
}

// probe checks backend reachability and converts a failure into a
// message naming the configured URL, the same way the connectivity
// banner does.
func (a *app) probe(ctx context.Context) error {
	if err := a.client.CheckHealth(ctx); err != nil {
		return fmt.Errorf("cannot connect to backend at %s: %w", a.cfg.BackendURL, err)
	}
	return nil
}

// userMessage converts an operation error into the string shown to the
// user: the backend's own detail when present, the fallback otherwise.
func userMessage(err error, fallback string) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	if errors.Is(err, backend.ErrUnreachable) {
		return fallback + " (backend unreachable)"
	}
	return fallback
}
