package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	tea "charm.land/bubbletea/v2"

	"github.com/clarifyai/clarify/internal/chat"
	"github.com/clarifyai/clarify/internal/tui"
)

// runChat starts the interactive conversation with the Bubble Tea TUI.
func runChat() error {
	a, err := newApp("")
	if err != nil {
		return err
	}

	id, err := a.requireIdentity()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := a.probe(ctx); err != nil {
		return err
	}

	controller, err := chat.NewController(a.client, id.Username, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create controller: %w", err)
	}

	// A failed history fetch degrades to an empty transcript; the chat
	// itself stays usable.
	controller.LoadHistory(ctx)

	model, err := tui.New(ctx, controller, id.Username)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	program := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err = program.Run(); err != nil {
		return fmt.Errorf("TUI exited: %w", err)
	}
	return nil
}
