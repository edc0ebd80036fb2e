package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/clarifyai/clarify/internal/chat"
)

// askArgs holds the parsed ask invocation.
type askArgs struct {
	query       string
	showSources bool
	showContext bool
}

// parseAskArgs parses ask arguments. The question is everything
// positional, joined; flags may appear before it.
func parseAskArgs(args []string) (askArgs, error) {
	askFlags := flag.NewFlagSet("ask", flag.ContinueOnError)
	askFlags.SetOutput(os.Stderr)

	showSources := askFlags.Bool("sources", false, "Print the answer's source documents")
	showContext := askFlags.Bool("context", false, "Print the retrieved context chunks")

	if err := askFlags.Parse(args); err != nil {
		return askArgs{}, fmt.Errorf("parsing ask flags: %w", err)
	}

	query := strings.TrimSpace(strings.Join(askFlags.Args(), " "))
	if query == "" {
		return askArgs{}, fmt.Errorf("question is required (clarify ask <question>)")
	}

	return askArgs{query: query, showSources: *showSources, showContext: *showContext}, nil
}

// runAsk submits one question and prints the answer.
func runAsk() error {
	args, err := parseAskArgs(os.Args[2:])
	if err != nil {
		return err
	}

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

	result, err := a.client.Query(ctx, args.query, id.Username)
	if err != nil {
		return fmt.Errorf("%s", userMessage(err, "Query failed"))
	}

	fmt.Println(result.Answer)

	if args.showContext && len(result.ContextUsed) > 0 {
		fmt.Println()
		fmt.Println("Context used:")
		for i, chunk := range result.ContextUsed {
			fmt.Printf("  %d. %s\n", i+1, chunk)
		}
	}
	if args.showSources {
		sources := (chat.Message{Sources: result.Sources}).UniqueSources()
		if len(sources) > 0 {
			fmt.Println()
			fmt.Println("Sources: " + strings.Join(sources, ", "))
		}
	}
	return nil
}
