// Package cmd provides CLI commands for clarify.
//
// Commands:
//   - login/logout/whoami: session lifecycle against the ClarifyAI backend
//   - chat: interactive conversation with Bubble Tea TUI
//   - ask: one-shot question from the command line
//   - docs: document lifecycle (list, upload, delete, summarize)
//
// Signal handling and graceful shutdown are implemented for all
// commands via context cancellation.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/clarifyai/clarify/internal/log"
)

// Execute is the main entry point for the clarify CLI application.
func Execute() error {
	// Initialize logger once at entry point
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(log.New(log.Config{Level: level}))

	if len(os.Args) < 2 {
		runHelp()
		return nil
	}

	switch os.Args[1] {
	case "login":
		return runLogin()
	case "logout":
		return runLogout()
	case "whoami":
		return runWhoami()
	case "status":
		return runStatus()
	case "chat":
		return runChat()
	case "ask":
		return runAsk()
	case "docs":
		return runDocs()
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("clarify - Terminal client for the ClarifyAI document assistant")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  clarify login [username]       Sign in (--admin for the admin endpoint)")
	fmt.Println("  clarify logout                 Sign out and discard the saved session")
	fmt.Println("  clarify whoami                 Show the signed-in user")
	fmt.Println("  clarify status                 Show configuration and backend reachability")
	fmt.Println("  clarify chat                   Start the interactive chat")
	fmt.Println("  clarify ask <question>         Ask a single question and print the answer")
	fmt.Println("  clarify docs list              List ingested documents")
	fmt.Println("  clarify docs upload <file>     Upload a PDF or DOCX document")
	fmt.Println("  clarify docs delete <id>       Delete a document (asks for confirmation)")
	fmt.Println("  clarify docs summarize <id>    Generate a document summary")
	fmt.Println("  clarify --version              Show version information")
	fmt.Println("  clarify --help                 Show this help")
	fmt.Println()
	fmt.Println("Chat Commands (in interactive mode):")
	fmt.Println("  /help                          Show available commands")
	fmt.Println("  /context [n]                   Show or hide an answer's retrieval context")
	fmt.Println("  /clear                         Clear the visible conversation")
	fmt.Println("  /exit, /quit                   Exit clarify")
	fmt.Println()
	fmt.Println("Shortcuts:")
	fmt.Println("  Ctrl+D                         Exit clarify")
	fmt.Println("  Ctrl+C                         Cancel current input")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  CLARIFY_BACKEND_URL            Backend base URL (default: http://localhost:8000)")
	fmt.Println("  DEBUG                          Optional: Enable debug logging")
}
