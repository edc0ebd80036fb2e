package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/clarifyai/clarify/internal/docs"
)

// runDocs dispatches the document lifecycle subcommands.
func runDocs() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: clarify docs <list|upload|delete|summarize>")
	}

	a, err := newApp("")
	if err != nil {
		return err
	}
	if _, err := a.requireIdentity(); err != nil {
		return err
	}

	manager, err := docs.NewManager(a.client, slog.Default())
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch os.Args[2] {
	case "list":
		return runDocsList(ctx, manager)
	case "upload":
		return runDocsUpload(ctx, manager, os.Args[3:])
	case "delete":
		return runDocsDelete(ctx, manager, os.Args[3:])
	case "summarize":
		return runDocsSummarize(ctx, manager, os.Args[3:])
	default:
		return fmt.Errorf("unknown docs subcommand: %s", os.Args[2])
	}
}

func runDocsList(ctx context.Context, manager *docs.Manager) error {
	documents, err := manager.List(ctx)
	if err != nil {
		return err
	}
	if len(documents) == 0 {
		fmt.Println("No documents uploaded yet.")
		return nil
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	fmt.Fprintf(w, "%-36s  %-40s  %-20s  %s\n", "ID", "FILENAME", "UPLOADED", "CHUNKS")
	for _, d := range documents {
		fmt.Fprintf(w, "%-36s  %-40s  %-20s  %d\n", d.DocID, d.Filename, d.UploadDate, d.ChunkCount)
	}
	return nil
}

func runDocsUpload(ctx context.Context, manager *docs.Manager, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: clarify docs upload <file>")
	}
	path := args[0]

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	status, err := manager.Upload(ctx, filepath.Base(path), f)
	if err != nil {
		return fmt.Errorf("%s", status.Message)
	}
	fmt.Println(status.Message)
	return nil
}

func runDocsDelete(ctx context.Context, manager *docs.Manager, args []string) error {
	deleteFlags := flag.NewFlagSet("docs delete", flag.ContinueOnError)
	deleteFlags.SetOutput(os.Stderr)
	yes := deleteFlags.Bool("yes", false, "Skip the confirmation prompt")

	docID := ""
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		docID = args[0]
		args = args[1:]
	}
	if err := deleteFlags.Parse(args); err != nil {
		return fmt.Errorf("parsing delete flags: %w", err)
	}
	if docID == "" {
		return fmt.Errorf("usage: clarify docs delete <id> [--yes]")
	}

	// Deletion is irreversible; require an explicit yes.
	if !*yes {
		ok, err := confirm(os.Stdin, fmt.Sprintf("Delete document %s? [y/N]: ", docID))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Canceled.")
			return nil
		}
	}

	if err := manager.Delete(ctx, docID); err != nil {
		return err
	}
	fmt.Println("Document deleted.")
	return nil
}

func runDocsSummarize(ctx context.Context, manager *docs.Manager, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: clarify docs summarize <id>")
	}

	summary, err := manager.Summarize(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Println(summary)
	return nil
}

// confirm prompts on stderr and accepts y/yes (case-insensitive).
// Everything else, including EOF, declines.
func confirm(r io.Reader, prompt string) (bool, error) {
	fmt.Fprint(os.Stderr, prompt)
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return false, fmt.Errorf("reading confirmation: %w", err)
		}
		return false, nil
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes", nil
}
