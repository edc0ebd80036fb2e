package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/clarifyai/clarify/internal/identity"
)

// loginArgs holds the parsed login invocation.
type loginArgs struct {
	username string
	password string
	admin    bool
	backend  string
}

// parseLoginArgs parses login arguments. Uses flag.FlagSet for
// standard Go flag parsing, supporting:
//   - clarify login alice                      (positional username)
//   - clarify login --username alice --admin   (flags)
//   - clarify login --backend http://host:8000 (per-invocation override)
func parseLoginArgs(args []string) (loginArgs, error) {
	loginFlags := flag.NewFlagSet("login", flag.ContinueOnError)
	loginFlags.SetOutput(os.Stderr)

	username := loginFlags.String("username", "", "Account username")
	password := loginFlags.String("password", "", "Account password (prompted when omitted)")
	admin := loginFlags.Bool("admin", false, "Authenticate against the admin endpoint")
	backendURL := loginFlags.String("backend", "", "Backend base URL override")

	// Check for positional username first (clarify login alice)
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		*username = args[0]
		args = args[1:]
	}

	if err := loginFlags.Parse(args); err != nil {
		return loginArgs{}, fmt.Errorf("parsing login flags: %w", err)
	}

	if *username == "" {
		return loginArgs{}, fmt.Errorf("username is required (clarify login <username>)")
	}

	return loginArgs{
		username: *username,
		password: *password,
		admin:    *admin,
		backend:  *backendURL,
	}, nil
}

// runLogin authenticates against the backend and persists the session.
func runLogin() error {
	args, err := parseLoginArgs(os.Args[2:])
	if err != nil {
		return err
	}

	a, err := newApp(args.backend)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Probe before asking for a password: an unreachable backend is
	// reported immediately instead of after the credential prompt.
	if err := a.probe(ctx); err != nil {
		return err
	}

	password := args.password
	if password == "" {
		password, err = promptPassword(os.Stdin)
		if err != nil {
			return err
		}
	}

	var id *identity.Identity
	if args.admin {
		id, err = a.client.LoginAdmin(ctx, args.username, password)
	} else {
		id, err = a.client.LoginUser(ctx, args.username, password)
	}
	if err != nil {
		return fmt.Errorf("%s", userMessage(err, "Login failed"))
	}

	if _, err := a.store.Login(*id); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	fmt.Printf("Logged in as %s (%s)\n", id.Username, id.Role)
	if id.IsAdmin() {
		fmt.Println("Manage the document collection with: clarify docs list")
	} else {
		fmt.Println("Start a conversation with: clarify chat")
	}
	return nil
}

// promptPassword reads one line from r without echo suppression; the
// binary targets local developer terminals where a visible prompt is
// acceptable.
func promptPassword(r io.Reader) (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return "", fmt.Errorf("no password provided")
	}
	password := strings.TrimSpace(scanner.Text())
	if password == "" {
		return "", fmt.Errorf("no password provided")
	}
	return password, nil
}
