package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
)

// runLogout discards the saved session. Idempotent.
func runLogout() error {
	a, err := newApp("")
	if err != nil {
		return err
	}

	if err := a.store.Logout(); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

// runWhoami shows the signed-in user.
func runWhoami() error {
	a, err := newApp("")
	if err != nil {
		return err
	}

	id := a.store.Current()
	if id == nil {
		fmt.Println("Not logged in.")
		return nil
	}
	fmt.Printf("%s (%s)\n", id.Username, id.Role)
	return nil
}

// runStatus shows configuration and backend reachability.
func runStatus() error {
	a, err := newApp("")
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("Backend:  %s\n", a.cfg.BackendURL)
	if err := a.client.CheckHealth(ctx); err != nil {
		fmt.Println("Status:   unreachable")
	} else {
		fmt.Println("Status:   connected")
	}

	if id := a.store.Current(); id != nil {
		fmt.Printf("Session:  %s (%s)\n", id.Username, id.Role)
	} else {
		fmt.Println("Session:  not logged in")
	}
	return nil
}
