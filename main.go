// ./main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/xkilldash9x/ghosthand/cmd"
	"github.com/xkilldash9x/ghosthand/internal/observability"
)

// main is the entry point for the ghosthand CLI.
func main() {
	// SIGINT and SIGTERM cancel the run context so an in-flight batch can
	// wind down instead of dying mid-unit.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)
	observability.Sync()

	if err != nil {
		// A graceful shutdown during a run is not a failure exit.
		if errors.Is(err, context.Canceled) {
			return
		}
		os.Exit(1)
	}
}
