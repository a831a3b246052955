package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/wellness/pkg/logger"
)

func main() {
	// Logs go to stderr so that command output on stdout stays clean.
	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdin, os.Stdout).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
