package dispatch

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/gestured/gestured/pkg/logger"
)

// ShellRunner launches actions through the user's shell.
type ShellRunner struct{}

// Run starts `sh -c action` and returns without waiting for it to exit.
// The action inherits the daemon's stdout and stderr. In-flight actions
// are never cancelled, so the context is unused here.
func (ShellRunner) Run(_ context.Context, action string) error {
	cmd := exec.Command("sh", "-c", action)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting action: %w", err)
	}

	// Reap the child when it exits; the exit status is not consumed.
	go func() { _ = cmd.Wait() }()

	return nil
}

// LogRunner records actions instead of executing them. It backs the
// daemon's dry-run mode.
type LogRunner struct {
	log logger.Logger
}

// NewLogRunner creates a runner that only logs.
func NewLogRunner(log logger.Logger) *LogRunner {
	return &LogRunner{log: log}
}

// Run logs the action that would have been launched.
func (l *LogRunner) Run(ctx context.Context, action string) error {
	l.log.Info(ctx, "dry run, action not launched", logger.String("action", action))
	return nil
}
