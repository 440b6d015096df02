// Package exec runs external rendering tools for the converters.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	osexec "os/exec"
	"time"

	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/core/ports/driven"
)

// Ensure Runner implements the interface.
var _ driven.CommandRunner = (*Runner)(nil)

// waitDelay bounds how long a killed tool may hold its output pipes.
const waitDelay = 5 * time.Second

// Runner executes tools with a per-call timeout.
type Runner struct {
	timeout time.Duration
}

// NewRunner creates a runner. A zero timeout means no limit beyond ctx.
func NewRunner(timeout time.Duration) *Runner {
	return &Runner{timeout: timeout}
}

// Run executes name with args and returns combined stdout and stderr.
func (r *Runner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := osexec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	switch {
	case err == nil:
		return out.Bytes(), nil
	case errors.Is(err, osexec.ErrNotFound):
		return out.Bytes(), fmt.Errorf("%s: %w", name, domain.ErrToolNotFound)
	case ctx.Err() != nil:
		return out.Bytes(), fmt.Errorf("%s: %w", name, ctx.Err())
	default:
		return out.Bytes(), fmt.Errorf("%s: %w", name, err)
	}
}

// LookPath reports whether name is on PATH.
func (r *Runner) LookPath(name string) error {
	if _, err := osexec.LookPath(name); err != nil {
		return fmt.Errorf("%s: %w", name, domain.ErrToolNotFound)
	}
	return nil
}
