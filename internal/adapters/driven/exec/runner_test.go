package exec

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/snowreport/internal/core/domain"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestRunner_Run(t *testing.T) {
	skipOnWindows(t)
	out, err := NewRunner(time.Second).Run(context.Background(), "sh", "-c", "echo page; echo warn >&2")
	require.NoError(t, err)
	assert.Contains(t, string(out), "page")
	assert.Contains(t, string(out), "warn")
}

func TestRunner_ExitError(t *testing.T) {
	skipOnWindows(t)
	out, err := NewRunner(time.Second).Run(context.Background(), "sh", "-c", "echo broken >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, string(out), "broken")
}

func TestRunner_Timeout(t *testing.T) {
	skipOnWindows(t)
	start := time.Now()
	_, err := NewRunner(50*time.Millisecond).Run(context.Background(), "sleep", "5")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestRunner_NotFound(t *testing.T) {
	r := NewRunner(0)
	_, err := r.Run(context.Background(), "snowreport-no-such-tool")
	assert.ErrorIs(t, err, domain.ErrToolNotFound)
	assert.ErrorIs(t, r.LookPath("snowreport-no-such-tool"), domain.ErrToolNotFound)
}

func TestRunner_LookPath(t *testing.T) {
	skipOnWindows(t)
	assert.NoError(t, NewRunner(0).LookPath("sh"))
}
