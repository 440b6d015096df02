package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetVerbose(false)
		SetJSON(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	reset(t)

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestPrintfHelpers(t *testing.T) {
	tests := []struct {
		name string
		log  func()
		want string
	}{
		{"debug", func() { Debug("fetched %d", 3) }, "[DEBUG] fetched 3\n"},
		{"info", func() { Info("month %s", "2025-05") }, "[INFO] month 2025-05\n"},
		{"warn", func() { Warn("missing %s", "T1") }, "[WARN] missing T1\n"},
		{"section", func() { Section("Resolve") }, "\n=== Resolve ===\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name+" verbose", func(t *testing.T) {
			buf := reset(t)
			SetVerbose(true)
			tt.log()
			assert.Equal(t, tt.want, buf.String())
		})
		t.Run(tt.name+" quiet", func(t *testing.T) {
			buf := reset(t)
			SetVerbose(false)
			tt.log()
			assert.Empty(t, buf.String())
		})
	}
}

func TestNew_LevelFollowsVerbose(t *testing.T) {
	buf := reset(t)
	log := New()

	log.Debug("hidden")
	assert.Empty(t, buf.String())

	SetVerbose(true)
	log.Debug("shown", "ticket_id", "T1")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "ticket_id=T1")
}

func TestNew_JSON(t *testing.T) {
	buf := reset(t)
	SetJSON(true)

	New().Info("report written", "run_id", "abc")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "report written", record["msg"])
	assert.Equal(t, "abc", record["run_id"])
}

func TestNew_FollowsOutputChanges(t *testing.T) {
	reset(t)
	log := New()

	var later bytes.Buffer
	SetOutput(&later)
	log.Info("after swap")

	assert.Contains(t, later.String(), "after swap")
}

func TestDiscard(t *testing.T) {
	buf := reset(t)
	Discard().Error("nothing")
	assert.Empty(t, buf.String())
}
