package driven

import "context"

// CommandRunner executes an external rendering tool.
// It is injectable so converters can be tested without the tools installed.
type CommandRunner interface {
	// Run executes name with args and returns combined output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)

	// LookPath reports whether a tool is installed.
	LookPath(name string) error
}
