package shared

import (
	"context"
	"time"

	"github.com/temirov/relpick/internal/execshell"
)

const (
	// OriginRemoteNameConstant identifies the default upstream remote used for GitHub repositories.
	OriginRemoteNameConstant = "origin"
)

// Clock abstracts time acquisition for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time source.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ConfirmationResult captures the outcome of a user confirmation prompt.
type ConfirmationResult struct {
	Confirmed bool
}

// ConfirmationPrompter collects user confirmations prior to mutating actions.
type ConfirmationPrompter interface {
	Confirm(prompt string) (ConfirmationResult, error)
}

// LinePrompter collects free-text responses from the operator.
type LinePrompter interface {
	ReadLine(prompt string) (string, error)
}

// GitExecutor exposes the subset of shell execution used by release services.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}
