package execshell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
)

// OSCommandRunner executes commands through os/exec. A non-zero exit code is
// reported inside the ExecutionResult, not as an error; only failures to start
// or signal-level failures surface as errors.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run executes the supplied command and captures its output streams.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	process := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	process.Dir = command.Details.WorkingDirectory
	process.Env = mergedEnvironment(command.Details.EnvironmentVariables)

	var standardOutput, standardError bytes.Buffer
	process.Stdout = &standardOutput
	process.Stderr = &standardError
	if len(command.Details.StandardInput) > 0 {
		process.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	runError := process.Run()

	executionResult := ExecutionResult{
		StandardOutput: standardOutput.String(),
		StandardError:  standardError.String(),
	}

	var exitError *exec.ExitError
	switch {
	case runError == nil:
	case errors.As(runError, &exitError):
		executionResult.ExitCode = exitError.ExitCode()
	default:
		return ExecutionResult{}, runError
	}

	return executionResult, nil
}

func mergedEnvironment(environmentVariables map[string]string) []string {
	if len(environmentVariables) == 0 {
		return nil
	}

	merged := os.Environ()
	for variableName, variableValue := range environmentVariables {
		merged = append(merged, variableName+"="+variableValue)
	}
	return merged
}
