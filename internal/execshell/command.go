package execshell

import "context"

const (
	gitExecutableNameConstant    = "git"
	githubExecutableNameConstant = "gh"
)

// CommandName identifies the executable invoked through the shell executor.
type CommandName string

// Supported executables.
const (
	// CommandGit identifies the git executable.
	CommandGit CommandName = CommandName(gitExecutableNameConstant)
	// CommandGitHub identifies the GitHub CLI executable.
	CommandGitHub CommandName = CommandName(githubExecutableNameConstant)
)

// CommandDetails captures the invocation parameters for a shell command.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand pairs an executable name with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable outputs of a completed command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner executes shell commands and reports their results.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}
