package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOperationMessageBuilderRendersMessages(testInstance *testing.T) {
	builder := operationMessageBuilder{}

	cherryPickCommand := ShellCommand{
		Name:    CommandGit,
		Details: CommandDetails{Arguments: []string{"cherry-pick", "-m", "1", "abc1234"}, WorkingDirectory: "/tmp/repo"},
	}

	require.Equal(testInstance, "Starting cherry-pick: git cherry-pick -m 1 abc1234 (in /tmp/repo)", builder.startMessage(cherryPickCommand))
	require.Equal(testInstance, "Finished cherry-pick: git cherry-pick -m 1 abc1234 (in /tmp/repo)", builder.successMessage(cherryPickCommand))
	require.Equal(
		testInstance,
		"cherry-pick failed (git cherry-pick -m 1 abc1234 (in /tmp/repo), exit code 1: conflict)",
		builder.failureMessage(cherryPickCommand, ExecutionResult{ExitCode: 1, StandardError: "conflict"}),
	)
	require.Equal(
		testInstance,
		"cherry-pick could not run (git cherry-pick -m 1 abc1234 (in /tmp/repo)): executable missing",
		builder.executionFailureMessage(cherryPickCommand, errors.New("executable missing")),
	)
}

func TestOperationMessageBuilderFallsBackForUnknownSubcommands(testInstance *testing.T) {
	builder := operationMessageBuilder{}

	unknownCommand := ShellCommand{
		Name:    CommandGit,
		Details: CommandDetails{Arguments: []string{"gc"}},
	}

	require.Equal(testInstance, "Running git gc", builder.startMessage(unknownCommand))
	require.Equal(testInstance, "Completed git gc", builder.successMessage(unknownCommand))
}

func TestFirstSubcommandSkipsFlags(testInstance *testing.T) {
	command := ShellCommand{
		Name:    CommandGitHub,
		Details: CommandDetails{Arguments: []string{"--paginate", "api", "repos/acme/widget"}},
	}

	require.Equal(testInstance, "api", firstSubcommand(command))
}
