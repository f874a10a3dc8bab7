package ui_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/relpick/internal/execshell"
	"github.com/temirov/relpick/internal/ui"
)

func TestConsoleCommandObserverAnnouncesStart(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	observer := ui.NewConsoleCommandObserver(outputBuffer)

	observer.CommandStarted(execshell.ShellCommand{
		Name:    execshell.CommandGit,
		Details: execshell.CommandDetails{Arguments: []string{"status", "--porcelain"}, WorkingDirectory: "/tmp/repo"},
	})

	require.Equal(testInstance, "Running git status --porcelain (in /tmp/repo)\n", outputBuffer.String())
}

func TestConsoleCommandObserverStaysQuietOnSuccess(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	observer := ui.NewConsoleCommandObserver(outputBuffer)

	observer.CommandFinished(execshell.ShellCommand{Name: execshell.CommandGit}, execshell.ExecutionResult{ExitCode: 0})

	require.Empty(testInstance, outputBuffer.String())
}

func TestConsoleCommandObserverReportsFailures(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	observer := ui.NewConsoleCommandObserver(outputBuffer)

	observer.CommandFinished(
		execshell.ShellCommand{Name: execshell.CommandGit, Details: execshell.CommandDetails{Arguments: []string{"cherry-pick", "abc1234"}}},
		execshell.ExecutionResult{ExitCode: 1, StandardError: "conflict"},
	)
	observer.CommandFailed(
		execshell.ShellCommand{Name: execshell.CommandGitHub, Details: execshell.CommandDetails{Arguments: []string{"pr", "create"}}},
		errors.New("gh not installed"),
	)

	require.Contains(testInstance, outputBuffer.String(), "git cherry-pick abc1234 failed with exit code 1: conflict")
	require.Contains(testInstance, outputBuffer.String(), "gh pr create failed: gh not installed")
}
