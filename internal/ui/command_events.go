package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/temirov/relpick/internal/execshell"
)

const (
	commandStartedMessageTemplateConstant          = "Running %s\n"
	commandFailedExitCodeMessageTemplateConstant   = "%s failed with exit code %d%s\n"
	commandExecutionFailureMessageTemplateConstant = "%s failed: %s\n"
	workingDirectorySuffixTemplateConstant         = " (in %s)"
	commandArgumentsJoinSeparatorConstant          = " "
	standardErrorSuffixTemplateConstant            = ": %s"
	unknownFailureMessageConstant                  = "unknown error"
	emptyStringConstant                            = ""
)

// ConsoleCommandObserver prints command lifecycle events for interactive runs.
//
// Successful completions stay quiet so interactive output remains readable;
// failures are always reported.
type ConsoleCommandObserver struct {
	writer io.Writer
}

// NewConsoleCommandObserver constructs an observer writing to the supplied writer.
func NewConsoleCommandObserver(writer io.Writer) *ConsoleCommandObserver {
	return &ConsoleCommandObserver{writer: writer}
}

// CommandStarted announces the command about to run.
func (observer *ConsoleCommandObserver) CommandStarted(command execshell.ShellCommand) {
	if observer == nil || observer.writer == nil {
		return
	}
	fmt.Fprintf(observer.writer, commandStartedMessageTemplateConstant, formatCommandLabel(command))
}

// CommandFinished reports commands that finished with a non-zero exit code.
func (observer *ConsoleCommandObserver) CommandFinished(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if observer == nil || observer.writer == nil {
		return
	}
	if result.ExitCode == 0 {
		return
	}
	fmt.Fprintf(observer.writer, commandFailedExitCodeMessageTemplateConstant, formatCommandLabel(command), result.ExitCode, formatStandardErrorSuffix(result.StandardError))
}

// CommandFailed reports commands that could not be executed at all.
func (observer *ConsoleCommandObserver) CommandFailed(command execshell.ShellCommand, failure error) {
	if observer == nil || observer.writer == nil {
		return
	}
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	fmt.Fprintf(observer.writer, commandExecutionFailureMessageTemplateConstant, formatCommandLabel(command), failureMessage)
}

func formatCommandLabel(command execshell.ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return commandLabel
	}
	return commandLabel + fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}
