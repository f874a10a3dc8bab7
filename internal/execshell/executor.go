package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant        = "logger not configured"
	commandRunnerNotConfiguredMessageConstant = "command runner not configured"
	commandFailedErrorTemplateConstant        = "%s exited with code %d%s"
	commandExecutionErrorTemplateConstant     = "%s could not be executed: %s"
	standardErrorDetailTemplateConstant       = ": %s"
	commandStartedLogMessageConstant          = "shell command started"
	commandCompletedLogMessageConstant        = "shell command completed"
	commandFailedLogMessageConstant           = "shell command failed"
	commandNotExecutedLogMessageConstant      = "shell command not executed"
	logFieldCommandConstant                   = "command"
	logFieldArgumentsConstant                 = "arguments"
	logFieldWorkingDirectoryConstant          = "working_directory"
	logFieldExitCodeConstant                  = "exit_code"
	logFieldStandardErrorConstant             = "standard_error"
	commandLabelSeparatorConstant             = " "
)

// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
var ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)

// CommandFailedError reports a command that completed with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command including trailing standard error output.
func (failedError CommandFailedError) Error() string {
	standardErrorDetail := ""
	trimmedStandardError := strings.TrimSpace(failedError.Result.StandardError)
	if len(trimmedStandardError) > 0 {
		standardErrorDetail = fmt.Sprintf(standardErrorDetailTemplateConstant, trimmedStandardError)
	}
	return fmt.Sprintf(commandFailedErrorTemplateConstant, commandLabel(failedError.Command), failedError.Result.ExitCode, standardErrorDetail)
}

// CommandExecutionError reports a command that could not be executed at all.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (executionError CommandExecutionError) Error() string {
	causeMessage := ""
	if executionError.Cause != nil {
		causeMessage = executionError.Cause.Error()
	}
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, commandLabel(executionError.Command), causeMessage)
}

// Unwrap exposes the underlying execution failure.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// CommandObserver receives lifecycle notifications for every command the
// executor runs. Observers must not block; they run on the calling goroutine.
type CommandObserver interface {
	CommandStarted(command ShellCommand)
	CommandFinished(command ShellCommand, result ExecutionResult)
	CommandFailed(command ShellCommand, failure error)
}

// ShellExecutor runs git and GitHub CLI commands with structured logging and lifecycle events.
type ShellExecutor struct {
	logger               *zap.Logger
	runner               CommandRunner
	observer             CommandObserver
	humanReadableLogging bool
	messageBuilder       operationMessageBuilder
}

// NewShellExecutor constructs a ShellExecutor from the supplied logger and runner.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, humanReadableLogging bool) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	return &ShellExecutor{
		logger:               logger,
		runner:               runner,
		humanReadableLogging: humanReadableLogging,
	}, nil
}

// SetCommandObserver replaces the observer notified about command lifecycle
// events. A nil observer disables notifications.
func (executor *ShellExecutor) SetCommandObserver(observer CommandObserver) {
	executor.observer = observer
}

// ExecuteGit runs the git executable with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// ExecuteGitHubCLI runs the GitHub CLI executable with the provided details.
func (executor *ShellExecutor) ExecuteGitHubCLI(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.execute(executionContext, ShellCommand{Name: CommandGitHub, Details: details})
}

func (executor *ShellExecutor) execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if executor.observer != nil {
		executor.observer.CommandStarted(command)
	}
	executor.logCommandStart(command)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executionFailure := CommandExecutionError{Command: command, Cause: runError}
		if executor.observer != nil {
			executor.observer.CommandFailed(command, runError)
		}
		executor.logExecutionFailure(command, runError)
		return ExecutionResult{}, executionFailure
	}

	if executor.observer != nil {
		executor.observer.CommandFinished(command, executionResult)
	}

	if executionResult.ExitCode != 0 {
		executor.logCommandFailure(command, executionResult)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logCommandSuccess(command, executionResult)
	return executionResult, nil
}

func (executor *ShellExecutor) logCommandStart(command ShellCommand) {
	if executor.humanReadableLogging {
		executor.logger.Info(executor.messageBuilder.startMessage(command))
		return
	}
	executor.logger.Info(
		commandStartedLogMessageConstant,
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)
}

func (executor *ShellExecutor) logCommandSuccess(command ShellCommand, result ExecutionResult) {
	if executor.humanReadableLogging {
		executor.logger.Info(executor.messageBuilder.successMessage(command))
		return
	}
	executor.logger.Info(
		commandCompletedLogMessageConstant,
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.Int(logFieldExitCodeConstant, result.ExitCode),
	)
}

func (executor *ShellExecutor) logCommandFailure(command ShellCommand, result ExecutionResult) {
	if executor.humanReadableLogging {
		executor.logger.Warn(executor.messageBuilder.failureMessage(command, result))
		return
	}
	executor.logger.Warn(
		commandFailedLogMessageConstant,
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.Int(logFieldExitCodeConstant, result.ExitCode),
		zap.String(logFieldStandardErrorConstant, strings.TrimSpace(result.StandardError)),
	)
}

func (executor *ShellExecutor) logExecutionFailure(command ShellCommand, failure error) {
	if executor.humanReadableLogging {
		executor.logger.Error(executor.messageBuilder.executionFailureMessage(command, failure))
		return
	}
	executor.logger.Error(
		commandNotExecutedLogMessageConstant,
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.Error(failure),
	)
}

func commandLabel(command ShellCommand) string {
	labelParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		labelParts = append(labelParts, strings.Join(command.Details.Arguments, commandLabelSeparatorConstant))
	}
	return strings.Join(labelParts, commandLabelSeparatorConstant)
}
