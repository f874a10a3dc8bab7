package execshell

import (
	"fmt"
	"strings"
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
)

const (
	gitRevParseSubcommandConstant   = "rev-parse"
	gitRevListSubcommandConstant    = "rev-list"
	gitMergeBaseSubcommandConstant  = "merge-base"
	gitStatusSubcommandConstant     = "status"
	gitCheckoutSubcommandConstant   = "checkout"
	gitBranchSubcommandConstant     = "branch"
	gitCherryPickSubcommandConstant = "cherry-pick"
	gitStashSubcommandConstant      = "stash"
	gitPushSubcommandConstant       = "push"
	gitLogSubcommandConstant        = "log"
	gitShowSubcommandConstant       = "show"
)

const (
	gitRevParseOperationLabelConstant   = "revision resolution"
	gitRevListOperationLabelConstant    = "commit enumeration"
	gitMergeBaseOperationLabelConstant  = "ancestry check"
	gitStatusOperationLabelConstant     = "working tree inspection"
	gitCheckoutOperationLabelConstant   = "branch checkout"
	gitBranchOperationLabelConstant     = "branch management"
	gitCherryPickOperationLabelConstant = "cherry-pick"
	gitStashOperationLabelConstant      = "stash management"
	gitPushOperationLabelConstant       = "branch push"
	gitLogOperationLabelConstant        = "history inspection"
	gitShowOperationLabelConstant       = "commit inspection"
)

const (
	githubRepoSubcommandConstant        = "repo"
	githubPullRequestSubcommandConstant = "pr"
	githubAPISubcommandConstant         = "api"
	githubAuthSubcommandConstant        = "auth"
)

const (
	githubRepoOperationLabelConstant        = "repository lookup"
	githubPullRequestOperationLabelConstant = "pull request operation"
	githubAPIOperationLabelConstant         = "GitHub API request"
	githubAuthOperationLabelConstant        = "authentication check"
)

const (
	operationStartTemplateConstant            = "Starting %s: %s"
	operationSuccessTemplateConstant          = "Finished %s: %s"
	operationFailureTemplateConstant          = "%s failed (%s, exit code %d%s)"
	operationExecutionFailureTemplateConstant = "%s could not run (%s): %s"
)

var gitOperationLabels = map[string]string{
	gitRevParseSubcommandConstant:   gitRevParseOperationLabelConstant,
	gitRevListSubcommandConstant:    gitRevListOperationLabelConstant,
	gitMergeBaseSubcommandConstant:  gitMergeBaseOperationLabelConstant,
	gitStatusSubcommandConstant:     gitStatusOperationLabelConstant,
	gitCheckoutSubcommandConstant:   gitCheckoutOperationLabelConstant,
	gitBranchSubcommandConstant:     gitBranchOperationLabelConstant,
	gitCherryPickSubcommandConstant: gitCherryPickOperationLabelConstant,
	gitStashSubcommandConstant:      gitStashOperationLabelConstant,
	gitPushSubcommandConstant:       gitPushOperationLabelConstant,
	gitLogSubcommandConstant:        gitLogOperationLabelConstant,
	gitShowSubcommandConstant:       gitShowOperationLabelConstant,
}

var githubOperationLabels = map[string]string{
	githubRepoSubcommandConstant:        githubRepoOperationLabelConstant,
	githubPullRequestSubcommandConstant: githubPullRequestOperationLabelConstant,
	githubAPISubcommandConstant:         githubAPIOperationLabelConstant,
	githubAuthSubcommandConstant:        githubAuthOperationLabelConstant,
}

// operationMessageBuilder renders human-readable lifecycle messages for shell commands.
type operationMessageBuilder struct{}

func (builder operationMessageBuilder) startMessage(command ShellCommand) string {
	operationLabel, operationKnown := resolveOperationLabel(command)
	if operationKnown {
		return fmt.Sprintf(operationStartTemplateConstant, operationLabel, describeCommand(command))
	}
	return fmt.Sprintf(genericStartTemplateConstant, describeCommand(command))
}

func (builder operationMessageBuilder) successMessage(command ShellCommand) string {
	operationLabel, operationKnown := resolveOperationLabel(command)
	if operationKnown {
		return fmt.Sprintf(operationSuccessTemplateConstant, operationLabel, describeCommand(command))
	}
	return fmt.Sprintf(genericSuccessTemplateConstant, describeCommand(command))
}

func (builder operationMessageBuilder) failureMessage(command ShellCommand, result ExecutionResult) string {
	standardErrorSuffix := formatStandardErrorSuffix(result.StandardError)
	operationLabel, operationKnown := resolveOperationLabel(command)
	if operationKnown {
		return fmt.Sprintf(operationFailureTemplateConstant, operationLabel, describeCommand(command), result.ExitCode, standardErrorSuffix)
	}
	return fmt.Sprintf(genericFailureTemplateConstant, describeCommand(command), result.ExitCode, standardErrorSuffix)
}

func (builder operationMessageBuilder) executionFailureMessage(command ShellCommand, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	operationLabel, operationKnown := resolveOperationLabel(command)
	if operationKnown {
		return fmt.Sprintf(operationExecutionFailureTemplateConstant, operationLabel, describeCommand(command), failureMessage)
	}
	return fmt.Sprintf(genericExecutionFailureTemplateConstant, describeCommand(command), failureMessage)
}

func resolveOperationLabel(command ShellCommand) (string, bool) {
	subcommand := firstSubcommand(command)
	if len(subcommand) == 0 {
		return emptyStringConstant, false
	}

	switch command.Name {
	case CommandGit:
		operationLabel, labelExists := gitOperationLabels[subcommand]
		return operationLabel, labelExists
	case CommandGitHub:
		operationLabel, labelExists := githubOperationLabels[subcommand]
		return operationLabel, labelExists
	default:
		return emptyStringConstant, false
	}
}

func firstSubcommand(command ShellCommand) string {
	for _, argument := range command.Details.Arguments {
		trimmedArgument := strings.TrimSpace(argument)
		if len(trimmedArgument) == 0 {
			continue
		}
		if strings.HasPrefix(trimmedArgument, "-") {
			continue
		}
		return trimmedArgument
	}
	return emptyStringConstant
}

func describeCommand(command ShellCommand) string {
	commandLabelValue := commandLabel(command)
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return commandLabelValue
	}
	return commandLabelValue + fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}
