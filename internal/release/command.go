package release

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/relpick/internal/execshell"
	"github.com/temirov/relpick/internal/githubcli"
	"github.com/temirov/relpick/internal/gitrepo"
	"github.com/temirov/relpick/internal/prompt"
	"github.com/temirov/relpick/internal/shared"
	"github.com/temirov/relpick/internal/ui"
	"github.com/temirov/relpick/internal/utils"
	utilsflags "github.com/temirov/relpick/internal/utils/flags"
)

const (
	commandUseConstant                        = "release [change...]"
	commandShortDescriptionConstant           = "Assemble a hand-picked release branch and open its pull request"
	commandLongDescriptionConstant            = "release lists unreleased pull requests and commits on the integration branch, cherry-picks the selected changes onto a fresh branch off the stable branch, pushes it, and opens a release pull request."
	commandExecutionErrorTemplateConstant     = "release failed: %w"
	flagRepositoryNameConstant                = "repository"
	flagRepositoryDescriptionConstant         = "Path to the local repository clone"
	flagLimitNameConstant                     = "limit"
	flagLimitDescriptionConstant              = "Maximum number of merged pull requests to examine"
	flagDraftNameConstant                     = "draft"
	flagDraftDescriptionConstant              = "Open the pull request as a draft"
	defaultRepositoryPathConstant             = "."
	repositoryManagerCreationErrorTemplate    = "unable to construct repository manager: %w"
	githubClientCreationErrorTemplate         = "unable to construct GitHub client: %w"
	notARepositoryMessageConstant             = "%s is not inside a git repository"
	notAuthenticatedMessageConstant           = "GitHub CLI is not authenticated; run gh auth login and retry"
	integrationBranchMissingTemplateConstant  = "integration branch %q does not resolve: %w"
	stableBranchMissingTemplateConstant       = "none of the stable branch candidates %v exist in the repository"
	repositoryIdentityFallbackMessageConstant = "Unable to determine the hosted repository; hosting operations are disabled"
	nothingToReleaseMessageConstant           = "No unreleased changes between %s and %s.\n"
	unreleasedPullRequestsHeadingConstant     = "Unreleased pull requests:"
	unreleasedCommitsHeadingConstant          = "Unreleased commits:"
	listingEntryTemplateConstant              = "  %s\n"
	commitListingEntryTemplateConstant        = "  %s %s\n"
	selectionPromptConstant                   = "Select changes to release (PR numbers or commit hashes, space separated): "
	reviewersPromptConstant                   = "Reviewers (space separated, empty for none): "
	activePullRequestPromptConstant           = "Open the pull request immediately instead of as a draft?"
	rejectionEntryTemplateConstant            = "Skipping %s: %s\n"
	partialSelectionPromptTemplateConstant    = "Proceed with %d of %d selected changes?"
	finalGatePromptTemplateConstant           = "Cherry-pick %d changes onto a new branch off %s and open a pull request?"
	noSelectionMessageConstant                = "Nothing selected.\n"
	conflictGuidanceTemplateConstant          = "Conflict left in the worktree for %s on branch %s. Resolve it, run git cherry-pick --continue, and push manually.\n"
	remainingItemTemplateConstant             = "Not attempted: %s\n"
	successMessageTemplateConstant            = "Created %s\n"
	noValidSelectionsMessageConstant          = "no valid changes selected"
	releaseDeclinedMessageConstant            = "release declined"
	conflictPendingMessageConstant            = "cherry-pick conflict awaiting manual resolution"
	configurationFileMessageConstant          = "Loaded configuration file"
	configurationFileFieldConstant            = "path"
)

var (
	errNoValidSelections = errors.New(noValidSelectionsMessageConstant)
	errReleaseDeclined   = errors.New(releaseDeclinedMessageConstant)
	errConflictPending   = errors.New(conflictPendingMessageConstant)
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the release Cobra command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	Executor                     shared.GitExecutor
	GitManager                   GitOperations
	GitHubClient                 GitHubOperations
	ConfigurationProvider        func() Configuration
	HumanReadableLoggingProvider func() bool
	ConfirmationPrompter         shared.ConfirmationPrompter
	LinePrompter                 shared.LinePrompter
	Clock                        shared.Clock

	draftFlagValue bool
}

// Build constructs the release command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          builder.run,
	}

	command.Flags().String(flagRepositoryNameConstant, "", flagRepositoryDescriptionConstant)
	command.Flags().Int(flagLimitNameConstant, defaultPullRequestLimitConstant, flagLimitDescriptionConstant)
	utilsflags.AddToggleFlag(command.Flags(), &builder.draftFlagValue, flagDraftNameConstant, "", true, flagDraftDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	runError := builder.runRelease(command, arguments)
	if runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}
	return nil
}

func (builder *CommandBuilder) runRelease(command *cobra.Command, arguments []string) error {
	executionContext := command.Context()
	configuration := builder.resolveConfiguration(command)
	executionFlags, _ := utilsflags.ResolveExecutionFlags(command)
	if executionFlags.RemoteSet && len(strings.TrimSpace(executionFlags.Remote)) > 0 {
		configuration.RemoteName = strings.TrimSpace(executionFlags.Remote)
	}
	confirmationPolicy := shared.ConfirmationPolicyFromBool(executionFlags.AssumeYes)

	logger := builder.resolveLogger()
	if configurationFilePath, attached := utils.ConfigurationFilePathFromContext(executionContext); attached {
		logger.Debug(configurationFileMessageConstant, zap.String(configurationFileFieldConstant, configurationFilePath))
	}
	gitManager, githubClient, dependencyError := builder.resolveManagers(logger, command.OutOrStdout())
	if dependencyError != nil {
		return dependencyError
	}
	confirmationPrompter := builder.resolveConfirmationPrompter(command)
	linePrompter := builder.resolveLinePrompter(command)
	outputWriter := command.OutOrStdout()

	insideWorkTree, workTreeError := gitManager.IsInsideWorkTree(executionContext, configuration.RepositoryPath)
	if workTreeError != nil {
		return workTreeError
	}
	if !insideWorkTree {
		return fmt.Errorf(notARepositoryMessageConstant, configuration.RepositoryPath)
	}
	authenticated, authenticationError := githubClient.CheckAuthentication(executionContext)
	if authenticationError != nil {
		return authenticationError
	}
	if !authenticated {
		return errors.New(notAuthenticatedMessageConstant)
	}

	if _, integrationError := gitManager.ResolveCommit(executionContext, configuration.RepositoryPath, configuration.IntegrationBranch); integrationError != nil {
		return fmt.Errorf(integrationBranchMissingTemplateConstant, configuration.IntegrationBranch, integrationError)
	}
	repositorySlug := builder.resolveRepositorySlug(executionContext, logger, gitManager, githubClient, configuration)
	stableBranch, stableBranchError := builder.detectStableBranch(executionContext, gitManager, githubClient, repositorySlug, configuration)
	if stableBranchError != nil {
		return stableBranchError
	}

	discoveryService, discoveryError := NewDiscoveryService(DiscoveryDependencies{Logger: logger, Git: gitManager, GitHub: githubClient})
	if discoveryError != nil {
		return discoveryError
	}
	selectionService, selectionError := NewSelectionService(SelectionDependencies{Logger: logger, Git: gitManager, GitHub: githubClient})
	if selectionError != nil {
		return selectionError
	}
	assemblyService, assemblyError := NewAssemblyService(AssemblyDependencies{Logger: logger, Git: gitManager, Prompter: confirmationPrompter, Clock: builder.Clock})
	if assemblyError != nil {
		return assemblyError
	}
	publicationService, publicationError := NewPublicationService(PublicationDependencies{Logger: logger, Git: gitManager, GitHub: githubClient, Clock: builder.Clock})
	if publicationError != nil {
		return publicationError
	}

	identifiers := arguments
	unreleasedCommits := []gitrepo.CommitRecord(nil)
	skippedFromListing := []RejectedItem(nil)
	if len(identifiers) == 0 {
		unreleasedSet, discoverError := discoveryService.Discover(executionContext, DiscoveryOptions{
			RepositoryPath:    configuration.RepositoryPath,
			Repository:        repositorySlug,
			IntegrationBranch: configuration.IntegrationBranch,
			StableBranch:      stableBranch,
			PullRequestLimit:  configuration.PullRequestLimit,
		})
		if discoverError != nil {
			return discoverError
		}
		if unreleasedSet.IsEmpty() {
			fmt.Fprintf(outputWriter, nothingToReleaseMessageConstant, stableBranch, configuration.IntegrationBranch)
			return nil
		}
		printUnreleasedSet(outputWriter, unreleasedSet)
		unreleasedCommits = unreleasedSet.AllCommits

		selectionLine, promptError := linePrompter.ReadLine(selectionPromptConstant)
		if promptError != nil {
			return promptError
		}
		identifiers = strings.Fields(selectionLine)
		if len(identifiers) == 0 {
			fmt.Fprint(outputWriter, noSelectionMessageConstant)
			return nil
		}
	} else {
		listedCommits, listError := gitManager.ListCommitsBetween(executionContext, configuration.RepositoryPath, stableBranch, configuration.IntegrationBranch)
		if listError == nil {
			unreleasedCommits = listedCommits
		}
	}

	selectionResult := selectionService.Resolve(executionContext, SelectionOptions{
		RepositoryPath:    configuration.RepositoryPath,
		Repository:        repositorySlug,
		IntegrationBranch: configuration.IntegrationBranch,
		UnreleasedCommits: unreleasedCommits,
	}, identifiers)
	for _, rejectedItem := range selectionResult.Rejected {
		fmt.Fprintf(outputWriter, rejectionEntryTemplateConstant, rejectedItem.Identifier, rejectedItem.Reason)
	}
	if !selectionResult.HasAcceptedItems() {
		return errNoValidSelections
	}
	acceptedItems := selectionResult.AcceptedItems()
	if len(selectionResult.Rejected) > 0 && confirmationPolicy.ShouldPrompt() {
		confirmation, confirmError := confirmationPrompter.Confirm(fmt.Sprintf(partialSelectionPromptTemplateConstant, len(acceptedItems), len(acceptedItems)+len(selectionResult.Rejected)))
		if confirmError != nil {
			return confirmError
		}
		if !confirmation.Confirmed {
			return errReleaseDeclined
		}
	}
	skippedFromListing = selectionResult.Rejected

	draftSelection := configuration.Draft
	if command.Flags().Changed(flagDraftNameConstant) {
		draftSelection = builder.draftFlagValue
	} else if confirmationPolicy.ShouldPrompt() {
		confirmation, confirmError := confirmationPrompter.Confirm(activePullRequestPromptConstant)
		if confirmError != nil {
			return confirmError
		}
		draftSelection = !confirmation.Confirmed
	}
	reviewers := []string(nil)
	if confirmationPolicy.ShouldPrompt() {
		reviewerLine, reviewerError := linePrompter.ReadLine(reviewersPromptConstant)
		if reviewerError != nil {
			return reviewerError
		}
		reviewers = strings.Fields(reviewerLine)
	}
	if confirmationPolicy.ShouldPrompt() {
		confirmation, confirmError := confirmationPrompter.Confirm(fmt.Sprintf(finalGatePromptTemplateConstant, len(acceptedItems), stableBranch))
		if confirmError != nil {
			return confirmError
		}
		if !confirmation.Confirmed {
			return errReleaseDeclined
		}
	}

	session, sessionError := OpenSession(executionContext, SessionDependencies{
		Logger:   logger,
		Git:      gitManager,
		Prompter: confirmationPrompter,
		Clock:    builder.Clock,
	}, configuration.RepositoryPath, confirmationPolicy)
	if sessionError != nil {
		return sessionError
	}

	assemblyResult, assembleError := assemblyService.Assemble(executionContext, session, AssemblyOptions{
		RepositoryPath:     configuration.RepositoryPath,
		StableBranch:       stableBranch,
		Items:              acceptedItems,
		ConfirmationPolicy: confirmationPolicy,
	})
	if assembleError != nil {
		session.Close(executionContext)
		return assembleError
	}
	if !assemblyResult.Completed() {
		// The operator kept the conflict, so the worktree stays untouched
		// and the stash is left for them to restore by hand.
		fmt.Fprintf(outputWriter, conflictGuidanceTemplateConstant, assemblyResult.ConflictItem.DisplayLabel(), assemblyResult.BranchName)
		for _, remainingItem := range assemblyResult.Remaining {
			fmt.Fprintf(outputWriter, remainingItemTemplateConstant, remainingItem.DisplayLabel())
		}
		return errConflictPending
	}

	pullRequestURL, publishError := publicationService.Publish(executionContext, PublicationOptions{
		RepositoryPath: configuration.RepositoryPath,
		Repository:     repositorySlug,
		RemoteName:     configuration.RemoteName,
		StableBranch:   stableBranch,
		BranchName:     assemblyResult.BranchName,
		Included:       assemblyResult.Applied,
		Skipped:        skippedFromListing,
		Draft:          draftSelection,
		Reviewers:      reviewers,
	})
	if publishError != nil {
		session.Close(executionContext)
		return publishError
	}
	session.MarkBranchPushed()
	session.Close(executionContext)

	fmt.Fprintf(outputWriter, successMessageTemplateConstant, pullRequestURL)
	return nil
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) Configuration {
	configuration := DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	configuration = configuration.Sanitize()

	if command.Flags().Changed(flagRepositoryNameConstant) {
		repositoryValue, _ := command.Flags().GetString(flagRepositoryNameConstant)
		configuration.RepositoryPath = strings.TrimSpace(repositoryValue)
	}
	if len(configuration.RepositoryPath) == 0 {
		configuration.RepositoryPath = defaultRepositoryPathConstant
	}
	if command.Flags().Changed(flagLimitNameConstant) {
		limitValue, _ := command.Flags().GetInt(flagLimitNameConstant)
		if limitValue > 0 {
			configuration.PullRequestLimit = limitValue
		}
	}
	return configuration.Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveManagers(logger *zap.Logger, outputWriter io.Writer) (GitOperations, GitHubOperations, error) {
	if builder.GitManager != nil && builder.GitHubClient != nil {
		return builder.GitManager, builder.GitHubClient, nil
	}

	executor := builder.Executor
	if executor == nil {
		humanReadableLogging := false
		if builder.HumanReadableLoggingProvider != nil {
			humanReadableLogging = builder.HumanReadableLoggingProvider()
		}
		shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), humanReadableLogging)
		if executorError != nil {
			return nil, nil, executorError
		}
		if humanReadableLogging {
			shellExecutor.SetCommandObserver(ui.NewConsoleCommandObserver(outputWriter))
		}
		executor = shellExecutor
	}

	gitManager := builder.GitManager
	if gitManager == nil {
		repositoryManager, managerError := gitrepo.NewRepositoryManager(executor)
		if managerError != nil {
			return nil, nil, fmt.Errorf(repositoryManagerCreationErrorTemplate, managerError)
		}
		gitManager = repositoryManager
	}

	githubOperations := builder.GitHubClient
	if githubOperations == nil {
		githubClient, clientError := githubcli.NewClient(executor)
		if clientError != nil {
			return nil, nil, fmt.Errorf(githubClientCreationErrorTemplate, clientError)
		}
		githubOperations = githubClient
	}

	return gitManager, githubOperations, nil
}

func (builder *CommandBuilder) resolveConfirmationPrompter(command *cobra.Command) shared.ConfirmationPrompter {
	if builder.ConfirmationPrompter != nil {
		return builder.ConfirmationPrompter
	}
	return prompt.NewIOConfirmationPrompter(command.InOrStdin(), command.OutOrStdout())
}

func (builder *CommandBuilder) resolveLinePrompter(command *cobra.Command) shared.LinePrompter {
	if builder.LinePrompter != nil {
		return builder.LinePrompter
	}
	return prompt.NewIOLinePrompter(command.InOrStdin(), command.OutOrStdout())
}

func (builder *CommandBuilder) detectStableBranch(executionContext context.Context, gitManager GitOperations, githubClient GitHubOperations, repositorySlug string, configuration Configuration) (string, error) {
	for _, branchCandidate := range configuration.StableBranchCandidates {
		if len(repositorySlug) > 0 {
			branchKnown, existenceError := githubClient.BranchExists(executionContext, repositorySlug, branchCandidate)
			if existenceError == nil {
				if branchKnown {
					return branchCandidate, nil
				}
				continue
			}
			// Hosted lookup unavailable; a local ref still answers the question.
		}
		if _, resolveError := gitManager.ResolveCommit(executionContext, configuration.RepositoryPath, branchCandidate); resolveError == nil {
			return branchCandidate, nil
		}
	}
	return "", fmt.Errorf(stableBranchMissingTemplateConstant, configuration.StableBranchCandidates)
}

func (builder *CommandBuilder) resolveRepositorySlug(executionContext context.Context, logger *zap.Logger, gitManager GitOperations, githubClient GitHubOperations, configuration Configuration) string {
	if len(configuration.Repository) > 0 {
		return configuration.Repository
	}
	remoteURL, remoteError := gitManager.GetRemoteURL(executionContext, configuration.RepositoryPath, configuration.RemoteName)
	if remoteError == nil {
		if parsedRemote, parseError := gitrepo.ParseRemoteURL(remoteURL); parseError == nil {
			return parsedRemote.OwnerRepository()
		}
	}
	metadata, metadataError := githubClient.ResolveRepoMetadata(executionContext, "")
	if metadataError == nil && len(metadata.NameWithOwner) > 0 {
		return metadata.NameWithOwner
	}
	logger.Warn(repositoryIdentityFallbackMessageConstant)
	return ""
}

func printUnreleasedSet(outputWriter io.Writer, unreleasedSet UnreleasedSet) {
	if len(unreleasedSet.PullRequests) > 0 {
		fmt.Fprintln(outputWriter, unreleasedPullRequestsHeadingConstant)
		for _, pullRequestChange := range unreleasedSet.PullRequests {
			fmt.Fprintf(outputWriter, listingEntryTemplateConstant, pullRequestChange.DisplayLabel())
		}
	}
	if len(unreleasedSet.Commits) > 0 {
		fmt.Fprintln(outputWriter, unreleasedCommitsHeadingConstant)
		for _, commitChange := range unreleasedSet.Commits {
			fmt.Fprintf(outputWriter, commitListingEntryTemplateConstant, shortHash(commitChange.Hash), commitChange.DisplaySubject())
		}
	}
}
