package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/temirov/relpick/internal/execshell"
	"github.com/temirov/relpick/internal/shared"
)

const (
	executorNotConfiguredMessageConstant = "git executor not configured"
	repositoryPathRequiredMessage        = "repository path must be provided"
	referenceRequiredMessage             = "reference must be provided"
	branchNameRequiredMessage            = "branch name must be provided"
	commitHashRequiredMessage            = "commit hash must be provided"
	remoteNameRequiredMessage            = "remote name must be provided"

	gitRevParseSubcommand        = "rev-parse"
	gitRevParseVerifyFlag        = "--verify"
	gitRevParseQuietFlag         = "--quiet"
	gitRevParseAbbrevRefFlag     = "--abbrev-ref"
	gitRevParseInsideWorkTree    = "--is-inside-work-tree"
	gitHeadReference             = "HEAD"
	gitCommitReferenceSuffix     = "^{commit}"
	gitStatusSubcommand          = "status"
	gitStatusPorcelainFlag       = "--porcelain"
	gitLogSubcommand             = "log"
	gitLogPrettyFlagTemplate     = "--pretty=format:%H%x1f%P%x1f%an%x1f%cI%x1f%s"
	gitRangeTemplate             = "%s..%s"
	gitMergeBaseSubcommand       = "merge-base"
	gitMergeBaseIsAncestorFlag   = "--is-ancestor"
	gitCheckoutSubcommand        = "checkout"
	gitCheckoutNewBranchFlag     = "-b"
	gitBranchSubcommand          = "branch"
	gitBranchForceDeleteFlag     = "-D"
	gitCherryPickSubcommand      = "cherry-pick"
	gitCherryPickMainlineFlag    = "-m"
	gitCherryPickFirstParent     = "1"
	gitCherryPickAbortFlag       = "--abort"
	gitStashSubcommand           = "stash"
	gitStashPushSubcommand       = "push"
	gitStashPopSubcommand        = "pop"
	gitStashIncludeUntrackedFlag = "--include-untracked"
	gitStashMessageFlag          = "-m"
	gitPushSubcommand            = "push"
	gitPushSetUpstreamFlag       = "--set-upstream"
	gitRemoteSubcommand          = "remote"
	gitRemoteGetURLSubcommand    = "get-url"

	gitTerminalPromptEnvironmentName    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisable = "0"

	fieldSeparatorConstant      = "\x1f"
	parentHashSeparatorConstant = " "
	commitRecordFieldCount      = 5

	worktreeInspectionErrorTemplate = "unable to inspect working tree: %w"
	revisionResolutionErrorTemplate = "unable to resolve %q: %w"
	currentBranchErrorTemplate      = "unable to determine current branch: %w"
	commitListingErrorTemplate      = "unable to list commits in range %s..%s: %w"
	commitRecordParseErrorTemplate  = "malformed commit record %q"
	branchCreationErrorTemplate     = "unable to create branch %q from %q: %w"
	branchCheckoutErrorTemplate     = "unable to check out %q: %w"
	branchDeletionErrorTemplate     = "unable to delete branch %q: %w"
	stashPushErrorTemplate          = "unable to set aside local changes: %w"
	stashPopErrorTemplate           = "unable to restore local changes: %w"
	pushErrorTemplate               = "unable to push %q to %q: %w"
	remoteURLErrorTemplate          = "unable to read remote %q: %w"
	inWorkTreeErrorTemplate         = "unable to verify repository: %w"
)

// ErrGitExecutorNotConfigured indicates the manager was constructed without an executor.
var ErrGitExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// InvalidInputError describes option validation failures for repository operations.
type InvalidInputError struct {
	Message string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return inputError.Message
}

// CommitRecord describes a single commit returned by history listings.
type CommitRecord struct {
	Hash        string
	Subject     string
	Author      string
	CommittedAt time.Time
	ParentCount int
}

// IsMergeCommit reports whether the commit has more than one parent.
func (record CommitRecord) IsMergeCommit() bool {
	return record.ParentCount > 1
}

// RepositoryManager performs local git operations through a shell executor.
type RepositoryManager struct {
	executor shared.GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager from the provided executor.
func NewRepositoryManager(executor shared.GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// IsInsideWorkTree reports whether the path belongs to a git working tree.
func (manager *RepositoryManager) IsInsideWorkTree(executionContext context.Context, repositoryPath string) (bool, error) {
	trimmedPath, pathError := requireValue(repositoryPath, repositoryPathRequiredMessage)
	if pathError != nil {
		return false, pathError
	}

	executionResult, executionError := manager.executeGit(executionContext, trimmedPath, gitRevParseSubcommand, gitRevParseInsideWorkTree)
	if executionError != nil {
		if isExitCodeFailure(executionError) {
			return false, nil
		}
		return false, fmt.Errorf(inWorkTreeErrorTemplate, executionError)
	}

	return strings.TrimSpace(executionResult.StandardOutput) == "true", nil
}

// CheckCleanWorktree reports whether the repository has no uncommitted changes.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	trimmedPath, pathError := requireValue(repositoryPath, repositoryPathRequiredMessage)
	if pathError != nil {
		return false, pathError
	}

	executionResult, executionError := manager.executeGit(executionContext, trimmedPath, gitStatusSubcommand, gitStatusPorcelainFlag)
	if executionError != nil {
		return false, fmt.Errorf(worktreeInspectionErrorTemplate, executionError)
	}

	return len(strings.TrimSpace(executionResult.StandardOutput)) == 0, nil
}

// GetCurrentBranch returns the name of the branch currently checked out.
func (manager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	trimmedPath, pathError := requireValue(repositoryPath, repositoryPathRequiredMessage)
	if pathError != nil {
		return "", pathError
	}

	executionResult, executionError := manager.executeGit(executionContext, trimmedPath, gitRevParseSubcommand, gitRevParseAbbrevRefFlag, gitHeadReference)
	if executionError != nil {
		return "", fmt.Errorf(currentBranchErrorTemplate, executionError)
	}

	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// ResolveCommit resolves a symbolic or abbreviated reference to a full commit hash.
func (manager *RepositoryManager) ResolveCommit(executionContext context.Context, repositoryPath string, reference string) (string, error) {
	trimmedPath, pathError := requireValue(repositoryPath, repositoryPathRequiredMessage)
	if pathError != nil {
		return "", pathError
	}
	trimmedReference, referenceError := requireValue(reference, referenceRequiredMessage)
	if referenceError != nil {
		return "", referenceError
	}

	executionResult, executionError := manager.executeGit(
		executionContext,
		trimmedPath,
		gitRevParseSubcommand,
		gitRevParseVerifyFlag,
		gitRevParseQuietFlag,
		trimmedReference+gitCommitReferenceSuffix,
	)
	if executionError != nil {
		return "", fmt.Errorf(revisionResolutionErrorTemplate, trimmedReference, executionError)
	}

	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// IsAncestor reports whether ancestor is reachable from descendant.
func (manager *RepositoryManager) IsAncestor(executionContext context.Context, repositoryPath string, ancestor string, descendant string) (bool, error) {
	trimmedPath, pathError := requireValue(repositoryPath, repositoryPathRequiredMessage)
	if pathError != nil {
		return false, pathError
	}
	trimmedAncestor, ancestorError := requireValue(ancestor, referenceRequiredMessage)
	if ancestorError != nil {
		return false, ancestorError
	}
	trimmedDescendant, descendantError := requireValue(descendant, referenceRequiredMessage)
	if descendantError != nil {
		return false, descendantError
	}

	_, executionError := manager.executeGit(executionContext, trimmedPath, gitMergeBaseSubcommand, gitMergeBaseIsAncestorFlag, trimmedAncestor, trimmedDescendant)
	if executionError != nil {
		if isExitCodeFailure(executionError) {
			return false, nil
		}
		return false, executionError
	}

	return true, nil
}

// ListCommitsBetween returns commits reachable from headReference but not from baseReference, newest first.
func (manager *RepositoryManager) ListCommitsBetween(executionContext context.Context, repositoryPath string, baseReference string, headReference string) ([]CommitRecord, error) {
	trimmedPath, pathError := requireValue(repositoryPath, repositoryPathRequiredMessage)
	if pathError != nil {
		return nil, pathError
	}
	trimmedBase, baseError := requireValue(baseReference, referenceRequiredMessage)
	if baseError != nil {
		return nil, baseError
	}
	trimmedHead, headError := requireValue(headReference, referenceRequiredMessage)
	if headError != nil {
		return nil, headError
	}

	revisionRange := fmt.Sprintf(gitRangeTemplate, trimmedBase, trimmedHead)
	executionResult, executionError := manager.executeGit(executionContext, trimmedPath, gitLogSubcommand, gitLogPrettyFlagTemplate, revisionRange)
	if executionError != nil {
		return nil, fmt.Errorf(commitListingErrorTemplate, trimmedBase, trimmedHead, executionError)
	}

	return parseCommitRecords(executionResult.StandardOutput)
}

// CreateBranch creates and checks out a new branch starting at the provided reference.
func (manager *RepositoryManager) CreateBranch(executionContext context.Context, repositoryPath string, branchName string, startPoint string) error {
	trimmedPath, pathError := requireValue(repositoryPath, repositoryPathRequiredMessage)
	if pathError != nil {
		return pathError
	}
	trimmedBranch, branchError := requireValue(branchName, branchNameRequiredMessage)
	if branchError != nil {
		return branchError
	}
	trimmedStartPoint, startPointError := requireValue(startPoint, referenceRequiredMessage)
	if startPointError != nil {
		return startPointError
	}

	_, executionError := manager.executeGit(executionContext, trimmedPath, gitCheckoutSubcommand, gitCheckoutNewBranchFlag, trimmedBranch, trimmedStartPoint)
	if executionError != nil {
		return fmt.Errorf(branchCreationErrorTemplate, trimmedBranch, trimmedStartPoint, executionError)
	}
	return nil
}

// CheckoutBranch switches the working tree to the named branch.
func (manager *RepositoryManager) CheckoutBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	trimmedPath, pathError := requireValue(repositoryPath, repositoryPathRequiredMessage)
	if pathError != nil {
		return pathError
	}
	trimmedBranch, branchError := requireValue(branchName, branchNameRequiredMessage)
	if branchError != nil {
		return branchError
	}

	_, executionError := manager.executeGit(executionContext, trimmedPath, gitCheckoutSubcommand, trimmedBranch)
	if executionError != nil {
		return fmt.Errorf(branchCheckoutErrorTemplate, trimmedBranch, executionError)
	}
	return nil
}

// DeleteBranch force-deletes the named local branch.
func (manager *RepositoryManager) DeleteBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	trimmedPath, pathError := requireValue(repositoryPath, repositoryPathRequiredMessage)
	if pathError != nil {
		return pathError
	}
	trimmedBranch, branchError := requireValue(branchName, branchNameRequiredMessage)
	if branchError != nil {
		return branchError
	}

	_, executionError := manager.executeGit(executionContext, trimmedPath, gitBranchSubcommand, gitBranchForceDeleteFlag, trimmedBranch)
	if executionError != nil {
		return fmt.Errorf(branchDeletionErrorTemplate, trimmedBranch, executionError)
	}
	return nil
}

// CherryPickOptions configures a cherry-pick invocation.
type CherryPickOptions struct {
	CommitHash  string
	FirstParent bool
}

// CherryPick replays the commit onto the current branch.
//
// FirstParent cherry-picks a merge commit as the net diff against its first
// parent so the integration-branch history is not replayed.
func (manager *RepositoryManager) CherryPick(executionContext context.Context, repositoryPath string, options CherryPickOptions) error {
	trimmedPath, pathError := requireValue(repositoryPath, repositoryPathRequiredMessage)
	if pathError != nil {
		return pathError
	}
	trimmedHash, hashError := requireValue(options.CommitHash, commitHashRequiredMessage)
	if hashError != nil {
		return hashError
	}

	cherryPickArguments := []string{gitCherryPickSubcommand}
	if options.FirstParent {
		cherryPickArguments = append(cherryPickArguments, gitCherryPickMainlineFlag, gitCherryPickFirstParent)
	}
	cherryPickArguments = append(cherryPickArguments, trimmedHash)

	_, executionError := manager.executeGit(executionContext, trimmedPath, cherryPickArguments...)
	return executionError
}

// AbortCherryPick rolls back an in-progress cherry-pick.
func (manager *RepositoryManager) AbortCherryPick(executionContext context.Context, repositoryPath string) error {
	trimmedPath, pathError := requireValue(repositoryPath, repositoryPathRequiredMessage)
	if pathError != nil {
		return pathError
	}

	_, executionError := manager.executeGit(executionContext, trimmedPath, gitCherryPickSubcommand, gitCherryPickAbortFlag)
	return executionError
}

// StashPush sets aside uncommitted changes, including untracked files, under the provided label.
func (manager *RepositoryManager) StashPush(executionContext context.Context, repositoryPath string, label string) error {
	trimmedPath, pathError := requireValue(repositoryPath, repositoryPathRequiredMessage)
	if pathError != nil {
		return pathError
	}

	stashArguments := []string{gitStashSubcommand, gitStashPushSubcommand, gitStashIncludeUntrackedFlag}
	trimmedLabel := strings.TrimSpace(label)
	if len(trimmedLabel) > 0 {
		stashArguments = append(stashArguments, gitStashMessageFlag, trimmedLabel)
	}

	_, executionError := manager.executeGit(executionContext, trimmedPath, stashArguments...)
	if executionError != nil {
		return fmt.Errorf(stashPushErrorTemplate, executionError)
	}
	return nil
}

// StashPop restores the most recently set aside changes.
func (manager *RepositoryManager) StashPop(executionContext context.Context, repositoryPath string) error {
	trimmedPath, pathError := requireValue(repositoryPath, repositoryPathRequiredMessage)
	if pathError != nil {
		return pathError
	}

	_, executionError := manager.executeGit(executionContext, trimmedPath, gitStashSubcommand, gitStashPopSubcommand)
	if executionError != nil {
		return fmt.Errorf(stashPopErrorTemplate, executionError)
	}
	return nil
}

// Push uploads the named branch to the remote, configuring upstream tracking.
func (manager *RepositoryManager) Push(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error {
	trimmedPath, pathError := requireValue(repositoryPath, repositoryPathRequiredMessage)
	if pathError != nil {
		return pathError
	}
	trimmedRemote, remoteError := requireValue(remoteName, remoteNameRequiredMessage)
	if remoteError != nil {
		return remoteError
	}
	trimmedBranch, branchError := requireValue(branchName, branchNameRequiredMessage)
	if branchError != nil {
		return branchError
	}

	_, executionError := manager.executeGit(executionContext, trimmedPath, gitPushSubcommand, gitPushSetUpstreamFlag, trimmedRemote, trimmedBranch)
	if executionError != nil {
		return fmt.Errorf(pushErrorTemplate, trimmedBranch, trimmedRemote, executionError)
	}
	return nil
}

// GetRemoteURL returns the fetch URL configured for the named remote.
func (manager *RepositoryManager) GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	trimmedPath, pathError := requireValue(repositoryPath, repositoryPathRequiredMessage)
	if pathError != nil {
		return "", pathError
	}
	trimmedRemote, remoteError := requireValue(remoteName, remoteNameRequiredMessage)
	if remoteError != nil {
		return "", remoteError
	}

	executionResult, executionError := manager.executeGit(executionContext, trimmedPath, gitRemoteSubcommand, gitRemoteGetURLSubcommand, trimmedRemote)
	if executionError != nil {
		return "", fmt.Errorf(remoteURLErrorTemplate, trimmedRemote, executionError)
	}

	return strings.TrimSpace(executionResult.StandardOutput), nil
}

func (manager *RepositoryManager) executeGit(executionContext context.Context, repositoryPath string, arguments ...string) (execshell.ExecutionResult, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repositoryPath,
		EnvironmentVariables: map[string]string{
			gitTerminalPromptEnvironmentName: gitTerminalPromptEnvironmentDisable,
		},
	}
	return manager.executor.ExecuteGit(executionContext, commandDetails)
}

func parseCommitRecords(rawOutput string) ([]CommitRecord, error) {
	trimmedOutput := strings.TrimSpace(rawOutput)
	if len(trimmedOutput) == 0 {
		return nil, nil
	}

	outputLines := strings.Split(trimmedOutput, "\n")
	commitRecords := make([]CommitRecord, 0, len(outputLines))
	for _, outputLine := range outputLines {
		trimmedLine := strings.TrimSpace(outputLine)
		if len(trimmedLine) == 0 {
			continue
		}

		recordFields := strings.Split(trimmedLine, fieldSeparatorConstant)
		if len(recordFields) != commitRecordFieldCount {
			return nil, fmt.Errorf(commitRecordParseErrorTemplate, trimmedLine)
		}

		parentCount := 0
		trimmedParents := strings.TrimSpace(recordFields[1])
		if len(trimmedParents) > 0 {
			parentCount = len(strings.Split(trimmedParents, parentHashSeparatorConstant))
		}

		committedAt, timestampError := time.Parse(time.RFC3339, strings.TrimSpace(recordFields[3]))
		if timestampError != nil {
			return nil, fmt.Errorf(commitRecordParseErrorTemplate, trimmedLine)
		}

		commitRecords = append(commitRecords, CommitRecord{
			Hash:        strings.TrimSpace(recordFields[0]),
			ParentCount: parentCount,
			Author:      strings.TrimSpace(recordFields[2]),
			CommittedAt: committedAt,
			Subject:     strings.TrimSpace(recordFields[4]),
		})
	}

	return commitRecords, nil
}

func isExitCodeFailure(executionError error) bool {
	commandFailure := execshell.CommandFailedError{}
	return errors.As(executionError, &commandFailure)
}

func requireValue(rawValue string, message string) (string, error) {
	trimmedValue := strings.TrimSpace(rawValue)
	if len(trimmedValue) == 0 {
		return "", InvalidInputError{Message: message}
	}
	return trimmedValue, nil
}
