package release_test

import (
	"context"
	"errors"
	"time"

	"github.com/temirov/relpick/internal/githubcli"
	"github.com/temirov/relpick/internal/gitrepo"
	"github.com/temirov/relpick/internal/shared"
)

var errOperationNotScripted = errors.New("operation not scripted")

type fakeGitOperations struct {
	isInsideWorkTreeFunc   func(repositoryPath string) (bool, error)
	checkCleanWorktreeFunc func(repositoryPath string) (bool, error)
	currentBranchFunc      func(repositoryPath string) (string, error)
	resolveCommitFunc      func(repositoryPath string, reference string) (string, error)
	isAncestorFunc         func(repositoryPath string, ancestor string, descendant string) (bool, error)
	listCommitsFunc        func(repositoryPath string, baseReference string, headReference string) ([]gitrepo.CommitRecord, error)
	cherryPickFunc         func(repositoryPath string, options gitrepo.CherryPickOptions) error
	remoteURLFunc          func(repositoryPath string, remoteName string) (string, error)

	createdBranches    []string
	checkedOutBranches []string
	deletedBranches    []string
	cherryPicks        []gitrepo.CherryPickOptions
	abortedCherryPicks int
	stashPushes        []string
	stashPops          int
	pushes             []string
}

func (operations *fakeGitOperations) IsInsideWorkTree(_ context.Context, repositoryPath string) (bool, error) {
	if operations.isInsideWorkTreeFunc != nil {
		return operations.isInsideWorkTreeFunc(repositoryPath)
	}
	return true, nil
}

func (operations *fakeGitOperations) CheckCleanWorktree(_ context.Context, repositoryPath string) (bool, error) {
	if operations.checkCleanWorktreeFunc != nil {
		return operations.checkCleanWorktreeFunc(repositoryPath)
	}
	return true, nil
}

func (operations *fakeGitOperations) GetCurrentBranch(_ context.Context, repositoryPath string) (string, error) {
	if operations.currentBranchFunc != nil {
		return operations.currentBranchFunc(repositoryPath)
	}
	return "develop", nil
}

func (operations *fakeGitOperations) ResolveCommit(_ context.Context, repositoryPath string, reference string) (string, error) {
	if operations.resolveCommitFunc != nil {
		return operations.resolveCommitFunc(repositoryPath, reference)
	}
	return reference, nil
}

func (operations *fakeGitOperations) IsAncestor(_ context.Context, repositoryPath string, ancestor string, descendant string) (bool, error) {
	if operations.isAncestorFunc != nil {
		return operations.isAncestorFunc(repositoryPath, ancestor, descendant)
	}
	return true, nil
}

func (operations *fakeGitOperations) ListCommitsBetween(_ context.Context, repositoryPath string, baseReference string, headReference string) ([]gitrepo.CommitRecord, error) {
	if operations.listCommitsFunc != nil {
		return operations.listCommitsFunc(repositoryPath, baseReference, headReference)
	}
	return nil, nil
}

func (operations *fakeGitOperations) CreateBranch(_ context.Context, _ string, branchName string, _ string) error {
	operations.createdBranches = append(operations.createdBranches, branchName)
	return nil
}

func (operations *fakeGitOperations) CheckoutBranch(_ context.Context, _ string, branchName string) error {
	operations.checkedOutBranches = append(operations.checkedOutBranches, branchName)
	return nil
}

func (operations *fakeGitOperations) DeleteBranch(_ context.Context, _ string, branchName string) error {
	operations.deletedBranches = append(operations.deletedBranches, branchName)
	return nil
}

func (operations *fakeGitOperations) CherryPick(_ context.Context, repositoryPath string, options gitrepo.CherryPickOptions) error {
	operations.cherryPicks = append(operations.cherryPicks, options)
	if operations.cherryPickFunc != nil {
		return operations.cherryPickFunc(repositoryPath, options)
	}
	return nil
}

func (operations *fakeGitOperations) AbortCherryPick(_ context.Context, _ string) error {
	operations.abortedCherryPicks++
	return nil
}

func (operations *fakeGitOperations) StashPush(_ context.Context, _ string, label string) error {
	operations.stashPushes = append(operations.stashPushes, label)
	return nil
}

func (operations *fakeGitOperations) StashPop(_ context.Context, _ string) error {
	operations.stashPops++
	return nil
}

func (operations *fakeGitOperations) Push(_ context.Context, _ string, remoteName string, branchName string) error {
	operations.pushes = append(operations.pushes, remoteName+" "+branchName)
	return nil
}

func (operations *fakeGitOperations) GetRemoteURL(_ context.Context, repositoryPath string, remoteName string) (string, error) {
	if operations.remoteURLFunc != nil {
		return operations.remoteURLFunc(repositoryPath, remoteName)
	}
	return "git@github.com:acme/widgets.git", nil
}

type fakeGitHubOperations struct {
	checkAuthenticationFunc func() (bool, error)
	resolveMetadataFunc     func(repository string) (githubcli.RepositoryMetadata, error)
	branchExistsFunc        func(repository string, branchName string) (bool, error)
	compareCommitsFunc      func(repository string, baseReference string, headReference string) ([]githubcli.CommitSummary, error)
	listMergedFunc          func(repository string, baseBranch string, resultLimit int) ([]githubcli.PullRequest, error)
	getPullRequestFunc      func(repository string, pullRequestNumber int) (githubcli.PullRequest, error)
	pullRequestsForCommit   func(repository string, commitHash string) ([]int, error)
	createPullRequestFunc   func(repository string, options githubcli.PullRequestCreateOptions) (string, error)

	createdPullRequests []githubcli.PullRequestCreateOptions
}

func (operations *fakeGitHubOperations) CheckAuthentication(_ context.Context) (bool, error) {
	if operations.checkAuthenticationFunc != nil {
		return operations.checkAuthenticationFunc()
	}
	return true, nil
}

func (operations *fakeGitHubOperations) ResolveRepoMetadata(_ context.Context, repository string) (githubcli.RepositoryMetadata, error) {
	if operations.resolveMetadataFunc != nil {
		return operations.resolveMetadataFunc(repository)
	}
	return githubcli.RepositoryMetadata{}, errOperationNotScripted
}

func (operations *fakeGitHubOperations) BranchExists(_ context.Context, repository string, branchName string) (bool, error) {
	if operations.branchExistsFunc != nil {
		return operations.branchExistsFunc(repository, branchName)
	}
	return true, nil
}

func (operations *fakeGitHubOperations) CompareCommits(_ context.Context, repository string, baseReference string, headReference string) ([]githubcli.CommitSummary, error) {
	if operations.compareCommitsFunc != nil {
		return operations.compareCommitsFunc(repository, baseReference, headReference)
	}
	return nil, errOperationNotScripted
}

func (operations *fakeGitHubOperations) ListMergedPullRequests(_ context.Context, repository string, baseBranch string, resultLimit int) ([]githubcli.PullRequest, error) {
	if operations.listMergedFunc != nil {
		return operations.listMergedFunc(repository, baseBranch, resultLimit)
	}
	return nil, errOperationNotScripted
}

func (operations *fakeGitHubOperations) GetPullRequest(_ context.Context, repository string, pullRequestNumber int) (githubcli.PullRequest, error) {
	if operations.getPullRequestFunc != nil {
		return operations.getPullRequestFunc(repository, pullRequestNumber)
	}
	return githubcli.PullRequest{}, errOperationNotScripted
}

func (operations *fakeGitHubOperations) ListPullRequestsForCommit(_ context.Context, repository string, commitHash string) ([]int, error) {
	if operations.pullRequestsForCommit != nil {
		return operations.pullRequestsForCommit(repository, commitHash)
	}
	return nil, nil
}

func (operations *fakeGitHubOperations) CreatePullRequest(_ context.Context, repository string, options githubcli.PullRequestCreateOptions) (string, error) {
	operations.createdPullRequests = append(operations.createdPullRequests, options)
	if operations.createPullRequestFunc != nil {
		return operations.createPullRequestFunc(repository, options)
	}
	return "https://github.com/acme/widgets/pull/99", nil
}

type scriptedConfirmationPrompter struct {
	answers  []bool
	messages []string
}

func (prompter *scriptedConfirmationPrompter) Confirm(message string) (shared.ConfirmationResult, error) {
	prompter.messages = append(prompter.messages, message)
	if len(prompter.answers) == 0 {
		return shared.ConfirmationResult{}, nil
	}
	answer := prompter.answers[0]
	prompter.answers = prompter.answers[1:]
	return shared.ConfirmationResult{Confirmed: answer}, nil
}

type scriptedLinePrompter struct {
	lines   []string
	prompts []string
}

func (prompter *scriptedLinePrompter) ReadLine(message string) (string, error) {
	prompter.prompts = append(prompter.prompts, message)
	if len(prompter.lines) == 0 {
		return "", nil
	}
	line := prompter.lines[0]
	prompter.lines = prompter.lines[1:]
	return line, nil
}

type fixedClock struct {
	instant time.Time
}

func (clock fixedClock) Now() time.Time {
	return clock.instant
}
