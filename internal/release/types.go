package release

import (
	"context"
	"fmt"
	"time"

	"github.com/temirov/relpick/internal/githubcli"
	"github.com/temirov/relpick/internal/gitrepo"
)

const (
	associatedPullRequestPrefixTemplateConstant = "PR #%d: %s"
	pullRequestLabelTemplateConstant            = "#%d: %s"
	commitLabelTemplateConstant                 = "Commit %s: %s"
	shortHashLengthConstant                     = 7
)

// PullRequestChange describes a merged pull request awaiting release.
type PullRequestChange struct {
	Number          int
	Title           string
	Author          string
	MergedAt        time.Time
	MergeCommitHash string
}

// DisplayLabel formats the pull request for listings and generated bodies.
func (change PullRequestChange) DisplayLabel() string {
	return fmt.Sprintf(pullRequestLabelTemplateConstant, change.Number, change.Title)
}

// CommitChange describes a direct commit awaiting release.
//
// AssociatedPullRequestNumber is zero when no pull request contains the
// commit. A non-zero association still leaves this item a plain commit:
// squashed and rebased pull requests leave no merge commit and cannot be
// replayed as a unit.
type CommitChange struct {
	Hash                        string
	Subject                     string
	Author                      string
	CommittedAt                 time.Time
	AssociatedPullRequestNumber int
}

// DisplaySubject formats the commit subject, prefixed with its associated pull request when known.
func (change CommitChange) DisplaySubject() string {
	if change.AssociatedPullRequestNumber > 0 {
		return fmt.Sprintf(associatedPullRequestPrefixTemplateConstant, change.AssociatedPullRequestNumber, change.Subject)
	}
	return change.Subject
}

// DisplayLabel formats the commit for listings and generated bodies.
func (change CommitChange) DisplayLabel() string {
	return fmt.Sprintf(commitLabelTemplateConstant, shortHash(change.Hash), change.Subject)
}

// UnreleasedSet holds the changes reachable from the integration branch but not from the stable branch.
//
// Pull request merges come first in the hosting API's order, followed by
// direct commits in history order. AllCommits retains every unreleased commit,
// merge commits included, for merge-commit recovery lookups.
type UnreleasedSet struct {
	PullRequests []PullRequestChange
	Commits      []CommitChange
	AllCommits   []gitrepo.CommitRecord
}

// IsEmpty reports whether the set contains no selectable changes.
func (set UnreleasedSet) IsEmpty() bool {
	return len(set.PullRequests) == 0 && len(set.Commits) == 0
}

// GitOperations exposes the local git surface consumed by release services.
type GitOperations interface {
	IsInsideWorkTree(executionContext context.Context, repositoryPath string) (bool, error)
	CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error)
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	ResolveCommit(executionContext context.Context, repositoryPath string, reference string) (string, error)
	IsAncestor(executionContext context.Context, repositoryPath string, ancestor string, descendant string) (bool, error)
	ListCommitsBetween(executionContext context.Context, repositoryPath string, baseReference string, headReference string) ([]gitrepo.CommitRecord, error)
	CreateBranch(executionContext context.Context, repositoryPath string, branchName string, startPoint string) error
	CheckoutBranch(executionContext context.Context, repositoryPath string, branchName string) error
	DeleteBranch(executionContext context.Context, repositoryPath string, branchName string) error
	CherryPick(executionContext context.Context, repositoryPath string, options gitrepo.CherryPickOptions) error
	AbortCherryPick(executionContext context.Context, repositoryPath string) error
	StashPush(executionContext context.Context, repositoryPath string, label string) error
	StashPop(executionContext context.Context, repositoryPath string) error
	Push(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error
	GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error)
}

// GitHubOperations exposes the hosting surface consumed by release services.
type GitHubOperations interface {
	CheckAuthentication(executionContext context.Context) (bool, error)
	ResolveRepoMetadata(executionContext context.Context, repository string) (githubcli.RepositoryMetadata, error)
	BranchExists(executionContext context.Context, repository string, branchName string) (bool, error)
	CompareCommits(executionContext context.Context, repository string, baseReference string, headReference string) ([]githubcli.CommitSummary, error)
	ListMergedPullRequests(executionContext context.Context, repository string, baseBranch string, resultLimit int) ([]githubcli.PullRequest, error)
	GetPullRequest(executionContext context.Context, repository string, pullRequestNumber int) (githubcli.PullRequest, error)
	ListPullRequestsForCommit(executionContext context.Context, repository string, commitHash string) ([]int, error)
	CreatePullRequest(executionContext context.Context, repository string, options githubcli.PullRequestCreateOptions) (string, error)
}

func shortHash(commitHash string) string {
	if len(commitHash) <= shortHashLengthConstant {
		return commitHash
	}
	return commitHash[:shortHashLengthConstant]
}
