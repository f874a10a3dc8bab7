package release

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/relpick/internal/githubcli"
	"github.com/temirov/relpick/internal/gitrepo"
)

const (
	mergeReferenceTemplateConstant          = "#%d"
	discoveryCompareFallbackMessageConstant = "Commit comparison through the hosting API failed; falling back to local history"
	discoveryCompareEmptyMessageConstant    = "Commit comparison through the hosting API returned no commits; consulting local history"
	discoveryPullRequestListFailureConstant = "Merged pull request listing failed; recovering pull requests from merge commit subjects"
	discoveryReverseLookupFailureConstant   = "Pull request lookup for commit failed"
	mergeCommitSubjectPrefixConstant        = "Merge pull request #"
)

var (
	// ErrDiscoveryLoggerNotConfigured indicates the discovery service requires a logger.
	ErrDiscoveryLoggerNotConfigured = errors.New("discovery logger not configured")
	// ErrDiscoveryGitNotConfigured indicates the discovery service requires git operations.
	ErrDiscoveryGitNotConfigured = errors.New("discovery git operations not configured")
	// ErrDiscoveryGitHubNotConfigured indicates the discovery service requires hosting operations.
	ErrDiscoveryGitHubNotConfigured = errors.New("discovery github operations not configured")
)

// DiscoveryDependencies aggregates collaborators required by the discovery service.
type DiscoveryDependencies struct {
	Logger *zap.Logger
	Git    GitOperations
	GitHub GitHubOperations
}

// DiscoveryOptions describes one discovery run.
type DiscoveryOptions struct {
	RepositoryPath    string
	Repository        string
	IntegrationBranch string
	StableBranch      string
	PullRequestLimit  int
}

// DiscoveryService computes the set of unreleased changes between two branches.
type DiscoveryService struct {
	logger *zap.Logger
	git    GitOperations
	github GitHubOperations
}

// NewDiscoveryService validates dependencies and constructs a DiscoveryService.
func NewDiscoveryService(dependencies DiscoveryDependencies) (*DiscoveryService, error) {
	if dependencies.Logger == nil {
		return nil, ErrDiscoveryLoggerNotConfigured
	}
	if dependencies.Git == nil {
		return nil, ErrDiscoveryGitNotConfigured
	}
	if dependencies.GitHub == nil {
		return nil, ErrDiscoveryGitHubNotConfigured
	}
	return &DiscoveryService{logger: dependencies.Logger, git: dependencies.Git, github: dependencies.GitHub}, nil
}

// Discover lists unreleased pull requests and direct commits.
//
// Every commit claimed by a listed pull request merge is excluded from the
// direct commit section so no change appears twice. Pull requests whose merge
// commit cannot be located in the unreleased range are dropped entirely.
func (service *DiscoveryService) Discover(executionContext context.Context, options DiscoveryOptions) (UnreleasedSet, error) {
	unreleasedCommits, commitListError := service.listUnreleasedCommits(executionContext, options)
	if commitListError != nil {
		return UnreleasedSet{}, commitListError
	}

	unreleasedHashes := make(map[string]struct{}, len(unreleasedCommits))
	for _, commitRecord := range unreleasedCommits {
		unreleasedHashes[commitRecord.Hash] = struct{}{}
	}

	mergedPullRequests := service.listMergedPullRequests(executionContext, options, unreleasedCommits)

	claimedHashes := make(map[string]int)
	pullRequestChanges := make([]PullRequestChange, 0, len(mergedPullRequests))
	for _, pullRequest := range mergedPullRequests {
		mergeCommitHash := pullRequest.MergeCommitHash
		if len(mergeCommitHash) == 0 {
			// Subject search only stands in for a hash the hosting API did not
			// expose. A known hash outside the unreleased range means the pull
			// request already shipped.
			mergeCommitHash = findMergeCommitBySubject(unreleasedCommits, pullRequest.Number)
			if len(mergeCommitHash) == 0 {
				continue
			}
		} else if _, unreleased := unreleasedHashes[mergeCommitHash]; !unreleased {
			continue
		}
		if _, alreadyClaimed := claimedHashes[mergeCommitHash]; alreadyClaimed {
			continue
		}
		claimedHashes[mergeCommitHash] = pullRequest.Number
		pullRequestChanges = append(pullRequestChanges, PullRequestChange{
			Number:          pullRequest.Number,
			Title:           pullRequest.Title,
			Author:          pullRequest.Author,
			MergedAt:        pullRequest.MergedAt,
			MergeCommitHash: mergeCommitHash,
		})
	}

	commitChanges := make([]CommitChange, 0, len(unreleasedCommits))
	for _, commitRecord := range unreleasedCommits {
		if commitRecord.IsMergeCommit() {
			continue
		}
		if _, claimed := claimedHashes[commitRecord.Hash]; claimed {
			continue
		}
		commitChanges = append(commitChanges, CommitChange{
			Hash:                        commitRecord.Hash,
			Subject:                     commitRecord.Subject,
			Author:                      commitRecord.Author,
			CommittedAt:                 commitRecord.CommittedAt,
			AssociatedPullRequestNumber: service.associatedPullRequestNumber(executionContext, options, commitRecord.Hash),
		})
	}

	return UnreleasedSet{PullRequests: pullRequestChanges, Commits: commitChanges, AllCommits: unreleasedCommits}, nil
}

func (service *DiscoveryService) listUnreleasedCommits(executionContext context.Context, options DiscoveryOptions) ([]gitrepo.CommitRecord, error) {
	if len(options.Repository) > 0 {
		comparedCommits, compareError := service.github.CompareCommits(executionContext, options.Repository, options.StableBranch, options.IntegrationBranch)
		switch {
		case compareError != nil:
			service.logger.Warn(discoveryCompareFallbackMessageConstant, zap.Error(compareError))
		case len(comparedCommits) == 0:
			// A stale hosted mirror can report an empty range while the local
			// clone already carries unreleased work. Trust local history.
			service.logger.Debug(discoveryCompareEmptyMessageConstant)
		default:
			return commitRecordsFromSummaries(comparedCommits), nil
		}
	}
	return service.git.ListCommitsBetween(executionContext, options.RepositoryPath, options.StableBranch, options.IntegrationBranch)
}

func (service *DiscoveryService) listMergedPullRequests(executionContext context.Context, options DiscoveryOptions, unreleasedCommits []gitrepo.CommitRecord) []githubcli.PullRequest {
	if len(options.Repository) > 0 {
		listedPullRequests, listError := service.github.ListMergedPullRequests(executionContext, options.Repository, options.IntegrationBranch, options.PullRequestLimit)
		if listError == nil {
			return listedPullRequests
		}
		service.logger.Warn(discoveryPullRequestListFailureConstant, zap.Error(listError))
	}
	return pullRequestsFromMergeCommits(unreleasedCommits)
}

func (service *DiscoveryService) associatedPullRequestNumber(executionContext context.Context, options DiscoveryOptions, commitHash string) int {
	if len(options.Repository) == 0 {
		return 0
	}
	pullRequestNumbers, lookupError := service.github.ListPullRequestsForCommit(executionContext, options.Repository, commitHash)
	if lookupError != nil {
		service.logger.Debug(discoveryReverseLookupFailureConstant, zap.String("commit", commitHash), zap.Error(lookupError))
		return 0
	}
	if len(pullRequestNumbers) == 0 {
		return 0
	}
	return pullRequestNumbers[0]
}

func commitRecordsFromSummaries(commitSummaries []githubcli.CommitSummary) []gitrepo.CommitRecord {
	commitRecords := make([]gitrepo.CommitRecord, 0, len(commitSummaries))
	// The compare endpoint lists commits oldest first while git log lists
	// newest first. Reverse so both sources present the same order.
	for summaryIndex := len(commitSummaries) - 1; summaryIndex >= 0; summaryIndex-- {
		commitSummary := commitSummaries[summaryIndex]
		commitRecords = append(commitRecords, gitrepo.CommitRecord{
			Hash:        commitSummary.Hash,
			Subject:     commitSummary.Subject,
			Author:      commitSummary.Author,
			CommittedAt: commitSummary.CommittedAt,
			ParentCount: commitSummary.ParentCount,
		})
	}
	return commitRecords
}

func pullRequestsFromMergeCommits(unreleasedCommits []gitrepo.CommitRecord) []githubcli.PullRequest {
	recoveredPullRequests := make([]githubcli.PullRequest, 0)
	for _, commitRecord := range unreleasedCommits {
		if !commitRecord.IsMergeCommit() {
			continue
		}
		remainder, prefixFound := strings.CutPrefix(commitRecord.Subject, mergeCommitSubjectPrefixConstant)
		if !prefixFound {
			continue
		}
		pullRequestNumber := leadingNumber(remainder)
		if pullRequestNumber == 0 {
			continue
		}
		recoveredPullRequests = append(recoveredPullRequests, githubcli.PullRequest{
			Number:          pullRequestNumber,
			Title:           commitRecord.Subject,
			Author:          commitRecord.Author,
			MergedAt:        commitRecord.CommittedAt,
			MergeCommitHash: commitRecord.Hash,
		})
	}
	return recoveredPullRequests
}

func findMergeCommitBySubject(unreleasedCommits []gitrepo.CommitRecord, pullRequestNumber int) string {
	mergeReference := fmt.Sprintf(mergeReferenceTemplateConstant, pullRequestNumber)
	for _, commitRecord := range unreleasedCommits {
		if !commitRecord.IsMergeCommit() {
			continue
		}
		if subjectReferencesPullRequest(commitRecord.Subject, mergeReference) {
			return commitRecord.Hash
		}
	}
	return ""
}

func subjectReferencesPullRequest(subject string, mergeReference string) bool {
	searchOffset := 0
	for {
		referenceIndex := strings.Index(subject[searchOffset:], mergeReference)
		if referenceIndex < 0 {
			return false
		}
		followingIndex := searchOffset + referenceIndex + len(mergeReference)
		if followingIndex >= len(subject) {
			return true
		}
		followingCharacter := subject[followingIndex]
		if followingCharacter < '0' || followingCharacter > '9' {
			return true
		}
		searchOffset = followingIndex
	}
}

func leadingNumber(candidate string) int {
	parsedNumber := 0
	digitCount := 0
	for _, characterValue := range candidate {
		if characterValue < '0' || characterValue > '9' {
			break
		}
		parsedNumber = parsedNumber*10 + int(characterValue-'0')
		digitCount++
	}
	if digitCount == 0 {
		return 0
	}
	return parsedNumber
}
