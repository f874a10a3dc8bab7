package release

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/relpick/internal/gitrepo"
)

const (
	pullRequestTitleFallbackTemplateConstant = "Pull request #%d"
	secondParentSuffixConstant               = "^2"
)

var (
	pullRequestNumberPattern = regexp.MustCompile(`^[0-9]+$`)
	commitHashPattern        = regexp.MustCompile(`^[0-9a-fA-F]{7,40}$`)
)

// RejectionReason explains why a selected identifier was excluded from a release.
type RejectionReason string

const (
	// RejectionReasonInvalidIdentifier marks identifiers that are neither pull request numbers nor commit references.
	RejectionReasonInvalidIdentifier RejectionReason = "not a pull request number or commit reference"
	// RejectionReasonPullRequestNotFound marks pull request numbers the hosting service does not know.
	RejectionReasonPullRequestNotFound RejectionReason = "pull request not found"
	// RejectionReasonPullRequestNotMerged marks pull requests that have not been merged.
	RejectionReasonPullRequestNotMerged RejectionReason = "pull request is not merged"
	// RejectionReasonBaseBranchMismatch marks pull requests merged into a different base branch.
	RejectionReasonBaseBranchMismatch RejectionReason = "pull request was not merged into the integration branch"
	// RejectionReasonMergeCommitUnresolvable marks pull requests whose merge commit could not be located.
	RejectionReasonMergeCommitUnresolvable RejectionReason = "merge commit could not be located"
	// RejectionReasonCommitUnresolvable marks commit references that do not resolve in the repository.
	RejectionReasonCommitUnresolvable RejectionReason = "commit could not be resolved"
	// RejectionReasonCommitNotOnIntegrationBranch marks commits unreachable from the integration branch tip.
	RejectionReasonCommitNotOnIntegrationBranch RejectionReason = "commit is not reachable from the integration branch"
	// RejectionReasonDuplicateSelection marks identifiers resolving to an already accepted change.
	RejectionReasonDuplicateSelection RejectionReason = "change is already selected"
)

var (
	// ErrSelectionLoggerNotConfigured indicates the selection service requires a logger.
	ErrSelectionLoggerNotConfigured = errors.New("selection logger not configured")
	// ErrSelectionGitNotConfigured indicates the selection service requires git operations.
	ErrSelectionGitNotConfigured = errors.New("selection git operations not configured")
	// ErrSelectionGitHubNotConfigured indicates the selection service requires hosting operations.
	ErrSelectionGitHubNotConfigured = errors.New("selection github operations not configured")
)

// SelectionItem is a validated change ready to be cherry-picked.
type SelectionItem struct {
	Identifier        string
	CommitHash        string
	Subject           string
	PullRequestNumber int
	IsPullRequest     bool
	FirstParent       bool
}

// DisplayLabel formats the item for listings and generated bodies.
func (item SelectionItem) DisplayLabel() string {
	if item.IsPullRequest {
		return fmt.Sprintf(pullRequestLabelTemplateConstant, item.PullRequestNumber, item.Subject)
	}
	return fmt.Sprintf(commitLabelTemplateConstant, shortHash(item.CommitHash), item.Subject)
}

// RejectedItem records an identifier excluded from the release and why.
type RejectedItem struct {
	Identifier string
	Reason     RejectionReason
}

// SelectionResult separates validated items from rejected identifiers.
//
// Accepted items retain the requested order within their category; pull
// request merges precede direct commits when applied.
type SelectionResult struct {
	PullRequestItems []SelectionItem
	CommitItems      []SelectionItem
	Rejected         []RejectedItem
}

// HasAcceptedItems reports whether any identifier survived validation.
func (result SelectionResult) HasAcceptedItems() bool {
	return len(result.PullRequestItems)+len(result.CommitItems) > 0
}

// AcceptedItems returns the validated items in application order.
func (result SelectionResult) AcceptedItems() []SelectionItem {
	orderedItems := make([]SelectionItem, 0, len(result.PullRequestItems)+len(result.CommitItems))
	orderedItems = append(orderedItems, result.PullRequestItems...)
	orderedItems = append(orderedItems, result.CommitItems...)
	return orderedItems
}

// SelectionDependencies aggregates collaborators required by the selection service.
type SelectionDependencies struct {
	Logger *zap.Logger
	Git    GitOperations
	GitHub GitHubOperations
}

// SelectionOptions describes one validation run.
//
// UnreleasedCommits feeds the merge commit recovery lookup when a pull
// request carries no usable merge commit hash.
type SelectionOptions struct {
	RepositoryPath    string
	Repository        string
	IntegrationBranch string
	UnreleasedCommits []gitrepo.CommitRecord
}

// SelectionService classifies raw identifiers and validates each against the repository.
type SelectionService struct {
	logger *zap.Logger
	git    GitOperations
	github GitHubOperations
}

// NewSelectionService validates dependencies and constructs a SelectionService.
func NewSelectionService(dependencies SelectionDependencies) (*SelectionService, error) {
	if dependencies.Logger == nil {
		return nil, ErrSelectionLoggerNotConfigured
	}
	if dependencies.Git == nil {
		return nil, ErrSelectionGitNotConfigured
	}
	if dependencies.GitHub == nil {
		return nil, ErrSelectionGitHubNotConfigured
	}
	return &SelectionService{logger: dependencies.Logger, git: dependencies.Git, github: dependencies.GitHub}, nil
}

// Resolve validates every identifier and partitions the outcome.
//
// All-digit identifiers are pull request numbers, hexadecimal strings of at
// least seven characters are commit hashes, and anything else must resolve as
// a git revision. A duplicate of an already accepted change is rejected rather
// than applied twice.
func (service *SelectionService) Resolve(executionContext context.Context, options SelectionOptions, identifiers []string) SelectionResult {
	selectionResult := SelectionResult{}
	claimedHashes := make(map[string]struct{})
	for _, rawIdentifier := range identifiers {
		trimmedIdentifier := strings.TrimSpace(rawIdentifier)
		if len(trimmedIdentifier) == 0 {
			continue
		}
		if pullRequestNumberPattern.MatchString(trimmedIdentifier) {
			service.resolvePullRequest(executionContext, options, trimmedIdentifier, claimedHashes, &selectionResult)
			continue
		}
		service.resolveCommit(executionContext, options, trimmedIdentifier, claimedHashes, &selectionResult)
	}
	return selectionResult
}

func (service *SelectionService) resolvePullRequest(executionContext context.Context, options SelectionOptions, identifier string, claimedHashes map[string]struct{}, selectionResult *SelectionResult) {
	pullRequestNumber, conversionError := strconv.Atoi(identifier)
	if conversionError != nil {
		selectionResult.Rejected = append(selectionResult.Rejected, RejectedItem{Identifier: identifier, Reason: RejectionReasonInvalidIdentifier})
		return
	}
	pullRequest, lookupError := service.github.GetPullRequest(executionContext, options.Repository, pullRequestNumber)
	if lookupError != nil {
		selectionResult.Rejected = append(selectionResult.Rejected, RejectedItem{Identifier: identifier, Reason: RejectionReasonPullRequestNotFound})
		return
	}
	if !pullRequest.IsMerged() {
		selectionResult.Rejected = append(selectionResult.Rejected, RejectedItem{Identifier: identifier, Reason: RejectionReasonPullRequestNotMerged})
		return
	}
	if len(options.IntegrationBranch) > 0 && len(pullRequest.BaseBranch) > 0 && pullRequest.BaseBranch != options.IntegrationBranch {
		selectionResult.Rejected = append(selectionResult.Rejected, RejectedItem{Identifier: identifier, Reason: RejectionReasonBaseBranchMismatch})
		return
	}
	mergeCommitHash := pullRequest.MergeCommitHash
	if len(mergeCommitHash) == 0 {
		mergeCommitHash = findMergeCommitBySubject(options.UnreleasedCommits, pullRequestNumber)
	}
	if len(mergeCommitHash) == 0 {
		selectionResult.Rejected = append(selectionResult.Rejected, RejectedItem{Identifier: identifier, Reason: RejectionReasonMergeCommitUnresolvable})
		return
	}
	resolvedHash, resolveError := service.git.ResolveCommit(executionContext, options.RepositoryPath, mergeCommitHash)
	if resolveError != nil {
		selectionResult.Rejected = append(selectionResult.Rejected, RejectedItem{Identifier: identifier, Reason: RejectionReasonMergeCommitUnresolvable})
		return
	}
	if _, alreadyClaimed := claimedHashes[resolvedHash]; alreadyClaimed {
		selectionResult.Rejected = append(selectionResult.Rejected, RejectedItem{Identifier: identifier, Reason: RejectionReasonDuplicateSelection})
		return
	}
	claimedHashes[resolvedHash] = struct{}{}
	pullRequestTitle := pullRequest.Title
	if len(pullRequestTitle) == 0 {
		pullRequestTitle = fmt.Sprintf(pullRequestTitleFallbackTemplateConstant, pullRequestNumber)
	}
	selectionResult.PullRequestItems = append(selectionResult.PullRequestItems, SelectionItem{
		Identifier:        identifier,
		CommitHash:        resolvedHash,
		Subject:           pullRequestTitle,
		PullRequestNumber: pullRequestNumber,
		IsPullRequest:     true,
		FirstParent:       service.isMergeCommit(executionContext, options, resolvedHash),
	})
}

func (service *SelectionService) resolveCommit(executionContext context.Context, options SelectionOptions, identifier string, claimedHashes map[string]struct{}, selectionResult *SelectionResult) {
	if !commitHashPattern.MatchString(identifier) && !service.revisionResolves(executionContext, options, identifier) {
		selectionResult.Rejected = append(selectionResult.Rejected, RejectedItem{Identifier: identifier, Reason: RejectionReasonInvalidIdentifier})
		return
	}
	resolvedHash, resolveError := service.git.ResolveCommit(executionContext, options.RepositoryPath, identifier)
	if resolveError != nil {
		selectionResult.Rejected = append(selectionResult.Rejected, RejectedItem{Identifier: identifier, Reason: RejectionReasonCommitUnresolvable})
		return
	}
	reachable, ancestryError := service.git.IsAncestor(executionContext, options.RepositoryPath, resolvedHash, options.IntegrationBranch)
	if ancestryError != nil || !reachable {
		selectionResult.Rejected = append(selectionResult.Rejected, RejectedItem{Identifier: identifier, Reason: RejectionReasonCommitNotOnIntegrationBranch})
		return
	}
	if _, alreadyClaimed := claimedHashes[resolvedHash]; alreadyClaimed {
		selectionResult.Rejected = append(selectionResult.Rejected, RejectedItem{Identifier: identifier, Reason: RejectionReasonDuplicateSelection})
		return
	}
	claimedHashes[resolvedHash] = struct{}{}
	selectionResult.CommitItems = append(selectionResult.CommitItems, SelectionItem{
		Identifier: identifier,
		CommitHash: resolvedHash,
		Subject:    subjectForCommit(options.UnreleasedCommits, resolvedHash),
	})
}

func (service *SelectionService) revisionResolves(executionContext context.Context, options SelectionOptions, identifier string) bool {
	_, resolveError := service.git.ResolveCommit(executionContext, options.RepositoryPath, identifier)
	return resolveError == nil
}

// isMergeCommit checks for a second parent. Squash and rebase merges produce
// single-parent commits which must be replayed without a mainline argument.
func (service *SelectionService) isMergeCommit(executionContext context.Context, options SelectionOptions, commitHash string) bool {
	return service.revisionResolves(executionContext, options, commitHash+secondParentSuffixConstant)
}

func subjectForCommit(unreleasedCommits []gitrepo.CommitRecord, commitHash string) string {
	for _, commitRecord := range unreleasedCommits {
		if commitRecord.Hash == commitHash {
			return commitRecord.Subject
		}
	}
	return shortHash(commitHash)
}
