package release

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/relpick/internal/githubcli"
	"github.com/temirov/relpick/internal/shared"
)

const (
	pullRequestTitleTemplateConstant    = "Release, %s (Hand-picked)"
	pullRequestTitleDateLayoutConstant  = "Jan 02"
	bodyPreambleConstant                = "Hand-picked release assembled by relpick."
	includedPullRequestsHeadingConstant = "## Included PRs"
	includedCommitsHeadingConstant      = "## Included Commits"
	skippedItemsHeadingConstant         = "## Skipped Items"
	listItemTemplateConstant            = "- %s"
	publicationPushedMessageConstant    = "Pushed release branch"
	publicationCreatedMessageConstant   = "Opened release pull request"
)

var (
	// ErrPublicationLoggerNotConfigured indicates the publication service requires a logger.
	ErrPublicationLoggerNotConfigured = errors.New("publication logger not configured")
	// ErrPublicationGitNotConfigured indicates the publication service requires git operations.
	ErrPublicationGitNotConfigured = errors.New("publication git operations not configured")
	// ErrPublicationGitHubNotConfigured indicates the publication service requires hosting operations.
	ErrPublicationGitHubNotConfigured = errors.New("publication github operations not configured")
)

// PublicationDependencies aggregates collaborators required by the publication service.
type PublicationDependencies struct {
	Logger *zap.Logger
	Git    GitOperations
	GitHub GitHubOperations
	Clock  shared.Clock
}

// PublicationOptions describes one branch push and pull request creation.
type PublicationOptions struct {
	RepositoryPath string
	Repository     string
	RemoteName     string
	StableBranch   string
	BranchName     string
	Included       []SelectionItem
	Skipped        []RejectedItem
	Draft          bool
	Reviewers      []string
}

// PublicationService pushes the assembled branch and opens the release pull request.
type PublicationService struct {
	logger *zap.Logger
	git    GitOperations
	github GitHubOperations
	clock  shared.Clock
}

// NewPublicationService validates dependencies and constructs a PublicationService.
func NewPublicationService(dependencies PublicationDependencies) (*PublicationService, error) {
	if dependencies.Logger == nil {
		return nil, ErrPublicationLoggerNotConfigured
	}
	if dependencies.Git == nil {
		return nil, ErrPublicationGitNotConfigured
	}
	if dependencies.GitHub == nil {
		return nil, ErrPublicationGitHubNotConfigured
	}
	clock := dependencies.Clock
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &PublicationService{
		logger: dependencies.Logger,
		git:    dependencies.Git,
		github: dependencies.GitHub,
		clock:  clock,
	}, nil
}

// Publish pushes the release branch and opens a pull request against the stable branch.
//
// The returned string is the created pull request URL.
func (service *PublicationService) Publish(executionContext context.Context, options PublicationOptions) (string, error) {
	if pushError := service.git.Push(executionContext, options.RepositoryPath, options.RemoteName, options.BranchName); pushError != nil {
		return "", pushError
	}
	service.logger.Info(publicationPushedMessageConstant, zap.String("branch", options.BranchName), zap.String("remote", options.RemoteName))

	pullRequestURL, createError := service.github.CreatePullRequest(executionContext, options.Repository, githubcli.PullRequestCreateOptions{
		Title:      PullRequestTitle(service.clock.Now()),
		Body:       BuildPullRequestBody(options.Included, options.Skipped),
		BaseBranch: options.StableBranch,
		HeadBranch: options.BranchName,
		Draft:      options.Draft,
		Reviewers:  options.Reviewers,
	})
	if createError != nil {
		return "", createError
	}
	service.logger.Info(publicationCreatedMessageConstant, zap.String("url", pullRequestURL))
	return pullRequestURL, nil
}

// PullRequestTitle renders the dated release title.
func PullRequestTitle(currentTime time.Time) string {
	return fmt.Sprintf(pullRequestTitleTemplateConstant, currentTime.UTC().Format(pullRequestTitleDateLayoutConstant))
}

// BuildPullRequestBody renders the release body with included and skipped sections.
//
// Sections with no entries are omitted.
func BuildPullRequestBody(included []SelectionItem, skipped []RejectedItem) string {
	bodyLines := []string{bodyPreambleConstant}

	pullRequestLines := make([]string, 0, len(included))
	commitLines := make([]string, 0, len(included))
	for _, includedItem := range included {
		if includedItem.IsPullRequest {
			pullRequestLines = append(pullRequestLines, fmt.Sprintf(listItemTemplateConstant, includedItem.DisplayLabel()))
			continue
		}
		commitLines = append(commitLines, fmt.Sprintf(listItemTemplateConstant, includedItem.DisplayLabel()))
	}

	if len(pullRequestLines) > 0 {
		bodyLines = append(bodyLines, "", includedPullRequestsHeadingConstant)
		bodyLines = append(bodyLines, pullRequestLines...)
	}
	if len(commitLines) > 0 {
		bodyLines = append(bodyLines, "", includedCommitsHeadingConstant)
		bodyLines = append(bodyLines, commitLines...)
	}
	if len(skipped) > 0 {
		// Rejection reasons stay on the operator's terminal; the published
		// body lists only the identifiers.
		bodyLines = append(bodyLines, "", skippedItemsHeadingConstant)
		for _, skippedItem := range skipped {
			bodyLines = append(bodyLines, fmt.Sprintf(listItemTemplateConstant, skippedItem.Identifier))
		}
	}

	return strings.Join(bodyLines, "\n")
}
