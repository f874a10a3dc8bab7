package githubcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/temirov/relpick/internal/execshell"
)

const (
	repoSubcommandConstant        = "repo"
	viewSubcommandConstant        = "view"
	pullRequestSubcommandConstant = "pr"
	listSubcommandConstant        = "list"
	createSubcommandConstant      = "create"
	apiSubcommandConstant         = "api"
	authSubcommandConstant        = "auth"
	statusSubcommandConstant      = "status"
	jsonFlagConstant              = "--json"
	repoFlagConstant              = "--repo"
	stateFlagConstant             = "--state"
	baseFlagConstant              = "--base"
	headFlagConstant              = "--head"
	titleFlagConstant             = "--title"
	bodyFlagConstant              = "--body"
	draftFlagConstant             = "--draft"
	reviewerFlagConstant          = "--reviewer"
	limitFlagConstant             = "--limit"

	repositoryFieldNameConstant   = "repository"
	baseBranchFieldNameConstant   = "base_branch"
	headBranchFieldNameConstant   = "head_branch"
	titleFieldNameConstant        = "title"
	branchFieldNameConstant       = "branch"
	commitFieldNameConstant       = "commit"
	pullRequestFieldNameConstant  = "pull_request_number"
	requiredValueMessageConstant  = "value required"
	positiveValueMessageConstant  = "positive value required"
	executorNotConfiguredConstant = "github cli executor not configured"

	mergedStateValueConstant             = "merged"
	pullRequestLimitDefaultValueConstant = 100
	pullRequestListJSONFieldsConstant    = "number,title,author,mergedAt,mergeCommit"
	pullRequestViewJSONFieldsConstant    = "number,title,state,baseRefName,mergedAt,mergeCommit"
	repoViewJSONFieldsConstant           = "nameWithOwner,defaultBranchRef"
	reviewerListSeparatorConstant        = ","

	operationErrorTemplateConstant           = "%s operation failed: %s"
	operationErrorNoCauseTemplateConstant    = "%s operation failed"
	responseDecodingErrorTemplateConstant    = "%s response decoding failed: %s"
	invalidInputErrorTemplateConstant        = "%s: %s"
	branchEndpointTemplateConstant           = "repos/%s/branches/%s"
	compareEndpointTemplateConstant          = "repos/%s/compare/%s...%s"
	commitPullsEndpointTemplateConstant      = "repos/%s/commits/%s/pulls"
	resolveRepositoryOperationNameConstant   = OperationName("ResolveRepoMetadata")
	branchExistsOperationNameConstant        = OperationName("BranchExists")
	compareCommitsOperationNameConstant      = OperationName("CompareCommits")
	listMergedPullsOperationNameConstant     = OperationName("ListMergedPullRequests")
	getPullRequestOperationNameConstant      = OperationName("GetPullRequest")
	commitPullLookupOperationNameConstant    = OperationName("ListPullRequestsForCommit")
	createPullRequestOperationNameConstant   = OperationName("CreatePullRequest")
	checkAuthenticationOperationNameConstant = OperationName("CheckAuthentication")
)

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// RepositoryMetadata contains key details resolved from GitHub.
type RepositoryMetadata struct {
	NameWithOwner string
	DefaultBranch string
}

// PullRequest represents PR details returned by GitHub CLI.
type PullRequest struct {
	Number          int
	Title           string
	Author          string
	State           string
	BaseBranch      string
	MergedAt        time.Time
	MergeCommitHash string
}

// IsMerged reports whether the pull request reached the merged state.
func (pullRequest PullRequest) IsMerged() bool {
	return strings.EqualFold(pullRequest.State, mergedStateValueConstant)
}

// CommitSummary describes a commit returned by the compare endpoint.
type CommitSummary struct {
	Hash        string
	Subject     string
	Author      string
	CommittedAt time.Time
	ParentCount int
}

// PullRequestCreateOptions configures CreatePullRequest invocations.
type PullRequestCreateOptions struct {
	BaseBranch string
	HeadBranch string
	Title      string
	Body       string
	Draft      bool
	Reviewers  []string
}

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor GitHubCommandExecutor
}

// ErrExecutorNotConfigured indicates the client was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredConstant)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorNoCauseTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// NewClient constructs a GitHub CLI client.
func NewClient(executor GitHubCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// CheckAuthentication reports whether the GitHub CLI holds valid credentials.
func (client *Client) CheckAuthentication(executionContext context.Context) (bool, error) {
	commandDetails := execshell.CommandDetails{Arguments: []string{authSubcommandConstant, statusSubcommandConstant}}

	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		if isExitCodeFailure(executionError) {
			return false, nil
		}
		return false, OperationError{Operation: checkAuthenticationOperationNameConstant, Cause: executionError}
	}
	return true, nil
}

// ResolveRepoMetadata retrieves canonical metadata for a repository using gh repo view.
//
// An empty repository identifier resolves the repository from the current directory.
func (client *Client) ResolveRepoMetadata(executionContext context.Context, repository string) (RepositoryMetadata, error) {
	commandArguments := []string{repoSubcommandConstant, viewSubcommandConstant}
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) > 0 {
		commandArguments = append(commandArguments, repositoryIdentifier)
	}
	commandArguments = append(commandArguments, jsonFlagConstant, repoViewJSONFieldsConstant)

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, execshell.CommandDetails{Arguments: commandArguments})
	if executionError != nil {
		return RepositoryMetadata{}, OperationError{Operation: resolveRepositoryOperationNameConstant, Cause: executionError}
	}

	var response struct {
		NameWithOwner    string `json:"nameWithOwner"`
		DefaultBranchRef struct {
			Name string `json:"name"`
		} `json:"defaultBranchRef"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return RepositoryMetadata{}, ResponseDecodingError{Operation: resolveRepositoryOperationNameConstant, Cause: decodingError}
	}

	return RepositoryMetadata{
		NameWithOwner: response.NameWithOwner,
		DefaultBranch: response.DefaultBranchRef.Name,
	}, nil
}

// BranchExists reports whether the named branch exists in the repository.
func (client *Client) BranchExists(executionContext context.Context, repository string, branchName string) (bool, error) {
	repositoryIdentifier, repositoryError := requireField(repository, repositoryFieldNameConstant)
	if repositoryError != nil {
		return false, repositoryError
	}
	trimmedBranchName, branchError := requireField(branchName, branchFieldNameConstant)
	if branchError != nil {
		return false, branchError
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{apiSubcommandConstant, fmt.Sprintf(branchEndpointTemplateConstant, repositoryIdentifier, trimmedBranchName)},
	}

	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		if isExitCodeFailure(executionError) {
			return false, nil
		}
		return false, OperationError{Operation: branchExistsOperationNameConstant, Cause: executionError}
	}
	return true, nil
}

// CompareCommits returns the commits reachable from head but not from base using the compare endpoint.
func (client *Client) CompareCommits(executionContext context.Context, repository string, baseReference string, headReference string) ([]CommitSummary, error) {
	repositoryIdentifier, repositoryError := requireField(repository, repositoryFieldNameConstant)
	if repositoryError != nil {
		return nil, repositoryError
	}
	trimmedBase, baseError := requireField(baseReference, baseBranchFieldNameConstant)
	if baseError != nil {
		return nil, baseError
	}
	trimmedHead, headError := requireField(headReference, headBranchFieldNameConstant)
	if headError != nil {
		return nil, headError
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{apiSubcommandConstant, fmt.Sprintf(compareEndpointTemplateConstant, repositoryIdentifier, trimmedBase, trimmedHead)},
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return nil, OperationError{Operation: compareCommitsOperationNameConstant, Cause: executionError}
	}

	var response struct {
		Commits []struct {
			SHA    string `json:"sha"`
			Commit struct {
				Message   string `json:"message"`
				Committer struct {
					Date time.Time `json:"date"`
				} `json:"committer"`
				Author struct {
					Name string `json:"name"`
				} `json:"author"`
			} `json:"commit"`
			Parents []struct {
				SHA string `json:"sha"`
			} `json:"parents"`
		} `json:"commits"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return nil, ResponseDecodingError{Operation: compareCommitsOperationNameConstant, Cause: decodingError}
	}

	commitSummaries := make([]CommitSummary, 0, len(response.Commits))
	for _, commitEntry := range response.Commits {
		commitSummaries = append(commitSummaries, CommitSummary{
			Hash:        commitEntry.SHA,
			Subject:     firstMessageLine(commitEntry.Commit.Message),
			Author:      commitEntry.Commit.Author.Name,
			CommittedAt: commitEntry.Commit.Committer.Date,
			ParentCount: len(commitEntry.Parents),
		})
	}

	return commitSummaries, nil
}

// ListMergedPullRequests enumerates merged pull requests targeting the base branch, most recent first.
func (client *Client) ListMergedPullRequests(executionContext context.Context, repository string, baseBranch string, resultLimit int) ([]PullRequest, error) {
	trimmedBase, baseError := requireField(baseBranch, baseBranchFieldNameConstant)
	if baseError != nil {
		return nil, baseError
	}

	if resultLimit <= 0 {
		resultLimit = pullRequestLimitDefaultValueConstant
	}

	commandArguments := []string{
		pullRequestSubcommandConstant,
		listSubcommandConstant,
		stateFlagConstant,
		mergedStateValueConstant,
		baseFlagConstant,
		trimmedBase,
		jsonFlagConstant,
		pullRequestListJSONFieldsConstant,
		limitFlagConstant,
		strconv.Itoa(resultLimit),
	}
	commandArguments = appendRepositoryFlag(commandArguments, repository)

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, execshell.CommandDetails{Arguments: commandArguments})
	if executionError != nil {
		return nil, OperationError{Operation: listMergedPullsOperationNameConstant, Cause: executionError}
	}

	var response []pullRequestPayload
	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return nil, ResponseDecodingError{Operation: listMergedPullsOperationNameConstant, Cause: decodingError}
	}

	pullRequests := make([]PullRequest, 0, len(response))
	for _, pullRequestEntry := range response {
		converted := pullRequestEntry.toPullRequest()
		converted.State = mergedStateValueConstant
		pullRequests = append(pullRequests, converted)
	}

	return pullRequests, nil
}

// GetPullRequest retrieves a single pull request by number.
func (client *Client) GetPullRequest(executionContext context.Context, repository string, pullRequestNumber int) (PullRequest, error) {
	if pullRequestNumber <= 0 {
		return PullRequest{}, InvalidInputError{FieldName: pullRequestFieldNameConstant, Message: positiveValueMessageConstant}
	}

	commandArguments := []string{
		pullRequestSubcommandConstant,
		viewSubcommandConstant,
		strconv.Itoa(pullRequestNumber),
		jsonFlagConstant,
		pullRequestViewJSONFieldsConstant,
	}
	commandArguments = appendRepositoryFlag(commandArguments, repository)

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, execshell.CommandDetails{Arguments: commandArguments})
	if executionError != nil {
		return PullRequest{}, OperationError{Operation: getPullRequestOperationNameConstant, Cause: executionError}
	}

	var response pullRequestPayload
	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return PullRequest{}, ResponseDecodingError{Operation: getPullRequestOperationNameConstant, Cause: decodingError}
	}

	return response.toPullRequest(), nil
}

// ListPullRequestsForCommit returns the numbers of pull requests containing the commit.
func (client *Client) ListPullRequestsForCommit(executionContext context.Context, repository string, commitHash string) ([]int, error) {
	repositoryIdentifier, repositoryError := requireField(repository, repositoryFieldNameConstant)
	if repositoryError != nil {
		return nil, repositoryError
	}
	trimmedHash, hashError := requireField(commitHash, commitFieldNameConstant)
	if hashError != nil {
		return nil, hashError
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{apiSubcommandConstant, fmt.Sprintf(commitPullsEndpointTemplateConstant, repositoryIdentifier, trimmedHash)},
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return nil, OperationError{Operation: commitPullLookupOperationNameConstant, Cause: executionError}
	}

	var response []struct {
		Number int `json:"number"`
	}
	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return nil, ResponseDecodingError{Operation: commitPullLookupOperationNameConstant, Cause: decodingError}
	}

	pullRequestNumbers := make([]int, 0, len(response))
	for _, pullRequestEntry := range response {
		pullRequestNumbers = append(pullRequestNumbers, pullRequestEntry.Number)
	}

	return pullRequestNumbers, nil
}

// CreatePullRequest opens a pull request and returns the URL reported by the GitHub CLI.
func (client *Client) CreatePullRequest(executionContext context.Context, repository string, options PullRequestCreateOptions) (string, error) {
	trimmedBase, baseError := requireField(options.BaseBranch, baseBranchFieldNameConstant)
	if baseError != nil {
		return "", baseError
	}
	trimmedHead, headError := requireField(options.HeadBranch, headBranchFieldNameConstant)
	if headError != nil {
		return "", headError
	}
	trimmedTitle, titleError := requireField(options.Title, titleFieldNameConstant)
	if titleError != nil {
		return "", titleError
	}

	commandArguments := []string{
		pullRequestSubcommandConstant,
		createSubcommandConstant,
		baseFlagConstant,
		trimmedBase,
		headFlagConstant,
		trimmedHead,
		titleFlagConstant,
		trimmedTitle,
		bodyFlagConstant,
		options.Body,
	}
	if options.Draft {
		commandArguments = append(commandArguments, draftFlagConstant)
	}

	trimmedReviewers := trimValues(options.Reviewers)
	if len(trimmedReviewers) > 0 {
		commandArguments = append(commandArguments, reviewerFlagConstant, strings.Join(trimmedReviewers, reviewerListSeparatorConstant))
	}
	commandArguments = appendRepositoryFlag(commandArguments, repository)

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, execshell.CommandDetails{Arguments: commandArguments})
	if executionError != nil {
		return "", OperationError{Operation: createPullRequestOperationNameConstant, Cause: executionError}
	}

	return strings.TrimSpace(executionResult.StandardOutput), nil
}

type pullRequestPayload struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	State  string `json:"state"`
	Author struct {
		Login string `json:"login"`
	} `json:"author"`
	BaseRefName string    `json:"baseRefName"`
	MergedAt    time.Time `json:"mergedAt"`
	MergeCommit struct {
		OID string `json:"oid"`
	} `json:"mergeCommit"`
}

func (payload pullRequestPayload) toPullRequest() PullRequest {
	return PullRequest{
		Number:          payload.Number,
		Title:           payload.Title,
		Author:          payload.Author.Login,
		State:           payload.State,
		BaseBranch:      payload.BaseRefName,
		MergedAt:        payload.MergedAt,
		MergeCommitHash: payload.MergeCommit.OID,
	}
}

func appendRepositoryFlag(commandArguments []string, repository string) []string {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return commandArguments
	}
	return append(commandArguments, repoFlagConstant, repositoryIdentifier)
}

func requireField(rawValue string, fieldName string) (string, error) {
	trimmedValue := strings.TrimSpace(rawValue)
	if len(trimmedValue) == 0 {
		return "", InvalidInputError{FieldName: fieldName, Message: requiredValueMessageConstant}
	}
	return trimmedValue, nil
}

func trimValues(rawValues []string) []string {
	trimmedValues := make([]string, 0, len(rawValues))
	for _, rawValue := range rawValues {
		trimmedValue := strings.TrimSpace(rawValue)
		if len(trimmedValue) == 0 {
			continue
		}
		trimmedValues = append(trimmedValues, trimmedValue)
	}
	return trimmedValues
}

func firstMessageLine(commitMessage string) string {
	messageLines := strings.SplitN(commitMessage, "\n", 2)
	return strings.TrimSpace(messageLines[0])
}

func isExitCodeFailure(executionError error) bool {
	commandFailure := execshell.CommandFailedError{}
	return errors.As(executionError, &commandFailure)
}
