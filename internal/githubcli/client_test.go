package githubcli_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/relpick/internal/execshell"
	"github.com/temirov/relpick/internal/githubcli"
)

const (
	testRepositoryIdentifierConstant = "acme/widget"
	testIntegrationBranchConstant    = "develop"
	testStableBranchConstant         = "master"
)

type scriptedGitHubExecutor struct {
	results          []execshell.ExecutionResult
	errors           []error
	recordedCommands []execshell.CommandDetails
}

func (executor *scriptedGitHubExecutor) ExecuteGitHubCLI(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details)
	invocationIndex := len(executor.recordedCommands) - 1

	if invocationIndex < len(executor.errors) && executor.errors[invocationIndex] != nil {
		return execshell.ExecutionResult{}, executor.errors[invocationIndex]
	}
	if invocationIndex < len(executor.results) {
		return executor.results[invocationIndex], nil
	}
	return execshell.ExecutionResult{}, nil
}

func TestNewClientRequiresExecutor(testInstance *testing.T) {
	_, creationError := githubcli.NewClient(nil)
	require.ErrorIs(testInstance, creationError, githubcli.ErrExecutorNotConfigured)
}

func TestListMergedPullRequestsBuildsArgumentsAndDecodes(testInstance *testing.T) {
	listPayload := `[
		{"number": 1577, "title": "Add retry budget", "author": {"login": "alice"}, "mergedAt": "2026-08-20T10:00:00Z", "mergeCommit": {"oid": "aaa111"}},
		{"number": 1576, "title": "Fix pagination", "author": {"login": "bob"}, "mergedAt": "2026-08-19T09:00:00Z", "mergeCommit": {"oid": "bbb222"}}
	]`
	executor := &scriptedGitHubExecutor{results: []execshell.ExecutionResult{{StandardOutput: listPayload}}}
	client, creationError := githubcli.NewClient(executor)
	require.NoError(testInstance, creationError)

	pullRequests, listError := client.ListMergedPullRequests(context.Background(), testRepositoryIdentifierConstant, testIntegrationBranchConstant, 50)
	require.NoError(testInstance, listError)
	require.Len(testInstance, pullRequests, 2)

	require.Equal(testInstance, 1577, pullRequests[0].Number)
	require.Equal(testInstance, "alice", pullRequests[0].Author)
	require.Equal(testInstance, "aaa111", pullRequests[0].MergeCommitHash)
	require.True(testInstance, pullRequests[0].IsMerged())

	expectedArguments := []string{
		"pr", "list",
		"--state", "merged",
		"--base", testIntegrationBranchConstant,
		"--json", "number,title,author,mergedAt,mergeCommit",
		"--limit", "50",
		"--repo", testRepositoryIdentifierConstant,
	}
	require.Equal(testInstance, expectedArguments, executor.recordedCommands[0].Arguments)
}

func TestListMergedPullRequestsRequiresBaseBranch(testInstance *testing.T) {
	client, creationError := githubcli.NewClient(&scriptedGitHubExecutor{})
	require.NoError(testInstance, creationError)

	_, listError := client.ListMergedPullRequests(context.Background(), testRepositoryIdentifierConstant, "  ", 0)
	require.Error(testInstance, listError)
	require.IsType(testInstance, githubcli.InvalidInputError{}, listError)
}

func TestGetPullRequestDecodesFields(testInstance *testing.T) {
	viewPayload := `{"number": 1577, "title": "Add retry budget", "state": "MERGED", "baseRefName": "develop", "mergedAt": "2026-08-20T10:00:00Z", "mergeCommit": {"oid": "aaa111"}}`
	executor := &scriptedGitHubExecutor{results: []execshell.ExecutionResult{{StandardOutput: viewPayload}}}
	client, creationError := githubcli.NewClient(executor)
	require.NoError(testInstance, creationError)

	pullRequest, viewError := client.GetPullRequest(context.Background(), testRepositoryIdentifierConstant, 1577)
	require.NoError(testInstance, viewError)
	require.Equal(testInstance, "develop", pullRequest.BaseBranch)
	require.True(testInstance, pullRequest.IsMerged())
	require.Equal(testInstance, "aaa111", pullRequest.MergeCommitHash)
	require.Equal(testInstance, []string{"pr", "view", "1577", "--json", "number,title,state,baseRefName,mergedAt,mergeCommit", "--repo", testRepositoryIdentifierConstant}, executor.recordedCommands[0].Arguments)
}

func TestGetPullRequestRejectsNonPositiveNumbers(testInstance *testing.T) {
	client, creationError := githubcli.NewClient(&scriptedGitHubExecutor{})
	require.NoError(testInstance, creationError)

	_, viewError := client.GetPullRequest(context.Background(), testRepositoryIdentifierConstant, 0)
	require.IsType(testInstance, githubcli.InvalidInputError{}, viewError)
}

func TestCompareCommitsDecodesPayload(testInstance *testing.T) {
	comparePayload := `{"commits": [
		{"sha": "aaa111", "commit": {"message": "Merge pull request #1577 from acme/retry\n\ndetails", "committer": {"date": "2026-08-20T10:00:00Z"}, "author": {"name": "Alice"}}, "parents": [{"sha": "p1"}, {"sha": "p2"}]},
		{"sha": "ccc333", "commit": {"message": "Fix flaky retry loop", "committer": {"date": "2026-08-18T08:00:00Z"}, "author": {"name": "Carol"}}, "parents": [{"sha": "p1"}]}
	]}`
	executor := &scriptedGitHubExecutor{results: []execshell.ExecutionResult{{StandardOutput: comparePayload}}}
	client, creationError := githubcli.NewClient(executor)
	require.NoError(testInstance, creationError)

	commits, compareError := client.CompareCommits(context.Background(), testRepositoryIdentifierConstant, testStableBranchConstant, testIntegrationBranchConstant)
	require.NoError(testInstance, compareError)
	require.Len(testInstance, commits, 2)
	require.Equal(testInstance, "Merge pull request #1577 from acme/retry", commits[0].Subject)
	require.Equal(testInstance, 2, commits[0].ParentCount)
	require.Equal(testInstance, time.Date(2026, 8, 18, 8, 0, 0, 0, time.UTC), commits[1].CommittedAt)
	require.Equal(testInstance, []string{"api", "repos/acme/widget/compare/master...develop"}, executor.recordedCommands[0].Arguments)
}

func TestBranchExistsInterpretsExitCodes(testInstance *testing.T) {
	missingBranchFailure := execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGitHub},
		Result:  execshell.ExecutionResult{ExitCode: 1},
	}

	testCases := []struct {
		name           string
		executionError error
		expectedExists bool
	}{
		{name: "exists", executionError: nil, expectedExists: true},
		{name: "missing", executionError: missingBranchFailure, expectedExists: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &scriptedGitHubExecutor{errors: []error{testCase.executionError}}
			client, creationError := githubcli.NewClient(executor)
			require.NoError(testInstance, creationError)

			exists, existsError := client.BranchExists(context.Background(), testRepositoryIdentifierConstant, testStableBranchConstant)
			require.NoError(testInstance, existsError)
			require.Equal(testInstance, testCase.expectedExists, exists)
		})
	}
}

func TestListPullRequestsForCommitDecodesNumbers(testInstance *testing.T) {
	executor := &scriptedGitHubExecutor{results: []execshell.ExecutionResult{{StandardOutput: `[{"number": 1401}, {"number": 1399}]`}}}
	client, creationError := githubcli.NewClient(executor)
	require.NoError(testInstance, creationError)

	pullRequestNumbers, lookupError := client.ListPullRequestsForCommit(context.Background(), testRepositoryIdentifierConstant, "ccc333")
	require.NoError(testInstance, lookupError)
	require.Equal(testInstance, []int{1401, 1399}, pullRequestNumbers)
	require.Equal(testInstance, []string{"api", "repos/acme/widget/commits/ccc333/pulls"}, executor.recordedCommands[0].Arguments)
}

func TestCreatePullRequestBuildsArguments(testInstance *testing.T) {
	executor := &scriptedGitHubExecutor{results: []execshell.ExecutionResult{{StandardOutput: "https://github.com/acme/widget/pull/1600\n"}}}
	client, creationError := githubcli.NewClient(executor)
	require.NoError(testInstance, creationError)

	pullRequestURL, createError := client.CreatePullRequest(context.Background(), testRepositoryIdentifierConstant, githubcli.PullRequestCreateOptions{
		BaseBranch: testStableBranchConstant,
		HeadBranch: "release/handpicked-20260830120000",
		Title:      "Release, Aug 30 (Hand-picked)",
		Body:       "body",
		Draft:      true,
		Reviewers:  []string{"alice", " bob "},
	})
	require.NoError(testInstance, createError)
	require.Equal(testInstance, "https://github.com/acme/widget/pull/1600", pullRequestURL)

	expectedArguments := []string{
		"pr", "create",
		"--base", testStableBranchConstant,
		"--head", "release/handpicked-20260830120000",
		"--title", "Release, Aug 30 (Hand-picked)",
		"--body", "body",
		"--draft",
		"--reviewer", "alice,bob",
		"--repo", testRepositoryIdentifierConstant,
	}
	require.Equal(testInstance, expectedArguments, executor.recordedCommands[0].Arguments)
}

func TestCreatePullRequestRequiresTitle(testInstance *testing.T) {
	client, creationError := githubcli.NewClient(&scriptedGitHubExecutor{})
	require.NoError(testInstance, creationError)

	_, createError := client.CreatePullRequest(context.Background(), testRepositoryIdentifierConstant, githubcli.PullRequestCreateOptions{
		BaseBranch: testStableBranchConstant,
		HeadBranch: "release/handpicked-20260830120000",
	})
	require.IsType(testInstance, githubcli.InvalidInputError{}, createError)
}
