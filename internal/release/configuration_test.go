package release_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/relpick/internal/release"
)

func TestDefaultConfigurationValues(testInstance *testing.T) {
	configuration := release.DefaultConfiguration()

	require.Equal(testInstance, "develop", configuration.IntegrationBranch)
	require.Equal(testInstance, []string{"master", "main"}, configuration.StableBranchCandidates)
	require.Equal(testInstance, "origin", configuration.RemoteName)
	require.Equal(testInstance, 100, configuration.PullRequestLimit)
	require.True(testInstance, configuration.Draft)
}

func TestConfigurationSanitize(testInstance *testing.T) {
	testCases := []struct {
		name          string
		configuration release.Configuration
		verify        func(subtest *testing.T, sanitized release.Configuration)
	}{
		{
			name:          "restores_defaults_for_empty_values",
			configuration: release.Configuration{},
			verify: func(subtest *testing.T, sanitized release.Configuration) {
				require.Equal(subtest, "develop", sanitized.IntegrationBranch)
				require.Equal(subtest, []string{"master", "main"}, sanitized.StableBranchCandidates)
				require.Equal(subtest, "origin", sanitized.RemoteName)
				require.Equal(subtest, 100, sanitized.PullRequestLimit)
			},
		},
		{
			name: "trims_configured_values",
			configuration: release.Configuration{
				Repository:             "  acme/widgets  ",
				IntegrationBranch:      " develop ",
				StableBranchCandidates: []string{" release/stable ", ""},
				RemoteName:             " upstream ",
				PullRequestLimit:       25,
			},
			verify: func(subtest *testing.T, sanitized release.Configuration) {
				require.Equal(subtest, "acme/widgets", sanitized.Repository)
				require.Equal(subtest, "develop", sanitized.IntegrationBranch)
				require.Equal(subtest, []string{"release/stable"}, sanitized.StableBranchCandidates)
				require.Equal(subtest, "upstream", sanitized.RemoteName)
				require.Equal(subtest, 25, sanitized.PullRequestLimit)
			},
		},
		{
			name: "rejects_non_positive_limit",
			configuration: release.Configuration{
				PullRequestLimit: -5,
			},
			verify: func(subtest *testing.T, sanitized release.Configuration) {
				require.Equal(subtest, 100, sanitized.PullRequestLimit)
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			testCase.verify(subtest, testCase.configuration.Sanitize())
		})
	}
}
