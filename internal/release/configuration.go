package release

import (
	"strings"

	"github.com/temirov/relpick/internal/shared"
	pathutils "github.com/temirov/relpick/internal/utils/path"
)

const (
	defaultIntegrationBranchConstant = "develop"
	defaultPullRequestLimitConstant  = 100
)

var defaultStableBranchCandidatesConstant = []string{"master", "main"}

// Configuration aggregates settings for the release command.
type Configuration struct {
	RepositoryPath         string   `mapstructure:"repository"`
	Repository             string   `mapstructure:"repository_slug"`
	IntegrationBranch      string   `mapstructure:"integration_branch"`
	StableBranchCandidates []string `mapstructure:"stable_branches"`
	RemoteName             string   `mapstructure:"remote"`
	PullRequestLimit       int      `mapstructure:"pull_request_limit"`
	Draft                  bool     `mapstructure:"draft"`
}

// DefaultConfiguration supplies baseline values for release configuration.
func DefaultConfiguration() Configuration {
	return Configuration{
		IntegrationBranch:      defaultIntegrationBranchConstant,
		StableBranchCandidates: append([]string(nil), defaultStableBranchCandidatesConstant...),
		RemoteName:             shared.OriginRemoteNameConstant,
		PullRequestLimit:       defaultPullRequestLimitConstant,
		Draft:                  true,
	}
}

// DefaultConfigurationValues exposes release defaults keyed for the configuration loader.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaultConfiguration := DefaultConfiguration()
	return map[string]any{
		configurationKeyPrefix + ".integration_branch": defaultConfiguration.IntegrationBranch,
		configurationKeyPrefix + ".stable_branches":    defaultConfiguration.StableBranchCandidates,
		configurationKeyPrefix + ".remote":             defaultConfiguration.RemoteName,
		configurationKeyPrefix + ".pull_request_limit": defaultConfiguration.PullRequestLimit,
		configurationKeyPrefix + ".draft":              defaultConfiguration.Draft,
	}
}

// Sanitize trims configured values and restores defaults for empty entries.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.RepositoryPath = strings.TrimSpace(configuration.RepositoryPath)
	if len(sanitized.RepositoryPath) > 0 {
		sanitized.RepositoryPath = pathutils.ExpandHome(sanitized.RepositoryPath)
	}
	sanitized.Repository = strings.TrimSpace(configuration.Repository)
	sanitized.IntegrationBranch = strings.TrimSpace(configuration.IntegrationBranch)
	if len(sanitized.IntegrationBranch) == 0 {
		sanitized.IntegrationBranch = defaultIntegrationBranchConstant
	}
	sanitized.StableBranchCandidates = sanitizeBranchCandidates(configuration.StableBranchCandidates)
	sanitized.RemoteName = strings.TrimSpace(configuration.RemoteName)
	if len(sanitized.RemoteName) == 0 {
		sanitized.RemoteName = shared.OriginRemoteNameConstant
	}
	if sanitized.PullRequestLimit <= 0 {
		sanitized.PullRequestLimit = defaultPullRequestLimitConstant
	}
	return sanitized
}

func sanitizeBranchCandidates(candidateBranches []string) []string {
	sanitizedBranches := make([]string, 0, len(candidateBranches))
	for _, branchCandidate := range candidateBranches {
		trimmedBranch := strings.TrimSpace(branchCandidate)
		if len(trimmedBranch) == 0 {
			continue
		}
		sanitizedBranches = append(sanitizedBranches, trimmedBranch)
	}
	if len(sanitizedBranches) == 0 {
		return append([]string(nil), defaultStableBranchCandidatesConstant...)
	}
	return sanitizedBranches
}
