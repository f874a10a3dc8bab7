package gitrepo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/relpick/internal/gitrepo"
)

func TestParseRemoteURL(testInstance *testing.T) {
	testCases := []struct {
		name          string
		remote        string
		expectedOwner string
		expectedRepo  string
		expectError   bool
	}{
		{name: "ssh_shorthand", remote: "git@github.com:acme/widget.git", expectedOwner: "acme", expectedRepo: "widget"},
		{name: "ssh_protocol", remote: "ssh://git@github.com/acme/widget.git", expectedOwner: "acme", expectedRepo: "widget"},
		{name: "https", remote: "https://github.com/acme/widget.git", expectedOwner: "acme", expectedRepo: "widget"},
		{name: "https_without_suffix", remote: "https://github.com/acme/widget", expectedOwner: "acme", expectedRepo: "widget"},
		{name: "empty", remote: "   ", expectError: true},
		{name: "unsupported_protocol", remote: "ftp://github.com/acme/widget", expectError: true},
		{name: "missing_repository", remote: "https://github.com/acme", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			parsedRemote, parseError := gitrepo.ParseRemoteURL(testCase.remote)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedOwner, parsedRemote.Owner)
			require.Equal(testInstance, testCase.expectedRepo, parsedRemote.Repository)
			require.Equal(testInstance, testCase.expectedOwner+"/"+testCase.expectedRepo, parsedRemote.OwnerRepository())
		})
	}
}
