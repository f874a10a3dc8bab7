package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshProtocolPrefixConstant       = "ssh://"
	sshUserDelimiterConstant        = "@"
	sshPathDelimiterConstant        = ":"
	httpsProtocolPrefixConstant     = "https://"
	gitUserPrefixConstant           = "git@"
	pathSeparatorConstant           = "/"
	gitSuffixConstant               = ".git"
	remoteURLParseErrorTemplate     = "%s: %s"
	invalidRemoteURLMessageConstant = "invalid remote url"
	remoteURLRequiredMessage        = "remote url must be provided"
	ownerRepositoryTemplateConstant = "%s/%s"
)

// RemoteURL represents a structured git remote URL.
type RemoteURL struct {
	Host       string
	Owner      string
	Repository string
}

// OwnerRepository formats the owner/repository identity used by the hosting API.
func (remoteURL RemoteURL) OwnerRepository() string {
	return fmt.Sprintf(ownerRepositoryTemplateConstant, remoteURL.Owner, remoteURL.Repository)
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplate, parseError.Input, parseError.Message)
}

// ParseRemoteURL converts a textual remote URL into a structured representation.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: remoteURLRequiredMessage}
	}

	if strings.HasPrefix(trimmedRemote, sshProtocolPrefixConstant) {
		return parseSSHRemote(strings.TrimPrefix(trimmedRemote, sshProtocolPrefixConstant))
	}
	if strings.HasPrefix(trimmedRemote, gitUserPrefixConstant) {
		return parseSSHRemote(trimmedRemote)
	}
	if strings.HasPrefix(trimmedRemote, httpsProtocolPrefixConstant) {
		return parseHTTPSRemote(strings.TrimPrefix(trimmedRemote, httpsProtocolPrefixConstant))
	}

	return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
}

func parseSSHRemote(remoteWithoutProtocol string) (RemoteURL, error) {
	userSplit := strings.SplitN(remoteWithoutProtocol, sshUserDelimiterConstant, 2)
	hostAndPath := userSplit[len(userSplit)-1]

	var host string
	var repositoryPath string
	if strings.Contains(hostAndPath, sshPathDelimiterConstant) {
		pathSplit := strings.SplitN(hostAndPath, sshPathDelimiterConstant, 2)
		host = pathSplit[0]
		repositoryPath = pathSplit[1]
	} else {
		pathSplit := strings.SplitN(hostAndPath, pathSeparatorConstant, 2)
		if len(pathSplit) != 2 {
			return RemoteURL{}, RemoteURLParseError{Input: remoteWithoutProtocol, Message: invalidRemoteURLMessageConstant}
		}
		host = pathSplit[0]
		repositoryPath = pathSplit[1]
	}

	return buildRemoteURL(remoteWithoutProtocol, host, repositoryPath)
}

func parseHTTPSRemote(remoteWithoutProtocol string) (RemoteURL, error) {
	pathSplit := strings.SplitN(remoteWithoutProtocol, pathSeparatorConstant, 2)
	if len(pathSplit) != 2 {
		return RemoteURL{}, RemoteURLParseError{Input: remoteWithoutProtocol, Message: invalidRemoteURLMessageConstant}
	}
	return buildRemoteURL(remoteWithoutProtocol, pathSplit[0], pathSplit[1])
}

func buildRemoteURL(rawInput string, host string, repositoryPath string) (RemoteURL, error) {
	trimmedPath := strings.TrimSuffix(strings.Trim(repositoryPath, pathSeparatorConstant), gitSuffixConstant)
	pathSegments := strings.Split(trimmedPath, pathSeparatorConstant)
	if len(pathSegments) != 2 || len(pathSegments[0]) == 0 || len(pathSegments[1]) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: rawInput, Message: invalidRemoteURLMessageConstant}
	}

	return RemoteURL{Host: host, Owner: pathSegments[0], Repository: pathSegments[1]}, nil
}
