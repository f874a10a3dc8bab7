// Package release implements hand-picked release assembly: discovering
// unreleased changes between the integration and stable branches, validating
// operator selections, cherry-picking them onto a fresh release branch, and
// opening the release pull request.
package release
