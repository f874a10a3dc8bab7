// Package githubcli wraps the GitHub CLI (gh) behind a typed client.
//
// Operations cover repository metadata, branch existence, ref comparison,
// merged pull request listings, commit-to-pull-request lookups, and pull
// request creation. All calls shell out through execshell so they can be
// tested with recording executors.
package githubcli
