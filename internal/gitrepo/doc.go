// Package gitrepo contains helpers for interrogating and manipulating Git repositories.
//
// It exposes RepositoryManager for inspecting branches, history, and status,
// creating release branches, cherry-picking commits, and setting aside local
// changes, along with remote URL parsing used to derive repository identity.
package gitrepo
