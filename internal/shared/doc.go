// Package shared defines the interfaces and policies reused across relpick
// services: shell execution, confirmation prompting, and time acquisition.
package shared
