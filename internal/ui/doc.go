// Package ui renders shell command lifecycle events for interactive sessions.
package ui
