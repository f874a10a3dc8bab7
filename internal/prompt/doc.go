// Package prompt implements interactive confirmation and free-text prompters
// backed by standard input and output streams.
package prompt
