// Package utils exposes reusable helpers consumed by multiple commands.
//
// It currently houses the ConfigurationReader and logger construction helpers
// that integrate Viper, environment variables, and zap logging for the CLI.
package utils
