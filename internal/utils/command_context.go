package utils

import "context"

type contextKey int

const configurationFilePathKey contextKey = iota

// ContextWithConfigurationFilePath records the configuration file in use so
// command handlers can report it.
func ContextWithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationFilePathKey, configurationFilePath)
}

// ConfigurationFilePathFromContext returns the recorded configuration file
// path, or false when none was attached.
func ConfigurationFilePathFromContext(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	configurationFilePath, attached := executionContext.Value(configurationFilePathKey).(string)
	return configurationFilePath, attached
}
