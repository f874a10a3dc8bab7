package utils

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// LogFormatStructured emits machine-readable JSON log lines.
	LogFormatStructured = "structured"
	// LogFormatConsole emits human-readable console log lines.
	LogFormatConsole = "console"

	unknownLogLevelTemplateConstant  = "unknown log level %q (expected debug, info, warn, or error)"
	unknownLogFormatTemplateConstant = "unknown log format %q (expected structured or console)"
)

// LoggingSettings carries the operator-facing logging knobs as configuration strings.
type LoggingSettings struct {
	Level  string
	Format string
}

// BuildLogger translates the settings into a configured zap logger. Level and
// format comparisons are case-insensitive; unrecognized values are rejected
// rather than silently defaulted so configuration typos surface immediately.
func BuildLogger(settings LoggingSettings) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch strings.ToLower(strings.TrimSpace(settings.Level)) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info", "":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf(unknownLogLevelTemplateConstant, settings.Level)
	}

	loggerConfiguration := zap.NewProductionConfig()
	loggerConfiguration.Level = zap.NewAtomicLevelAt(zapLevel)

	switch strings.ToLower(strings.TrimSpace(settings.Format)) {
	case LogFormatStructured, "":
		loggerConfiguration.Encoding = "json"
	case LogFormatConsole:
		loggerConfiguration.Encoding = "console"
		loggerConfiguration.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	default:
		return nil, fmt.Errorf(unknownLogFormatTemplateConstant, settings.Format)
	}

	return loggerConfiguration.Build()
}

// IsConsoleLogFormat reports whether the configured format asks for
// human-readable output.
func IsConsoleLogFormat(format string) bool {
	return strings.EqualFold(strings.TrimSpace(format), LogFormatConsole)
}
