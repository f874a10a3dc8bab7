package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/relpick/internal/release"
	"github.com/temirov/relpick/internal/utils"
	utilsflags "github.com/temirov/relpick/internal/utils/flags"
)

const (
	applicationNameConstant             = "relpick"
	applicationShortDescriptionConstant = "Hand-picked release assembly for Git repositories"
	applicationLongDescriptionConstant  = "relpick discovers unreleased pull requests and commits, cherry-picks the ones you select onto a fresh branch off the stable branch, and opens the release pull request through the GitHub CLI."

	configFileFlagNameConstant  = "config"
	configFileFlagUsageConstant = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant    = "log-level"
	logLevelFlagUsageConstant   = "Override the configured log level."
	logFormatFlagNameConstant   = "log-format"
	logFormatFlagUsageConstant  = "Override the configured log format (structured or console)."

	environmentPrefixConstant       = "RELPICK"
	configurationNameConstant       = "config"
	releaseConfigurationKeyConstant = "tools.release"
	logLevelConfigurationKey        = "common.log_level"
	logFormatConfigurationKey       = "common.log_format"

	configurationInitializedMessageConstant = "configuration initialized"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common CommonConfiguration `mapstructure:"common"`
	Tools  ToolsConfiguration  `mapstructure:"tools"`
}

// CommonConfiguration stores logging configuration shared across commands.
type CommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ToolsConfiguration holds configuration for CLI subcommands grouped by tool family.
type ToolsConfiguration struct {
	Release release.Configuration `mapstructure:"release"`
}

// Application wires the Cobra root command, configuration reader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationReader   *utils.ConfigurationReader
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationSource   utils.ConfigurationSource
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	setupError            error
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	application := &Application{logger: zap.NewNop()}

	embeddedDefaults, embeddedDefaultsType := EmbeddedDefaultConfiguration()
	application.configurationReader, application.setupError = utils.NewConfigurationReader(utils.ConfigurationReaderOptions{
		ApplicationName:   configurationNameConstant,
		ConfigurationType: embeddedDefaultsType,
		EnvironmentPrefix: environmentPrefixConstant,
		SearchPaths:       configurationSearchPaths(),
		EmbeddedDefaults:  embeddedDefaults,
	})

	rootCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	rootCommand.SetOut(utils.NewFlushingWriter(os.Stdout))
	rootCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	rootCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	rootCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	utilsflags.BindExecutionFlags(rootCommand)

	releaseBuilder := release.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		HumanReadableLoggingProvider: func() bool {
			return utils.IsConsoleLogFormat(application.configuration.Common.LogFormat)
		},
		ConfigurationProvider: func() release.Configuration {
			return application.configuration.Tools.Release
		},
	}
	releaseCommand, releaseBuildError := releaseBuilder.Build()
	if releaseBuildError != nil && application.setupError == nil {
		application.setupError = releaseBuildError
	}
	if releaseCommand != nil {
		rootCommand.AddCommand(releaseCommand)
	}

	application.rootCommand = rootCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	if application.setupError != nil {
		return application.setupError
	}

	executionError := application.rootCommand.Execute()
	if syncError := flushLogger(application.logger); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := release.DefaultConfigurationValues(releaseConfigurationKeyConstant)
	defaultValues[logLevelConfigurationKey] = "info"
	defaultValues[logFormatConfigurationKey] = utils.LogFormatStructured

	configurationSource, readError := application.configurationReader.Read(application.configurationFilePath, defaultValues, &application.configuration)
	if readError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, readError)
	}
	application.configurationSource = configurationSource

	application.applyLoggingFlagOverrides(command)

	createdLogger, loggerCreationError := utils.BuildLogger(utils.LoggingSettings{
		Level:  application.configuration.Common.LogLevel,
		Format: application.configuration.Common.LogFormat,
	})
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}
	application.logger = createdLogger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String("log_level", application.configuration.Common.LogLevel),
		zap.String("log_format", application.configuration.Common.LogFormat),
		zap.String("config_file", configurationSource.FilePath),
	)

	if command != nil {
		updatedContext := utils.ContextWithConfigurationFilePath(command.Context(), configurationSource.FilePath)
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) applyLoggingFlagOverrides(command *cobra.Command) {
	if command == nil {
		return
	}

	// Subcommands see persistent flags through InheritedFlags; the root sees
	// them on its own flag set. Checking both covers either entry point.
	flagChanged := func(flagName string) bool {
		return command.Flags().Changed(flagName) ||
			command.InheritedFlags().Changed(flagName) ||
			command.Root().PersistentFlags().Changed(flagName)
	}

	if flagChanged(logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if flagChanged(logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}
}

func configurationSearchPaths() []string {
	searchPaths := []string{"."}
	if userConfigurationDirectory, lookupError := os.UserConfigDir(); lookupError == nil {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, applicationNameConstant))
	}
	return searchPaths
}

// flushLogger tolerates sync failures on terminals that reject fsync.
func flushLogger(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	if syncError == nil || errors.Is(syncError, syscall.ENOTSUP) || errors.Is(syncError, syscall.EINVAL) {
		return nil
	}
	return syncError
}
