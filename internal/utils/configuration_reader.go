package utils

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	configurationKeySeparatorConstant            = "."
	environmentVariableSeparatorConstant         = "_"
	configurationMergeErrorTemplateConstant      = "unable to read configuration file: %w"
	configurationDecodeErrorTemplateConstant     = "unable to decode configuration: %w"
	embeddedDefaultsMergeErrorTemplateConstant   = "unable to merge embedded configuration defaults: %w"
	configurationReaderMissingOptionsErrTemplate = "configuration reader requires %s"
	applicationNameOptionDescriptionConstant     = "an application name"
	configurationTypeOptionDescriptionConstant   = "a configuration type"
)

// ConfigurationReaderOptions describes where configuration values come from
// and how environment overrides are mapped onto configuration keys.
type ConfigurationReaderOptions struct {
	ApplicationName   string
	ConfigurationType string
	EnvironmentPrefix string
	SearchPaths       []string
	EmbeddedDefaults  []byte
}

// ConfigurationReader layers embedded defaults, an optional configuration
// file, and prefixed environment variables into a configuration struct.
type ConfigurationReader struct {
	options ConfigurationReaderOptions
}

// ConfigurationSource reports which file, if any, supplied configuration values.
type ConfigurationSource struct {
	FilePath string
}

// NewConfigurationReader validates the supplied options and returns a reader.
func NewConfigurationReader(options ConfigurationReaderOptions) (*ConfigurationReader, error) {
	if len(strings.TrimSpace(options.ApplicationName)) == 0 {
		return nil, fmt.Errorf(configurationReaderMissingOptionsErrTemplate, applicationNameOptionDescriptionConstant)
	}
	if len(strings.TrimSpace(options.ConfigurationType)) == 0 {
		return nil, fmt.Errorf(configurationReaderMissingOptionsErrTemplate, configurationTypeOptionDescriptionConstant)
	}

	copiedOptions := options
	copiedOptions.SearchPaths = append([]string(nil), options.SearchPaths...)
	copiedOptions.EmbeddedDefaults = append([]byte(nil), options.EmbeddedDefaults...)

	return &ConfigurationReader{options: copiedOptions}, nil
}

// Read populates target from embedded defaults, the configuration file located
// at explicitFilePath (or discovered along the search paths when empty), and
// environment variables carrying the configured prefix. Supplied default
// values seed keys no other source provides. A missing configuration file is
// not an error; only unreadable or undecodable configuration is.
func (reader *ConfigurationReader) Read(explicitFilePath string, defaultValues map[string]any, target any) (ConfigurationSource, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigName(reader.options.ApplicationName)
	viperInstance.SetConfigType(reader.options.ConfigurationType)

	if len(reader.options.EmbeddedDefaults) > 0 {
		embeddedMergeError := viperInstance.MergeConfig(bytes.NewReader(reader.options.EmbeddedDefaults))
		if embeddedMergeError != nil {
			return ConfigurationSource{}, fmt.Errorf(embeddedDefaultsMergeErrorTemplateConstant, embeddedMergeError)
		}
	}

	for _, searchPath := range reader.options.SearchPaths {
		viperInstance.AddConfigPath(searchPath)
	}

	if len(reader.options.EnvironmentPrefix) > 0 {
		viperInstance.SetEnvPrefix(reader.options.EnvironmentPrefix)
		viperInstance.SetEnvKeyReplacer(strings.NewReplacer(configurationKeySeparatorConstant, environmentVariableSeparatorConstant))
		viperInstance.AutomaticEnv()
	}

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	if len(explicitFilePath) > 0 {
		viperInstance.SetConfigFile(explicitFilePath)
	}

	if mergeError := viperInstance.MergeInConfig(); mergeError != nil {
		if _, fileNotFound := mergeError.(viper.ConfigFileNotFoundError); !fileNotFound {
			return ConfigurationSource{}, fmt.Errorf(configurationMergeErrorTemplateConstant, mergeError)
		}
	}

	if decodeError := viperInstance.Unmarshal(target); decodeError != nil {
		return ConfigurationSource{}, fmt.Errorf(configurationDecodeErrorTemplateConstant, decodeError)
	}

	return ConfigurationSource{FilePath: viperInstance.ConfigFileUsed()}, nil
}
