package utils_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/relpick/internal/utils"
)

const (
	readerTestApplicationNameConstant  = "config"
	readerTestConfigurationType        = "yaml"
	readerTestEnvironmentPrefix        = "READERTEST"
	readerTestLogLevelKeyConstant      = "common.log_level"
	readerTestEnvironmentVariableName  = "READERTEST_COMMON_LOG_LEVEL"
	readerTestConfigurationFileName    = "config.yaml"
	readerTestContentTemplateConstant  = "common:\n  log_level: %s\n"
	readerTestSubtestTemplateConstant  = "%d_%s"
	readerTestMalformedContentConstant = "common: [unclosed"
)

type readerTestConfiguration struct {
	Common struct {
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"common"`
}

func writeConfigurationFile(testInstance *testing.T, directoryPath string, logLevel string) string {
	testInstance.Helper()

	configurationFilePath := filepath.Join(directoryPath, readerTestConfigurationFileName)
	writeError := os.WriteFile(configurationFilePath, []byte(fmt.Sprintf(readerTestContentTemplateConstant, logLevel)), 0o600)
	require.NoError(testInstance, writeError)

	return configurationFilePath
}

func newTestConfigurationReader(testInstance *testing.T, options utils.ConfigurationReaderOptions) *utils.ConfigurationReader {
	testInstance.Helper()

	if len(options.ApplicationName) == 0 {
		options.ApplicationName = readerTestApplicationNameConstant
	}
	if len(options.ConfigurationType) == 0 {
		options.ConfigurationType = readerTestConfigurationType
	}

	configurationReader, constructionError := utils.NewConfigurationReader(options)
	require.NoError(testInstance, constructionError)

	return configurationReader
}

func TestNewConfigurationReaderRequiresIdentity(testInstance *testing.T) {
	testCases := []struct {
		name    string
		options utils.ConfigurationReaderOptions
	}{
		{name: "missing_application_name", options: utils.ConfigurationReaderOptions{ConfigurationType: readerTestConfigurationType}},
		{name: "missing_configuration_type", options: utils.ConfigurationReaderOptions{ApplicationName: readerTestApplicationNameConstant}},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(readerTestSubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			configurationReader, constructionError := utils.NewConfigurationReader(testCase.options)
			require.Error(testInstance, constructionError)
			require.Nil(testInstance, configurationReader)
		})
	}
}

func TestConfigurationReaderLayersSources(testInstance *testing.T) {
	testCases := []struct {
		name             string
		embeddedLogLevel string
		defaultLogLevel  string
		fileLogLevel     string
		envLogLevel      string
		expectedLogLevel string
	}{
		{
			name:             "defaults_alone",
			defaultLogLevel:  "info",
			expectedLogLevel: "info",
		},
		{
			name:             "embedded_overrides_defaults",
			embeddedLogLevel: "debug",
			defaultLogLevel:  "info",
			expectedLogLevel: "debug",
		},
		{
			name:             "file_overrides_embedded",
			embeddedLogLevel: "debug",
			defaultLogLevel:  "info",
			fileLogLevel:     "warn",
			expectedLogLevel: "warn",
		},
		{
			name:             "environment_overrides_file",
			embeddedLogLevel: "debug",
			defaultLogLevel:  "info",
			fileLogLevel:     "warn",
			envLogLevel:      "error",
			expectedLogLevel: "error",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(readerTestSubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			temporaryDirectory := testInstance.TempDir()

			explicitFilePath := ""
			if len(testCase.fileLogLevel) > 0 {
				explicitFilePath = writeConfigurationFile(testInstance, temporaryDirectory, testCase.fileLogLevel)
			}

			if len(testCase.envLogLevel) > 0 {
				testInstance.Setenv(readerTestEnvironmentVariableName, testCase.envLogLevel)
			}

			readerOptions := utils.ConfigurationReaderOptions{EnvironmentPrefix: readerTestEnvironmentPrefix}
			if len(testCase.embeddedLogLevel) > 0 {
				readerOptions.EmbeddedDefaults = []byte(fmt.Sprintf(readerTestContentTemplateConstant, testCase.embeddedLogLevel))
			}

			configurationReader := newTestConfigurationReader(testInstance, readerOptions)

			loadedConfiguration := readerTestConfiguration{}
			configurationSource, readError := configurationReader.Read(
				explicitFilePath,
				map[string]any{readerTestLogLevelKeyConstant: testCase.defaultLogLevel},
				&loadedConfiguration,
			)
			require.NoError(testInstance, readError)
			require.Equal(testInstance, testCase.expectedLogLevel, loadedConfiguration.Common.LogLevel)
			require.Equal(testInstance, explicitFilePath, configurationSource.FilePath)
		})
	}
}

func TestConfigurationReaderDiscoversFileOnSearchPath(testInstance *testing.T) {
	searchDirectory := testInstance.TempDir()
	discoveredFilePath := writeConfigurationFile(testInstance, searchDirectory, "debug")

	configurationReader := newTestConfigurationReader(testInstance, utils.ConfigurationReaderOptions{
		SearchPaths: []string{searchDirectory},
	})

	loadedConfiguration := readerTestConfiguration{}
	configurationSource, readError := configurationReader.Read("", nil, &loadedConfiguration)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "debug", loadedConfiguration.Common.LogLevel)
	require.Equal(testInstance, discoveredFilePath, configurationSource.FilePath)
}

func TestConfigurationReaderRejectsMalformedFile(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	malformedFilePath := filepath.Join(temporaryDirectory, readerTestConfigurationFileName)
	writeError := os.WriteFile(malformedFilePath, []byte(readerTestMalformedContentConstant), 0o600)
	require.NoError(testInstance, writeError)

	configurationReader := newTestConfigurationReader(testInstance, utils.ConfigurationReaderOptions{})

	loadedConfiguration := readerTestConfiguration{}
	_, readError := configurationReader.Read(malformedFilePath, nil, &loadedConfiguration)
	require.Error(testInstance, readError)
}
