package pathutils_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/relpick/internal/utils/path"
)

func TestExpandHome(testInstance *testing.T) {
	homeDirectory := testInstance.TempDir()
	testInstance.Setenv("HOME", homeDirectory)

	require.Equal(testInstance, "/srv/repos/widgets", pathutils.ExpandHome("/srv/repos/widgets"))
	require.Equal(testInstance, "relative/path", pathutils.ExpandHome("relative/path"))
	require.Equal(testInstance, "", pathutils.ExpandHome(""))
	require.Equal(testInstance, "~widgets", pathutils.ExpandHome("~widgets"))

	expandedPath := pathutils.ExpandHome("~/repos/widgets")
	require.True(testInstance, filepath.IsAbs(expandedPath))
	require.Equal(testInstance, filepath.Join("repos", "widgets"), relativeToHome(testInstance, expandedPath))
	require.Equal(testInstance, filepath.Dir(filepath.Dir(expandedPath)), pathutils.ExpandHome("~"))
}

func relativeToHome(testInstance *testing.T, expandedPath string) string {
	testInstance.Helper()

	relativePath, relativeError := filepath.Rel(pathutils.ExpandHome("~"), expandedPath)
	require.NoError(testInstance, relativeError)

	return relativePath
}
