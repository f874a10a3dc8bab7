package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var resolveHomeDirectory = sync.OnceValues(os.UserHomeDir)

// ExpandHome resolves a leading "~" or "~/" in candidatePath to the current
// user's home directory. Paths without the shortcut, and paths whose home
// directory cannot be resolved, are returned unchanged.
func ExpandHome(candidatePath string) string {
	if candidatePath != "~" && !strings.HasPrefix(candidatePath, "~/") {
		return candidatePath
	}

	homeDirectory, homeLookupError := resolveHomeDirectory()
	if homeLookupError != nil || len(homeDirectory) == 0 {
		return candidatePath
	}

	if candidatePath == "~" {
		return homeDirectory
	}

	return filepath.Join(homeDirectory, strings.TrimPrefix(candidatePath, "~/"))
}
