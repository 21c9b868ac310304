// Package xfs holds small filesystem path helpers.
package xfs

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandTilde resolves a leading "~" or "~/" against the current user's
// home directory. Paths naming another user ("~bob/x") and paths whose
// home cannot be determined are returned unchanged.
func ExpandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
