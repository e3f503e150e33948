package store

import (
	"path/filepath"

	"github.com/milescsmith/WGCNA/internal/constants"
)

// DataDir returns the path to the local .wgcnasim directory
// for the given project root.
func DataDir(projectRoot string) string {
	return filepath.Join(projectRoot, constants.DataDirName)
}

// RunsDBPath returns the run registry database path for the given project root.
func RunsDBPath(projectRoot string) string {
	return filepath.Join(DataDir(projectRoot), constants.RunsDBName)
}
