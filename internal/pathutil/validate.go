// Package pathutil resolves and validates export directories requested by
// untrusted callers such as MCP clients.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/milescsmith/WGCNA/internal/constants"
)

// RedactPath reduces a full path to .../<parent>/<basename> for safe error messages.
// For example, "/home/user/.wgcnasim/runs.db" becomes ".../.wgcnasim/runs.db".
func RedactPath(path string) string {
	if path == "" {
		return ""
	}
	cleaned := filepath.Clean(path)
	dir := filepath.Dir(cleaned)
	base := filepath.Base(cleaned)
	parent := filepath.Base(dir)
	if parent == "." || parent == string(filepath.Separator) {
		return base
	}
	return ".../" + parent + "/" + base
}

// ExportsDir returns <projectRoot>/.wgcnasim/exports.
func ExportsDir(projectRoot string) string {
	return filepath.Join(projectRoot, constants.DataDirName, constants.ExportsDirName)
}

// ResolveExportDir turns a requested export directory into an absolute path.
// Relative names are placed under ExportsDir(projectRoot); absolute paths must
// stay inside projectRoot.
func ResolveExportDir(projectRoot, dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("export directory is empty")
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(ExportsDir(projectRoot), dir)
	}
	if err := ValidatePath(dir, []string{projectRoot}); err != nil {
		return "", err
	}
	return filepath.Abs(filepath.Clean(dir))
}

// ValidatePath checks that a path is within one of the allowed directories.
// It resolves symlinks, cleans the path, and rejects traversal attempts.
func ValidatePath(path string, allowedDirs []string) error {
	if path == "" {
		return fmt.Errorf("path validation failed: path is empty")
	}

	if len(allowedDirs) == 0 {
		return fmt.Errorf("path validation failed: no allowed directories configured")
	}

	if strings.ContainsRune(path, '\x00') {
		return fmt.Errorf("path validation failed: path contains null byte")
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("path validation failed: cannot resolve absolute path: %w", err)
	}

	// The directory itself may not exist yet; resolve its deepest existing ancestor.
	resolvedPath, err := resolveExistingParent(absPath)
	if err != nil {
		return fmt.Errorf("path validation failed: cannot resolve path: %w", err)
	}

	for _, allowed := range allowedDirs {
		allowedAbs, err := filepath.Abs(filepath.Clean(allowed))
		if err != nil {
			continue
		}
		allowedResolved, err := resolveExistingParent(allowedAbs)
		if err != nil {
			continue
		}

		if isSubpath(resolvedPath, allowedResolved) {
			return nil
		}
	}

	return fmt.Errorf("path validation failed: %q is outside allowed directories", RedactPath(absPath))
}

// resolveExistingParent walks up the directory tree to find the deepest existing
// ancestor, resolves symlinks on it, then re-appends the non-existent tail.
func resolveExistingParent(dir string) (string, error) {
	resolved, err := filepath.EvalSymlinks(dir)
	if err == nil {
		return resolved, nil
	}

	parent := filepath.Dir(dir)
	if parent == dir {
		return "", fmt.Errorf("cannot resolve path: %s", RedactPath(dir))
	}

	resolvedParent, err := resolveExistingParent(parent)
	if err != nil {
		return "", err
	}

	return filepath.Join(resolvedParent, filepath.Base(dir)), nil
}

// isSubpath checks whether path is equal to or a subdirectory of base.
func isSubpath(path, base string) bool {
	if path == base {
		return true
	}
	// "/tmp/foo" must not match "/tmp/foobar"
	prefix := base + string(os.PathSeparator)
	return strings.HasPrefix(path, prefix)
}
