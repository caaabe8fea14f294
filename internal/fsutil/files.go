package fsutil

import (
	"os"
	"path/filepath"
)

// EnsureDir creates a directory if it doesn't exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// sourceExtensions are the extensions the project walker treats as
// analyzable source for this spec's single ECMAScript-module-like language.
var sourceExtensions = map[string]bool{
	".ts":  true,
	".tsx": true,
	".js":  true,
	".jsx": true,
}

// IsSourceFile reports whether path carries an extension this analyzer parses.
func IsSourceFile(path string) bool {
	return sourceExtensions[filepath.Ext(path)]
}

// WalkProject walks root, invoking fn for every file IsSourceFile accepts
// that the ignore matcher does not reject. Directories the matcher rejects
// are skipped entirely rather than descended into.
func WalkProject(root string, ignore *IgnoreMatcher, fn func(path string) error) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if info.IsDir() {
			if relPath != "." && ignore.ShouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}
		if ignore.ShouldIgnore(relPath) || !IsSourceFile(path) {
			return nil
		}
		return fn(path)
	})
}
