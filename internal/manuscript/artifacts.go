package manuscript

import (
	"log/slog"
	"os"
	"path/filepath"
)

// ArtifactDirName is the override directory name, both per-book and at the
// repository level.
const ArtifactDirName = "artifacts"

// legacyDirName is the pre-artifacts location still honored as a last tier.
const legacyDirName = "scripts"

// ResolveArtifact resolves a support-file name for a book through the
// override hierarchy, first match wins:
//
//  1. <book>/artifacts/      per-book overrides (cover.jpg, reference.docx)
//  2. <repo>/artifacts/      shared across all books (epub.css, book.tex)
//  3. <repo>/scripts/        legacy fallback
//
// Absence is not an error: the second return value is false and callers
// decide whether that is fatal.
func ResolveArtifact(bookDir, name string) (string, bool) {
	if name == "" {
		return "", false
	}

	repoRoot := filepath.Dir(filepath.Dir(bookDir))

	for _, dir := range []string{
		filepath.Join(bookDir, ArtifactDirName),
		filepath.Join(repoRoot, ArtifactDirName),
		filepath.Join(repoRoot, legacyDirName),
	} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs, true
			}
			return path, true
		}
	}

	return "", false
}

// ResolveFilters resolves each filter-script name independently. Names that
// resolve nowhere are dropped with a warning; a missing filter never aborts a
// build.
func ResolveFilters(bookDir string, names []string) []string {
	var filters []string
	for _, name := range names {
		if path, ok := ResolveArtifact(bookDir, name); ok {
			filters = append(filters, path)
		} else {
			slog.Warn("Filter not found in artifacts, skipping", "filter", name)
		}
	}
	return filters
}
