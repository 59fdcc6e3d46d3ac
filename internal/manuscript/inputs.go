package manuscript

import (
	"os"
	"path/filepath"
	"strings"
)

// Sections in assembly order.
const (
	SectionFront    = "front"
	SectionChapters = "chapters"
	SectionBack     = "back"
)

// sourceExtension is the single recognized source-text extension.
const sourceExtension = ".md"

// SectionFiles returns the markdown files of one section subdirectory in
// natural order. A missing or empty section contributes nothing.
func SectionFiles(bookDir, section string) []string {
	return markdownFiles(filepath.Join(bookDir, section))
}

// AssembleInputs gathers the ordered input file list for a build:
// front → chapters → back, each section in natural order. With chaptersOnly
// set, only chapters/ is included (editor submissions). A book without any
// sectioned layout falls back to the markdown files in its root directory.
func AssembleInputs(bookDir string, chaptersOnly bool) []string {
	var files []string
	if chaptersOnly {
		files = SectionFiles(bookDir, SectionChapters)
	} else {
		for _, section := range []string{SectionFront, SectionChapters, SectionBack} {
			files = append(files, SectionFiles(bookDir, section)...)
		}
	}

	if len(files) == 0 {
		files = markdownFiles(bookDir)
	}

	return files
}

// SectionForPath reports which section a source file belongs to. Files
// directly in the book root count as chapters.
func SectionForPath(path, bookDir string) string {
	rel, err := filepath.Rel(bookDir, path)
	if err != nil {
		return SectionChapters
	}
	parts := strings.Split(rel, string(os.PathSeparator))
	if len(parts) > 1 {
		return parts[0]
	}
	return SectionChapters
}

func markdownFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), sourceExtension) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	SortNatural(files)
	return files
}
