package lint

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeManuscript(t *testing.T, section, name, content string) (bookDir, path string) {
	t.Helper()
	bookDir = t.TempDir()
	dir := filepath.Join(bookDir, section)
	require.NoError(t, os.MkdirAll(dir, 0o750))
	path = filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o640))
	return bookDir, path
}

func runLinter(bookDir string, files []string, applyFixes bool) Summary {
	l := New(bookDir, files, applyFixes, false)
	l.out = &bytes.Buffer{}
	return l.Run()
}

func TestCleanFileHasNoFindings(t *testing.T) {
	bookDir, path := writeManuscript(t, "chapters", "01_one.md",
		"# Chapter One\n\nA plain paragraph.\n")

	summary := runLinter(bookDir, []string{path}, false)

	require.True(t, summary.Clean())
	require.Equal(t, 0, summary.Total())
}

func TestEncodingFindingsAreReported(t *testing.T) {
	bookDir, path := writeManuscript(t, "chapters", "01_one.md",
		"# One\n\nShe paused… then spoke — loudly.\n")

	summary := runLinter(bookDir, []string{path}, false)

	require.True(t, summary.Clean(), "typography issues are warnings, not errors")
	require.Equal(t, 2, summary.Warnings)
	require.Equal(t, 1, summary.FilesWithIssues)
}

func TestFixModeRewritesFile(t *testing.T) {
	bookDir, path := writeManuscript(t, "chapters", "01_one.md",
		"# One\n\nWait… what — now?\n")

	summary := runLinter(bookDir, []string{path}, true)
	require.Equal(t, 2, summary.Fixes)

	fixed, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "# One\n\nWait... what --- now?\n", string(fixed))
}

func TestMultipleSpacesFixKeepsIndent(t *testing.T) {
	bookDir, path := writeManuscript(t, "chapters", "01_one.md",
		"# One\n\n    indented line with  double  gaps\n")

	runLinter(bookDir, []string{path}, true)

	fixed, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "# One\n\n    indented line with double gaps\n", string(fixed))
}

func TestChapterMustStartWithHeading(t *testing.T) {
	bookDir, path := writeManuscript(t, "chapters", "01_one.md",
		"She woke before dawn.\n\n# One\n")

	summary := runLinter(bookDir, []string{path}, false)

	require.False(t, summary.Clean())
	require.Equal(t, 1, summary.Errors)
}

func TestFrontHeadingNeedsUnnumberedClass(t *testing.T) {
	bookDir, path := writeManuscript(t, "front", "01_copyright.md",
		"# Copyright\n\nAll rights reserved.\n")

	summary := runLinter(bookDir, []string{path}, false)
	require.True(t, summary.Clean())
	require.Equal(t, 1, summary.Warnings)

	bookDir, path = writeManuscript(t, "front", "01_copyright.md",
		"# Copyright {.unnumbered .unlisted}\n\nAll rights reserved.\n")

	summary = runLinter(bookDir, []string{path}, false)
	require.Equal(t, 0, summary.Total())
}

func TestUnclosedFencedDivIsAnError(t *testing.T) {
	bookDir, path := writeManuscript(t, "chapters", "01_one.md",
		"# One\n\n::: {.scene}\n\ntext without a closing marker\n")

	summary := runLinter(bookDir, []string{path}, false)

	require.False(t, summary.Clean())
}

func TestSceneBreakSpacingChecks(t *testing.T) {
	bookDir, path := writeManuscript(t, "chapters", "01_one.md",
		"# One\n\nfirst scene\n***\n\nsecond scene\n")

	summary := runLinter(bookDir, []string{path}, false)

	require.False(t, summary.Clean(), "missing blank line before *** is an error")
}

func TestMissingTrailingNewlineIsAWarning(t *testing.T) {
	bookDir, path := writeManuscript(t, "chapters", "01_one.md",
		"# One\n\ntext")

	summary := runLinter(bookDir, []string{path}, false)

	require.True(t, summary.Clean())
	require.Equal(t, 1, summary.Warnings)
}

func TestRawLatexBlockIsAnError(t *testing.T) {
	bookDir, path := writeManuscript(t, "chapters", "01_one.md",
		"# One\n\n```{=latex}\n\\newpage\n```\n")

	summary := runLinter(bookDir, []string{path}, false)

	require.False(t, summary.Clean())
}
