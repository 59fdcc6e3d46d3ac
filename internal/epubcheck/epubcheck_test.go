package epubcheck

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInterpretCleanRun(t *testing.T) {
	output := "Validating using EPUB version 3.3 rules.\n" +
		"No errors or warnings detected.\n" +
		"Messages: 0 fatals / 0 errors / 0 warnings / 0 infos\n"

	result := interpret(output, true)

	require.Equal(t, OutcomeValid, result.Outcome)
	require.True(t, result.Passed())
}

func TestInterpretWarningsOnly(t *testing.T) {
	output := "Messages: 0 fatals / 0 errors / 3 warnings / 1 info\n"

	result := interpret(output, false)

	require.Equal(t, OutcomeValidWithWarnings, result.Outcome)
	require.Equal(t, 3, result.Warnings)
	require.True(t, result.Passed(), "warnings alone do not fail validation")
}

func TestInterpretErrorsFail(t *testing.T) {
	output := "ERROR(RSC-005): sample.epub/EPUB/content.opf(4,8): ...\n" +
		"Messages: 0 fatals / 2 errors / 1 warning / 0 infos\n"

	result := interpret(output, false)

	require.Equal(t, OutcomeInvalid, result.Outcome)
	require.Equal(t, 2, result.Errors)
	require.False(t, result.Passed())
}

func TestInterpretFallsBackToExitCode(t *testing.T) {
	require.Equal(t, OutcomeValid, interpret("garbled output", true).Outcome)
	require.Equal(t, OutcomeInvalid, interpret("garbled output", false).Outcome)
}

func TestLocatePrefersEnvJar(t *testing.T) {
	jar := filepath.Join(t.TempDir(), "epubcheck.jar")
	require.NoError(t, os.WriteFile(jar, []byte("stub"), 0o640))
	t.Setenv(EnvJarPath, jar)

	mode, path, ok := Locate()

	require.True(t, ok)
	require.Equal(t, ModeJar, mode)
	require.Equal(t, jar, path)
}

func TestLocateIgnoresMissingEnvJar(t *testing.T) {
	bogus := filepath.Join(t.TempDir(), "nope.jar")
	t.Setenv(EnvJarPath, bogus)

	// A real epubcheck installation on this machine is fine; the bogus env
	// path just must not win.
	_, path, ok := Locate()
	if ok {
		require.NotEqual(t, bogus, path)
	}
}

func TestFindBundlePicksNewestVersion(t *testing.T) {
	root := t.TempDir()
	for _, version := range []string{"epubcheck-4.2.6", "epubcheck-5.1.0"} {
		dir := filepath.Join(root, version)
		require.NoError(t, os.MkdirAll(dir, 0o750))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "epubcheck.jar"), []byte("stub"), 0o640))
	}

	jar, ok := findBundle(root)

	require.True(t, ok)
	require.Equal(t, filepath.Join(root, "epubcheck-5.1.0", "epubcheck.jar"), jar)
}

func TestFindBundleEmptyDir(t *testing.T) {
	_, ok := findBundle(t.TempDir())
	require.False(t, ok)
}

func TestValidateUnavailableWithoutChecker(t *testing.T) {
	if _, _, found := Locate(); found {
		t.Skip("a compliance checker is installed on this machine")
	}

	result := Validate(context.Background(), "nonexistent.epub", Options{})
	require.Equal(t, OutcomeUnavailable, result.Outcome)
	require.False(t, result.Passed())
}
