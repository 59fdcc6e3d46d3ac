package manuscript

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// layoutRepo builds a project tree with manuscript/<book> plus shared and
// legacy artifact directories, returning (repoRoot, bookDir).
func layoutRepo(t *testing.T) (string, string) {
	t.Helper()
	repoRoot := t.TempDir()
	bookDir := filepath.Join(repoRoot, ManuscriptRootName, "1_sample")
	require.NoError(t, os.MkdirAll(bookDir, 0o750))
	return repoRoot, bookDir
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
}

func TestResolveArtifact_BookOverrideWinsOverShared(t *testing.T) {
	repoRoot, bookDir := layoutRepo(t)

	touch(t, filepath.Join(bookDir, ArtifactDirName, "epub.css"))
	touch(t, filepath.Join(repoRoot, ArtifactDirName, "epub.css"))

	path, ok := ResolveArtifact(bookDir, "epub.css")
	require.True(t, ok)
	require.Equal(t, filepath.Join(bookDir, ArtifactDirName, "epub.css"), path)
}

func TestResolveArtifact_FallsBackToSharedThenLegacy(t *testing.T) {
	repoRoot, bookDir := layoutRepo(t)

	touch(t, filepath.Join(repoRoot, ArtifactDirName, "book.tex"))
	touch(t, filepath.Join(repoRoot, "scripts", "strip_formatting.lua"))

	path, ok := ResolveArtifact(bookDir, "book.tex")
	require.True(t, ok)
	require.Equal(t, filepath.Join(repoRoot, ArtifactDirName, "book.tex"), path)

	path, ok = ResolveArtifact(bookDir, "strip_formatting.lua")
	require.True(t, ok)
	require.Equal(t, filepath.Join(repoRoot, "scripts", "strip_formatting.lua"), path)
}

func TestResolveArtifact_AbsentIsNotAnError(t *testing.T) {
	_, bookDir := layoutRepo(t)

	path, ok := ResolveArtifact(bookDir, "missing.css")
	require.False(t, ok)
	require.Empty(t, path)

	path, ok = ResolveArtifact(bookDir, "")
	require.False(t, ok)
	require.Empty(t, path)
}

func TestResolveFilters_DropsUnresolvableNames(t *testing.T) {
	repoRoot, bookDir := layoutRepo(t)

	touch(t, filepath.Join(repoRoot, ArtifactDirName, "a.lua"))
	touch(t, filepath.Join(bookDir, ArtifactDirName, "b.lua"))

	filters := ResolveFilters(bookDir, []string{"a.lua", "nope.lua", "b.lua"})
	require.Equal(t, []string{
		filepath.Join(repoRoot, ArtifactDirName, "a.lua"),
		filepath.Join(bookDir, ArtifactDirName, "b.lua"),
	}, filters)
}
