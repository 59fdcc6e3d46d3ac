package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/bookbuilder/internal/errors"
)

func writeBookYAML(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600))
	return dir
}

func TestLoad_MinimalConfigAppliesDefaults(t *testing.T) {
	dir := writeBookYAML(t, `
title: Sample
author: A
prefix: sample
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	require.Equal(t, "Sample", cfg.Title)
	require.Equal(t, "en-US", cfg.Lang)
	require.Equal(t, "fenced_divs+native_divs", cfg.MarkdownExtensions)

	require.True(t, cfg.Epub.TocEnabled())
	require.Equal(t, 1, cfg.Epub.TocDepth)
	require.Equal(t, "epub.css", cfg.Epub.CSS)
	require.Equal(t, "cover.jpg", cfg.Epub.Cover)

	require.True(t, cfg.Docx.TocEnabled())
	require.Equal(t, "reference.docx", cfg.Docx.Reference)

	require.Equal(t, "book.tex", cfg.PDF.Template)
	require.Equal(t, "xelatex", cfg.PDF.Engine)
	require.Equal(t, `\scenebreak{}`, cfg.PDF.SceneBreakMacro)
	require.Equal(t, "_print_6x9", cfg.PDF.JobSuffix)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	require.True(t, errors.IsCategory(err, errors.CategoryConfig))
}

func TestLoad_NotAMapping(t *testing.T) {
	dir := writeBookYAML(t, "- just\n- a\n- list\n")

	_, err := Load(dir)
	require.Error(t, err)
	require.True(t, errors.IsCategory(err, errors.CategoryConfig))
}

func TestLoad_MissingRequiredFieldsAreNamed(t *testing.T) {
	dir := writeBookYAML(t, `
title: Sample
prefix: ""
`)

	_, err := Load(dir)
	require.Error(t, err)

	be, ok := err.(*errors.BuildError)
	require.True(t, ok)
	require.Equal(t, "author, prefix", be.Context["fields"])
}

func TestLoad_PartialSubSectionKeepsOtherDefaults(t *testing.T) {
	dir := writeBookYAML(t, `
title: Sample
author: A
prefix: sample
epub:
  toc: false
docx:
  toc_depth: 3
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	// User-set value kept, siblings defaulted.
	require.False(t, cfg.Epub.TocEnabled())
	require.Equal(t, "epub.css", cfg.Epub.CSS)

	require.True(t, cfg.Docx.TocEnabled())
	require.Equal(t, 3, cfg.Docx.TocDepth)
	require.Equal(t, "reference.docx", cfg.Docx.Reference)
}

func TestLoad_UnknownKeysLandInExtra(t *testing.T) {
	dir := writeBookYAML(t, `
title: Sample
author: A
prefix: sample
isbn: "978-0-00-000000-0"
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	require.Equal(t, "978-0-00-000000-0", cfg.Extra["isbn"])
	require.Equal(t, "978-0-00-000000-0", cfg.Get("isbn", ""))
	require.Equal(t, "none", cfg.Get("imprint", "none"))
}

func TestLoad_SeriesNumberAcceptsIntAndString(t *testing.T) {
	dir := writeBookYAML(t, `
title: Sample
author: A
prefix: sample
series: Trilogy
series_number: 2
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "2", string(cfg.SeriesNumber))
}

func TestLoad_DefaultsDoNotLeakAcrossLoads(t *testing.T) {
	dir := writeBookYAML(t, `
title: Sample
author: A
prefix: sample
`)

	first, err := Load(dir)
	require.NoError(t, err)

	// Simulate the chapters-only mutation a build applies.
	disabled := false
	first.Docx.Toc = &disabled

	second, err := Load(dir)
	require.NoError(t, err)
	require.True(t, second.Docx.TocEnabled())
}

func TestFromString(t *testing.T) {
	dir := writeBookYAML(t, `
title: Sample
author: A
prefix: sample
markdown_extensions: fenced_divs
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "markdown+smart+fenced_divs", cfg.FromString())
}

func TestMetadataArgs_OmitsEmptyValues(t *testing.T) {
	dir := writeBookYAML(t, `
title: Sample
author: A
prefix: sample
date: "2026-01-01"
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	args := cfg.MetadataArgs()
	require.Equal(t, []string{
		"--metadata", "title=Sample",
		"--metadata", "author=A",
		"--metadata", "lang=en-US",
		"--metadata", "date=2026-01-01",
	}, args)

	cfg.Date = ""
	cfg.Lang = ""
	args = cfg.MetadataArgs()
	require.Equal(t, []string{
		"--metadata", "title=Sample",
		"--metadata", "author=A",
	}, args)
}
