package builder

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/bookbuilder/internal/config"
)

type call struct {
	name string
	args []string
}

// recordingRunner captures every invocation and optionally simulates tool
// side effects or failures.
type recordingRunner struct {
	mu    sync.Mutex
	calls []call

	failFor string                         // command name that should fail
	onRun   func(name string, args []string) // simulate tool side effects
}

type exitError struct{}

func (exitError) Error() string { return "exit status 1" }

func (r *recordingRunner) Run(_ context.Context, _ bool, name string, args ...string) (string, string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, call{name: name, args: args})
	r.mu.Unlock()

	if r.onRun != nil {
		r.onRun(name, args)
	}
	if r.failFor != "" && name == r.failFor {
		return "", "! Something went wrong.", exitError{}
	}
	return "", "", nil
}

func (r *recordingRunner) callsFor(name string) []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []call
	for _, c := range r.calls {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

func makeDeps(t *testing.T, yamlExtra string, opts Options, runner Runner) Deps {
	t.Helper()
	bookDir := t.TempDir()
	yaml := "title: Sample\nauthor: A. Writer\nprefix: sample\n" + yamlExtra
	require.NoError(t, os.WriteFile(filepath.Join(bookDir, "book.yaml"), []byte(yaml), 0o640))

	chapters := filepath.Join(bookDir, "chapters")
	require.NoError(t, os.MkdirAll(chapters, 0o750))
	input := filepath.Join(chapters, "01_one.md")
	require.NoError(t, os.WriteFile(input, []byte("# One\n"), 0o640))

	cfg, err := config.Load(bookDir)
	require.NoError(t, err)

	return Deps{
		Config:    cfg,
		BookDir:   bookDir,
		Inputs:    []string{input},
		OutputDir: t.TempDir(),
		Options:   opts,
		Runner:    runner,
	}
}

func addArtifact(t *testing.T, deps Deps, name, content string) string {
	t.Helper()
	dir := filepath.Join(deps.BookDir, "artifacts")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o640))
	return path
}

func TestRegistryListsAllFormats(t *testing.T) {
	require.Equal(t, []string{"docx", "epub", "md", "pdf"}, Formats())

	_, ok := New("mobi", Deps{})
	require.False(t, ok)
}

func TestOutputPathsUsePrefix(t *testing.T) {
	deps := makeDeps(t, "", Options{}, &recordingRunner{})

	for format, want := range map[string]string{
		FormatMarkdown: "sample.md",
		FormatDocx:     "sample.docx",
		FormatEpub:     "sample.epub",
		FormatPDF:      "sample_print_6x9.pdf",
	} {
		b, ok := New(format, deps)
		require.True(t, ok)
		require.Equal(t, filepath.Join(deps.OutputDir, want), b.OutputPath())
	}
}

func TestMarkdownBuilderArgs(t *testing.T) {
	runner := &recordingRunner{}
	deps := makeDeps(t, "", Options{}, runner)

	b, _ := New(FormatMarkdown, deps)
	require.True(t, b.Build(context.Background()))

	calls := runner.callsFor("pandoc")
	require.Len(t, calls, 1)
	args := calls[0].args
	require.Contains(t, args, "--standalone")
	require.Contains(t, args, "--wrap=none")
	require.Contains(t, args, "--top-level-division=chapter")
	require.Contains(t, args, "markdown+smart+fenced_divs+native_divs")

	// Inputs are the trailing arguments.
	require.Equal(t, deps.Inputs[0], args[len(args)-1])
}

func TestDocxTocFlags(t *testing.T) {
	runner := &recordingRunner{}
	deps := makeDeps(t, "", Options{}, runner)

	b, _ := New(FormatDocx, deps)
	require.True(t, b.Build(context.Background()))

	args := runner.callsFor("pandoc")[0].args
	require.Contains(t, args, "--toc")
	require.Contains(t, args, "--toc-depth")
}

func TestDocxTocDisabled(t *testing.T) {
	runner := &recordingRunner{}
	deps := makeDeps(t, "docx:\n  toc: false\n", Options{}, runner)

	b, _ := New(FormatDocx, deps)
	require.True(t, b.Build(context.Background()))

	args := runner.callsFor("pandoc")[0].args
	require.NotContains(t, args, "--toc")
}

func TestDocxMissingReferenceStillBuilds(t *testing.T) {
	runner := &recordingRunner{}
	deps := makeDeps(t, "", Options{}, runner)

	b, _ := New(FormatDocx, deps)
	require.True(t, b.Build(context.Background()))

	for _, arg := range runner.callsFor("pandoc")[0].args {
		require.False(t, strings.HasPrefix(arg, "--reference-doc="),
			"missing reference document must not be passed to the engine")
	}
}

func TestDocxUsesResolvedReference(t *testing.T) {
	runner := &recordingRunner{}
	deps := makeDeps(t, "", Options{}, runner)
	refPath := addArtifact(t, deps, "reference.docx", "stub")

	b, _ := New(FormatDocx, deps)
	require.True(t, b.Build(context.Background()))

	args := runner.callsFor("pandoc")[0].args
	require.Contains(t, args, "--reference-doc="+refPath)
}

func TestEngineFailureReturnsFalse(t *testing.T) {
	runner := &recordingRunner{failFor: "pandoc"}
	deps := makeDeps(t, "", Options{}, runner)

	b, _ := New(FormatMarkdown, deps)
	require.False(t, b.Build(context.Background()))
}

func TestEpubArgs(t *testing.T) {
	runner := &recordingRunner{}
	deps := makeDeps(t, "", Options{SkipValidation: true}, runner)
	cssPath := addArtifact(t, deps, "epub.css", "body {}")
	coverPath := addArtifact(t, deps, "cover.jpg", "jpg")

	b, _ := New(FormatEpub, deps)
	require.True(t, b.Build(context.Background()))

	args := runner.callsFor("pandoc")[0].args
	require.Contains(t, args, "--epub-title-page=false")
	require.Contains(t, args, cssPath)
	require.Contains(t, args, coverPath)
	require.Contains(t, args, "--epub-cover-image")
}

func TestEpubMissingAssetsStillBuilds(t *testing.T) {
	runner := &recordingRunner{}
	deps := makeDeps(t, "", Options{SkipValidation: true}, runner)

	b, _ := New(FormatEpub, deps)
	require.True(t, b.Build(context.Background()),
		"missing css and cover degrade, never abort")
}

func TestPDFTemplateMissingIsFatal(t *testing.T) {
	runner := &recordingRunner{}
	deps := makeDeps(t, "", Options{}, runner)

	b, _ := New(FormatPDF, deps)
	require.False(t, b.Build(context.Background()))
	require.Empty(t, runner.calls, "no engine run without a template")
}

func TestPDFEngineMissingIsFatal(t *testing.T) {
	orig := LookupTool
	LookupTool = func(string) bool { return false }
	t.Cleanup(func() { LookupTool = orig })

	runner := &recordingRunner{}
	deps := makeDeps(t, "", Options{}, runner)
	addArtifact(t, deps, "book.tex", "\\documentclass{book}")

	b, _ := New(FormatPDF, deps)
	require.False(t, b.Build(context.Background()))
}

func TestPDFRunsTwoTypesettingPasses(t *testing.T) {
	orig := LookupTool
	LookupTool = func(string) bool { return true }
	t.Cleanup(func() { LookupTool = orig })

	runner := &recordingRunner{}
	runner.onRun = func(name string, args []string) {
		if name != "pandoc" {
			return
		}
		// Simulate the engine writing the intermediate tex file.
		for i, arg := range args {
			if arg == "-o" && i+1 < len(args) {
				tex := "\\chapter{One}\n" +
					"\\begin{center}\\rule{0.5\\linewidth}{0.5pt}\\end{center}\n"
				_ = os.WriteFile(args[i+1], []byte(tex), 0o640)
			}
		}
	}

	deps := makeDeps(t, "", Options{KeepIntermediate: true}, runner)
	addArtifact(t, deps, "book.tex", "\\documentclass{book}")

	b, _ := New(FormatPDF, deps)
	require.True(t, b.Build(context.Background()))

	require.Len(t, runner.callsFor("pandoc"), 1)
	passes := runner.callsFor("xelatex")
	require.Len(t, passes, 2)
	require.Contains(t, passes[0].args, "-interaction=nonstopmode")
	require.Contains(t, passes[0].args, "-jobname=sample_print_6x9")

	// The placeholder rule must have been rewritten to the scene-break macro.
	tex, err := os.ReadFile(filepath.Join(deps.OutputDir, "sample_print.tex"))
	require.NoError(t, err)
	require.Contains(t, string(tex), "\\scenebreak{}")
	require.NotContains(t, string(tex), "\\begin{center}")
}

func TestPDFCleanupRemovesIntermediates(t *testing.T) {
	orig := LookupTool
	LookupTool = func(string) bool { return true }
	t.Cleanup(func() { LookupTool = orig })

	runner := &recordingRunner{}
	runner.onRun = func(name string, args []string) {
		if name != "pandoc" {
			return
		}
		for i, arg := range args {
			if arg == "-o" && i+1 < len(args) {
				_ = os.WriteFile(args[i+1], []byte("\\chapter{One}\n"), 0o640)
			}
		}
	}

	deps := makeDeps(t, "", Options{}, runner)
	addArtifact(t, deps, "book.tex", "\\documentclass{book}")

	b, _ := New(FormatPDF, deps)
	require.True(t, b.Build(context.Background()))

	_, err := os.Stat(filepath.Join(deps.OutputDir, "sample_print.tex"))
	require.True(t, os.IsNotExist(err), "intermediate tex must be removed")
}
