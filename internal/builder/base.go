package builder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/bookbuilder/internal/config"
	"git.home.luguber.info/inful/bookbuilder/internal/logfields"
	"git.home.luguber.info/inful/bookbuilder/internal/manuscript"
)

// engineBinary is the document conversion engine every builder invokes.
const engineBinary = "pandoc"

// maxStderrLines bounds the error-stream excerpt printed on failure.
const maxStderrLines = 20

// base carries the shared builder state and helpers. Format builders embed it.
type base struct {
	cfg       *config.BookConfig
	bookDir   string
	inputs    []string
	outputDir string
	opts      Options
	runner    Runner
}

func newBase(deps Deps) base {
	runner := deps.Runner
	if runner == nil {
		runner = NewExecRunner()
	}
	return base{
		cfg:       deps.Config,
		bookDir:   deps.BookDir,
		inputs:    deps.Inputs,
		outputDir: deps.OutputDir,
		opts:      deps.Options,
		runner:    runner,
	}
}

// outputFile composes the default output path: configured prefix + extension.
func (b *base) outputFile(extension string) string {
	return filepath.Join(b.outputDir, b.cfg.Prefix+extension)
}

// header logs the start of a format build.
func (b *base) header(formatName string) {
	slog.Info("Building format",
		logfields.Format(formatName),
		logfields.Book(b.cfg.Title),
		"inputs", len(b.inputs))
}

// resolve looks up an artifact for this book through the override hierarchy.
func (b *base) resolve(name string) (string, bool) {
	return manuscript.ResolveArtifact(b.bookDir, name)
}

// engineArgs assembles the shared conversion-engine argument list: document
// metadata, division convention, source dialect, and any configured filter
// scripts. Format-specific arguments come first so diagnostics group them.
func (b *base) engineArgs(formatArgs ...string) []string {
	args := append([]string{}, b.cfg.MetadataArgs()...)
	args = append(args,
		"--top-level-division=chapter",
		"--from", b.cfg.FromString(),
	)
	args = append(args, formatArgs...)
	for _, f := range manuscript.ResolveFilters(b.bookDir, b.cfg.Filters) {
		args = append(args, "--lua-filter", f)
	}
	return args
}

// runEngine invokes the conversion engine with the given arguments plus the
// assembled input files, reporting success.
func (b *base) runEngine(ctx context.Context, label string, args []string) bool {
	full := append(append([]string{}, args...), b.inputs...)
	return b.execCommand(ctx, label, engineBinary, full...)
}

// execCommand runs one external command. Output is captured unless verbose;
// on failure the first lines of the error stream are surfaced.
func (b *base) execCommand(ctx context.Context, label, name string, args ...string) bool {
	slog.Debug("Running external command", logfields.Tool(name), "args", len(args))

	_, stderr, err := b.runner.Run(ctx, b.opts.Verbose, name, args...)
	if err != nil {
		slog.Error("External command failed",
			"label", label,
			logfields.Tool(name),
			logfields.Error(err))
		printExcerpt(stderr, maxStderrLines)
		return false
	}
	return true
}

// checkTool verifies a required external binary is reachable before the build
// depends on it.
func (b *base) checkTool(name string) bool {
	if !LookupTool(name) {
		slog.Error("Required tool not found on PATH", logfields.Tool(name))
		return false
	}
	return true
}

// printExcerpt writes up to limit lines of raw tool output to stderr.
func printExcerpt(output string, limit int) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return
	}
	if len(lines) > limit {
		lines = lines[:limit]
	}
	for _, line := range lines {
		fmt.Fprintf(os.Stderr, "    %s\n", line)
	}
}
