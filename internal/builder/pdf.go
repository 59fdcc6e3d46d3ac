package builder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/bookbuilder/internal/logfields"
)

// pdfBuilder produces the print-typeset document: the conversion engine
// emits intermediate LaTeX through the book template, which the typesetting
// engine compiles in two passes (the second resolves cross-references and
// page numbers established by the first).
type pdfBuilder struct {
	base
}

func newPDFBuilder(deps Deps) Builder {
	return &pdfBuilder{base: newBase(deps)}
}

// Leftover horizontal rules the lua filter missed become the configured
// scene-break macro during the tex post-edit.
var sceneBreakPlaceholderRe = regexp.MustCompile(
	`\\begin\{center\}\\rule\{0\.5\\linewidth\}\{0\.5pt\}\\end\{center\}`)

// pageCountRe matches page-tree count markers in the compiled output.
var pageCountRe = regexp.MustCompile(`/Count\s+(\d+)`)

// texErrorLimit caps the error lines surfaced from the compile log.
const texErrorLimit = 10

func (b *pdfBuilder) Name() string { return "PDF" }

// OutputPath composes the configured job suffix into the filename
// (e.g. sample_print_6x9.pdf), keeping trim-size variants side by side.
func (b *pdfBuilder) OutputPath() string {
	return filepath.Join(b.outputDir, b.jobName()+".pdf")
}

func (b *pdfBuilder) jobName() string {
	return b.cfg.Prefix + b.cfg.PDF.JobSuffix
}

func (b *pdfBuilder) intermediateTex() string {
	return filepath.Join(b.outputDir, b.cfg.Prefix+"_print.tex")
}

func (b *pdfBuilder) Build(ctx context.Context) bool {
	b.header(b.Name())

	pdf := b.cfg.PDF

	template, ok := b.resolve(pdf.Template)
	if !ok {
		slog.Error("Typesetting template not found in artifacts", "template", pdf.Template)
		return false
	}
	slog.Debug("Using template", logfields.Path(template))

	luaFilter, hasFilter := b.resolve(pdf.Filter)
	if hasFilter {
		slog.Debug("Using filter", logfields.Path(luaFilter))
	}

	if !b.checkTool(pdf.Engine) {
		fmt.Fprintln(os.Stderr, "  Install TeX Live or MacTeX:")
		fmt.Fprintln(os.Stderr, "    macOS:  brew install --cask mactex")
		fmt.Fprintln(os.Stderr, "    Ubuntu: sudo apt install texlive-xetex texlive-fonts-extra")
		return false
	}

	if !b.generateTex(ctx, template, pdf.Engine, luaFilter, hasFilter) {
		return false
	}

	if err := b.patchTex(); err != nil {
		slog.Warn("Intermediate tex post-edit failed", logfields.Error(err))
	}

	if !b.compile(ctx, pdf.Engine) {
		return false
	}

	slog.Info("Format built", logfields.Format(b.Name()), logfields.Path(b.OutputPath()))

	b.reportPageCount()
	b.cleanup()

	return true
}

// generateTex runs the conversion engine into the intermediate tex file.
func (b *pdfBuilder) generateTex(ctx context.Context, template, engine, luaFilter string, hasFilter bool) bool {
	extra := []string{
		"--template=" + template,
		"--pdf-engine=" + engine,
		"-o", b.intermediateTex(),
	}
	if b.cfg.Series != "" {
		extra = append(extra, "--metadata", "series="+b.cfg.Series)
	}

	args := b.engineArgs(extra...)
	// The pdf filter runs in addition to the shared filters.
	if hasFilter {
		args = append(args, "--lua-filter", luaFilter)
	}

	return b.runEngine(ctx, "LaTeX generation", args)
}

// patchTex rewrites known placeholder patterns in the intermediate markup to
// the configured scene-break macro. Regex fixups are easier here than in the
// lua filter.
func (b *pdfBuilder) patchTex() error {
	path := b.intermediateTex()
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	patched := sceneBreakPlaceholderRe.ReplaceAll(data, []byte(b.cfg.PDF.SceneBreakMacro))
	if string(patched) == string(data) {
		return nil
	}
	return os.WriteFile(path, patched, 0o600)
}

// compile runs the typesetting engine twice. Any pass failing is fatal to
// this builder.
func (b *pdfBuilder) compile(ctx context.Context, engine string) bool {
	args := []string{
		"-interaction=nonstopmode",
		"-output-directory=" + b.outputDir,
		"-jobname=" + b.jobName(),
		b.intermediateTex(),
	}

	for pass := 1; pass <= 2; pass++ {
		slog.Debug("Typesetting pass", "engine", engine, "pass", pass)
		if _, _, err := b.runner.Run(ctx, false, engine, args...); err != nil {
			slog.Error("Typesetting pass failed",
				"engine", engine, "pass", pass, logfields.Error(err))
			b.reportTexErrors()
			return false
		}
	}
	return true
}

// reportTexErrors surfaces useful lines from the compile log: up to ten
// error-marker lines, or the last twenty lines when no marker is present.
func (b *pdfBuilder) reportTexErrors() {
	logFile := filepath.Join(b.outputDir, b.jobName()+".log")
	data, err := os.ReadFile(logFile)
	if err != nil {
		return
	}

	lines := strings.Split(string(data), "\n")
	var errorLines []string
	for _, line := range lines {
		if strings.HasPrefix(line, "!") || strings.Contains(line, "Error") {
			errorLines = append(errorLines, line)
		}
	}

	if len(errorLines) > 0 {
		if len(errorLines) > texErrorLimit {
			errorLines = errorLines[:texErrorLimit]
		}
		fmt.Fprintf(os.Stderr, "  Errors from %s.log:\n", b.jobName())
		for _, line := range errorLines {
			fmt.Fprintf(os.Stderr, "    %s\n", line)
		}
		return
	}

	tail := lines
	if len(tail) > maxStderrLines {
		tail = tail[len(tail)-maxStderrLines:]
	}
	fmt.Fprintf(os.Stderr, "  Last lines of %s.log:\n", b.jobName())
	for _, line := range tail {
		fmt.Fprintf(os.Stderr, "    %s\n", line)
	}
}

// reportPageCount scans the compiled output for page-tree count markers and
// reports the maximum found. Best effort only.
func (b *pdfBuilder) reportPageCount() {
	data, err := os.ReadFile(b.OutputPath())
	if err != nil {
		return
	}

	pages := 0
	for _, m := range pageCountRe.FindAllSubmatch(data, -1) {
		if n, err := strconv.Atoi(string(m[1])); err == nil && n > pages {
			pages = n
		}
	}
	if pages > 0 {
		slog.Info("Approximate page count", "pages", pages)
	}
}

// cleanup removes intermediate typesetting artifacts unless retention was
// requested.
func (b *pdfBuilder) cleanup() {
	if b.opts.KeepIntermediate {
		slog.Info("Keeping intermediate files",
			logfields.Path(b.intermediateTex()),
			"log", filepath.Join(b.outputDir, b.jobName()+".log"))
		return
	}

	for _, ext := range []string{".aux", ".log", ".toc", ".out"} {
		_ = os.Remove(filepath.Join(b.outputDir, b.jobName()+ext))
	}
	_ = os.Remove(b.intermediateTex())
	slog.Debug("Cleaned up intermediate files")
}
