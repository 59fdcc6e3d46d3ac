// Package pipeline orchestrates a build run: resolve the book, load its
// configuration, assemble manuscript inputs, and drive each requested format
// builder. Builders are isolated from each other; one failing format never
// stops the rest, and the run fails only if at least one format failed.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/bookbuilder/internal/builder"
	"git.home.luguber.info/inful/bookbuilder/internal/config"
	"git.home.luguber.info/inful/bookbuilder/internal/errors"
	"git.home.luguber.info/inful/bookbuilder/internal/history"
	"git.home.luguber.info/inful/bookbuilder/internal/logfields"
	"git.home.luguber.info/inful/bookbuilder/internal/manuscript"
)

// Request describes one build run.
type Request struct {
	// Book is a number, keyword, or direct path identifying the book.
	Book string
	// ProjectRoot is where manuscript/ and output/ live. Empty means the
	// working directory.
	ProjectRoot string
	// Formats are the builder keys to run. Empty selects the defaults.
	Formats []string
	// OutputDir overrides the default <root>/output directory.
	OutputDir string
	// ChaptersOnly assembles chapters/ only and suppresses the docx TOC,
	// for editor submissions.
	ChaptersOnly bool

	Options builder.Options

	// Runner overrides tool execution; nil selects os/exec. Injected by
	// tests.
	Runner builder.Runner
	// HistoryPath points at the build ledger. Empty disables recording.
	HistoryPath string
}

// Outcome is the result of one run.
type Outcome struct {
	RunID     string
	BookDir   string
	Config    *config.BookConfig
	OutputDir string
	// Results maps each requested format key to its build success.
	Results map[string]bool
}

// Failed lists the formats that did not build, in request order.
func (o *Outcome) Failed(formats []string) []string {
	var failed []string
	for _, format := range formats {
		if ok, present := o.Results[format]; present && !ok {
			failed = append(failed, format)
		}
	}
	return failed
}

// Run executes one full build. The returned error is non-nil when the run
// could not start (resolution, configuration, inputs) or when at least one
// format failed; the Outcome is populated in the latter case.
func Run(ctx context.Context, req Request) (*Outcome, error) {
	root := req.ProjectRoot
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, errors.WorkspaceError("resolve working directory", err)
		}
		root = cwd
	}

	bookDir, ok := manuscript.FindBookDir(req.Book, root)
	if !ok {
		return nil, errors.BookNotFound(req.Book)
	}

	cfg, err := config.Load(bookDir)
	if err != nil {
		return nil, err
	}

	formats := req.Formats
	if len(formats) == 0 {
		formats = builder.DefaultFormats
	}
	for _, format := range formats {
		if _, known := builder.New(format, builder.Deps{Config: cfg}); !known {
			return nil, errors.InternalError("unknown output format: "+format, nil)
		}
	}

	cfg.Summary()
	if req.ChaptersOnly {
		fmt.Println("  Mode:   manuscript-only (chapters/ only)")
	}

	inputs := manuscript.AssembleInputs(bookDir, req.ChaptersOnly)
	if len(inputs) == 0 {
		return nil, errors.NoInputs(bookDir)
	}

	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join(root, "output")
	}
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return nil, errors.WorkspaceError("create output directory", err)
	}
	fmt.Printf("  Output: %s\n", outputDir)

	// A manuscript-only docx is a submission draft; a table of contents
	// would only show chapter stubs.
	if req.ChaptersOnly {
		disabled := false
		cfg.Docx.Toc = &disabled
	}

	outcome := &Outcome{
		RunID:     uuid.NewString(),
		BookDir:   bookDir,
		Config:    cfg,
		OutputDir: outputDir,
		Results:   make(map[string]bool, len(formats)),
	}

	ledger := openLedger(req.HistoryPath)
	if ledger != nil {
		defer func() { _ = ledger.Close() }()
	}

	for _, format := range formats {
		b, _ := builder.New(format, builder.Deps{
			Config:    cfg,
			BookDir:   bookDir,
			Inputs:    inputs,
			OutputDir: outputDir,
			Options:   req.Options,
			Runner:    req.Runner,
		})

		start := time.Now()
		success := b.Build(ctx)
		elapsed := time.Since(start)

		outcome.Results[format] = success
		slog.Debug("Builder finished",
			logfields.Format(format),
			logfields.DurationMS(float64(elapsed.Milliseconds())),
			"success", success)

		record(ctx, ledger, outcome, format, success, b.OutputPath(), elapsed)
	}

	printRunSummary(outcome, formats)

	if failed := outcome.Failed(formats); len(failed) > 0 {
		return outcome, errors.BuildFailed(strings.Join(failed, ", "))
	}
	return outcome, nil
}

func printRunSummary(outcome *Outcome, formats []string) {
	fmt.Printf("\n%s\n", strings.Repeat("-", 60))
	if failed := outcome.Failed(formats); len(failed) > 0 {
		fmt.Printf("  Done with errors: %s failed\n", strings.Join(failed, ", "))
		return
	}
	fmt.Printf("  Done. %d format(s) built successfully.\n", len(formats))
}

// openLedger opens the build history ledger. Any failure downgrades to a
// warning; history must never break a build.
func openLedger(path string) *history.Store {
	if path == "" {
		return nil
	}
	store, err := history.Open(path)
	if err != nil {
		slog.Warn("Could not open build history", logfields.Error(err))
		return nil
	}
	return store
}

func record(ctx context.Context, ledger *history.Store, outcome *Outcome, format string, success bool, outputPath string, elapsed time.Duration) {
	if ledger == nil {
		return
	}
	err := ledger.Append(ctx, history.Record{
		RunID:      outcome.RunID,
		Book:       outcome.Config.Prefix,
		Format:     format,
		Success:    success,
		OutputPath: outputPath,
		DurationMS: elapsed.Milliseconds(),
	})
	if err != nil {
		slog.Warn("Could not record build history", logfields.Error(err))
	}
}
