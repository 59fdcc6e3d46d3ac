package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/bookbuilder/internal/builder"
	"git.home.luguber.info/inful/bookbuilder/internal/config"
	"git.home.luguber.info/inful/bookbuilder/internal/epubcheck"
	"git.home.luguber.info/inful/bookbuilder/internal/errors"
	"git.home.luguber.info/inful/bookbuilder/internal/history"
	"git.home.luguber.info/inful/bookbuilder/internal/lint"
	"git.home.luguber.info/inful/bookbuilder/internal/manuscript"
	"git.home.luguber.info/inful/bookbuilder/internal/pipeline"
)

var CLI struct {
	Verbose   bool   `short:"v" help:"Enable verbose logging"`
	HistoryDB string `help:"Build history database path" default:".bookbuilder-history.db"`

	Build struct {
		Book string `arg:"" help:"Book number, keyword, or path"`

		Epub bool `help:"Build EPUB"`
		Docx bool `help:"Build DOCX"`
		Md   bool `help:"Build merged Markdown"`
		Pdf  bool `help:"Build PDF (requires xelatex)"`
		All  bool `help:"Build epub + docx + md"`

		MsOnly         bool   `help:"Chapters only, no front/back matter"`
		OutputDir      string `help:"Override output directory"`
		NoValidate     bool   `help:"Skip epubcheck after epub build"`
		JSONReport     bool   `help:"Save epubcheck JSON report next to the epub"`
		JSONReportFile string `help:"Save epubcheck JSON report to FILE" placeholder:"FILE"`
		KeepTex        bool   `help:"Keep intermediate .tex/.log for PDF debugging"`
		Watch          bool   `help:"Rebuild whenever the manuscript changes"`
	} `cmd:"" default:"withargs" help:"Build output formats (default)"`

	Lint struct {
		Book     string `arg:"" help:"Book number, keyword, or path"`
		Fix      bool   `help:"Auto-fix fixable issues"`
		Chapters bool   `help:"Chapters only"`
	} `cmd:"" help:"Lint manuscript source"`

	Validate struct {
		Book           string `arg:"" help:"Book number, keyword, or path"`
		OutputDir      string `help:"Override output directory"`
		JSONReport     bool   `help:"Save epubcheck JSON report next to the epub"`
		JSONReportFile string `help:"Save epubcheck JSON report to FILE" placeholder:"FILE"`
	} `cmd:"" help:"Run epubcheck on an existing epub"`

	History struct {
		Book  string `arg:"" optional:"" help:"Limit to one book prefix"`
		Limit int    `short:"n" default:"10" help:"Number of records to show"`
	} `cmd:"" help:"Show recent build results"`
}

func main() {
	os.Exit(run())
}

func run() int {
	// Local overrides like EPUBCHECK_JAR can live in a .env file.
	_ = godotenv.Load()

	kctx := kong.Parse(&CLI,
		kong.Name("bookbuilder"),
		kong.Description("Markdown book build pipeline"))

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	adapter := errors.NewCLIErrorAdapter(CLI.Verbose, nil)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch kctx.Command() {
	case "build <book>":
		return runBuild(ctx, adapter)
	case "lint <book>":
		return runLint(adapter)
	case "validate <book>":
		return runValidate(ctx, adapter)
	case "history", "history <book>":
		return runHistory(ctx, adapter)
	default:
		_ = kctx.PrintUsage(false)
		return 1
	}
}

func buildFormats() []string {
	if CLI.Build.All {
		return builder.DefaultFormats
	}
	var formats []string
	if CLI.Build.Epub {
		formats = append(formats, builder.FormatEpub)
	}
	if CLI.Build.Docx {
		formats = append(formats, builder.FormatDocx)
	}
	if CLI.Build.Md {
		formats = append(formats, builder.FormatMarkdown)
	}
	if CLI.Build.Pdf {
		formats = append(formats, builder.FormatPDF)
	}
	return formats
}

func runBuild(ctx context.Context, adapter *errors.CLIErrorAdapter) int {
	req := pipeline.Request{
		Book:         CLI.Build.Book,
		Formats:      buildFormats(),
		OutputDir:    CLI.Build.OutputDir,
		ChaptersOnly: CLI.Build.MsOnly,
		Options: builder.Options{
			Verbose:          CLI.Verbose,
			SkipValidation:   CLI.Build.NoValidate,
			ReportPath:       CLI.Build.JSONReportFile,
			ReportAuto:       CLI.Build.JSONReport,
			KeepIntermediate: CLI.Build.KeepTex,
		},
		HistoryPath: CLI.HistoryDB,
	}

	if CLI.Build.Watch {
		if err := pipeline.Watch(ctx, req); err != nil {
			adapter.LogError(err)
			return adapter.ExitCodeFor(err)
		}
		return 0
	}

	if _, err := pipeline.Run(ctx, req); err != nil {
		adapter.LogError(err)
		return adapter.ExitCodeFor(err)
	}
	return 0
}

func runLint(adapter *errors.CLIErrorAdapter) int {
	bookDir, cfg, err := resolveBook(CLI.Lint.Book)
	if err != nil {
		adapter.LogError(err)
		return adapter.ExitCodeFor(err)
	}

	mode := "CHECK"
	if CLI.Lint.Fix {
		mode = "FIX"
	}
	fmt.Printf("\n  Linting: %s\n", cfg.Title)
	fmt.Printf("  Source:  %s\n", bookDir)
	fmt.Printf("  Mode:    %s\n\n", mode)

	files := manuscript.AssembleInputs(bookDir, CLI.Lint.Chapters)
	if len(files) == 0 {
		adapter.LogError(errors.NoInputs(bookDir))
		return 1
	}

	summary := lint.New(bookDir, files, CLI.Lint.Fix, CLI.Verbose).Run()
	if !summary.Clean() {
		return 1
	}
	return 0
}

func runValidate(ctx context.Context, adapter *errors.CLIErrorAdapter) int {
	_, cfg, err := resolveBook(CLI.Validate.Book)
	if err != nil {
		adapter.LogError(err)
		return adapter.ExitCodeFor(err)
	}

	outputDir := CLI.Validate.OutputDir
	if outputDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			adapter.LogError(errors.WorkspaceError("resolve working directory", err))
			return 1
		}
		outputDir = filepath.Join(cwd, "output")
	}

	epubFile := filepath.Join(outputDir, cfg.Prefix+".epub")
	if _, err := os.Stat(epubFile); err != nil {
		fmt.Fprintf(os.Stderr, "  Error: %s not found. Build with --epub first.\n", epubFile)
		return 1
	}

	fmt.Printf("\n%s\n", strings.Repeat("-", 60))
	fmt.Printf("  Validating: %s\n", epubFile)
	fmt.Printf("%s\n", strings.Repeat("-", 60))

	result := epubcheck.Validate(ctx, epubFile, epubcheck.Options{
		Verbose:    true,
		ReportPath: CLI.Validate.JSONReportFile,
		ReportAuto: CLI.Validate.JSONReport,
	})
	if !result.Passed() {
		return 1
	}
	return 0
}

func runHistory(ctx context.Context, adapter *errors.CLIErrorAdapter) int {
	store, err := history.Open(CLI.HistoryDB)
	if err != nil {
		adapter.LogError(errors.InternalError("open build history", err))
		return 1
	}
	defer func() { _ = store.Close() }()

	var records []history.Record
	if CLI.History.Book != "" {
		records, err = store.ForBook(ctx, CLI.History.Book, CLI.History.Limit)
	} else {
		records, err = store.Recent(ctx, CLI.History.Limit)
	}
	if err != nil {
		adapter.LogError(errors.InternalError("read build history", err))
		return 1
	}

	if len(records) == 0 {
		fmt.Println("  No build history recorded yet.")
		return 0
	}

	for _, rec := range records {
		status := "ok"
		if !rec.Success {
			status = "FAILED"
		}
		fmt.Printf("  %s  %-12s %-5s %-6s %6dms  %s\n",
			rec.CreatedAt.Format(time.DateTime),
			rec.Book, rec.Format, status, rec.DurationMS, rec.OutputPath)
	}
	return 0
}

// resolveBook finds the book directory from an identifier and loads its
// configuration.
func resolveBook(identifier string) (string, *config.BookConfig, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", nil, errors.WorkspaceError("resolve working directory", err)
	}

	bookDir, ok := manuscript.FindBookDir(identifier, cwd)
	if !ok {
		return "", nil, errors.BookNotFound(identifier)
	}

	cfg, err := config.Load(bookDir)
	if err != nil {
		return "", nil, err
	}
	return bookDir, cfg, nil
}
