package builder

import (
	"context"
	"log/slog"
	"strconv"

	"git.home.luguber.info/inful/bookbuilder/internal/epub"
	"git.home.luguber.info/inful/bookbuilder/internal/epubcheck"
	"git.home.luguber.info/inful/bookbuilder/internal/logfields"
)

// epubBuilder produces the e-book package, then patches the container for
// accessibility compliance and runs the external compliance checker.
type epubBuilder struct {
	base
}

func newEpubBuilder(deps Deps) Builder {
	return &epubBuilder{base: newBase(deps)}
}

func (b *epubBuilder) Name() string { return "EPUB" }

func (b *epubBuilder) OutputPath() string {
	return b.outputFile(".epub")
}

func (b *epubBuilder) Build(ctx context.Context) bool {
	b.header(b.Name())

	ebook := b.cfg.Epub

	extra := []string{
		"--epub-title-page=false",
		"-o", b.OutputPath(),
	}

	if ebook.TocEnabled() {
		extra = append(extra, "--toc", "--toc-depth", strconv.Itoa(ebook.TocDepth))
	}

	if cssPath, ok := b.resolve(ebook.CSS); ok {
		extra = append(extra, "--css", cssPath)
		slog.Debug("Using stylesheet", logfields.Path(cssPath))
	} else {
		slog.Warn("No epub stylesheet found", "css", ebook.CSS)
	}

	if coverPath, ok := b.resolve(ebook.Cover); ok {
		extra = append(extra, "--epub-cover-image", coverPath)
		slog.Debug("Using cover image", logfields.Path(coverPath))
	} else {
		slog.Warn("No cover image found", "cover", ebook.Cover)
	}

	if !b.runEngine(ctx, "EPUB generation", b.engineArgs(extra...)) {
		return false
	}

	slog.Info("Format built", logfields.Format(b.Name()), logfields.Path(b.OutputPath()))

	// Post-processing failure leaves a usable package behind, so it is a
	// warning, not a build failure.
	if err := epub.Patch(b.OutputPath(), b.cfg); err != nil {
		slog.Warn("Container post-processing failed; package may have compliance issues",
			logfields.Error(err))
	}

	if !b.opts.SkipValidation {
		b.validate(ctx)
	}

	return true
}

// validate runs the compliance checker. Validation is advisory to the build:
// its outcome is reported but never flips the success flag.
func (b *epubBuilder) validate(ctx context.Context) {
	result := epubcheck.Validate(ctx, b.OutputPath(), epubcheck.Options{
		Verbose:    b.opts.Verbose,
		ReportPath: b.opts.ReportPath,
		ReportAuto: b.opts.ReportAuto,
	})

	switch result.Outcome {
	case epubcheck.OutcomeUnavailable:
		slog.Debug("Compliance checker not available, skipping validation")
	case epubcheck.OutcomeInvalid:
		slog.Warn("Package failed compliance checking",
			"fatals", result.Fatals, "errors", result.Errors, "warnings", result.Warnings)
	}
}
