package builder

import (
	"context"
	"log/slog"
	"strconv"

	"git.home.luguber.info/inful/bookbuilder/internal/logfields"
)

// docxBuilder produces a word-processor document styled by a per-book
// reference document (fonts, margins, running headers).
type docxBuilder struct {
	base
}

func newDocxBuilder(deps Deps) Builder {
	return &docxBuilder{base: newBase(deps)}
}

func (b *docxBuilder) Name() string { return "DOCX" }

func (b *docxBuilder) OutputPath() string {
	return b.outputFile(".docx")
}

func (b *docxBuilder) Build(ctx context.Context) bool {
	b.header(b.Name())

	docx := b.cfg.Docx

	extra := []string{"-o", b.OutputPath()}

	if docx.TocEnabled() {
		extra = append(extra, "--toc", "--toc-depth", strconv.Itoa(docx.TocDepth))
	}

	// Missing reference document degrades to engine defaults, never aborts.
	if refPath, ok := b.resolve(docx.Reference); ok {
		extra = append(extra, "--reference-doc="+refPath)
		slog.Debug("Using reference document", logfields.Path(refPath))
	} else {
		slog.Warn("No reference document found, using engine default styling",
			"reference", docx.Reference)
	}

	if !b.runEngine(ctx, "DOCX generation", b.engineArgs(extra...)) {
		return false
	}

	slog.Info("Format built", logfields.Format(b.Name()), logfields.Path(b.OutputPath()))
	return true
}
