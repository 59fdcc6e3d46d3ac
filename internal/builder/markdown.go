package builder

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/bookbuilder/internal/logfields"
)

// markdownBuilder produces a single merged markdown file with formatting
// scaffolding stripped. Useful for word counts and editor handoffs.
type markdownBuilder struct {
	base
}

func newMarkdownBuilder(deps Deps) Builder {
	return &markdownBuilder{base: newBase(deps)}
}

func (b *markdownBuilder) Name() string { return "Markdown" }

func (b *markdownBuilder) OutputPath() string {
	return b.outputFile(".md")
}

func (b *markdownBuilder) Build(ctx context.Context) bool {
	b.header(b.Name())

	extra := []string{
		"--standalone",
		"--wrap=none",
		"--to", "markdown",
		"-o", b.OutputPath(),
	}

	// Strip the epub/pdf scaffolding divs if the filter is available.
	if stripFilter, ok := b.resolve("strip_formatting.lua"); ok {
		extra = append(extra, "--lua-filter", stripFilter)
		slog.Debug("Using strip filter", logfields.Path(stripFilter))
	}

	if !b.runEngine(ctx, "Markdown merge", b.engineArgs(extra...)) {
		return false
	}

	slog.Info("Format built", logfields.Format(b.Name()), logfields.Path(b.OutputPath()))
	return true
}
