// Package builder defines the format-builder contract and its four
// implementations (merged markdown, docx, epub, print pdf). Builders share
// one conversion-engine invocation path and differ in the arguments and
// post-steps they add. A builder never panics past its boundary: every
// failure is logged and reported as a false build outcome.
package builder

import (
	"context"
	"sort"

	"git.home.luguber.info/inful/bookbuilder/internal/config"
)

// Builder is the capability every output format implements.
type Builder interface {
	// Name is the human-readable format name ("EPUB", "PDF", ...).
	Name() string
	// OutputPath is the file this builder produces in the output directory.
	OutputPath() string
	// Build runs the full build for this format. It reports success and
	// never raises: failures are logged with a diagnostic and returned as
	// false. Re-running overwrites prior output.
	Build(ctx context.Context) bool
}

// Options carries the format-agnostic build overrides.
type Options struct {
	Verbose          bool
	SkipValidation   bool   // skip compliance checking after the epub build
	ReportPath       string // write a machine-readable validation report here
	ReportAuto       bool   // derive the report path from the package name
	KeepIntermediate bool   // retain intermediate typesetting files
}

// Deps bundles everything a builder is constructed with.
type Deps struct {
	Config    *config.BookConfig
	BookDir   string
	Inputs    []string
	OutputDir string
	Options   Options

	// Runner executes external tools; nil selects the default os/exec
	// runner. Injected by tests.
	Runner Runner
}

// Factory constructs a builder for one format.
type Factory func(Deps) Builder

// Format keys, matching the CLI flags.
const (
	FormatMarkdown = "md"
	FormatDocx     = "docx"
	FormatEpub     = "epub"
	FormatPDF      = "pdf"
)

var registry = map[string]Factory{
	FormatMarkdown: newMarkdownBuilder,
	FormatDocx:     newDocxBuilder,
	FormatEpub:     newEpubBuilder,
	FormatPDF:      newPDFBuilder,
}

// DefaultFormats are built by --all. PDF is excluded: it needs a local TeX
// installation and is opt-in via --pdf.
var DefaultFormats = []string{FormatEpub, FormatDocx, FormatMarkdown}

// New constructs the builder registered for a format key.
func New(format string, deps Deps) (Builder, bool) {
	factory, ok := registry[format]
	if !ok {
		return nil, false
	}
	return factory(deps), true
}

// Formats lists all registered format keys in sorted order.
func Formats() []string {
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
