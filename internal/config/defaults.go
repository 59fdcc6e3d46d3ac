package config

// Defaults applied after a successful load. Each sub-section is merged
// key-by-key: values the user set are kept, unset keys take the default.
// Fresh values are produced per load so builder-side mutation (e.g. disabling
// the docx TOC for a chapters-only build) cannot leak into a later load.

const (
	defaultLang               = "en-US"
	defaultMarkdownExtensions = "fenced_divs+native_divs"
)

func applyDefaults(cfg *BookConfig) {
	if cfg.Lang == "" {
		cfg.Lang = defaultLang
	}
	if cfg.MarkdownExtensions == "" {
		cfg.MarkdownExtensions = defaultMarkdownExtensions
	}
	if cfg.Filters == nil {
		cfg.Filters = []string{}
	}
	if cfg.Extra == nil {
		cfg.Extra = map[string]any{}
	}

	applyEpubDefaults(&cfg.Epub)
	applyDocxDefaults(&cfg.Docx)
	applyPDFDefaults(&cfg.PDF)
}

func applyEpubDefaults(e *EpubConfig) {
	if e.Toc == nil {
		enabled := true
		e.Toc = &enabled
	}
	if e.TocDepth == 0 {
		e.TocDepth = 1
	}
	if e.CSS == "" {
		e.CSS = "epub.css"
	}
	if e.Cover == "" {
		e.Cover = "cover.jpg"
	}
}

func applyDocxDefaults(d *DocxConfig) {
	if d.Toc == nil {
		enabled := true
		d.Toc = &enabled
	}
	if d.TocDepth == 0 {
		d.TocDepth = 1
	}
	if d.Reference == "" {
		d.Reference = "reference.docx"
	}
}

func applyPDFDefaults(p *PDFConfig) {
	if p.Template == "" {
		p.Template = "book.tex"
	}
	if p.Filter == "" {
		p.Filter = "pdf_filter.lua"
	}
	if p.Engine == "" {
		p.Engine = "xelatex"
	}
	if p.SceneBreakMacro == "" {
		p.SceneBreakMacro = `\scenebreak{}`
	}
	if p.JobSuffix == "" {
		p.JobSuffix = "_print_6x9"
	}
}
