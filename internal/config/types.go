package config

import "gopkg.in/yaml.v3"

// BookConfig is a loaded, validated book.yaml. Required fields are guaranteed
// non-empty after Load; everything else carries its default. Unknown keys are
// preserved in Extra for forward compatibility.
type BookConfig struct {
	Title  string `yaml:"title"`
	Author string `yaml:"author"`
	Prefix string `yaml:"prefix"`

	Lang               string     `yaml:"lang"`
	Date               string     `yaml:"date"`
	Series             string     `yaml:"series"`
	SeriesNumber       FlexString `yaml:"series_number"`
	MarkdownExtensions string     `yaml:"markdown_extensions"`
	Filters            []string   `yaml:"filters"`

	Epub EpubConfig `yaml:"epub"`
	Docx DocxConfig `yaml:"docx"`
	PDF  PDFConfig  `yaml:"pdf"`

	// Extra holds top-level keys not recognized above.
	Extra map[string]any `yaml:"-"`

	// BookDir is the directory book.yaml was loaded from.
	BookDir string `yaml:"-"`
}

// EpubConfig holds e-book format options.
type EpubConfig struct {
	Toc           *bool               `yaml:"toc"`
	TocDepth      int                 `yaml:"toc_depth"`
	CSS           string              `yaml:"css"`
	Cover         string              `yaml:"cover"`
	CoverAlt      string              `yaml:"cover_alt"`
	Accessibility AccessibilityConfig `yaml:"accessibility"`
}

// AccessibilityConfig mirrors the schema.org accessibility vocabulary used in
// OPF metadata.
type AccessibilityConfig struct {
	AccessMode           string   `yaml:"accessMode"`
	AccessModeSufficient string   `yaml:"accessModeSufficient"`
	AccessibilityFeature []string `yaml:"accessibilityFeature"`
	AccessibilityHazard  string   `yaml:"accessibilityHazard"`
	AccessibilitySummary string   `yaml:"accessibilitySummary"`
}

// DocxConfig holds word-processor format options.
type DocxConfig struct {
	Toc       *bool  `yaml:"toc"`
	TocDepth  int    `yaml:"toc_depth"`
	Reference string `yaml:"reference"`
}

// PDFConfig holds print-typeset format options.
type PDFConfig struct {
	Template        string `yaml:"template"`
	Filter          string `yaml:"filter"`
	Engine          string `yaml:"engine"`
	SceneBreakMacro string `yaml:"scene_break_macro"`
	JobSuffix       string `yaml:"job_suffix"`
}

// FlexString decodes any YAML scalar (string, int, float) as its literal text,
// so `series_number: 2` and `series_number: "2"` behave identically.
type FlexString string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *FlexString) UnmarshalYAML(value *yaml.Node) error {
	*s = FlexString(value.Value)
	return nil
}

// TocEnabled reports whether a table of contents is requested.
func (e *EpubConfig) TocEnabled() bool {
	return e.Toc == nil || *e.Toc
}

// TocEnabled reports whether a table of contents is requested.
func (d *DocxConfig) TocEnabled() bool {
	return d.Toc == nil || *d.Toc
}
