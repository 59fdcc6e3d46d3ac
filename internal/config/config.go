// Package config loads and validates per-book settings (book.yaml), applies
// layered defaults, and derives the conversion-engine inputs (source dialect,
// metadata arguments) that every format builder shares.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/bookbuilder/internal/errors"
)

// ConfigFileName is the settings file expected in every book directory.
const ConfigFileName = "book.yaml"

// requiredFields must be present and non-empty in every book.yaml.
var requiredFields = []string{"title", "author", "prefix"}

// knownKeys are the recognized top-level book.yaml keys; anything else lands
// in BookConfig.Extra.
var knownKeys = map[string]struct{}{
	"title": {}, "author": {}, "prefix": {},
	"lang": {}, "date": {}, "series": {}, "series_number": {},
	"markdown_extensions": {}, "filters": {},
	"epub": {}, "docx": {}, "pdf": {},
}

// Load reads and validates book.yaml from a book directory.
func Load(bookDir string) (*BookConfig, error) {
	yamlPath := filepath.Join(bookDir, ConfigFileName)
	if _, err := os.Stat(yamlPath); os.IsNotExist(err) {
		return nil, errors.ConfigNotFound(bookDir)
	}

	data, err := os.ReadFile(yamlPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "failed to read book.yaml")
	}

	// First pass into a generic map: catches non-mapping documents and
	// collects unknown keys.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.ConfigInvalid("must be a YAML mapping")
	}
	if raw == nil {
		return nil, errors.ConfigInvalid("file is empty")
	}

	var cfg BookConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.ConfigInvalid(err.Error())
	}

	var missing []string
	for _, field := range requiredFields {
		if strings.TrimSpace(cfg.fieldValue(field)) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, errors.ConfigRequired(strings.Join(missing, ", "))
	}

	cfg.Extra = map[string]any{}
	for key, value := range raw {
		if _, ok := knownKeys[key]; !ok {
			cfg.Extra[key] = value
		}
	}

	applyDefaults(&cfg)
	cfg.BookDir = bookDir

	if _, err := language.Parse(cfg.Lang); err != nil {
		slog.Warn("Language tag in book.yaml is not a valid BCP 47 tag", "lang", cfg.Lang)
	}

	return &cfg, nil
}

func (c *BookConfig) fieldValue(name string) string {
	switch name {
	case "title":
		return c.Title
	case "author":
		return c.Author
	case "prefix":
		return c.Prefix
	}
	return ""
}

// Get returns a top-level value by key with a fallback, covering both named
// fields and Extra keys.
func (c *BookConfig) Get(key string, fallback any) any {
	switch key {
	case "title":
		return c.Title
	case "author":
		return c.Author
	case "prefix":
		return c.Prefix
	case "lang":
		return c.Lang
	case "date":
		return c.Date
	case "series":
		if c.Series == "" {
			return fallback
		}
		return c.Series
	case "series_number":
		if c.SeriesNumber == "" {
			return fallback
		}
		return string(c.SeriesNumber)
	case "markdown_extensions":
		return c.MarkdownExtensions
	}
	if v, ok := c.Extra[key]; ok {
		return v
	}
	return fallback
}

// FromString derives the pandoc --from dialect string, combining the base
// markdown format, smart punctuation, and the configured extensions.
func (c *BookConfig) FromString() string {
	return "markdown+smart+" + c.MarkdownExtensions
}

// MetadataArgs builds the pandoc --metadata argument pairs for the document
// core metadata, omitting empty values.
func (c *BookConfig) MetadataArgs() []string {
	var args []string
	for _, kv := range []struct{ key, value string }{
		{"title", c.Title},
		{"author", c.Author},
		{"lang", c.Lang},
		{"date", c.Date},
	} {
		if kv.value != "" {
			args = append(args, "--metadata", kv.key+"="+kv.value)
		}
	}
	return args
}

// Summary logs a short description of the loaded configuration.
func (c *BookConfig) Summary() {
	slog.Info("Book configuration loaded",
		"title", c.Title,
		"author", c.Author,
		"source", c.BookDir)
	if c.Series != "" {
		slog.Info("Series", "name", c.Series, "number", string(c.SeriesNumber))
	}
}
