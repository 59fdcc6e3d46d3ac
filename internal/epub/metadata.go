package epub

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"git.home.luguber.info/inful/bookbuilder/internal/config"
)

// patchSentinel is the exact metadata key that marks a container as already
// patched. Checking this sentinel, rather than searching for one of the
// injected properties, keeps repeated runs idempotent even if the package
// document is later reformatted.
const patchSentinel = `name="bookbuilder-patched"`

// legacyMarker is the property the original tooling injected; packages
// carrying it are also treated as patched.
const legacyMarker = `property="schema:accessMode"`

const metadataClose = "</metadata>"

// patchPackageDoc injects accessibility and series metadata into the package
// document, once. Already-patched documents are left untouched.
func patchPackageDoc(opfPath string, cfg *config.BookConfig) error {
	data, err := os.ReadFile(opfPath)
	if err != nil {
		return err
	}
	opf := string(data)

	if strings.Contains(opf, patchSentinel) || strings.Contains(opf, legacyMarker) {
		slog.Debug("Package document already patched, skipping metadata injection")
		return nil
	}

	lines := metadataEntries(cfg, opf)
	if len(lines) == 0 || !strings.Contains(opf, metadataClose) {
		return nil
	}

	lines = append(lines, `    <meta name="bookbuilder-patched" content="a11y"/>`)
	block := strings.Join(lines, "\n")
	opf = strings.Replace(opf, metadataClose, block+"\n  "+metadataClose, 1)

	if err := os.WriteFile(opfPath, []byte(opf), 0o640); err != nil {
		return err
	}
	slog.Debug("Injected metadata entries", "entries", len(lines))
	return nil
}

// metadataEntries builds the metadata lines to inject: schema.org
// accessibility properties from configuration, and collection metadata when
// the book belongs to a series.
func metadataEntries(cfg *config.BookConfig, opf string) []string {
	var lines []string
	a11y := cfg.Epub.Accessibility

	appendProp := func(prop, value string) {
		if value == "" {
			return
		}
		// Summaries may be written as YAML block scalars; metadata values
		// must be single-line.
		value = strings.TrimSpace(strings.ReplaceAll(value, "\n", " "))
		lines = append(lines, fmt.Sprintf(`    <meta property="schema:%s">%s</meta>`, prop, value))
	}

	appendProp("accessMode", a11y.AccessMode)
	appendProp("accessModeSufficient", a11y.AccessModeSufficient)
	for _, feature := range a11y.AccessibilityFeature {
		appendProp("accessibilityFeature", feature)
	}
	appendProp("accessibilityHazard", a11y.AccessibilityHazard)
	appendProp("accessibilitySummary", a11y.AccessibilitySummary)

	if cfg.Series != "" && !strings.Contains(opf, "belongs-to-collection") {
		lines = append(lines,
			fmt.Sprintf(`    <meta property="belongs-to-collection" id="series">%s</meta>`, cfg.Series),
			`    <meta refines="#series" property="collection-type">series</meta>`)
		if cfg.SeriesNumber != "" {
			lines = append(lines,
				fmt.Sprintf(`    <meta refines="#series" property="group-position">%s</meta>`, cfg.SeriesNumber))
		}
	}

	return lines
}
