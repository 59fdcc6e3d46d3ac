package lint

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/bookbuilder/internal/manuscript"
)

// checkStructure runs the document-level checks that need more context than a
// single pattern match: heading placement, attribute conventions, fenced div
// balance, and file hygiene.
func checkStructure(content, section string) []Finding {
	var findings []Finding
	source := []byte(content)

	md := goldmark.New(goldmark.WithParserOptions(parser.WithHeadingAttribute()))
	doc := md.Parser().Parse(text.NewReader(source))

	if section == manuscript.SectionChapters {
		if f, ok := checkChapterOpensWithHeading(doc, source); ok {
			findings = append(findings, f)
		}
	}

	if section == manuscript.SectionFront {
		if f, ok := checkFrontHeadingUnnumbered(doc, source); ok {
			findings = append(findings, f)
		}
	}

	divMarkers := strings.Count(content, "\n:::")
	if strings.HasPrefix(content, ":::") {
		divMarkers++
	}
	if divMarkers%2 != 0 {
		findings = append(findings, Finding{0, SeverityError,
			fmt.Sprintf("Possibly unclosed fenced div (%d ':::' markers, expected even)", divMarkers)})
	}

	if strings.HasPrefix(content, "\uFEFF") {
		findings = append(findings, Finding{1, SeverityError,
			"File starts with UTF-8 BOM"})
	}

	if content != "" && !strings.HasSuffix(content, "\n") {
		findings = append(findings, Finding{
			strings.Count(content, "\n") + 1, SeverityWarning,
			"File does not end with a newline"})
	}

	return findings
}

// checkChapterOpensWithHeading flags chapter files whose first block is not a
// heading.
func checkChapterOpensWithHeading(doc gmast.Node, source []byte) (Finding, bool) {
	first := doc.FirstChild()
	if first == nil {
		return Finding{}, false
	}
	if _, isHeading := first.(*gmast.Heading); isHeading {
		return Finding{}, false
	}

	excerpt := blockText(first, source)
	if len(excerpt) > 40 {
		excerpt = excerpt[:40]
	}
	return Finding{nodeLine(first, source), SeverityError,
		fmt.Sprintf("Chapter file does not start with a heading: '%s...'", excerpt)}, true
}

// checkFrontHeadingUnnumbered flags the first top-level front matter heading
// that lacks the unnumbered class, so it would pick up a chapter number.
func checkFrontHeadingUnnumbered(doc gmast.Node, source []byte) (Finding, bool) {
	for child := doc.FirstChild(); child != nil; child = child.NextSibling() {
		heading, ok := child.(*gmast.Heading)
		if !ok || heading.Level != 1 {
			continue
		}
		if headingHasClass(heading, "unnumbered") {
			continue
		}
		return Finding{nodeLine(heading, source), SeverityWarning,
			"Front matter heading missing {.unnumbered .unlisted}"}, true
	}
	return Finding{}, false
}

func headingHasClass(heading *gmast.Heading, class string) bool {
	value, ok := heading.Attribute([]byte("class"))
	if !ok {
		return false
	}
	classes, ok := value.([]byte)
	if !ok {
		return false
	}
	for _, c := range strings.Fields(string(classes)) {
		if c == class {
			return true
		}
	}
	return false
}

// nodeLine derives the 1-based source line a block node starts on.
func nodeLine(n gmast.Node, source []byte) int {
	lines := n.Lines()
	if lines == nil || lines.Len() == 0 {
		return 1
	}
	start := lines.At(0).Start
	if start > len(source) {
		return 1
	}
	count := 1
	for _, b := range source[:start] {
		if b == '\n' {
			count++
		}
	}
	return count
}

// blockText flattens a block node's first-line source text for an excerpt.
func blockText(n gmast.Node, source []byte) string {
	lines := n.Lines()
	if lines == nil || lines.Len() == 0 {
		return ""
	}
	segment := lines.At(0)
	return strings.TrimSpace(string(segment.Value(source)))
}
