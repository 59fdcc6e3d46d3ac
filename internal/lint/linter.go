// Package lint scans manuscript markdown for encoding artifacts, typography
// problems, and structural mistakes that would degrade the rendered output.
// Pattern findings carry an optional in-place fix; structural findings always
// need manual review.
package lint

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"git.home.luguber.info/inful/bookbuilder/internal/manuscript"
)

var severityLabels = map[Severity]string{
	SeverityError:   "[ERROR]",
	SeverityWarning: "[WARN]",
	SeverityInfo:    "[INFO]",
}

// Finding is one reported issue in one file.
type Finding struct {
	Line     int // 0 means whole-file
	Severity Severity
	Message  string
}

// Summary aggregates a lint run across all files.
type Summary struct {
	Files           int
	FilesWithIssues int
	Errors          int
	Warnings        int
	Infos           int
	Fixes           int
}

// Total returns the number of findings of every severity.
func (s Summary) Total() int { return s.Errors + s.Warnings + s.Infos }

// Clean reports whether no errors were found. Warnings and info findings do
// not fail a run.
func (s Summary) Clean() bool { return s.Errors == 0 }

// Linter scans a set of manuscript files under one book directory.
type Linter struct {
	BookDir string
	Files   []string
	Fix     bool
	Verbose bool

	out io.Writer
}

// New builds a linter for the given files. Output goes to stdout.
func New(bookDir string, files []string, applyFixes, verbose bool) *Linter {
	return &Linter{
		BookDir: bookDir,
		Files:   files,
		Fix:     applyFixes,
		Verbose: verbose,
		out:     os.Stdout,
	}
}

// Run lints every file and prints findings and a summary.
func (l *Linter) Run() Summary {
	summary := Summary{Files: len(l.Files)}

	for _, path := range l.Files {
		section := manuscript.SectionForPath(path, l.BookDir)
		rel, err := filepath.Rel(l.BookDir, path)
		if err != nil {
			rel = path
		}

		findings, fixes := l.lintFile(path, section)
		summary.Fixes += fixes
		for _, f := range findings {
			switch f.Severity {
			case SeverityError:
				summary.Errors++
			case SeverityWarning:
				summary.Warnings++
			default:
				summary.Infos++
			}
		}

		if len(findings) > 0 {
			summary.FilesWithIssues++
			fmt.Fprintf(l.out, "  %s\n", rel)
			for _, f := range findings {
				ref := ""
				if f.Line > 0 {
					ref = fmt.Sprintf(":%d", f.Line)
				}
				fmt.Fprintf(l.out, "  %s %s %s\n", severityLabels[f.Severity], ref, f.Message)
			}
			fmt.Fprintln(l.out)
		} else if l.Verbose {
			fmt.Fprintf(l.out, "  %s - clean\n", rel)
		}
	}

	l.printSummary(summary)
	return summary
}

// lintFile scans one file against the pattern rules and structural checks,
// applying fixes when enabled. Returns the findings and how many fixes were
// written.
func (l *Linter) lintFile(path, section string) ([]Finding, int) {
	data, err := os.ReadFile(path)
	if err != nil {
		return []Finding{{Line: 0, Severity: SeverityError,
			Message: "Cannot read: " + err.Error()}}, 0
	}
	if !utf8.Valid(data) {
		return []Finding{{Line: 0, Severity: SeverityError,
			Message: "Cannot read (not valid UTF-8)"}}, 0
	}

	content := string(data)
	original := content
	var findings []Finding
	fixesApplied := 0

	for _, rule := range allRules() {
		matches := rule.Pattern.FindAllStringIndex(content, -1)
		if matches == nil {
			continue
		}

		for _, loc := range matches {
			line := strings.Count(content[:loc[0]], "\n") + 1
			matched := content[loc[0]:loc[1]]

			if rule.Replacement != nil && l.Fix {
				findings = append(findings, Finding{line, rule.Severity,
					"Fixed: " + rule.Description})
				continue
			}
			label := "Found"
			if rule.Replacement != nil {
				label = "Fixable"
			}
			findings = append(findings, Finding{line, rule.Severity,
				fmt.Sprintf("%s: %s (%s)", label, rule.Description, displayMatch(matched))})
		}

		if l.Fix && rule.Replacement != nil {
			updated := rule.Pattern.ReplaceAllString(content, *rule.Replacement)
			if updated != content {
				fixesApplied += len(matches)
				content = updated
			}
		}
	}

	findings = append(findings, checkStructure(content, section)...)
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Line < findings[j].Line
	})

	if l.Fix && content != original {
		if err := os.WriteFile(path, []byte(content), 0o640); err != nil {
			findings = append(findings, Finding{0, SeverityError,
				"Cannot write fixes: " + err.Error()})
		}
	}

	return findings, fixesApplied
}

// displayMatch renders a matched fragment for the report. Single non-ASCII
// runes are shown as their code point, everything else is quoted and clipped.
func displayMatch(matched string) string {
	if r, size := utf8.DecodeRuneInString(matched); size == len(matched) && r > 127 {
		return fmt.Sprintf("U+%04X", r)
	}
	if len(matched) > 30 {
		matched = matched[:30]
	}
	return "'" + matched + "'"
}

func (l *Linter) printSummary(s Summary) {
	fmt.Fprintln(l.out, strings.Repeat("-", 50))

	if s.Total() == 0 {
		fmt.Fprintf(l.out, "  No issues found across %d files.\n", s.Files)
		return
	}

	var parts []string
	if s.Errors > 0 {
		parts = append(parts, fmt.Sprintf("%d errors", s.Errors))
	}
	if s.Warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d warnings", s.Warnings))
	}
	if s.Infos > 0 {
		parts = append(parts, fmt.Sprintf("%d info", s.Infos))
	}
	fmt.Fprintf(l.out, "  %s across %d/%d files\n",
		strings.Join(parts, ", "), s.FilesWithIssues, s.Files)

	if l.Fix {
		fmt.Fprintf(l.out, "  Applied %d fixes\n", s.Fixes)
		if remaining := s.Total() - s.Fixes; remaining > 0 {
			fmt.Fprintf(l.out, "  %d issues require manual review\n", remaining)
		}
	} else if s.Errors > 0 || s.Warnings > 0 {
		fmt.Fprintln(l.out, "  Run with --fix to auto-correct fixable issues")
	}
}
