package lint

import "regexp"

// Severity grades a finding. Errors fail the lint run; warnings and info
// entries are reported only.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Rule is one lintable pattern. A nil Replacement means the finding needs
// manual review; otherwise it can be rewritten in place with fix mode.
type Rule struct {
	Description string
	Pattern     *regexp.Regexp
	Replacement *string
	Severity    Severity
}

func fix(s string) *string { return &s }

var encodingRules = []Rule{
	{"Single-character ellipsis (use '...' instead)",
		regexp.MustCompile(`\x{2026}`), fix("..."), SeverityWarning},
	{"Unicode en-dash (use '--' instead)",
		regexp.MustCompile(`\x{2013}`), fix("--"), SeverityWarning},
	{"Unicode em-dash (use '---' instead)",
		regexp.MustCompile(`\x{2014}`), fix("---"), SeverityWarning},
	{"Curly double quote (use straight quotes)",
		regexp.MustCompile(`[\x{201C}\x{201D}]`), fix(`"`), SeverityWarning},
	{"Curly single quote/apostrophe (use straight quotes)",
		regexp.MustCompile(`[\x{2018}\x{2019}]`), fix("'"), SeverityWarning},
	{"Non-breaking space",
		regexp.MustCompile(`\x{00A0}`), fix(" "), SeverityError},
	{"Zero-width space/joiner",
		regexp.MustCompile(`[\x{200B}-\x{200D}\x{FEFF}]`), fix(""), SeverityError},
	{"Soft hyphen",
		regexp.MustCompile(`\x{00AD}`), fix(""), SeverityError},
	{"Directional mark (LTR/RTL)",
		regexp.MustCompile(`[\x{200E}\x{200F}]`), fix(""), SeverityError},
}

var whitespaceRules = []Rule{
	{"Tab character (use spaces)",
		regexp.MustCompile(`\t`), fix("    "), SeverityWarning},
	// The capture keeps indentation untouched while collapsing interior runs.
	{"Multiple spaces (not in indent)",
		regexp.MustCompile(`(\S)  +`), fix("$1 "), SeverityWarning},
	{"Trailing whitespace",
		regexp.MustCompile(`(?m) +$`), fix(""), SeverityWarning},
	{"Carriage return (Windows line ending)",
		regexp.MustCompile(`\r`), fix(""), SeverityError},
	{"Three or more consecutive blank lines",
		regexp.MustCompile(`\n{4,}`), fix("\n\n\n"), SeverityWarning},
}

var punctuationRules = []Rule{
	{"Multiple exclamation marks",
		regexp.MustCompile(`!!+`), nil, SeverityInfo},
	{"Multiple question marks",
		regexp.MustCompile(`\?\?+`), nil, SeverityInfo},
	{"Repeated comma",
		regexp.MustCompile(`,,+`), nil, SeverityWarning},
	{"Four+ dots (check if intentional)",
		regexp.MustCompile(`\.{4,}`), nil, SeverityInfo},
	{"Space before punctuation",
		regexp.MustCompile(`(?m)\w +[,;:!?](\s|$)`), nil, SeverityInfo},
}

var structureRules = []Rule{
	{"Scene break using --- (use *** instead)",
		regexp.MustCompile(`(?m)^\n---\n`), fix("\n***\n"), SeverityWarning},
	{"Scene break missing blank line before",
		regexp.MustCompile(`[^\n]\n\*\*\*\n`), nil, SeverityError},
	{"Scene break missing blank line after",
		regexp.MustCompile(`\n\*\*\*\n[^\n]`), nil, SeverityError},
	{"Missing space after heading hash",
		regexp.MustCompile(`(?m)^#{1,6}[^ #\n{]`), nil, SeverityError},
	{"Trailing hash on heading",
		regexp.MustCompile(`(?m)^#{1,6}[ \t]+.+[ \t]+#+[ \t]*$`), nil, SeverityWarning},
	{"Fenced div missing space after :::",
		regexp.MustCompile(`(?m)^:::\{`), fix("::: {"), SeverityError},
	{"Raw LaTeX block (won't render in epub/docx)",
		regexp.MustCompile("```\\{=latex\\}"), nil, SeverityError},
}

func allRules() []Rule {
	rules := make([]Rule, 0,
		len(encodingRules)+len(whitespaceRules)+len(punctuationRules)+len(structureRules))
	rules = append(rules, encodingRules...)
	rules = append(rules, whitespaceRules...)
	rules = append(rules, punctuationRules...)
	rules = append(rules, structureRules...)
	return rules
}
