package epubcheck

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/bookbuilder/internal/logfields"
)

// Outcome classifies a validation run.
type Outcome string

const (
	// OutcomeValid means zero fatals, errors, and warnings.
	OutcomeValid Outcome = "valid"
	// OutcomeValidWithWarnings means no fatals or errors, some warnings.
	OutcomeValidWithWarnings Outcome = "valid-with-warnings"
	// OutcomeInvalid means the package failed compliance checking.
	OutcomeInvalid Outcome = "invalid"
	// OutcomeUnavailable means no checker could be located or run.
	OutcomeUnavailable Outcome = "unavailable"
)

// Options controls a validation run.
type Options struct {
	Verbose    bool
	ReportPath string // write the checker's JSON report here
	ReportAuto bool   // derive the report path from the package name
}

// Result is the interpreted outcome of one validation run.
type Result struct {
	Outcome    Outcome
	Fatals     int
	Errors     int
	Warnings   int
	ReportPath string
}

// Passed reports whether the package is distributable (warnings allowed).
func (r Result) Passed() bool {
	return r.Outcome == OutcomeValid || r.Outcome == OutcomeValidWithWarnings
}

// summaryRe extracts the checker's message-count summary line, e.g.
// "Messages: 0 fatals / 2 errors / 1 warning / 0 infos".
var summaryRe = regexp.MustCompile(`(?s)Messages:\s*(\d+)\s*fatal.*?(\d+)\s*error.*?(\d+)\s*warn`)

// Validate runs the compliance checker against a package and interprets its
// output. A missing checker yields OutcomeUnavailable, never an error.
func Validate(ctx context.Context, packagePath string, opts Options) Result {
	mode, checkerPath, ok := Locate()
	if !ok {
		slog.Debug("Compliance checker not found",
			"hint", "install epubcheck or set "+EnvJarPath)
		return Result{Outcome: OutcomeUnavailable}
	}

	var name string
	var args []string
	switch mode {
	case ModeJar:
		name = "java"
		args = []string{"-jar", checkerPath, packagePath}
	default:
		name = checkerPath
		args = []string{packagePath}
	}

	reportPath := opts.ReportPath
	if opts.ReportAuto && reportPath == "" {
		reportPath = strings.TrimSuffix(packagePath, ".epub") + "_epubcheck.json"
	}
	if reportPath != "" {
		args = append(args, "--json", reportPath)
	}

	slog.Debug("Validating package", logfields.Path(packagePath), logfields.Tool(name))

	cmd := exec.CommandContext(ctx, name, args...)
	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined
	runErr := cmd.Run()

	if _, ok := runErr.(*exec.ExitError); runErr != nil && !ok {
		// The checker itself could not be started (e.g. no JVM).
		slog.Warn("Could not run compliance checker", logfields.Error(runErr))
		return Result{Outcome: OutcomeUnavailable}
	}

	result := interpret(combined.String(), runErr == nil)
	result.ReportPath = reportPath

	logOutcome(result)
	surfaceDiagnostics(combined.String(), opts.Verbose, result.Outcome)

	if reportPath != "" {
		if _, err := os.Stat(reportPath); err == nil {
			slog.Info("Validation report written", logfields.Path(reportPath))
		}
	}

	return result
}

// interpret classifies checker output, falling back to the process exit code
// when the summary pattern is absent.
func interpret(output string, exitZero bool) Result {
	m := summaryRe.FindStringSubmatch(output)
	if m == nil {
		if exitZero {
			return Result{Outcome: OutcomeValid}
		}
		return Result{Outcome: OutcomeInvalid}
	}

	fatals, _ := strconv.Atoi(m[1])
	errs, _ := strconv.Atoi(m[2])
	warnings, _ := strconv.Atoi(m[3])

	result := Result{Fatals: fatals, Errors: errs, Warnings: warnings}
	switch {
	case fatals == 0 && errs == 0 && warnings == 0:
		result.Outcome = OutcomeValid
	case fatals == 0 && errs == 0:
		result.Outcome = OutcomeValidWithWarnings
	default:
		result.Outcome = OutcomeInvalid
	}
	return result
}

func logOutcome(result Result) {
	switch result.Outcome {
	case OutcomeValid:
		slog.Info("Package is valid (no errors, no warnings)")
	case OutcomeValidWithWarnings:
		slog.Info("Package is valid with warnings", "warnings", result.Warnings)
	case OutcomeInvalid:
		slog.Warn("Package failed compliance checking",
			"fatals", result.Fatals, "errors", result.Errors, "warnings", result.Warnings)
	}
}

// surfaceDiagnostics prints the checker's individual diagnostic lines when
// verbose or when the run was not a clean pass.
func surfaceDiagnostics(output string, verbose bool, outcome Outcome) {
	if !verbose && outcome == OutcomeValid {
		return
	}
	for _, line := range strings.Split(output, "\n") {
		for _, prefix := range []string{"ERROR", "WARNING", "FATAL"} {
			if strings.HasPrefix(line, prefix) {
				os.Stderr.WriteString("    " + line + "\n")
				break
			}
		}
	}
}
