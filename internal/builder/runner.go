package builder

import (
	"bytes"
	"context"
	"os"
	"os/exec"
)

// Runner executes external commands. The default implementation shells out;
// tests substitute a recording fake.
type Runner interface {
	// Run executes name with args, blocking to completion. When streaming
	// is requested the child inherits the process's stdout/stderr and the
	// returned strings are empty; otherwise both streams are captured.
	Run(ctx context.Context, streaming bool, name string, args ...string) (stdout, stderr string, err error)
}

type execRunner struct{}

// NewExecRunner returns the default os/exec-backed Runner.
func NewExecRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, streaming bool, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	if streaming {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return "", "", cmd.Run()
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// LookupTool reports whether a named external tool is reachable on PATH.
// Variable so tests can stub tool availability.
var LookupTool = func(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
