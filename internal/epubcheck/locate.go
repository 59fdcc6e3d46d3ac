// Package epubcheck locates and invokes the external e-book compliance
// checker and interprets its summary output. The checker is an optional
// collaborator: when it cannot be found, validation reports unavailable
// rather than failing the pipeline.
package epubcheck

import (
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// EnvJarPath names the environment variable that can point directly at the
// checker's jar bundle.
const EnvJarPath = "EPUBCHECK_JAR"

// Mode describes how the located checker is invoked.
type Mode string

const (
	// ModeJar runs the checker through the JVM (java -jar ...).
	ModeJar Mode = "jar"
	// ModeCommand runs an installed epubcheck command directly.
	ModeCommand Mode = "cmd"
)

// Locate finds the compliance checker. Checked in order:
//
//  1. the EPUBCHECK_JAR environment variable
//  2. an epubcheck command on PATH
//  3. tools/ and scripts/tools/ under the working directory, then the home
//     directory, each scanned for a versioned epubcheck* bundle containing
//     epubcheck.jar (newest name first)
//
// Absence is not an error; the third return value reports whether anything
// was found.
func Locate() (Mode, string, bool) {
	if jar := os.Getenv(EnvJarPath); jar != "" {
		if _, err := os.Stat(jar); err == nil {
			return ModeJar, jar, true
		}
	}

	if path, err := exec.LookPath("epubcheck"); err == nil {
		return ModeCommand, path, true
	}

	var searchRoots []string
	if cwd, err := os.Getwd(); err == nil {
		searchRoots = append(searchRoots,
			filepath.Join(cwd, "tools"),
			filepath.Join(cwd, "scripts", "tools"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		searchRoots = append(searchRoots, home)
	}

	for _, root := range searchRoots {
		if jar, ok := findBundle(root); ok {
			return ModeJar, jar, true
		}
	}

	return "", "", false
}

// findBundle scans one directory for versioned epubcheck installations,
// preferring the highest-sorting (newest) name.
func findBundle(root string) (string, bool) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", false
	}

	var names []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "epubcheck") {
			names = append(names, entry.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	for _, name := range names {
		jar := filepath.Join(root, name, "epubcheck.jar")
		if _, err := os.Stat(jar); err == nil {
			return jar, true
		}
	}
	return "", false
}
