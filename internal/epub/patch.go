// Package epub post-processes a generated e-book container for retailer and
// accessibility compliance: it unpacks the archive into a scratch workspace,
// injects missing metadata, repairs image alternative text, and repacks while
// preserving the container's structural invariants.
package epub

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/bookbuilder/internal/config"
	"git.home.luguber.info/inful/bookbuilder/internal/logfields"
	"git.home.luguber.info/inful/bookbuilder/internal/workspace"
)

// packageDocExtension identifies the package-metadata document inside the
// container.
const packageDocExtension = ".opf"

// Patch unpacks the package, fixes metadata and markup in place, and repacks.
// The original file is rewritten only when every earlier step succeeded; the
// scratch directory is removed on every path.
func Patch(packagePath string, cfg *config.BookConfig) error {
	if _, err := os.Stat(packagePath); err != nil {
		return fmt.Errorf("package not found: %w", err)
	}

	ws := workspace.NewManager("")
	if err := ws.Create(); err != nil {
		return err
	}
	defer func() {
		if err := ws.Cleanup(); err != nil {
			slog.Warn("Failed to cleanup patch workspace", logfields.Error(err))
		}
	}()

	tree, err := ws.CreateSubdir("container")
	if err != nil {
		return err
	}

	if err := Unpack(packagePath, tree); err != nil {
		return err
	}

	opfPath, ok := findByExtension(tree, packageDocExtension)
	if !ok {
		return fmt.Errorf("no package document (%s) found in container", packageDocExtension)
	}

	if err := patchPackageDoc(opfPath, cfg); err != nil {
		return fmt.Errorf("patch package document: %w", err)
	}

	coverAlt := cfg.Epub.CoverAlt
	if coverAlt == "" {
		coverAlt = "Cover image for " + cfg.Title
	}

	if err := patchCoverMarkup(tree, coverAlt); err != nil {
		return fmt.Errorf("patch cover markup: %w", err)
	}

	if err := patchEmptyAlts(tree); err != nil {
		return fmt.Errorf("patch empty alt attributes: %w", err)
	}

	return Pack(tree, packagePath)
}

// findByExtension returns the first file under root with the given extension,
// in walk order.
func findByExtension(root, extension string) (string, bool) {
	var found string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if strings.HasSuffix(d.Name(), extension) {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	return found, found != ""
}

// markupFiles lists the container's markup documents.
func markupFiles(root string) []string {
	var files []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if strings.HasSuffix(d.Name(), ".xhtml") || strings.HasSuffix(d.Name(), ".html") {
			files = append(files, path)
		}
		return nil
	})
	return files
}

// patchEmptyAlts replaces any remaining empty alternative-text attribute with
// a neutral decorative marker, across all markup files.
func patchEmptyAlts(root string) error {
	for _, path := range markupFiles(root) {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		patched := strings.ReplaceAll(string(data), `alt=""`, `alt="decorative"`)
		if patched == string(data) {
			continue
		}
		if err := os.WriteFile(path, []byte(patched), 0o640); err != nil {
			return err
		}
		slog.Debug("Fixed empty alt text", logfields.Path(filepath.Base(path)))
	}
	return nil
}
