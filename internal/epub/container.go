package epub

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// mimetypeEntry is the archive entry that must come first and uncompressed
// for a package to be recognized as an e-book container.
const mimetypeEntry = "mimetype"

// Unpack extracts a package archive into destDir.
func Unpack(packagePath, destDir string) error {
	reader, err := zip.OpenReader(packagePath)
	if err != nil {
		return fmt.Errorf("open package: %w", err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if err := extractEntry(file, destDir); err != nil {
			return fmt.Errorf("extract %s: %w", file.Name, err)
		}
	}
	return nil
}

func extractEntry(file *zip.File, destDir string) error {
	// Reject entries that would escape the destination.
	target := filepath.Join(destDir, filepath.FromSlash(file.Name))
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return fmt.Errorf("entry path escapes destination: %s", file.Name)
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o750)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return err
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

// Pack rebuilds a package archive from an unpacked tree, preserving the
// container invariants: the mimetype entry is first and stored without
// compression, every other entry is deflated, and entries follow a sorted
// walk of the tree so repeated packs of the same tree are identical.
//
// The archive is assembled in a temporary file and moved into place, so a
// failed pack never leaves a truncated package behind.
func Pack(sourceDir, packagePath string) error {
	tmp, err := os.CreateTemp(filepath.Dir(packagePath), ".repack-*")
	if err != nil {
		return fmt.Errorf("create staging file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if err := writeArchive(tmp, sourceDir); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, packagePath)
}

func writeArchive(w io.Writer, sourceDir string) error {
	zw := zip.NewWriter(w)

	mimetypePath := filepath.Join(sourceDir, mimetypeEntry)
	if _, err := os.Stat(mimetypePath); err == nil {
		if err := addEntry(zw, mimetypePath, mimetypeEntry, zip.Store); err != nil {
			return fmt.Errorf("add mimetype: %w", err)
		}
	}

	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if name == mimetypeEntry {
			return nil
		}
		return addEntry(zw, path, name, zip.Deflate)
	})
	if err != nil {
		return fmt.Errorf("walk tree: %w", err)
	}

	return zw.Close()
}

func addEntry(zw *zip.Writer, path, name string, method uint16) error {
	entry, err := zw.CreateHeader(&zip.FileHeader{
		Name:   name,
		Method: method,
	})
	if err != nil {
		return err
	}

	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	_, err = io.Copy(entry, src)
	return err
}
