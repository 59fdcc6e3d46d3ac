package manuscript

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManuscriptRootName is the directory under the project root that holds one
// subdirectory per book.
const ManuscriptRootName = "manuscript"

const configFileName = "book.yaml"

var numberPrefixRe = regexp.MustCompile(`^(\d+)_`)

// FindBookDir resolves a book identifier to its manuscript directory.
//
// Accepted identifiers, in precedence order:
//   - a direct filesystem path (absolute, or relative to the project root)
//     containing a book.yaml
//   - a number matched against "<number>_<slug>" directory names
//   - a case-insensitive keyword matched against directory names, then
//     against each candidate's configured title
//
// Scanned candidates are visited in sorted directory-name order and the first
// match wins. The second return value is false when nothing matched.
func FindBookDir(identifier, projectRoot string) (string, bool) {
	for _, candidate := range []string{identifier, filepath.Join(projectRoot, identifier)} {
		if isBookDir(candidate) {
			if abs, err := filepath.Abs(candidate); err == nil {
				return abs, true
			}
			return candidate, true
		}
	}

	manuscriptRoot := filepath.Join(projectRoot, ManuscriptRootName)
	entries, err := os.ReadDir(manuscriptRoot)
	if err != nil {
		return "", false
	}

	keyword := strings.ToLower(identifier)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		bookPath := filepath.Join(manuscriptRoot, entry.Name())

		if m := numberPrefixRe.FindStringSubmatch(entry.Name()); m != nil && m[1] == identifier {
			return bookPath, true
		}

		if strings.Contains(strings.ToLower(entry.Name()), keyword) {
			return bookPath, true
		}

		if title, ok := peekTitle(bookPath); ok && strings.Contains(strings.ToLower(title), keyword) {
			return bookPath, true
		}
	}

	return "", false
}

func isBookDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	_, err = os.Stat(filepath.Join(path, configFileName))
	return err == nil
}

// peekTitle reads just the title from a candidate's book.yaml without running
// full validation; a broken file simply does not match.
func peekTitle(bookPath string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(bookPath, configFileName))
	if err != nil {
		return "", false
	}
	var head struct {
		Title string `yaml:"title"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil || head.Title == "" {
		return "", false
	}
	return head.Title, true
}
