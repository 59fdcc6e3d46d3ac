package epub

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/bookbuilder/internal/logfields"
)

var (
	svgOpenTagRe = regexp.MustCompile(`<svg[^>]*>`)
	imgTagRe     = regexp.MustCompile(`<img[^>]*?/?>`)
)

// patchCoverMarkup locates the markup files that represent the cover and
// ensures their images carry accessible alternative text. Both the legacy
// raster pattern (<img>) and the vector pattern (<svg><image>) are handled.
func patchCoverMarkup(root, coverAlt string) error {
	for _, path := range markupFiles(root) {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		content := string(data)

		if !isCoverDocument(filepath.Base(path), content) {
			continue
		}

		patched := patchSVGCover(content, coverAlt)
		patched = patchRasterCover(patched, coverAlt)

		if patched == content {
			continue
		}
		if err := os.WriteFile(path, []byte(patched), 0o640); err != nil {
			return err
		}
		slog.Debug("Patched cover alt text", logfields.Path(filepath.Base(path)))
	}
	return nil
}

// isCoverDocument applies the cover heuristic: the filename names the cover,
// or the content mentions the cover and contains an image-like element.
func isCoverDocument(filename, content string) bool {
	if strings.Contains(strings.ToLower(filename), "cover") {
		return true
	}
	return strings.Contains(strings.ToLower(content), "cover") && hasImageElement(content)
}

// hasImageElement parses the markup and reports whether it contains an
// image-bearing element (img, svg, or an svg image reference).
func hasImageElement(content string) bool {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return false
	}

	var found bool
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "img", "svg", "image":
				found = true
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found
}

// patchSVGCover titles a vector cover for accessibility: a <title> child and
// a role attribute on the svg element, each added only when missing.
func patchSVGCover(content, coverAlt string) string {
	if !strings.Contains(content, "<svg") || !strings.Contains(content, "<image") {
		return content
	}

	if !strings.Contains(content, "<title>") {
		if loc := svgOpenTagRe.FindStringIndex(content); loc != nil {
			content = content[:loc[1]] + "\n<title>" + coverAlt + "</title>" + content[loc[1]:]
		}
	}

	if !strings.Contains(content, `role="img"`) {
		content = strings.Replace(content, "<svg", `<svg role="img"`, 1)
	}

	return content
}

// patchRasterCover fills empty or missing alt attributes on img elements.
func patchRasterCover(content, coverAlt string) string {
	if !strings.Contains(content, "<img") {
		return content
	}

	return imgTagRe.ReplaceAllStringFunc(content, func(tag string) string {
		if strings.Contains(tag, "alt=") {
			return strings.Replace(tag, `alt=""`, `alt="`+coverAlt+`"`, 1)
		}
		end := strings.LastIndex(tag, "/>")
		if end < 0 {
			end = strings.LastIndex(tag, ">")
		}
		return tag[:end] + ` alt="` + coverAlt + `" ` + tag[end:]
	})
}
