// Package content extracts the text of a book as chapters of paragraphs.
package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"golang.org/x/text/encoding/charmap"

	"github.com/lue-reader/lue/internal/text"
)

var (
	// ErrNoContent is returned when a file yields no readable paragraphs.
	ErrNoContent = errors.New("no text content found")
	// ErrUnsupportedFormat is returned for unknown file extensions.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// minParagraphLen drops page numbers, separators and similar scraps.
const minParagraphLen = 4

// Extensions lists the file extensions Extract understands.
var Extensions = []string{".txt", ".md", ".markdown", ".html", ".htm", ".xhtml", ".epub"}

// Supported reports whether Extract can read path.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Extract reads the book at path and returns its chapters, each an ordered
// list of paragraphs.
func Extract(path string) ([][]string, error) {
	var (
		chapters [][]string
		err      error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".epub":
		chapters, err = extractEPUB(path)
	case ".txt", ".md", ".markdown", ".html", ".htm", ".xhtml":
		var data []byte
		data, err = readText(path)
		if err != nil {
			return nil, err
		}
		switch ext {
		case ".txt":
			chapters = ParseText(string(data))
		case ".md", ".markdown":
			chapters = ParseMarkdown(data)
		default:
			chapters, err = ParseHTML(strings.NewReader(string(data)))
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", filepath.Base(path), err)
	}

	chapters = compact(chapters)
	if len(chapters) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoContent, filepath.Base(path))
	}
	log.Debug("extracted book", "file", filepath.Base(path), "chapters", len(chapters))
	return chapters, nil
}

// readText reads path as UTF-8, falling back to Latin-1 for files that are
// not valid UTF-8.
func readText(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if utf8.Valid(data) {
		return data, nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("unable to decode %s: %w", filepath.Base(path), err)
	}
	return decoded, nil
}

// ParseText splits plain text into paragraphs on blank lines. A text without
// blank lines is split on single newlines instead.
func ParseText(s string) [][]string {
	s = strings.ReplaceAll(s, "\r\n", "\n")

	paragraphs := cleanAll(strings.Split(s, "\n\n"))
	if len(paragraphs) <= 1 && strings.Contains(s, "\n") {
		paragraphs = cleanAll(strings.Split(s, "\n"))
	}
	if len(paragraphs) == 0 {
		return nil
	}
	return [][]string{paragraphs}
}

func cleanAll(parts []string) []string {
	var out []string
	for _, p := range parts {
		if p = cleanParagraph(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// cleanParagraph returns the speakable form of p, or "" when it is too
// short to keep.
func cleanParagraph(p string) string {
	p = text.Clean(p)
	if len(p) < minParagraphLen {
		return ""
	}
	return p
}

// compact drops empty chapters.
func compact(chapters [][]string) [][]string {
	out := chapters[:0]
	for _, c := range chapters {
		if len(c) > 0 {
			out = append(out, c)
		}
	}
	return out
}
