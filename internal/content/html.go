package content

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockSelector matches the elements that become paragraphs.
const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, blockquote, pre, dt, dd"

// ParseHTML returns the paragraphs of an HTML document as one chapter.
func ParseHTML(r io.Reader) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	paragraphs := htmlParagraphs(doc.Selection)
	if len(paragraphs) == 0 {
		return nil, nil
	}
	return [][]string{paragraphs}, nil
}

// htmlParagraphs collects the text of block elements in document order.
// A block that contains other blocks is left to its children so no text is
// read twice.
func htmlParagraphs(root *goquery.Selection) []string {
	root.Find("script, style, head, nav, sup.footnote, a.footnote-ref").Remove()

	var out []string
	root.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "pre" {
			if code := strings.TrimRight(s.Text(), "\n "); code != "" {
				out = append(out, code)
			}
			return
		}
		if s.ParentsFiltered("pre").Length() > 0 || s.Find(blockSelector).Length() > 0 {
			return
		}
		if p := cleanParagraph(strings.Join(strings.Fields(s.Text()), " ")); p != "" {
			out = append(out, p)
		}
	})
	return out
}
