package content

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// ParseMarkdown walks the markdown AST. Headings, paragraphs, list items and
// quoted paragraphs become paragraphs; a level one heading starts a new
// chapter. Code blocks are kept verbatim as one paragraph each.
func ParseMarkdown(source []byte) [][]string {
	doc := goldmark.New().Parser().Parse(gmtext.NewReader(source))

	var chapters [][]string
	var current []string
	add := func(p string) {
		if p != "" {
			current = append(current, p)
		}
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			if node.Level == 1 && len(current) > 0 {
				chapters = append(chapters, current)
				current = nil
			}
			add(cleanParagraph(inlineText(node, source)))
			return ast.WalkSkipChildren, nil

		case *ast.Paragraph, *ast.TextBlock:
			add(cleanParagraph(inlineText(node, source)))
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			add(codeText(node, source))
			return ast.WalkSkipChildren, nil

		case *ast.CodeBlock:
			add(codeText(node, source))
			return ast.WalkSkipChildren, nil

		case *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	if len(current) > 0 {
		chapters = append(chapters, current)
	}
	return chapters
}

// inlineText concatenates the text of n's inline children.
func inlineText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := c.(type) {
		case *ast.Text:
			buf.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(node.Value)
		case *ast.AutoLink:
			buf.Write(node.Label(source))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}

// codeText returns the lines of a code block without trailing blank lines.
func codeText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return strings.TrimRight(buf.String(), "\n ")
}
