package content

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "blank lines separate paragraphs",
			input: "First paragraph\nstill first.\n\nSecond one.\r\n\r\nAnd a third.",
			want:  []string{"First paragraph still first.", "Second one.", "And a third."},
		},
		{
			name:  "single newlines when there are no blank lines",
			input: "Line one here.\nLine two here.\nLine three here.",
			want:  []string{"Line one here.", "Line two here.", "Line three here."},
		},
		{
			name:  "short scraps are dropped",
			input: "A real paragraph.\n\n12\n\n* * *\n\nAnother one.",
			want:  []string{"A real paragraph.", "Another one."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseText(tt.input)
			if len(got) != 1 {
				t.Fatalf("Expected 1 chapter, got %d", len(got))
			}
			if !reflect.DeepEqual(got[0], tt.want) {
				t.Errorf("Expected %q, got %q", tt.want, got[0])
			}
		})
	}

	if got := ParseText("  \n\n "); got != nil {
		t.Errorf("Expected no chapters for blank text, got %q", got)
	}
}

func TestParseMarkdown(t *testing.T) {
	source := "# Chapter One\n\n" +
		"Hello *world* and [a link](http://example.com).\n\n" +
		"- first item here\n- second item here\n\n" +
		"> quoted text here\n\n" +
		"```go\nx := 1\nfmt.Println(x)\n```\n\n" +
		"# Chapter Two\n\n" +
		"Last paragraph\nof the book.\n"

	got := ParseMarkdown([]byte(source))
	want := [][]string{
		{
			"Chapter One",
			"Hello world and a link.",
			"first item here",
			"second item here",
			"quoted text here",
			"x := 1\nfmt.Println(x)",
		},
		{"Chapter Two", "Last paragraph of the book."},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestParseHTML(t *testing.T) {
	page := `<html><head><title>Ignored title</title><style>p { color: red }</style></head>
<body>
<h1>Title Here</h1>
<p>First   paragraph
text.</p>
<ul><li><p>Nested paragraph.</p></li><li>Plain item</li></ul>
<blockquote><p>Quoted paragraph.</p></blockquote>
<script>var ignored = true;</script>
<pre>code  line</pre>
</body></html>`

	got, err := ParseHTML(strings.NewReader(page))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := [][]string{{
		"Title Here",
		"First paragraph text.",
		"Nested paragraph.",
		"Plain item",
		"Quoted paragraph.",
		"code  line",
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func writeEPUB(t *testing.T, files map[string]string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "book.epub")
	f, err := os.Create(name)
	if err != nil {
		t.Fatalf("Failed to create epub: %v", err)
	}
	zw := zip.NewWriter(f)
	for path, body := range files {
		w, err := zw.Create(path)
		if err != nil {
			t.Fatalf("Failed to add %s: %v", path, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Failed to close file: %v", err)
	}
	return name
}

const containerXML = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const packageOPF = `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <manifest>
    <item id="toc" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>
    <item id="one" href="text/chapter%201.xhtml" media-type="application/xhtml+xml"/>
    <item id="two" href="text/chapter2.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine toc="toc">
    <itemref idref="two"/>
    <itemref idref="nav"/>
    <itemref idref="one"/>
  </spine>
</package>`

func TestExtractEPUB(t *testing.T) {
	name := writeEPUB(t, map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": containerXML,
		"OEBPS/content.opf":      packageOPF,
		"OEBPS/nav.xhtml":        `<html><body><nav><ol><li>Contents</li></ol></nav></body></html>`,
		"OEBPS/text/chapter 1.xhtml": `<?xml version="1.0" encoding="utf-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><body><h2>Later chapter</h2><p>It comes second in the spine.</p></body></html>`,
		"OEBPS/text/chapter2.xhtml": `<html><body><p>This chapter is read first.</p></body></html>`,
	})

	got, err := Extract(name)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := [][]string{
		{"This chapter is read first."},
		{"Later chapter", "It comes second in the spine."},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestExtractEPUBErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{"missing container", map[string]string{"mimetype": "application/epub+zip"}},
		{"missing package", map[string]string{"META-INF/container.xml": containerXML}},
		{"empty spine", map[string]string{
			"META-INF/container.xml": containerXML,
			"OEBPS/content.opf":      `<package><manifest/><spine/></package>`,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Extract(writeEPUB(t, tt.files)); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
		return path
	}

	t.Run("text", func(t *testing.T) {
		got, err := Extract(write("book.txt", []byte("One paragraph.\n\nTwo paragraphs.")))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(got) != 1 || len(got[0]) != 2 {
			t.Errorf("Expected 1 chapter with 2 paragraphs, got %q", got)
		}
	})

	t.Run("latin-1", func(t *testing.T) {
		got, err := Extract(write("latin.txt", []byte("Caf\xe9 au lait.")))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got[0][0] != "Café au lait." {
			t.Errorf("Expected decoded text, got %q", got[0][0])
		}
	})

	t.Run("markdown", func(t *testing.T) {
		got, err := Extract(write("book.md", []byte("# Title line\n\nBody text here.")))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(got) != 1 || got[0][1] != "Body text here." {
			t.Errorf("Expected markdown paragraphs, got %q", got)
		}
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Extract(write("empty.txt", []byte("\n\n")))
		if !errors.Is(err, ErrNoContent) {
			t.Errorf("Expected ErrNoContent, got %v", err)
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := Extract(write("book.pdf", []byte("%PDF")))
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := Extract(filepath.Join(dir, "missing.txt")); err == nil {
			t.Error("Expected error for missing file")
		}
	})
}

func TestSupported(t *testing.T) {
	for _, name := range []string{"a.epub", "b.TXT", "c.md", "d.xhtml"} {
		if !Supported(name) {
			t.Errorf("Expected %s to be supported", name)
		}
	}
	if Supported("e.pdf") {
		t.Error("Expected pdf to be unsupported")
	}
}
