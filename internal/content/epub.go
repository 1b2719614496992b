package content

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
)

const containerPath = "META-INF/container.xml"

type container struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type opf struct {
	Manifest []struct {
		ID         string `xml:"id,attr"`
		Href       string `xml:"href,attr"`
		MediaType  string `xml:"media-type,attr"`
		Properties string `xml:"properties,attr"`
	} `xml:"manifest>item"`
	Spine []struct {
		IDRef string `xml:"idref,attr"`
	} `xml:"spine>itemref"`
}

// extractEPUB reads the documents listed in the package spine, one chapter
// per document.
func extractEPUB(name string) ([][]string, error) {
	zr, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("not a valid epub archive: %w", err)
	}
	defer zr.Close()

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	docs, err := spineDocuments(files)
	if err != nil {
		return nil, err
	}

	var chapters [][]string
	for _, doc := range docs {
		f, ok := files[doc]
		if !ok {
			log.Debug("spine document missing from archive", "doc", doc)
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			log.Warn("skipping unreadable chapter", "doc", doc, "err", err)
			continue
		}
		gq, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
		if err != nil {
			log.Warn("skipping malformed chapter", "doc", doc, "err", err)
			continue
		}
		if paragraphs := htmlParagraphs(gq.Selection); len(paragraphs) > 0 {
			chapters = append(chapters, paragraphs)
		}
	}
	return chapters, nil
}

// spineDocuments returns the archive paths of the spine documents in
// reading order.
func spineDocuments(files map[string]*zip.File) ([]string, error) {
	f, ok := files[containerPath]
	if !ok {
		return nil, errors.New("missing " + containerPath)
	}
	data, err := readZipFile(f)
	if err != nil {
		return nil, err
	}
	var c container
	if err := xml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("invalid container.xml: %w", err)
	}
	if len(c.Rootfiles) == 0 || c.Rootfiles[0].FullPath == "" {
		return nil, errors.New("container.xml has no rootfile")
	}

	opfPath := strings.ReplaceAll(c.Rootfiles[0].FullPath, `\`, "/")
	f, ok = files[opfPath]
	if !ok {
		return nil, fmt.Errorf("package document %s not found", opfPath)
	}
	if data, err = readZipFile(f); err != nil {
		return nil, err
	}
	var pkg opf
	if err := xml.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("invalid package document: %w", err)
	}

	dir := path.Dir(opfPath)
	manifest := make(map[string]string, len(pkg.Manifest))
	for _, item := range pkg.Manifest {
		if item.MediaType == "application/x-dtbncx+xml" || item.Properties == "nav" {
			continue
		}
		href, err := url.PathUnescape(item.Href)
		if err != nil {
			href = item.Href
		}
		manifest[item.ID] = path.Clean(path.Join(dir, href))
	}

	var docs []string
	for _, ref := range pkg.Spine {
		if doc, ok := manifest[ref.IDRef]; ok {
			docs = append(docs, doc)
		}
	}
	if len(docs) == 0 {
		return nil, errors.New("no documents in spine")
	}
	return docs, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
