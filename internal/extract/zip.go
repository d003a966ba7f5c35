package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"
)

// readZipEntry returns the bytes of the named entry, or nil if the archive has no such entry.
func readZipEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		defer rc.Close()
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		return buf.Bytes(), nil
	}
	return nil, nil
}

var xmlTag = regexp.MustCompile(`<[^>]*>`)

// innerText drops markup from an XML fragment and decodes entities.
func innerText(fragment string) string {
	return strings.TrimSpace(html.UnescapeString(xmlTag.ReplaceAllString(fragment, "")))
}
