package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// odtContentPath is the path to the main content inside an OpenDocument zip.
const odtContentPath = "content.xml"

// odtBlock matches a paragraph or heading, including nested spans and links.
// Paragraphs do not nest in OpenDocument text, so a lazy match per element is enough.
var odtBlock = regexp.MustCompile(`(?s)<text:(p|h)(?:\s[^>]*)?>(.*?)</text:(?:p|h)>`)

// odtLineBreak matches explicit breaks and tabs inside a paragraph.
var odtLineBreak = regexp.MustCompile(`<text:(?:line-break|tab|s)\b[^>]*/>`)

// extractODT extracts text from .odt bytes. ODT is a ZIP containing content.xml; every
// text:p and text:h element becomes one line, in document order.
func extractODT(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract ODT: not a zip: %w", err)
	}
	contentXML, err := readZipEntry(zr, odtContentPath)
	if err != nil {
		return "", fmt.Errorf("extract ODT: %w", err)
	}
	if contentXML == nil {
		return "", fmt.Errorf("extract ODT: %s not found", odtContentPath)
	}

	var lines []string
	for _, m := range odtBlock.FindAllStringSubmatch(string(contentXML), -1) {
		if line := innerText(odtLineBreak.ReplaceAllString(m[2], " ")); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}
