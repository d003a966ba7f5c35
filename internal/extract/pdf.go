package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// wordGap is the horizontal gap, as a fraction of the font size, above which two
// text runs on the same row are treated as separate words.
const wordGap = 0.2

// extractPDF returns the text layer of a PDF one visual row per line, so that
// section headings keep a line of their own. Pages whose rows cannot be read
// fall back to the library's plain-text stream.
func extractPDF(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	var lines []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			text, perr := page.GetPlainText(nil)
			if perr != nil {
				return "", fmt.Errorf("extract page %d: %w", i, perr)
			}
			lines = append(lines, text)
			continue
		}
		for _, row := range rows {
			if line := strings.TrimSpace(joinRuns(row.Content)); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}

func joinRuns(runs pdf.TextHorizontal) string {
	var b strings.Builder
	for i, t := range runs {
		if i > 0 {
			prev := runs[i-1]
			if t.X-(prev.X+prev.W) > t.FontSize*wordGap && !strings.HasSuffix(prev.S, " ") {
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.S)
	}
	return b.String()
}
