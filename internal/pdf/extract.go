package pdf

import (
	"fmt"
	"strings"

	ledong "github.com/ledongthuc/pdf"
)

// ExtractText pulls the plain text of every page, joined by page-break
// markers. Pages without extractable text are skipped; wholly image-based
// documents yield an empty string, not an error.
func ExtractText(path string) (string, int, error) {
	f, r, err := ledong.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("opening document: %w", err)
	}
	defer f.Close()

	total := r.NumPage()
	var b strings.Builder

	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages rather than failing the whole document.
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n--- Page Break ---\n\n")
		}
		b.WriteString(text)
	}

	return b.String(), total, nil
}
