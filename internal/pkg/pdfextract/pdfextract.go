package pdfextract

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

var ErrNoPages = errors.New("pdf has no pages")

// IsPDF reports whether b starts with a PDF header.
func IsPDF(b []byte) bool {
	return bytes.HasPrefix(b, []byte("%PDF-"))
}

// ExtractPages returns the plain text of every page in page order. A page
// without extractable text yields an empty string at its position.
func ExtractPages(b []byte) (pages []string, err error) {
	if len(b) == 0 {
		return nil, ErrNoPages
	}
	// the parser panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("parse pdf failed: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open pdf failed: %w", err)
	}
	total := reader.NumPage()
	if total == 0 {
		return nil, ErrNoPages
	}

	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract text of page %d failed: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
