package pdfmeta

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	"linview/internal/util"
)

// PageCount parses a complete in-memory document and returns its page
// count.
func PageCount(data []byte) (n int, err error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return 0, util.ErrInvalidPDF
	}
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("%w: %v", util.ErrInvalidPDF, r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", util.ErrInvalidPDF, err)
	}
	n = r.NumPage()
	if n < 1 {
		return 0, fmt.Errorf("%w: no pages", util.ErrInvalidPDF)
	}
	return n, nil
}
