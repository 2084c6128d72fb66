// Package document inspects uploaded PDF documents.
package document

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

var (
	ErrInvalidPDF   = errors.New("document: not a readable pdf")
	ErrNoPages      = errors.New("document: pdf has no pages")
	ErrTooManyPages = errors.New("document: pdf has too many pages")
)

// Info describes a parsed PDF.
type Info struct {
	Pages int
}

// InspectPDF parses the PDF structure (header, cross-reference table, page
// tree) and returns its page count. Page content is not rendered.
func InspectPDF(data []byte) (info Info, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			info, err = Info{}, fmt.Errorf("%w: %v", ErrInvalidPDF, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	n := r.NumPage()
	if n == 0 {
		return Info{}, ErrNoPages
	}
	return Info{Pages: n}, nil
}

// ValidatePDF checks that data is a PDF with between 1 and maxPages pages.
// maxPages <= 0 disables the upper bound.
func ValidatePDF(data []byte, maxPages int) (Info, error) {
	info, err := InspectPDF(data)
	if err != nil {
		return Info{}, err
	}
	if maxPages > 0 && info.Pages > maxPages {
		return info, fmt.Errorf("%w: %d > %d", ErrTooManyPages, info.Pages, maxPages)
	}
	return info, nil
}
