package internal

import (
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

// PageExtractor turns a PDF file into its ordered page texts.
// The loader treats this as a black box so corrupt files surface as a
// single error per file.
type PageExtractor interface {
	ExtractPages(path string) ([]string, error)
}

// PDFExtractor reads page content streams with pdfcpu and decodes the
// text-show operators into plain text.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

func (e *PDFExtractor) ExtractPages(path string) ([]string, error) {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	pages := make([]string, 0, ctx.PageCount)
	for p := 1; p <= ctx.PageCount; p++ {
		r, err := pdfcpu.ExtractPageContent(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("extracting page %d of %s: %w", p, path, err)
		}
		if r == nil {
			// Pages without a content stream are legal.
			pages = append(pages, "")
			continue
		}
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading page %d of %s: %w", p, path, err)
		}
		pages = append(pages, contentStreamText(raw))
	}
	return pages, nil
}
