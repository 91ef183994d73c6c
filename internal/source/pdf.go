package source

import (
	"fmt"
	"io"
	"os"

	"github.com/dgallion1/docnav/internal/navtree"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser reads a PDF's document outline (bookmarks).
type PDFParser struct{}

func (p *PDFParser) Parse(r io.Reader, filename string) (*navtree.Listing, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "docnav-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	f, reader, err := pdflib.Open(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	o := newOutline(filename)
	flattenOutline(o, reader.Outline().Child, 0)
	return o.listing(baseTitle(filename))
}

func flattenOutline(o *outline, entries []pdflib.Outline, level int) {
	for _, e := range entries {
		o.add(level, e.Title, "")
		flattenOutline(o, e.Child, level+1)
	}
}
