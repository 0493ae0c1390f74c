package pdfdoc

import (
	"context"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/paperview/paperview/extract"
)

// Document is an open PDF ready for page decoding. It satisfies
// extract.PageSource. Not safe for concurrent use; run one document per
// goroutine instead.
type Document struct {
	path        string
	file        *os.File
	cpuFile     *os.File
	reader      *pdf.Reader
	pctx        *model.Context
	pageHeights []float64
}

// Open reads and validates the PDF at path. A document that cannot be
// parsed yields an extract.ParseError with page 0.
func Open(path string) (*Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, &extract.ParseError{Err: fmt.Errorf("open %s: %w", path, err)}
	}

	g, err := os.Open(path)
	if err != nil {
		f.Close()
		return nil, &extract.ParseError{Err: err}
	}
	pctx, err := api.ReadValidateAndOptimize(g, model.NewDefaultConfiguration())
	if err != nil {
		f.Close()
		g.Close()
		return nil, &extract.ParseError{Err: fmt.Errorf("validate %s: %w", path, err)}
	}

	dims, err := pctx.PageDims()
	if err != nil {
		f.Close()
		g.Close()
		return nil, &extract.ParseError{Err: fmt.Errorf("page dimensions: %w", err)}
	}
	heights := make([]float64, len(dims))
	for i, d := range dims {
		heights[i] = d.Height
	}

	return &Document{
		path:        path,
		file:        f,
		cpuFile:     g,
		reader:      r,
		pctx:        pctx,
		pageHeights: heights,
	}, nil
}

// Close releases the underlying file handles.
func (d *Document) Close() error {
	err := d.file.Close()
	if cerr := d.cpuFile.Close(); err == nil {
		err = cerr
	}
	return err
}

// NumPages returns the physical page count.
func (d *Document) NumPages() int { return d.reader.NumPage() }

func (d *Document) pageHeight(number int) float64 {
	if number >= 1 && number <= len(d.pageHeights) {
		return d.pageHeights[number-1]
	}
	return 0
}

// Page decodes one 1-based page into words, raster tiles, and tables, all
// in the top-left-origin frame. A page with no content returns empty
// collections.
func (d *Document) Page(ctx context.Context, number int) (extract.PageObjects, error) {
	if err := ctx.Err(); err != nil {
		return extract.PageObjects{}, err
	}
	if number < 1 || number > d.reader.NumPage() {
		return extract.PageObjects{}, &extract.ParseError{
			Page: number,
			Err:  fmt.Errorf("page %d out of range 1..%d", number, d.reader.NumPage()),
		}
	}

	p := d.reader.Page(number)
	if p.V.IsNull() {
		return extract.PageObjects{}, nil
	}
	content := p.Content()
	height := d.pageHeight(number)

	words := wordsFromTexts(content.Text, number, height)

	tiles, err := d.extractTiles(number, height)
	if err != nil {
		return extract.PageObjects{}, err
	}

	return extract.PageObjects{
		Tiles:  tiles,
		Words:  words,
		Tables: tablesFromRects(content.Rect, words, number, height),
	}, nil
}
