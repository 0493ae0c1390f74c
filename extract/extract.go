package extract

import "context"

// Options selects which object kinds an extraction run decodes. Label
// association needs both Images and Words; with only one of the two the
// images come back without candidates.
type Options struct {
	Images bool
	Words  bool
	Tables bool

	// Progress, when non-nil, is called after each page with the 1-based
	// page number and the page total.
	Progress func(page, total int)
}

// All enables every extraction kind.
var All = Options{Images: true, Words: true, Tables: true}

// ExtractAll runs the full pipeline over a document: pages are decoded in
// physical order, tiles are spliced into logical images and numbered in
// reading order, words are assembled into lines, and each image is paired
// with its caption label candidates. A page with nothing on it contributes
// empty collections, not an error.
func ExtractAll(ctx context.Context, src PageSource, opts Options) (*Result, error) {
	total := src.NumPages()
	res := &Result{}

	var tiles []ImageTile
	for n := 1; n <= total; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := src.Page(ctx, n)
		if err != nil {
			return nil, err
		}
		if opts.Images {
			tiles = append(tiles, page.Tiles...)
		}
		if opts.Words {
			res.Words = append(res.Words, page.Words...)
		}
		if opts.Tables {
			res.Tables = append(res.Tables, page.Tables...)
		}
		if opts.Progress != nil {
			opts.Progress(n, total)
		}
	}

	if opts.Images {
		images, err := Splice(tiles)
		if err != nil {
			return nil, err
		}
		res.Images = Order(images)
	}
	if opts.Words {
		res.Lines = AssembleLines(res.Words)
	}
	if opts.Images && opts.Words {
		res.Images = FindCandidateLabels(res.Images, res.Lines)
	}
	return res, nil
}
