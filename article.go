package paperview

import (
	"context"
	"fmt"
	"os"

	"github.com/paperview/paperview/extract"
	"github.com/paperview/paperview/pdfdoc"
)

// Figure is a manuscript figure resolved to its hosted image.
type Figure struct {
	FigureCaption
	Image []byte
}

// Article bundles a manuscript's metadata with its extracted content.
// When the JATS document carries the full text, figures come from the
// hosting server; otherwise the PDF is downloaded and mined.
type Article struct {
	Manuscript *Manuscript
	JATS       *JATS

	// FullText reports which path produced the content below.
	FullText bool

	// Figures is populated on the JATS path.
	Figures []Figure

	// Extraction is populated on the PDF path.
	Extraction *extract.Result
}

// BuildArticle runs the full content pipeline for a DOI: metadata,
// JATS, and either hosted figures or PDF extraction. Failures are
// recorded so repeat requests for a broken DOI fail fast.
func (c *Cache) BuildArticle(ctx context.Context, doi string, opts extract.Options) (*Article, error) {
	a, err := c.buildArticle(ctx, doi, opts)
	if err != nil {
		c.recordNegative(ctx, doi, failureStage(err), err)
		return nil, err
	}
	return a, nil
}

func (c *Cache) buildArticle(ctx context.Context, doi string, opts extract.Options) (*Article, error) {
	m, err := c.FetchDetail(ctx, doi)
	if err != nil {
		return nil, err
	}

	j, err := FetchJATS(ctx, m.JATSURL)
	if err != nil {
		return nil, err
	}

	a := &Article{Manuscript: m, JATS: j, FullText: j.FullText()}
	if a.FullText {
		a.Figures, err = c.fetchFigures(ctx, m, j)
		if err != nil {
			return nil, err
		}
		return a, nil
	}

	a.Extraction, err = c.extractFromPDF(ctx, m, opts)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// fetchFigures downloads the hosted image for each figure caption,
// trying the parsed slug first and falling back to the positional
// F{n} slug the server uses when the XML carries none.
func (c *Cache) fetchFigures(ctx context.Context, m *Manuscript, j *JATS) ([]Figure, error) {
	captions := j.FigureCaptions()
	figures := make([]Figure, 0, len(captions))
	for i, cap := range captions {
		backup := fmt.Sprintf("F%d", i+1)
		slug := cap.Slug
		if slug == "" {
			slug = backup
		}

		img, err := c.FetchImage(ctx, m, slug)
		if err != nil && slug != backup {
			slug = backup
			img, err = c.FetchImage(ctx, m, slug)
		}
		if err != nil {
			return nil, fmt.Errorf("figure %q: %w", cap.Label, err)
		}

		cap.Slug = slug
		figures = append(figures, Figure{FigureCaption: cap, Image: img})
	}
	return figures, nil
}

// extractFromPDF downloads the PDF to a temp file and runs content
// extraction over it.
func (c *Cache) extractFromPDF(ctx context.Context, m *Manuscript, opts extract.Options) (*extract.Result, error) {
	path, err := c.TempPDF(ctx, m)
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	doc, err := pdfdoc.Open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	return extract.ExtractAll(ctx, doc, opts)
}
