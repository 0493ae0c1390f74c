package pdfdoc

import (
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/paperview/paperview/extract"
)

const (
	// rulingMaxThickness is the largest rect thickness still treated as a
	// drawn table ruling rather than a filled region.
	rulingMaxThickness = 2.0
	// rulingMinLength filters out tick marks and decorative stubs.
	rulingMinLength = 4.0
	// rulingCluster merges ruling positions closer than this.
	rulingCluster = 2.0
)

// tablesFromRects detects a ruled table on the page. Thin rects are read
// as ruling lines; their clustered positions define a cell grid and each
// cell's text is the x-ordered join of the words whose center falls
// inside it. Pages without at least a 1x1 ruled grid, or whose grid holds
// no text, yield no table.
func tablesFromRects(rects []pdf.Rect, words []extract.Word, pageNumber int, pageHeight float64) []extract.Table {
	var xs, ys []float64
	for _, r := range rects {
		w := r.Max.X - r.Min.X
		h := r.Max.Y - r.Min.Y
		switch {
		case h <= rulingMaxThickness && w >= rulingMinLength:
			ys = append(ys, pageHeight-(r.Min.Y+r.Max.Y)/2)
		case w <= rulingMaxThickness && h >= rulingMinLength:
			xs = append(xs, (r.Min.X+r.Max.X)/2)
		}
	}

	xs = clusterPositions(xs)
	ys = clusterPositions(ys)
	if len(xs) < 2 || len(ys) < 2 {
		return nil
	}

	rows := make([][]string, len(ys)-1)
	filled := false
	for ri := range rows {
		rows[ri] = make([]string, len(xs)-1)
		for ci := range rows[ri] {
			cell := cellText(words, pageNumber, xs[ci], xs[ci+1], ys[ri], ys[ri+1])
			rows[ri][ci] = cell
			if cell != "" {
				filled = true
			}
		}
	}
	if !filled {
		return nil
	}

	return []extract.Table{{
		Page: pageNumber,
		BBox: extract.BBox{
			X0:     xs[0],
			Top:    ys[0],
			X1:     xs[len(xs)-1],
			Bottom: ys[len(ys)-1],
		},
		Rows: rows,
	}}
}

// clusterPositions sorts positions and collapses runs closer than
// rulingCluster into their first member.
func clusterPositions(ps []float64) []float64 {
	if len(ps) == 0 {
		return nil
	}
	sort.Float64s(ps)
	out := ps[:1]
	for _, p := range ps[1:] {
		if p-out[len(out)-1] > rulingCluster {
			out = append(out, p)
		}
	}
	return out
}

func cellText(words []extract.Word, pageNumber int, x0, x1, top, bottom float64) string {
	var inside []extract.Word
	for _, w := range words {
		if w.Page != pageNumber {
			continue
		}
		cx := (w.X0 + w.X1) / 2
		cy := (w.Top + w.Bottom) / 2
		if cx >= x0 && cx < x1 && cy >= top && cy < bottom {
			inside = append(inside, w)
		}
	}
	sort.SliceStable(inside, func(i, j int) bool {
		if inside[i].Top != inside[j].Top {
			return inside[i].Top < inside[j].Top
		}
		return inside[i].X0 < inside[j].X0
	})

	texts := make([]string, len(inside))
	for i, w := range inside {
		texts[i] = w.Text
	}
	return strings.Join(texts, " ")
}
