package extract

import (
	"fmt"
	"image"
	"image/draw"
)

// spliceTolerance is the maximum page-unit gap between two tile edges (and
// the maximum size difference on the shared axis) for the tiles to count
// as fragments of one figure.
const spliceTolerance = 1.0

// Splice undoes renderer-induced fragmentation: tiles on the same page
// whose edges touch and whose shared-axis sizes match are merged into
// single logical images. Vertical pairs are reduced to a fixpoint first,
// then horizontal pairs, so N-way fragments collapse by repeated pairwise
// merging. When several pairs qualify at once the first pair in working
// list order is merged, which makes the output deterministic for a given
// input order. A tile with no partner passes through as a one-tile image.
func Splice(tiles []ImageTile) ([]LogicalImage, error) {
	work := make([]LogicalImage, 0, len(tiles))
	for _, t := range tiles {
		work = append(work, LogicalImage{Page: t.Page, BBox: t.BBox, Bitmap: t.Bitmap})
	}

	var err error
	work, err = reduce(work, findVerticalPair, mergeVertical)
	if err != nil {
		return nil, err
	}
	work, err = reduce(work, findHorizontalPair, mergeHorizontal)
	if err != nil {
		return nil, err
	}
	return work, nil
}

// reduce repeatedly merges the first qualifying pair until none remain.
// Each merge removes both constituents and appends the merged image at the
// end of the working list.
func reduce(
	work []LogicalImage,
	find func([]LogicalImage) (int, int, bool),
	merge func(a, b LogicalImage) (LogicalImage, error),
) ([]LogicalImage, error) {
	for {
		i, j, ok := find(work)
		if !ok {
			return work, nil
		}
		merged, err := merge(work[i], work[j])
		if err != nil {
			return nil, err
		}

		next := make([]LogicalImage, 0, len(work)-1)
		for k, img := range work {
			if k == i || k == j {
				continue
			}
			next = append(next, img)
		}
		work = append(next, merged)
	}
}

// findVerticalPair returns (top, bottom) indices of the first pair of
// images on the same page with matching widths where one's bottom edge
// meets the other's top edge.
func findVerticalPair(work []LogicalImage) (int, int, bool) {
	for i := range work {
		for j := range work {
			if i == j || work[i].Page != work[j].Page {
				continue
			}
			if abs(work[i].Width()-work[j].Width()) >= spliceTolerance {
				continue
			}
			// work[j] sits directly above work[i].
			if abs(work[i].Top-work[j].Bottom) < spliceTolerance {
				return j, i, true
			}
		}
	}
	return 0, 0, false
}

// findHorizontalPair returns (left, right) indices of the first pair of
// images on the same page with matching heights where one's right edge
// meets the other's left edge.
func findHorizontalPair(work []LogicalImage) (int, int, bool) {
	for i := range work {
		for j := range work {
			if i == j || work[i].Page != work[j].Page {
				continue
			}
			if abs(work[i].Height()-work[j].Height()) >= spliceTolerance {
				continue
			}
			if abs(work[i].X1-work[j].X0) < spliceTolerance {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// mergeVertical concatenates the bottom image's rows under the top
// image's. The two bitmaps must agree exactly on pixel width.
func mergeVertical(top, bottom LogicalImage) (LogicalImage, error) {
	tb, bb := top.Bitmap.Bounds(), bottom.Bitmap.Bounds()
	if tb.Dx() != bb.Dx() {
		return LogicalImage{}, &InvariantError{
			Op:     "vertical splice",
			Detail: fmt.Sprintf("bitmap widths differ: %d vs %d", tb.Dx(), bb.Dx()),
		}
	}

	merged := image.NewRGBA(image.Rect(0, 0, tb.Dx(), tb.Dy()+bb.Dy()))
	draw.Draw(merged, image.Rect(0, 0, tb.Dx(), tb.Dy()), top.Bitmap, tb.Min, draw.Src)
	draw.Draw(merged, image.Rect(0, tb.Dy(), tb.Dx(), tb.Dy()+bb.Dy()), bottom.Bitmap, bb.Min, draw.Src)

	return LogicalImage{
		Page: top.Page,
		BBox: BBox{
			X0:     top.X0,
			Top:    top.Top,
			X1:     top.X1,
			Bottom: bottom.Bottom,
		},
		Bitmap: merged,
	}, nil
}

// mergeHorizontal concatenates the right image's columns after the left
// image's. The two bitmaps must agree exactly on pixel height.
func mergeHorizontal(left, right LogicalImage) (LogicalImage, error) {
	lb, rb := left.Bitmap.Bounds(), right.Bitmap.Bounds()
	if lb.Dy() != rb.Dy() {
		return LogicalImage{}, &InvariantError{
			Op:     "horizontal splice",
			Detail: fmt.Sprintf("bitmap heights differ: %d vs %d", lb.Dy(), rb.Dy()),
		}
	}

	merged := image.NewRGBA(image.Rect(0, 0, lb.Dx()+rb.Dx(), lb.Dy()))
	draw.Draw(merged, image.Rect(0, 0, lb.Dx(), lb.Dy()), left.Bitmap, lb.Min, draw.Src)
	draw.Draw(merged, image.Rect(lb.Dx(), 0, lb.Dx()+rb.Dx(), lb.Dy()), right.Bitmap, rb.Min, draw.Src)

	return LogicalImage{
		Page: left.Page,
		BBox: BBox{
			X0:     left.X0,
			Top:    left.Top,
			X1:     right.X1,
			Bottom: left.Bottom,
		},
		Bitmap: merged,
	}, nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
