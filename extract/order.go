package extract

import "sort"

// Order assigns 1-based reading-order numbers to images: page ascending,
// then top edge, then left edge. The sort is stable, so images with an
// identical key keep their relative input order. A new slice is returned;
// the input is not modified.
func Order(images []LogicalImage) []LogicalImage {
	ordered := make([]LogicalImage, len(images))
	copy(ordered, images)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if a.Top != b.Top {
			return a.Top < b.Top
		}
		return a.X0 < b.X0
	})

	for i := range ordered {
		ordered[i].Number = i + 1
	}
	return ordered
}
