package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFigureLabels(t *testing.T) {
	image := LogicalImage{Page: 1, BBox: BBox{Top: 0, Bottom: 100}}
	lines := []Line{
		{Number: 1, Page: 1, Top: 20, Bottom: 30, Text: "Figure 1: This is a label"},
		{Number: 2, Page: 1, Top: 40, Bottom: 50, Text: "This is not a label"},
		{Number: 3, Page: 1, Top: 60, Bottom: 70, Text: "Fig. 2: This is another label"},
	}

	got := ExtractFigureLabels(image, lines)
	want := []LabelCandidate{
		{Page: 1, Line: 1, Word: 0, Distance: 0, Label: "1"},
		{Page: 1, Line: 3, Word: 0, Distance: 0, Label: "2"},
	}
	assert.Equal(t, want, got)
}

func TestExtractFigureLabelsNextPage(t *testing.T) {
	image := LogicalImage{Page: 1, BBox: BBox{Top: 0, Bottom: 100}}
	lines := []Line{
		{Number: 1, Page: 1, Top: 20, Bottom: 30, Text: "This is not a label"},
		{Number: 20, Page: 1, Top: 140, Bottom: 150, Text: "random text"},
		{Number: 2, Page: 2, Top: 40, Bottom: 50, Text: "Fig. 3: This is a label on the next page"},
	}

	// Page-1 max line bottom is 150, so the page-2 line shifts to
	// top=190, bottom=200; its center 195 is 95 below the image bottom.
	got := ExtractFigureLabels(image, lines)
	want := []LabelCandidate{
		{Page: 2, Line: 2, Word: 0, Distance: 95, Label: "3"},
	}
	assert.Equal(t, want, got)
}

func TestExtractFigureLabelsIndicatorLast(t *testing.T) {
	image := LogicalImage{Page: 1, BBox: BBox{Top: 0, Bottom: 100}}
	lines := []Line{
		{Number: 1, Page: 1, Top: 20, Bottom: 30, Text: "as shown in the figure"},
	}
	assert.Empty(t, ExtractFigureLabels(image, lines))
}

func TestExtractFigureLabelsTruncation(t *testing.T) {
	image := LogicalImage{Page: 1, BBox: BBox{Top: 0, Bottom: 100}}
	lines := []Line{
		{Number: 1, Page: 1, Top: 20, Bottom: 30, Text: "Figure S12: supplementary"},
	}

	got := ExtractFigureLabels(image, lines)
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].Label)
}

func TestTruncateLabelIdempotent(t *testing.T) {
	for _, s := range []string{"", "1", "s1", "ab"} {
		assert.Equal(t, s, truncateLabel(s))
		assert.Equal(t, truncateLabel(s), truncateLabel(truncateLabel(s)))
	}
	assert.Equal(t, "ab", truncateLabel("abc"))
}

func TestFindCandidateLabels(t *testing.T) {
	images := []LogicalImage{
		{Page: 1, BBox: BBox{Top: 0, Bottom: 100}, Number: 1},
		{Page: 2, BBox: BBox{Top: 0, Bottom: 100}, Number: 2},
	}
	lines := []Line{
		{Number: 0, Page: 1, Top: 10, Bottom: 20, Text: "Figure 1: caption"},
		{Number: 1, Page: 2, Top: 10, Bottom: 20, Text: "Figure 2: caption"},
	}

	got := FindCandidateLabels(images, lines)
	require.Len(t, got, 2)
	require.Len(t, got[0].Candidates, 2) // page-2 line is also in range of image 1
	assert.Equal(t, "1", got[0].Candidates[0].Label)
	require.Len(t, got[1].Candidates, 1)
	assert.Equal(t, "2", got[1].Candidates[0].Label)

	// Input slice stays untouched.
	assert.Nil(t, images[0].Candidates)
}

func TestSortedByDistance(t *testing.T) {
	image := LogicalImage{Candidates: []LabelCandidate{
		{Line: 1, Distance: 40, Label: "2"},
		{Line: 2, Distance: 0, Label: "1"},
		{Line: 3, Distance: 40, Label: "3"},
	}}

	ranked := image.SortedByDistance()
	assert.Equal(t, []int{2, 1, 3}, []int{ranked[0].Line, ranked[1].Line, ranked[2].Line})

	// Stored order is the discovery order, untouched by ranking.
	assert.Equal(t, 1, image.Candidates[0].Line)
}

func TestDistanceToImage(t *testing.T) {
	image := LogicalImage{BBox: BBox{Top: 100, Bottom: 200}}
	assert.Equal(t, 0.0, distanceToImage(150, image))
	assert.Equal(t, 30.0, distanceToImage(70, image))
	assert.Equal(t, 50.0, distanceToImage(250, image))
	// Centers exactly on an edge are outside the open span.
	assert.Equal(t, 0.0, distanceToImage(100, image))
	assert.Equal(t, 0.0, distanceToImage(200, image))
}
