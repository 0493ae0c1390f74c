package extract

import (
	"context"
	"image"
)

// BBox is an axis-aligned bounding box in the top-left-origin page frame.
// Top < Bottom for any non-degenerate box.
type BBox struct {
	X0     float64
	Top    float64
	X1     float64
	Bottom float64
}

// Width returns the horizontal extent of the box.
func (b BBox) Width() float64 { return b.X1 - b.X0 }

// Height returns the vertical extent of the box.
func (b BBox) Height() float64 { return b.Bottom - b.Top }

// Word is a single word with its page-relative bounding box.
type Word struct {
	Page int
	BBox
	Text string
}

// ImageTile is one contiguous raster image as emitted by the PDF renderer,
// potentially a fragment of a larger figure. The bitmap is owned by the
// tile; tiles are never shared between logical images.
type ImageTile struct {
	Page int
	BBox
	Bitmap *image.RGBA
}

// Table is a ruled table detected on a page, as rows of cell text.
type Table struct {
	Page int
	BBox
	Rows [][]string
}

// Line is a visual text line assembled from words sharing an identical
// vertical span. Number is assigned sequentially per extraction run and is
// only unique within that run.
type Line struct {
	Number int
	Page   int
	Top    float64
	Bottom float64
	Text   string
}

// Center returns the vertical center of the line.
func (l Line) Center() float64 { return (l.Top + l.Bottom) / 2 }

// LogicalImage is a reconstructed figure: one or more spliced tiles with a
// merged bounding box and bitmap. Number is the 1-based reading-order
// position assigned by Order. Candidates holds caption label candidates in
// discovery order; use SortedByDistance for a ranked view.
type LogicalImage struct {
	Page int
	BBox
	Bitmap     *image.RGBA
	Number     int
	Candidates []LabelCandidate
}

// LabelCandidate is a possible figure label found in a line near an image.
// Distance is the vertical gap, in page units, between the line's center
// and the nearest edge of the image; zero means the center falls inside
// the image's vertical span.
type LabelCandidate struct {
	Page     int
	Line     int
	Word     int
	Distance float64
	Label    string
}

// PageObjects holds the typed records decoded from one page.
type PageObjects struct {
	Tiles  []ImageTile
	Words  []Word
	Tables []Table
}

// PageSource decodes pages of a document into typed geometric records.
// Implementations must stamp 1-based page numbers matching physical order
// and normalize coordinates to the top-left-origin frame.
type PageSource interface {
	NumPages() int
	Page(ctx context.Context, number int) (PageObjects, error)
}

// Result is the output of a full extraction run.
type Result struct {
	Images []LogicalImage
	Lines  []Line
	Words  []Word
	Tables []Table
}
