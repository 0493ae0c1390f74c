package extract

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidTile(page int, box BBox, w, h int, c color.RGBA) ImageTile {
	bm := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(bm, bm.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return ImageTile{Page: page, BBox: box, Bitmap: bm}
}

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

func TestSpliceVerticalPair(t *testing.T) {
	tiles := []ImageTile{
		solidTile(1, BBox{X0: 0, Top: 0, X1: 100, Bottom: 50}, 100, 50, red),
		solidTile(1, BBox{X0: 0, Top: 50, X1: 100, Bottom: 100}, 100, 50, blue),
	}

	images, err := Splice(tiles)
	require.NoError(t, err)
	require.Len(t, images, 1)

	got := images[0]
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, 0.0, got.Top)
	assert.Equal(t, 100.0, got.Bottom)
	assert.Equal(t, 0.0, got.X0)
	assert.Equal(t, 100.0, got.X1)

	b := got.Bitmap.Bounds()
	require.Equal(t, 100, b.Dx())
	require.Equal(t, 100, b.Dy())
	assert.Equal(t, red, got.Bitmap.RGBAAt(0, 0))
	assert.Equal(t, red, got.Bitmap.RGBAAt(99, 49))
	assert.Equal(t, blue, got.Bitmap.RGBAAt(0, 50))
	assert.Equal(t, blue, got.Bitmap.RGBAAt(99, 99))
}

func TestSpliceHorizontalPair(t *testing.T) {
	tiles := []ImageTile{
		solidTile(1, BBox{X0: 0, Top: 10, X1: 40, Bottom: 60}, 40, 50, red),
		solidTile(1, BBox{X0: 40, Top: 10, X1: 80, Bottom: 60}, 40, 50, blue),
	}

	images, err := Splice(tiles)
	require.NoError(t, err)
	require.Len(t, images, 1)

	got := images[0]
	assert.Equal(t, 0.0, got.X0)
	assert.Equal(t, 80.0, got.X1)
	assert.Equal(t, 10.0, got.Top)
	assert.Equal(t, 60.0, got.Bottom)

	b := got.Bitmap.Bounds()
	require.Equal(t, 80, b.Dx())
	require.Equal(t, 50, b.Dy())
	assert.Equal(t, red, got.Bitmap.RGBAAt(39, 0))
	assert.Equal(t, blue, got.Bitmap.RGBAAt(40, 0))
}

func TestSpliceThreeWayVertical(t *testing.T) {
	tiles := []ImageTile{
		solidTile(1, BBox{X0: 0, Top: 0, X1: 100, Bottom: 30}, 100, 30, red),
		solidTile(1, BBox{X0: 0, Top: 30, X1: 100, Bottom: 60}, 100, 30, blue),
		solidTile(1, BBox{X0: 0, Top: 60, X1: 100, Bottom: 90}, 100, 30, red),
	}

	images, err := Splice(tiles)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, 0.0, images[0].Top)
	assert.Equal(t, 90.0, images[0].Bottom)
	assert.Equal(t, 90, images[0].Bitmap.Bounds().Dy())
}

func TestSpliceIdempotent(t *testing.T) {
	// Different pages, non-touching edges: nothing may merge.
	tiles := []ImageTile{
		solidTile(1, BBox{X0: 0, Top: 0, X1: 100, Bottom: 50}, 100, 50, red),
		solidTile(2, BBox{X0: 0, Top: 50, X1: 100, Bottom: 100}, 100, 50, blue),
		solidTile(1, BBox{X0: 0, Top: 200, X1: 100, Bottom: 250}, 100, 50, blue),
	}

	images, err := Splice(tiles)
	require.NoError(t, err)
	require.Len(t, images, 3)
	for i, tile := range tiles {
		assert.Equal(t, tile.Page, images[i].Page)
		assert.Equal(t, tile.BBox, images[i].BBox)
		assert.Equal(t, tile.Bitmap, images[i].Bitmap)
	}
}

func TestSplicePixelWidthMismatch(t *testing.T) {
	// Page-unit widths match within tolerance but pixel widths differ.
	tiles := []ImageTile{
		solidTile(1, BBox{X0: 0, Top: 0, X1: 100, Bottom: 50}, 100, 50, red),
		solidTile(1, BBox{X0: 0, Top: 50, X1: 100, Bottom: 100}, 99, 50, blue),
	}

	_, err := Splice(tiles)
	require.Error(t, err)
	var inv *InvariantError
	assert.True(t, errors.As(err, &inv))
}

func TestSpliceEmpty(t *testing.T) {
	images, err := Splice(nil)
	require.NoError(t, err)
	assert.Empty(t, images)
}
