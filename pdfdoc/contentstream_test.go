package pdfdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanPlacementsSimple(t *testing.T) {
	// 200x100 image at (50, 300).
	stream := []byte("q 200 0 0 100 50 300 cm /Im1 Do Q")

	got := scanPlacements(stream)
	require.Len(t, got, 1)
	assert.Equal(t, "Im1", got[0].name)
	assert.Equal(t, 50.0, got[0].x0)
	assert.Equal(t, 300.0, got[0].y0)
	assert.Equal(t, 250.0, got[0].x1)
	assert.Equal(t, 400.0, got[0].y1)
}

func TestScanPlacementsNestedState(t *testing.T) {
	// The inner q/Q scales; the second Do must see the outer CTM again.
	stream := []byte(`
q 1 0 0 1 100 100 cm
q 50 0 0 50 0 0 cm /Im1 Do Q
q 50 0 0 50 200 0 cm /Im2 Do Q
Q`)

	got := scanPlacements(stream)
	require.Len(t, got, 2)

	assert.Equal(t, "Im1", got[0].name)
	assert.Equal(t, 100.0, got[0].x0)
	assert.Equal(t, 100.0, got[0].y0)
	assert.Equal(t, 150.0, got[0].x1)
	assert.Equal(t, 150.0, got[0].y1)

	assert.Equal(t, "Im2", got[1].name)
	assert.Equal(t, 300.0, got[1].x0)
	assert.Equal(t, 100.0, got[1].y0)
}

func TestScanPlacementsNegativeScale(t *testing.T) {
	// Flipped axes still produce a well-ordered box.
	stream := []byte("q -100 0 0 -50 200 300 cm /Im1 Do Q")

	got := scanPlacements(stream)
	require.Len(t, got, 1)
	assert.Equal(t, 100.0, got[0].x0)
	assert.Equal(t, 200.0, got[0].x1)
	assert.Equal(t, 250.0, got[0].y0)
	assert.Equal(t, 300.0, got[0].y1)
}

func TestScanPlacementsIgnoresTextAndStrings(t *testing.T) {
	stream := []byte(`BT /F1 12 Tf 72 712 Td (no /Im9 Do here) Tj ET
[(array) (strings)] TJ
<< /Name /Im8 >> BDC
q 10 0 0 10 0 0 cm /Im1 Do Q`)

	got := scanPlacements(stream)
	require.Len(t, got, 1)
	assert.Equal(t, "Im1", got[0].name)
}

func TestScanPlacementsInlineImage(t *testing.T) {
	stream := []byte("BI /W 2 /H 2 ID \x00\x01\x02\x03 EI q 10 0 0 10 5 5 cm /Im1 Do Q")

	got := scanPlacements(stream)
	require.Len(t, got, 1)
	assert.Equal(t, "Im1", got[0].name)
	assert.Equal(t, 5.0, got[0].x0)
}

func TestMatrixMul(t *testing.T) {
	translate := matrix{a: 1, d: 1, e: 10, f: 20}
	scale := matrix{a: 2, d: 3}

	// Scale applied first, then translate.
	m := scale.mul(translate)
	x, y := m.apply(1, 1)
	assert.Equal(t, 12.0, x)
	assert.Equal(t, 23.0, y)
}
