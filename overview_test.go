package paperview

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperview/paperview/extract"
)

func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestRenderOverviewFullText(t *testing.T) {
	a := &Article{
		Manuscript: exportManuscript(),
		FullText:   true,
		Figures: []Figure{
			{
				FigureCaption: FigureCaption{
					Section: "Results",
					Label:   "Figure 1.",
					Caption: "Hosted figure caption.",
					Slug:    "F1",
				},
				Image: testJPEG(t, 40, 30),
			},
		},
	}

	html, err := RenderOverview(a)
	require.NoError(t, err)

	assert.Contains(t, html, "Spatial coding in the hippocampus")
	assert.Contains(t, html, "Doe, J.; Roe, R.")
	assert.Contains(t, html, `href="https://doi.org/10.1101/339747"`)
	assert.Contains(t, html, "Image 1")
	assert.Contains(t, html, "Hosted figure caption.")
	assert.Contains(t, html, "data:image/jpeg;base64,")
	assert.Contains(t, html, `width="40" height="30"`)
}

func TestRenderOverviewPDFPath(t *testing.T) {
	a := &Article{
		Manuscript: exportManuscript(),
		Extraction: &extract.Result{
			Images: []extract.LogicalImage{
				{
					Page:   2,
					Number: 1,
					Bitmap: image.NewRGBA(image.Rect(0, 0, 60, 20)),
					Candidates: []extract.LabelCandidate{
						{Page: 2, Line: 7, Distance: 30, Label: "figure"},
						{Page: 2, Line: 5, Distance: 4, Label: "fig."},
					},
				},
			},
			Lines: []extract.Line{
				{Number: 5, Page: 2, Text: "Fig. 1: Mined figure caption."},
				{Number: 7, Page: 2, Text: "Unrelated farther line."},
			},
		},
	}

	html, err := RenderOverview(a)
	require.NoError(t, err)

	// The nearest candidate's line supplies the caption.
	assert.Contains(t, html, "Fig. 1: Mined figure caption.")
	assert.NotContains(t, html, "Unrelated farther line.")
	assert.Contains(t, html, "data:image/jpeg;base64,")
	assert.Contains(t, html, `width="60" height="20"`)
}

func TestRenderOverviewNoContent(t *testing.T) {
	a := &Article{Manuscript: exportManuscript()}

	html, err := RenderOverview(a)
	require.NoError(t, err)

	assert.Contains(t, html, "Spatial coding in the hippocampus")
	assert.NotContains(t, html, "<img")
}

func TestEncodeFigureDownscales(t *testing.T) {
	wide := image.NewRGBA(image.Rect(0, 0, 2400, 600))

	data, w, h, err := encodeFigure(wide)
	require.NoError(t, err)

	assert.Equal(t, 1200, w)
	assert.Equal(t, 300, h)

	gotW, gotH := jpegDims(data)
	assert.Equal(t, 1200, gotW)
	assert.Equal(t, 300, gotH)
}

func TestJPEGDims(t *testing.T) {
	w, h := jpegDims(testJPEG(t, 17, 9))
	assert.Equal(t, 17, w)
	assert.Equal(t, 9, h)

	w, h = jpegDims([]byte("not a jpeg"))
	assert.Equal(t, 0, w)
	assert.Equal(t, 0, h)
}
