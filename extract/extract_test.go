package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves pre-built page objects, keyed by 1-based page number.
type fakeSource struct {
	pages []PageObjects
}

func (s *fakeSource) NumPages() int { return len(s.pages) }

func (s *fakeSource) Page(_ context.Context, number int) (PageObjects, error) {
	return s.pages[number-1], nil
}

func TestExtractAll(t *testing.T) {
	src := &fakeSource{pages: []PageObjects{
		{
			Tiles: []ImageTile{
				solidTile(1, BBox{X0: 0, Top: 100, X1: 100, Bottom: 150}, 100, 50, red),
				solidTile(1, BBox{X0: 0, Top: 150, X1: 100, Bottom: 200}, 100, 50, blue),
			},
			Words: []Word{
				word(1, 10, 210, 220, "Figure"),
				word(1, 60, 210, 220, "1:"),
				word(1, 120, 210, 220, "results"),
			},
		},
		{
			Tables: []Table{
				{Page: 2, BBox: BBox{X0: 0, Top: 0, X1: 100, Bottom: 100}, Rows: [][]string{{"a", "b"}}},
			},
		},
	}}

	var visited []int
	res, err := ExtractAll(context.Background(), src, Options{
		Images: true,
		Words:  true,
		Tables: true,
		Progress: func(page, total int) {
			assert.Equal(t, 2, total)
			visited = append(visited, page)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, visited)

	require.Len(t, res.Images, 1)
	got := res.Images[0]
	assert.Equal(t, 1, got.Number)
	assert.Equal(t, 100.0, got.Top)
	assert.Equal(t, 200.0, got.Bottom)
	require.Len(t, got.Candidates, 1)
	assert.Equal(t, "1", got.Candidates[0].Label)
	assert.Equal(t, 15.0, got.Candidates[0].Distance)

	require.Len(t, res.Lines, 1)
	assert.Equal(t, "Figure 1: results", res.Lines[0].Text)
	assert.Len(t, res.Words, 3)
	assert.Len(t, res.Tables, 1)
}

func TestExtractAllSelective(t *testing.T) {
	src := &fakeSource{pages: []PageObjects{
		{
			Tiles: []ImageTile{solidTile(1, BBox{X0: 0, Top: 0, X1: 50, Bottom: 50}, 50, 50, red)},
			Words: []Word{word(1, 10, 60, 70, "Figure")},
		},
	}}

	res, err := ExtractAll(context.Background(), src, Options{Images: true})
	require.NoError(t, err)
	require.Len(t, res.Images, 1)
	assert.Empty(t, res.Images[0].Candidates)
	assert.Empty(t, res.Lines)
	assert.Empty(t, res.Words)
}

func TestExtractAllEmptyPages(t *testing.T) {
	src := &fakeSource{pages: []PageObjects{{}, {}}}

	res, err := ExtractAll(context.Background(), src, All)
	require.NoError(t, err)
	assert.Empty(t, res.Images)
	assert.Empty(t, res.Lines)
	assert.Empty(t, res.Tables)
}

func TestExtractAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExtractAll(ctx, &fakeSource{pages: []PageObjects{{}}}, All)
	assert.ErrorIs(t, err, context.Canceled)
}
