package pdfdoc

import (
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func char(s string, x, y, w, size float64) pdf.Text {
	return pdf.Text{S: s, X: x, Y: y, W: w, FontSize: size}
}

func TestWordsFromTexts(t *testing.T) {
	// "Fig 1" on one baseline: tight chars within words, a wide gap between.
	texts := []pdf.Text{
		char("F", 10, 700, 5, 10),
		char("i", 15, 700, 3, 10),
		char("g", 18, 700, 5, 10),
		char("1", 40, 700, 5, 10),
	}

	words := wordsFromTexts(texts, 3, 792)
	require.Len(t, words, 2)

	assert.Equal(t, "Fig", words[0].Text)
	assert.Equal(t, 3, words[0].Page)
	assert.Equal(t, 10.0, words[0].X0)
	assert.Equal(t, 23.0, words[0].X1)
	assert.Equal(t, 82.0, words[0].Top)    // 792 - (700 + 10)
	assert.Equal(t, 92.0, words[0].Bottom) // 792 - 700

	assert.Equal(t, "1", words[1].Text)
	assert.Equal(t, 40.0, words[1].X0)
}

func TestWordsFromTextsRowsByExactBaseline(t *testing.T) {
	texts := []pdf.Text{
		char("a", 10, 700, 5, 10),
		char("b", 16, 700.5, 5, 10), // close but not identical baseline
	}

	words := wordsFromTexts(texts, 1, 792)
	require.Len(t, words, 2)
	// Higher baseline (700.5) is higher on the page, so it comes first.
	assert.Equal(t, "b", words[0].Text)
	assert.Equal(t, "a", words[1].Text)
	assert.NotEqual(t, words[0].Bottom, words[1].Bottom)
}

func TestWordsFromTextsStreamOrderIrrelevant(t *testing.T) {
	texts := []pdf.Text{
		char("b", 20, 700, 5, 10),
		char("a", 14, 700, 5, 10),
	}

	words := wordsFromTexts(texts, 1, 792)
	require.Len(t, words, 1)
	assert.Equal(t, "ab", words[0].Text)
}

func TestWordsFromTextsSkipsWhitespaceChars(t *testing.T) {
	texts := []pdf.Text{
		char("x", 10, 700, 5, 10),
		char(" ", 15, 700, 3, 10),
		char("\n", 0, 0, 0, 0),
	}

	words := wordsFromTexts(texts, 1, 792)
	require.Len(t, words, 1)
	assert.Equal(t, "x", words[0].Text)
}

func TestWordsFromTextsEmpty(t *testing.T) {
	assert.Empty(t, wordsFromTexts(nil, 1, 792))
}
