package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func word(page int, x0, top, bottom float64, text string) Word {
	return Word{Page: page, BBox: BBox{X0: x0, Top: top, X1: x0 + 10, Bottom: bottom}, Text: text}
}

func TestAssembleLines(t *testing.T) {
	words := []Word{
		word(1, 60, 10, 20, "world"),
		word(1, 10, 10, 20, "hello"),
		word(1, 10, 30, 40, "second"),
		word(1, 60, 30, 40, "line"),
	}

	lines := AssembleLines(words)
	require.Len(t, lines, 2)

	assert.Equal(t, 0, lines[0].Number)
	assert.Equal(t, "hello world", lines[0].Text)
	assert.Equal(t, 10.0, lines[0].Top)
	assert.Equal(t, 20.0, lines[0].Bottom)

	assert.Equal(t, 1, lines[1].Number)
	assert.Equal(t, "second line", lines[1].Text)
}

func TestAssembleLinesAcrossPages(t *testing.T) {
	words := []Word{
		word(2, 10, 10, 20, "later"),
		word(1, 10, 500, 510, "earlier"),
	}

	lines := AssembleLines(words)
	require.Len(t, lines, 2)
	assert.Equal(t, "earlier", lines[0].Text)
	assert.Equal(t, 1, lines[0].Page)
	assert.Equal(t, "later", lines[1].Text)
	assert.Equal(t, 2, lines[1].Page)
}

func TestAssembleLinesExactSpanOnly(t *testing.T) {
	// A half-unit difference in top keeps words on separate lines.
	words := []Word{
		word(1, 10, 10, 20, "a"),
		word(1, 30, 10.5, 20, "b"),
	}

	lines := AssembleLines(words)
	assert.Len(t, lines, 2)
}

func TestAssembleLinesEmpty(t *testing.T) {
	assert.Empty(t, AssembleLines(nil))
}
