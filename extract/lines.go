package extract

import (
	"sort"
	"strings"
)

// AssembleLines groups words into visual lines. Words belong to the same
// line exactly when they share an identical (page, top, bottom) span;
// spans that differ by extraction noise are deliberately not merged, so a
// noisy backend yields split lines rather than silently fuzzy-banded ones.
// Within a line, words are ordered by x0 and joined with single spaces.
// Line numbers are assigned from 0 in (page, top, bottom) order.
func AssembleLines(words []Word) []Line {
	type span struct {
		page        int
		top, bottom float64
	}

	groups := make(map[span][]Word)
	for _, w := range words {
		k := span{w.Page, w.Top, w.Bottom}
		groups[k] = append(groups[k], w)
	}

	keys := make([]span, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.page != b.page {
			return a.page < b.page
		}
		if a.top != b.top {
			return a.top < b.top
		}
		return a.bottom < b.bottom
	})

	lines := make([]Line, 0, len(keys))
	for n, k := range keys {
		ws := groups[k]
		sort.SliceStable(ws, func(i, j int) bool { return ws[i].X0 < ws[j].X0 })

		texts := make([]string, len(ws))
		for i, w := range ws {
			texts[i] = w.Text
		}

		lines = append(lines, Line{
			Number: n,
			Page:   k.page,
			Top:    k.top,
			Bottom: k.bottom,
			Text:   strings.Join(texts, " "),
		})
	}
	return lines
}
