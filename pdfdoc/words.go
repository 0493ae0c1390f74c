package pdfdoc

import (
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/paperview/paperview/extract"
)

// wordGapFactor is the fraction of the font size beyond which a
// horizontal gap between characters starts a new word.
const wordGapFactor = 0.3

// wordsFromTexts assembles positioned characters into words. Characters
// sharing an identical baseline Y form one row; within a row they are
// taken in x order and split into words at gaps wider than wordGapFactor
// times the font size. Rows are keyed on the exact baseline value, so a
// line whose characters drift vertically comes out as several rows.
//
// The character Y is a bottom-up baseline; the emitted word spans
// [pageHeight-(y+fontSize), pageHeight-y] in the top-down frame.
func wordsFromTexts(texts []pdf.Text, pageNumber int, pageHeight float64) []extract.Word {
	rows := make(map[float64][]pdf.Text)
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		rows[t.Y] = append(rows[t.Y], t)
	}

	baselines := make([]float64, 0, len(rows))
	for y := range rows {
		baselines = append(baselines, y)
	}
	// Top of page first: larger Y is higher in bottom-up user space.
	sort.Sort(sort.Reverse(sort.Float64Slice(baselines)))

	var words []extract.Word
	for _, y := range baselines {
		chars := rows[y]
		sort.SliceStable(chars, func(i, j int) bool { return chars[i].X < chars[j].X })

		var (
			text     strings.Builder
			x0, x1   float64
			fontSize float64
			open     bool
		)
		flush := func() {
			if !open {
				return
			}
			words = append(words, extract.Word{
				Page: pageNumber,
				BBox: extract.BBox{
					X0:     x0,
					Top:    pageHeight - (y + fontSize),
					X1:     x1,
					Bottom: pageHeight - y,
				},
				Text: text.String(),
			})
			text.Reset()
			open = false
		}

		for _, c := range chars {
			threshold := wordGapFactor * c.FontSize
			if threshold == 0 {
				threshold = 3.0
			}
			if open && c.X-x1 > threshold {
				flush()
			}
			if !open {
				x0, x1, fontSize = c.X, c.X+c.W, c.FontSize
				open = true
			}
			if c.FontSize > fontSize {
				fontSize = c.FontSize
			}
			text.WriteString(c.S)
			if end := c.X + c.W; end > x1 {
				x1 = end
			}
		}
		flush()
	}
	return words
}
