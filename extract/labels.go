package extract

import (
	"sort"
	"strings"
	"unicode"
)

// figureIndicators are the caption keywords that mark a line as a label
// source. Words are stripped to alphanumerics before comparison, so "fig."
// arrives as "fig"; the dotted form is kept for the raw token anyway.
var figureIndicators = map[string]bool{
	"figure": true,
	"fig":    true,
	"fig.":   true,
}

// ExtractFigureLabels finds caption label candidates for one image. Lines
// on the image's page are considered at their stated position; lines on
// the immediately following page are shifted down by the current page's
// maximum line bottom, an estimate of page height in the same units, so
// that distances stay comparable on one continuous vertical axis. Shifted
// lines keep their own page number in the emitted candidate.
//
// Within a line, every indicator word contributes at most one candidate:
// the word after the indicator, stripped to alphanumerics and truncated to
// two characters. An indicator with no following word contributes nothing.
// The heuristic is deliberately crude; callers wanting a ranking should
// use SortedByDistance rather than assuming any order here.
func ExtractFigureLabels(img LogicalImage, lines []Line) []LabelCandidate {
	type placed struct {
		Line
		distance float64
	}

	var nearby []placed
	var pageHeight float64
	for _, l := range lines {
		if l.Page == img.Page {
			nearby = append(nearby, placed{l, distanceToImage(l.Center(), img)})
			if l.Bottom > pageHeight {
				pageHeight = l.Bottom
			}
		}
	}
	for _, l := range lines {
		if l.Page == img.Page+1 {
			shifted := l
			shifted.Top += pageHeight
			shifted.Bottom += pageHeight
			nearby = append(nearby, placed{shifted, distanceToImage(shifted.Center(), img)})
		}
	}

	var out []LabelCandidate
	for _, pl := range nearby {
		words := strings.Fields(strings.ToLower(pl.Text))
		for i, w := range words {
			if !figureIndicators[stripToAlnum(w)] {
				continue
			}
			if i >= len(words)-1 {
				continue
			}
			out = append(out, LabelCandidate{
				Page:     pl.Page,
				Line:     pl.Number,
				Word:     i,
				Distance: pl.distance,
				Label:    truncateLabel(stripToAlnum(words[i+1])),
			})
		}
	}
	return out
}

// FindCandidateLabels runs ExtractFigureLabels for every image, returning
// a new slice with Candidates populated.
func FindCandidateLabels(images []LogicalImage, lines []Line) []LogicalImage {
	out := make([]LogicalImage, len(images))
	copy(out, images)
	for i := range out {
		out[i].Candidates = ExtractFigureLabels(out[i], lines)
	}
	return out
}

// SortedByDistance returns the image's candidates ranked nearest first.
// The stored Candidates order (discovery order) is left untouched.
func (img LogicalImage) SortedByDistance() []LabelCandidate {
	ranked := make([]LabelCandidate, len(img.Candidates))
	copy(ranked, img.Candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Distance < ranked[j].Distance
	})
	return ranked
}

// distanceToImage is zero when the line center falls strictly inside the
// image's vertical span, otherwise the gap to the nearest edge.
func distanceToImage(center float64, img LogicalImage) float64 {
	if center > img.Top && center < img.Bottom {
		return 0
	}
	return min(abs(center-img.Top), abs(center-img.Bottom))
}

func stripToAlnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// truncateLabel keeps at most the first two characters of a label token.
func truncateLabel(s string) string {
	r := []rune(s)
	if len(r) > 2 {
		return string(r[:2])
	}
	return s
}
