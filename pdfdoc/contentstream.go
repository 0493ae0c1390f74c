package pdfdoc

import (
	"strconv"
)

// matrix is a PDF transformation matrix [a b c d e f], row-vector
// convention: a point (x, y) maps to (a*x+c*y+e, b*x+d*y+f).
type matrix struct {
	a, b, c, d, e, f float64
}

var identity = matrix{a: 1, d: 1}

// mul returns m concatenated with n, the matrix applying m first.
func (m matrix) mul(n matrix) matrix {
	return matrix{
		a: m.a*n.a + m.b*n.c,
		b: m.a*n.b + m.b*n.d,
		c: m.c*n.a + m.d*n.c,
		d: m.c*n.b + m.d*n.d,
		e: m.e*n.a + m.f*n.c + n.e,
		f: m.e*n.b + m.f*n.d + n.f,
	}
}

func (m matrix) apply(x, y float64) (float64, float64) {
	return m.a*x + m.c*y + m.e, m.b*x + m.d*y + m.f
}

// placement is where one XObject was painted, as a bounding box in
// bottom-up PDF user space.
type placement struct {
	name           string
	x0, y0, x1, y1 float64
}

// scanPlacements walks a page content stream tracking the transformation
// matrix through q/Q/cm and records the axis-aligned bounds of the unit
// square for every Do. Painting a Do maps the unit square through the
// CTM, so the four transformed corners bound the drawn object. Form
// XObject placements are recorded too; the caller drops names that do not
// resolve to an image resource.
func scanPlacements(stream []byte) []placement {
	var (
		out      []placement
		ctm      = identity
		stack    []matrix
		operands []float64
		name     string
	)

	clear := func() {
		operands = operands[:0]
		name = ""
	}

	tok := newTokenizer(stream)
	for {
		t, ok := tok.next()
		if !ok {
			return out
		}

		switch t.kind {
		case tokNumber:
			operands = append(operands, t.value)
		case tokName:
			name = t.text
		case tokOperator:
			switch t.text {
			case "q":
				stack = append(stack, ctm)
			case "Q":
				if n := len(stack); n > 0 {
					ctm = stack[n-1]
					stack = stack[:n-1]
				}
			case "cm":
				if len(operands) >= 6 {
					o := operands[len(operands)-6:]
					ctm = matrix{o[0], o[1], o[2], o[3], o[4], o[5]}.mul(ctm)
				}
			case "Do":
				if name != "" {
					out = append(out, placeUnitSquare(name, ctm))
				}
			case "BI":
				tok.skipInlineImage()
			}
			clear()
		}
	}
}

func placeUnitSquare(name string, m matrix) placement {
	x0, y0 := m.apply(0, 0)
	p := placement{name: name, x0: x0, y0: y0, x1: x0, y1: y0}
	for _, pt := range [][2]float64{{1, 0}, {0, 1}, {1, 1}} {
		x, y := m.apply(pt[0], pt[1])
		if x < p.x0 {
			p.x0 = x
		}
		if x > p.x1 {
			p.x1 = x
		}
		if y < p.y0 {
			p.y0 = y
		}
		if y > p.y1 {
			p.y1 = y
		}
	}
	return p
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokName
	tokOperator
)

type token struct {
	kind  tokenKind
	value float64
	text  string
}

// tokenizer yields the number, name, and operator tokens of a content
// stream, skipping strings, hex strings, dictionaries, comments, and
// array brackets.
type tokenizer struct {
	data []byte
	pos  int
}

func newTokenizer(data []byte) *tokenizer {
	return &tokenizer{data: data}
}

func (t *tokenizer) next() (token, bool) {
	for t.pos < len(t.data) {
		c := t.data[t.pos]
		switch {
		case isWhitespace(c) || c == '[' || c == ']':
			t.pos++
		case c == '%':
			t.skipToEOL()
		case c == '(':
			t.skipString()
		case c == '<':
			if t.pos+1 < len(t.data) && t.data[t.pos+1] == '<' {
				t.skipDict()
			} else {
				t.skipHexString()
			}
		case c == '>':
			t.pos++ // stray dict close
		case c == '/':
			return t.readName(), true
		case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
			return t.readNumber()
		default:
			return t.readOperator(), true
		}
	}
	return token{}, false
}

func (t *tokenizer) skipToEOL() {
	for t.pos < len(t.data) && t.data[t.pos] != '\n' && t.data[t.pos] != '\r' {
		t.pos++
	}
}

func (t *tokenizer) skipString() {
	depth := 0
	for ; t.pos < len(t.data); t.pos++ {
		switch t.data[t.pos] {
		case '\\':
			t.pos++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				t.pos++
				return
			}
		}
	}
}

func (t *tokenizer) skipHexString() {
	for t.pos < len(t.data) && t.data[t.pos] != '>' {
		t.pos++
	}
	t.pos++
}

func (t *tokenizer) skipDict() {
	depth := 0
	for t.pos+1 < len(t.data) {
		if t.data[t.pos] == '<' && t.data[t.pos+1] == '<' {
			depth++
			t.pos += 2
			continue
		}
		if t.data[t.pos] == '>' && t.data[t.pos+1] == '>' {
			depth--
			t.pos += 2
			if depth == 0 {
				return
			}
			continue
		}
		if t.data[t.pos] == '(' {
			t.skipString()
			continue
		}
		t.pos++
	}
	t.pos = len(t.data)
}

// skipInlineImage discards everything through the EI that ends a BI/ID
// inline image, relying on EI being delimited by whitespace.
func (t *tokenizer) skipInlineImage() {
	for t.pos+2 < len(t.data) {
		if t.data[t.pos] == 'E' && t.data[t.pos+1] == 'I' &&
			isWhitespace(t.data[t.pos-1]) &&
			(t.pos+2 >= len(t.data) || isWhitespace(t.data[t.pos+2])) {
			t.pos += 2
			return
		}
		t.pos++
	}
	t.pos = len(t.data)
}

func (t *tokenizer) readName() token {
	t.pos++ // leading slash
	start := t.pos
	for t.pos < len(t.data) && isRegular(t.data[t.pos]) {
		t.pos++
	}
	return token{kind: tokName, text: string(t.data[start:t.pos])}
}

func (t *tokenizer) readNumber() (token, bool) {
	start := t.pos
	for t.pos < len(t.data) && isRegular(t.data[t.pos]) {
		t.pos++
	}
	v, err := strconv.ParseFloat(string(t.data[start:t.pos]), 64)
	if err != nil {
		// Malformed numeric token; resume with whatever follows.
		return t.next()
	}
	return token{kind: tokNumber, value: v}, true
}

func (t *tokenizer) readOperator() token {
	start := t.pos
	for t.pos < len(t.data) && isRegular(t.data[t.pos]) {
		t.pos++
	}
	return token{kind: tokOperator, text: string(t.data[start:t.pos])}
}

func isWhitespace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isRegular(c byte) bool {
	if isWhitespace(c) {
		return false
	}
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return false
	}
	return true
}
