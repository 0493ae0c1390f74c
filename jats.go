package paperview

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/paperview/paperview/extract"
)

// JATS wraps a manuscript's JATS source XML. bioRxiv serves the full
// body only for some manuscripts; the rest get metadata-only documents.
type JATS struct {
	url  string
	root *xmlNode
}

// FigureCaption is a figure reference found in the article body.
type FigureCaption struct {
	Section string
	Label   string
	Caption string
	Slug    string
}

// TableCaption is a table reference found in the article body.
type TableCaption struct {
	Section string
	Label   string
	Caption string
}

// SectionText is one paragraph of body text with its section title.
type SectionText struct {
	Section string
	Text    string
}

// Meta holds the front-matter fields of a JATS document.
type Meta struct {
	Title        string
	Abstract     string
	Authors      []string
	Affiliations []string
	PubDate      string
}

// xmlNode is a generic element tree. JATS documents mix many vocabularies
// (hwp:, xlink:, mml:) so a schema-typed decode is not practical.
type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []xmlNode  `xml:",any"`
	Text     string     `xml:",chardata"`
}

var xmlnsRe = regexp.MustCompile(`xmlns="[^"]*"`)

// FetchJATS downloads and parses the JATS XML at url.
func FetchJATS(ctx context.Context, url string) (*JATS, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, &extract.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &extract.FetchError{URL: url, Err: fmt.Errorf("http %s", resp.Status)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &extract.FetchError{URL: url, Err: err}
	}

	j, err := ParseJATS(data)
	if err != nil {
		return nil, err
	}
	j.url = url
	return j, nil
}

// ParseJATS parses raw JATS XML. Everything outside the <article>
// element is discarded and the default namespace is stripped so element
// names stay plain.
func ParseJATS(data []byte) (*JATS, error) {
	start := bytes.Index(data, []byte("<article"))
	end := bytes.LastIndex(data, []byte("</article>"))
	if start < 0 || end < 0 {
		return nil, &extract.ParseError{Err: fmt.Errorf("no article element")}
	}
	data = xmlnsRe.ReplaceAll(data[start:end+len("</article>")], nil)

	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity

	var root xmlNode
	if err := dec.Decode(&root); err != nil {
		return nil, &extract.ParseError{Err: fmt.Errorf("decode jats: %w", err)}
	}
	return &JATS{root: &root}, nil
}

// URL returns the source URL, if the document was fetched.
func (j *JATS) URL() string { return j.url }

// FullText reports whether the document carries the article body, judged
// by the presence of a section titled "Results".
func (j *JATS) FullText() bool {
	body := j.root.descendant("body")
	if body == nil {
		return false
	}
	found := false
	body.walk(func(n *xmlNode) {
		if n.XMLName.Local == "sec" && n.childText("title") == "Results" {
			found = true
		}
	})
	return found
}

// FigureCaptions lists the figures in each top-level body section, with
// the hosting slug needed to build image URLs.
func (j *JATS) FigureCaptions() []FigureCaption {
	body := j.root.descendant("body")
	if body == nil {
		return nil
	}

	var captions []FigureCaption
	for i := range body.Children {
		sec := &body.Children[i]
		if sec.XMLName.Local != "sec" {
			continue
		}
		title := sec.childText("title")
		sec.walk(func(n *xmlNode) {
			if n.XMLName.Local != "fig" {
				return
			}
			captions = append(captions, FigureCaption{
				Section: title,
				Label:   n.childText("label"),
				Caption: n.childText("caption"),
				Slug:    figSlug(n),
			})
		})
	}
	return captions
}

// TableCaptions lists the tables in each top-level body section.
func (j *JATS) TableCaptions() []TableCaption {
	body := j.root.descendant("body")
	if body == nil {
		return nil
	}

	var captions []TableCaption
	for i := range body.Children {
		sec := &body.Children[i]
		if sec.XMLName.Local != "sec" {
			continue
		}
		title := sec.childText("title")
		sec.walk(func(n *xmlNode) {
			if n.XMLName.Local != "table-wrap" {
				return
			}
			captions = append(captions, TableCaption{
				Section: title,
				Label:   n.childText("label"),
				Caption: n.childText("caption"),
			})
		})
	}
	return captions
}

// Meta extracts the front-matter metadata. Fields the document lacks
// stay zero.
func (j *JATS) Meta() Meta {
	var m Meta
	am := j.root.descendant("article-meta")
	if am == nil {
		return m
	}

	if tg := am.descendant("title-group"); tg != nil {
		m.Title = tg.childText("article-title")
	}
	if abs := am.descendant("abstract"); abs != nil {
		m.Abstract = collapseSpace(abs.allText())
	}

	am.walk(func(n *xmlNode) {
		switch n.XMLName.Local {
		case "contrib":
			surname, given := "", ""
			if s := n.descendant("surname"); s != nil {
				surname = collapseSpace(s.allText())
			}
			if g := n.descendant("given-names"); g != nil {
				given = collapseSpace(g.allText())
			}
			switch {
			case surname != "" && given != "":
				m.Authors = append(m.Authors, surname+", "+given)
			case surname != "":
				m.Authors = append(m.Authors, surname)
			}
		case "aff":
			if text := collapseSpace(n.allText()); text != "" {
				m.Affiliations = append(m.Affiliations, text)
			}
		}
	})

	if pd := am.descendant("pub-date"); pd != nil {
		m.PubDate = isoDate(pd.childText("year"), pd.childText("month"), pd.childText("day"))
	}
	return m
}

// isoDate joins year/month/day parts into YYYY-MM-DD, dropping trailing
// parts that are absent.
func isoDate(year, month, day string) string {
	if year == "" {
		return ""
	}
	date := year
	if month == "" {
		return date
	}
	if len(month) == 1 {
		month = "0" + month
	}
	date += "-" + month
	if day == "" {
		return date
	}
	if len(day) == 1 {
		day = "0" + day
	}
	return date + "-" + day
}

// SectionTexts lists body paragraphs grouped under their top-level
// section title.
func (j *JATS) SectionTexts() []SectionText {
	body := j.root.descendant("body")
	if body == nil {
		return nil
	}

	var texts []SectionText
	for i := range body.Children {
		sec := &body.Children[i]
		if sec.XMLName.Local != "sec" {
			continue
		}
		title := sec.childText("title")
		sec.walk(func(n *xmlNode) {
			if n.XMLName.Local != "p" {
				return
			}
			if text := collapseSpace(n.allText()); text != "" {
				texts = append(texts, SectionText{Section: title, Text: text})
			}
		})
	}
	return texts
}

// FigureSlug finds the hosting slug for a figure by its label text.
// Returns "" when the label is absent or carries no slug.
func (j *JATS) FigureSlug(label string) string {
	var slug string
	j.root.walk(func(n *xmlNode) {
		if slug != "" || n.childText("label") != label {
			return
		}
		slug = figSlug(n)
	})
	return slug
}

// figSlug returns the text of the child element flagged with a "slug"
// attribute value (hwp:sub-type="slug" in practice).
func figSlug(fig *xmlNode) string {
	for i := range fig.Children {
		for _, attr := range fig.Children[i].Attrs {
			if attr.Value == "slug" {
				return strings.TrimSpace(fig.Children[i].Text)
			}
		}
	}
	return ""
}

func (n *xmlNode) walk(fn func(*xmlNode)) {
	fn(n)
	for i := range n.Children {
		n.Children[i].walk(fn)
	}
}

// descendant returns the first element with the given local name, depth
// first.
func (n *xmlNode) descendant(name string) *xmlNode {
	var found *xmlNode
	n.walk(func(c *xmlNode) {
		if found == nil && c.XMLName.Local == name {
			found = c
		}
	})
	return found
}

// childText returns the collapsed text of the first direct child with
// the given local name.
func (n *xmlNode) childText(name string) string {
	for i := range n.Children {
		if n.Children[i].XMLName.Local == name {
			return collapseSpace(n.Children[i].allText())
		}
	}
	return ""
}

// allText concatenates the node's own character data and that of every
// descendant.
func (n *xmlNode) allText() string {
	var sb strings.Builder
	sb.WriteString(n.Text)
	for i := range n.Children {
		sb.WriteString(" ")
		sb.WriteString(n.Children[i].allText())
	}
	return sb.String()
}

// collapseSpace normalizes runs of whitespace to single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
