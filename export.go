package paperview

import (
	"fmt"
	"strings"
)

// BibTeXEntry represents a BibTeX entry for a manuscript
type BibTeXEntry struct {
	Type   string            // @article, @misc, etc.
	Key    string            // Citation key
	Fields map[string]string // BibTeX fields
}

// ToBibTeX converts a Manuscript to BibTeX format
func (m *Manuscript) ToBibTeX() string {
	entry := BibTeXEntry{
		Type:   "misc",
		Key:    m.BibTeXKey(),
		Fields: make(map[string]string),
	}

	// Published preprints cite the journal version
	if m.Published != "" && m.Published != "NA" {
		entry.Type = "article"
	}

	// Title
	if m.Title != "" {
		entry.Fields["title"] = m.Title
	}

	// Authors
	if m.Authors != "" {
		entry.Fields["author"] = m.formatAuthorsBibTeX()
	}

	// Year
	if len(m.Date) >= 4 {
		entry.Fields["year"] = m.Date[:4]
	}

	entry.Fields["doi"] = m.DOI
	entry.Fields["archivePrefix"] = m.Server
	entry.Fields["primaryClass"] = m.Category

	// Abstract
	if m.Abstract != "" {
		entry.Fields["abstract"] = m.Abstract
	}

	if m.Published != "" && m.Published != "NA" {
		entry.Fields["journal"] = m.Published
	}

	entry.Fields["url"] = m.ContentURL()

	// Build BibTeX string
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("@%s{%s,\n", entry.Type, entry.Key))

	fieldOrder := []string{"title", "author", "year", "journal", "archivePrefix", "primaryClass", "doi", "url", "abstract"}
	written := make(map[string]bool)

	for _, field := range fieldOrder {
		if value, ok := entry.Fields[field]; ok && value != "" {
			sb.WriteString(fmt.Sprintf("  %s = {%s},\n", field, escapeBibTeX(value)))
			written[field] = true
		}
	}

	// Write any remaining fields
	for field, value := range entry.Fields {
		if !written[field] && value != "" {
			sb.WriteString(fmt.Sprintf("  %s = {%s},\n", field, escapeBibTeX(value)))
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

// BibTeXKey generates a citation key for BibTeX
func (m *Manuscript) BibTeXKey() string {
	// Use first author's last name + year + first word of title
	key := "biorxiv"
	if authors := m.AuthorList(); len(authors) > 0 {
		// bioRxiv serves authors as "Last, F."
		lastName := strings.SplitN(authors[0], ",", 2)[0]
		lastName = strings.ToLower(strings.Trim(lastName, ". "))
		if lastName != "" {
			key = lastName
		}
	}

	if len(m.Date) >= 4 {
		key += m.Date[:4]
	}

	if m.Title != "" {
		words := strings.Fields(m.Title)
		if len(words) > 0 {
			firstWord := strings.ToLower(words[0])
			firstWord = strings.Trim(firstWord, ".,!?;:")
			if len(firstWord) > 0 {
				key += firstWord[:min(len(firstWord), 5)]
			}
		}
	}

	// Fallback to DOI
	if key == "biorxiv" {
		key = strings.ReplaceAll(m.DOI, ".", "")
		key = strings.ReplaceAll(key, "/", "")
	}

	return key
}

// formatAuthorsBibTeX formats authors for BibTeX (Last, First and Last, First)
func (m *Manuscript) formatAuthorsBibTeX() string {
	var formatted []string
	for _, author := range m.AuthorList() {
		author = strings.TrimSpace(author)
		if author == "" {
			continue
		}

		// bioRxiv already serves "Last, F."; keep as-is
		if strings.Contains(author, ",") {
			formatted = append(formatted, author)
		} else {
			words := strings.Fields(author)
			if len(words) >= 2 {
				lastName := words[len(words)-1]
				firstName := strings.Join(words[:len(words)-1], " ")
				formatted = append(formatted, fmt.Sprintf("%s, %s", lastName, firstName))
			} else {
				formatted = append(formatted, author)
			}
		}
	}

	return strings.Join(formatted, " and ")
}

// escapeBibTeX escapes special characters in BibTeX strings
func escapeBibTeX(s string) string {
	s = strings.ReplaceAll(s, "{", "\\{")
	s = strings.ReplaceAll(s, "}", "\\}")
	s = strings.ReplaceAll(s, "&", "\\&")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "$", "\\$")
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "^", "\\textasciicircum{}")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "~", "\\textasciitilde{}")
	return s
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ToRIS converts a Manuscript to RIS format
func (m *Manuscript) ToRIS() string {
	var sb strings.Builder
	sb.WriteString("TY  - JOUR\n")

	if m.Title != "" {
		sb.WriteString(fmt.Sprintf("TI  - %s\n", m.Title))
	}

	for _, author := range m.AuthorList() {
		author = strings.TrimSpace(author)
		if author != "" {
			sb.WriteString(fmt.Sprintf("AU  - %s\n", author))
		}
	}

	if len(m.Date) >= 4 {
		sb.WriteString(fmt.Sprintf("PY  - %s\n", m.Date[:4]))
		sb.WriteString(fmt.Sprintf("DA  - %s\n", strings.ReplaceAll(m.Date, "-", "/")))
	}

	if m.Abstract != "" {
		sb.WriteString(fmt.Sprintf("AB  - %s\n", m.Abstract))
	}

	sb.WriteString(fmt.Sprintf("DO  - %s\n", m.DOI))
	sb.WriteString(fmt.Sprintf("UR  - %s\n", m.ContentURL()))

	if m.Category != "" {
		sb.WriteString(fmt.Sprintf("KW  - %s\n", m.Category))
	}

	sb.WriteString("ER  - \n")
	return sb.String()
}
