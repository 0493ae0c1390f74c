package paperview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorList(t *testing.T) {
	m := &Manuscript{Authors: "Doe, J.; Roe, R.; Poe, P."}
	assert.Equal(t, []string{"Doe, J.", "Roe, R.", "Poe, P."}, m.AuthorList())

	assert.Nil(t, (&Manuscript{}).AuthorList())
}

func TestPDFURL(t *testing.T) {
	m := &Manuscript{DOI: "10.1101/339747", Version: "2"}
	assert.Equal(t, "https://www.biorxiv.org/content/10.1101/339747v2.full.pdf", m.PDFURL())
}

func TestContentURL(t *testing.T) {
	m := &Manuscript{DOI: "10.1101/339747", Version: "1"}
	assert.Equal(t, "https://www.biorxiv.org/content/10.1101/339747v1", m.ContentURL())
}

func TestImageURL(t *testing.T) {
	m := &Manuscript{
		JATSURL: "https://www.biorxiv.org/content/early/2018/06/05/339747.source.xml",
	}
	assert.Equal(t,
		"https://www.biorxiv.org/content/early/2018/06/05/339747/F1.large.jpg",
		m.ImageURL("F1"))
}
