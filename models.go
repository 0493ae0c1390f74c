package paperview

import (
	"fmt"
	"strings"
	"time"
)

// Manuscript represents a preprint's metadata as served by the bioRxiv
// details API.
type Manuscript struct {
	// DOI is the manuscript identifier (e.g., "10.1101/339747")
	DOI string `gorm:"primaryKey"`

	// Title of the manuscript
	Title string

	// Authors as a single "; "-separated string (bioRxiv format)
	Authors string

	// Date the version was posted (YYYY-MM-DD)
	Date string `gorm:"index"`

	// Category is the bioRxiv subject category
	Category string `gorm:"index"`

	// AuthorCorresponding is the corresponding author's name
	AuthorCorresponding string `gorm:"column:author_corresponding"`

	// AuthorCorrespondingInstitution is their institution
	AuthorCorrespondingInstitution string `gorm:"column:author_corresponding_institution"`

	// Version is the manuscript version number as a string
	Version string

	// Type of the posting (e.g., "new results")
	Type string

	// License short name
	License string

	// Abstract of the manuscript
	Abstract string

	// Published holds the journal DOI once published, or "NA"
	Published string

	// Server is the hosting server ("biorxiv" or "medrxiv")
	Server string

	// JATSURL points at the manuscript's JATS source XML
	JATSURL string `gorm:"column:jats_url"`

	// PDFPath is the local path to the PDF (if downloaded)
	PDFPath string `gorm:"column:pdf_path"`

	// PDFDownloaded indicates if the PDF has been downloaded
	PDFDownloaded bool `gorm:"column:pdf_downloaded"`

	// MetadataUpdated timestamp
	MetadataUpdated *time.Time `gorm:"column:metadata_updated"`
}

func (Manuscript) TableName() string {
	return "manuscripts"
}

// AuthorList returns the authors as a slice.
func (m *Manuscript) AuthorList() []string {
	if m.Authors == "" {
		return nil
	}
	return strings.Split(m.Authors, "; ")
}

// PDFURL returns the full-text PDF download URL for this version.
func (m *Manuscript) PDFURL() string {
	return fmt.Sprintf("https://www.biorxiv.org/content/%sv%s.full.pdf", m.DOI, m.Version)
}

// baseXMLURL is the JATS URL with its .source.xml suffix removed; figure
// assets live underneath it.
func (m *Manuscript) baseXMLURL() string {
	return strings.SplitN(m.JATSURL, ".source.xml", 2)[0]
}

// ImageURL returns the large-rendition JPEG URL for a figure slug.
func (m *Manuscript) ImageURL(slug string) string {
	return fmt.Sprintf("%s/%s.large.jpg", m.baseXMLURL(), slug)
}

// ContentURL returns the manuscript's landing page URL.
func (m *Manuscript) ContentURL() string {
	return fmt.Sprintf("https://www.biorxiv.org/content/%sv%s", m.DOI, m.Version)
}

// Feed is a subscribed RSS/Atom feed.
type Feed struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string
	URL         string `gorm:"uniqueIndex;column:url"`
	LastFetched *time.Time `gorm:"column:last_fetched"`
}

func (Feed) TableName() string {
	return "feeds"
}

// FeedArticle is one entry seen in a subscribed feed.
type FeedArticle struct {
	ID          uint   `gorm:"primaryKey"`
	FeedID      uint   `gorm:"index;column:feed_id"`
	Title       string
	Summary     string
	Author      string
	URL         string    `gorm:"uniqueIndex;column:url"`
	Published   time.Time `gorm:"index"`
	Interesting bool
}

func (FeedArticle) TableName() string {
	return "feed_articles"
}

// Overview is a cached rendered overview document for a manuscript.
type Overview struct {
	DOI       string `gorm:"primaryKey"`
	HTML      string `gorm:"type:text"`
	Generated time.Time
}

func (Overview) TableName() string {
	return "overviews"
}

// NegativeResult records a failed pipeline run so it is not retried on
// every request. Stage distinguishes fetch, parse, and invariant
// failures.
type NegativeResult struct {
	DOI      string `gorm:"primaryKey"`
	Stage    string
	Message  string
	Recorded time.Time
}

func (NegativeResult) TableName() string {
	return "negative_results"
}
