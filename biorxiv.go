package paperview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/paperview/paperview/extract"
)

// apiBaseURL is a variable so tests can point the client at a local
// server.
var apiBaseURL = "https://api.biorxiv.org"

// Cursor tolerates the API's mixed encoding: numeric for interval
// pages, the string "na" for DOI queries.
type Cursor string

func (c *Cursor) UnmarshalJSON(data []byte) error {
	*c = Cursor(strings.Trim(string(data), `"`))
	return nil
}

// Message is the paging envelope returned alongside each details query.
type Message struct {
	Status         string `json:"status"`
	Interval       string `json:"interval"`
	Cursor         Cursor `json:"cursor"`
	Count          int    `json:"count"`
	CountNewPapers int    `json:"count_new_papers"`
	Total          int    `json:"total"`
}

// detailResponse is the wire shape of /details responses.
type detailResponse struct {
	Messages   []Message      `json:"messages"`
	Collection []detailRecord `json:"collection"`
}

type detailRecord struct {
	Title                          string `json:"title"`
	Authors                        string `json:"authors"`
	Date                           string `json:"date"`
	Category                       string `json:"category"`
	DOI                            string `json:"doi"`
	AuthorCorresponding            string `json:"author_corresponding"`
	AuthorCorrespondingInstitution string `json:"author_corresponding_institution"`
	Version                        string `json:"version"`
	Type                           string `json:"type"`
	License                        string `json:"license"`
	Abstract                       string `json:"abstract"`
	Published                      string `json:"published"`
	Server                         string `json:"server"`
	JATSXML                        string `json:"jatsxml"`
}

func (r detailRecord) manuscript() *Manuscript {
	return &Manuscript{
		DOI:                            r.DOI,
		Title:                          r.Title,
		Authors:                        r.Authors,
		Date:                           r.Date,
		Category:                       r.Category,
		AuthorCorresponding:            r.AuthorCorresponding,
		AuthorCorrespondingInstitution: r.AuthorCorrespondingInstitution,
		Version:                        r.Version,
		Type:                           r.Type,
		License:                        r.License,
		Abstract:                       r.Abstract,
		Published:                      r.Published,
		Server:                         r.Server,
		JATSURL:                        r.JATSXML,
	}
}

var (
	dateRangeRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}/\d{4}-\d{2}-\d{2}$`)
	recentNRe    = regexp.MustCompile(`^\d+$`)
	recentDaysRe = regexp.MustCompile(`^\d+d$`)
)

// ValidateInterval reports whether interval is acceptable to the details
// API: two YYYY-MM-DD dates separated by '/', a bare count of most recent
// posts, or a count of days suffixed with 'd'.
func ValidateInterval(interval string) bool {
	if dateRangeRe.MatchString(interval) {
		for _, part := range []string{interval[:10], interval[11:]} {
			if _, err := time.Parse("2006-01-02", part); err != nil {
				return false
			}
		}
		return true
	}
	return recentNRe.MatchString(interval) || recentDaysRe.MatchString(interval)
}

// FetchDetail retrieves a manuscript's metadata by DOI, serving from the
// cache when possible and storing API results. A DOI with a cached
// failure fails fast until ClearNegative.
func (c *Cache) FetchDetail(ctx context.Context, doi string) (*Manuscript, error) {
	if m, err := c.GetManuscript(ctx, doi); err == nil {
		return m, nil
	}
	if rec, ok := c.negativeFor(ctx, doi); ok {
		return nil, fmt.Errorf("cached %s failure for %s: %s", rec.Stage, doi, rec.Message)
	}

	m, err := fetchDetailByDOI(ctx, c.server, doi)
	if err != nil {
		c.recordNegative(ctx, doi, failureStage(err), err)
		return nil, err
	}

	if err := c.PutManuscript(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// FetchInterval retrieves all manuscripts posted within an interval,
// following cursor pagination 100 records at a time, and stores each.
func (c *Cache) FetchInterval(ctx context.Context, interval string) ([]*Manuscript, error) {
	if !ValidateInterval(interval) {
		return nil, fmt.Errorf("invalid interval: %q", interval)
	}

	var all []*Manuscript
	cursor := 0
	for {
		url := fmt.Sprintf("%s/details/%s/%s/%d/json", apiBaseURL, c.server, interval, cursor)
		resp, err := queryDetails(ctx, url)
		if err != nil {
			return all, err
		}

		for _, rec := range resp.Collection {
			m := rec.manuscript()
			if err := c.PutManuscript(ctx, m); err != nil {
				return all, err
			}
			all = append(all, m)
		}

		// Pages hold 100 records; a short page is the last one.
		if len(resp.Collection) < 100 {
			return all, nil
		}
		cursor += 100
	}
}

func fetchDetailByDOI(ctx context.Context, server, doi string) (*Manuscript, error) {
	url := fmt.Sprintf("%s/details/%s/%s/na/json", apiBaseURL, server, doi)
	resp, err := queryDetails(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(resp.Collection) == 0 {
		return nil, &extract.ParseError{Err: fmt.Errorf("manuscript not found: %s", doi)}
	}
	return resp.Collection[0].manuscript(), nil
}

func queryDetails(ctx context.Context, url string) (*detailResponse, error) {
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

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &extract.FetchError{URL: url, Err: err}
	}

	var decoded detailResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &extract.ParseError{Err: fmt.Errorf("decode details: %w", err)}
	}
	return &decoded, nil
}

// failureStage classifies an error for negative-result caching.
func failureStage(err error) string {
	var fetchErr *extract.FetchError
	var parseErr *extract.ParseError
	var invErr *extract.InvariantError
	switch {
	case errors.As(err, &fetchErr):
		return "fetch"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &invErr):
		return "invariant"
	}
	return "error"
}
