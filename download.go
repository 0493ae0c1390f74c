package paperview

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/paperview/paperview/extract"
)

// DownloadPDF fetches the full-text PDF for a cached manuscript and
// stores it under the cache tree. Returns the local path. Already
// downloaded PDFs are reused.
func (c *Cache) DownloadPDF(ctx context.Context, doi string) (string, error) {
	m, err := c.GetManuscript(ctx, doi)
	if err != nil {
		return "", fmt.Errorf("get manuscript: %w", err)
	}

	if m.PDFDownloaded && m.PDFPath != "" {
		if _, err := os.Stat(m.PDFPath); err == nil {
			return m.PDFPath, nil
		}
	}

	// Organize by DOI suffix prefix for large-scale storage,
	// e.g. 10.1101/339747 -> pdf/3397/339747.pdf
	suffix := doiSuffix(m.DOI)
	dir := filepath.Join(c.root, "pdf", doiPrefix(suffix))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, suffix+".pdf")
	if err := downloadFile(ctx, m.PDFURL(), path); err != nil {
		return "", err
	}

	m.PDFPath = path
	m.PDFDownloaded = true
	if err := c.PutManuscript(ctx, m); err != nil {
		return "", err
	}
	return path, nil
}

// TempPDF fetches a PDF into the cache's tmp directory without marking
// the manuscript downloaded. Callers remove the file when done.
func (c *Cache) TempPDF(ctx context.Context, m *Manuscript) (string, error) {
	f, err := os.CreateTemp(filepath.Join(c.root, "tmp"), "paperview-*.pdf")
	if err != nil {
		return "", err
	}
	path := f.Name()
	f.Close()

	if err := downloadFile(ctx, m.PDFURL(), path); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// FetchImage downloads the large-rendition JPEG for a figure slug.
// A 404 for a bad slug comes back as a FetchError so callers can fall
// through to a backup slug.
func (c *Cache) FetchImage(ctx context.Context, m *Manuscript, slug string) ([]byte, error) {
	url := m.ImageURL(slug)
	resp, err := httpGetWithContext(ctx, url)
	if err != nil {
		return nil, &extract.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &extract.FetchError{URL: url, Err: fmt.Errorf("http %s", resp.Status)}
	}
	return io.ReadAll(resp.Body)
}

func downloadFile(ctx context.Context, url, path string) error {
	resp, err := httpGetWithContext(ctx, url)
	if err != nil {
		return &extract.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &extract.FetchError{URL: url, Err: fmt.Errorf("http %s", resp.Status)}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

// doiSuffix returns the registrant-local part of a DOI
// ("10.1101/339747" -> "339747"), or the DOI itself if it has no slash.
func doiSuffix(doi string) string {
	if i := strings.LastIndex(doi, "/"); i >= 0 {
		return doi[i+1:]
	}
	return doi
}

func doiPrefix(suffix string) string {
	if len(suffix) >= 4 {
		return suffix[:4]
	}
	return suffix
}

func httpGetWithContext(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	return http.DefaultClient.Do(req)
}
