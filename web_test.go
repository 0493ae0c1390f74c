package paperview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const contentPage = `<html><body>
<div class="highwire-cite">
	<span class="highwire-cite-metadata-doi highwire-cite-metadata">
		<span class="label">doi:</span>
		https://doi.org/10.1101/339747
	</span>
</div>
</body></html>`

func TestDOIFromDocument(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(contentPage))
	require.NoError(t, err)

	assert.Equal(t, "10.1101/339747", doiFromDocument(doc))
}

func TestDOIFromDocumentMissing(t *testing.T) {
	doc, err := html.Parse(strings.NewReader("<html><body><p>nothing here</p></body></html>"))
	require.NoError(t, err)

	assert.Equal(t, "", doiFromDocument(doc))
}

func TestDOIFromDocumentClassMustMatchExactly(t *testing.T) {
	page := `<html><body>
	<span class="highwire-cite-metadata-doi">https://doi.org/10.1101/111111</span>
	</body></html>`
	doc, err := html.Parse(strings.NewReader(page))
	require.NoError(t, err)

	assert.Equal(t, "", doiFromDocument(doc))
}

func TestScrapeDOI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(contentPage))
	}))
	defer srv.Close()

	doi, err := ScrapeDOI(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "10.1101/339747", doi)
}

func TestScrapeDOINotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body></body></html>"))
	}))
	defer srv.Close()

	_, err := ScrapeDOI(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, "parse", failureStage(err))
}
