package paperview

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/paperview/paperview/extract"
)

// ScrapeDOI fetches a bioRxiv content page and pulls the DOI out of the
// citation metadata block. Useful when all you have is a landing-page
// URL from a feed entry.
func ScrapeDOI(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", &extract.FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &extract.FetchError{URL: pageURL, Err: fmt.Errorf("http %s", resp.Status)}
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return "", &extract.ParseError{Err: fmt.Errorf("parse page: %w", err)}
	}

	doi := doiFromDocument(doc)
	if doi == "" {
		return "", &extract.ParseError{Err: fmt.Errorf("no DOI metadata on %s", pageURL)}
	}
	return doi, nil
}

// doiFromDocument walks the parse tree for the highwire citation DOI
// node and returns the part after the doi.org prefix.
func doiFromDocument(doc *html.Node) string {
	node := findByClass(doc, "highwire-cite-metadata-doi highwire-cite-metadata")
	if node == nil {
		return ""
	}
	text := collectText(node)
	parts := strings.Split(text, "https://doi.org/")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[len(parts)-1])
}

func findByClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key == "class" && attr.Val == class {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func collectText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(collectText(c))
	}
	return sb.String()
}
