package paperview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssFixture = `<?xml version="1.0" encoding="utf-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
<title>bioRxiv Subject Collection: Neuroscience</title>
<item>
<title>First preprint</title>
<link>http://biorxiv.org/cgi/content/short/2024.01.01.111111v1</link>
<description>Summary of the first preprint.</description>
<dc:creator>Doe, J.</dc:creator>
<dc:date>2024-01-02</dc:date>
</item>
<item>
<title>Second preprint</title>
<link>http://biorxiv.org/cgi/content/short/2024.01.01.222222v1</link>
<description>Summary of the second preprint.</description>
<pubDate>Tue, 02 Jan 2024 10:00:00 +0000</pubDate>
</item>
</channel>
</rss>`

const atomFixture = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
<title>Example Atom feed</title>
<entry>
<title>Atom entry</title>
<link rel="alternate" href="https://example.org/entry/1"/>
<summary>Atom summary.</summary>
<author><name>Roe, R.</name></author>
<published>2024-03-04T05:06:07Z</published>
</entry>
</feed>`

func TestParseFeedRSS(t *testing.T) {
	feed, err := parseFeed([]byte(rssFixture))
	require.NoError(t, err)

	assert.Equal(t, "bioRxiv Subject Collection: Neuroscience", feed.Title)
	require.Len(t, feed.Entries, 2)

	first := feed.Entries[0]
	assert.Equal(t, "First preprint", first.Title)
	assert.Equal(t, "http://biorxiv.org/cgi/content/short/2024.01.01.111111v1", first.URL)
	assert.Equal(t, "Summary of the first preprint.", first.Summary)
	assert.Equal(t, "Doe, J.", first.Author)
	assert.Equal(t, 2024, first.Published.Year())

	second := feed.Entries[1]
	assert.Equal(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), second.Published.UTC())
}

func TestParseFeedAtom(t *testing.T) {
	feed, err := parseFeed([]byte(atomFixture))
	require.NoError(t, err)

	assert.Equal(t, "Example Atom feed", feed.Title)
	require.Len(t, feed.Entries, 1)

	entry := feed.Entries[0]
	assert.Equal(t, "Atom entry", entry.Title)
	assert.Equal(t, "https://example.org/entry/1", entry.URL)
	assert.Equal(t, "Atom summary.", entry.Summary)
	assert.Equal(t, "Roe, R.", entry.Author)
	assert.Equal(t, time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC), entry.Published.UTC())
}

func TestParseFeedUnrecognized(t *testing.T) {
	_, err := parseFeed([]byte("<html><body>not a feed</body></html>"))
	require.Error(t, err)
}

func TestParseFeedTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"Tue, 02 Jan 2024 10:00:00 +0000", time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)},
		{"2024-03-04T05:06:07Z", time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)},
		{"2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"garbage", time.Time{}},
		{"", time.Time{}},
	}

	for _, tt := range tests {
		got := parseFeedTime(tt.in)
		assert.True(t, tt.want.Equal(got), "parseFeedTime(%q) = %v, want %v", tt.in, got, tt.want)
	}
}
