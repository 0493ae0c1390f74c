package paperview

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/paperview/paperview/extract"
)

// feedEntry is a feed item normalized across RSS and Atom.
type feedEntry struct {
	Title     string
	Summary   string
	Author    string
	URL       string
	Published time.Time
}

type parsedFeed struct {
	Title   string
	Entries []feedEntry
}

// rss2Feed matches RSS 2.0 documents.
type rss2Feed struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Title string `xml:"title"`
		Items []struct {
			Title       string `xml:"title"`
			Link        string `xml:"link"`
			Description string `xml:"description"`
			Creator     string `xml:"creator"`
			Author      string `xml:"author"`
			PubDate     string `xml:"pubDate"`
			Date        string `xml:"date"`
		} `xml:"item"`
	} `xml:"channel"`
}

// atomFeed matches Atom documents.
type atomFeed struct {
	XMLName xml.Name `xml:"feed"`
	Title   string   `xml:"title"`
	Entries []struct {
		Title   string `xml:"title"`
		Links   []struct {
			Rel  string `xml:"rel,attr"`
			Href string `xml:"href,attr"`
		} `xml:"link"`
		Summary string `xml:"summary"`
		Author  struct {
			Name string `xml:"name"`
		} `xml:"author"`
		Published string `xml:"published"`
		Updated   string `xml:"updated"`
	} `xml:"entry"`
}

// Subscribe fetches and validates a feed URL, then stores the
// subscription. Subscribing twice to the same URL is a no-op.
func (c *Cache) Subscribe(ctx context.Context, url string) (*Feed, error) {
	parsed, err := fetchFeed(ctx, url)
	if err != nil {
		return nil, err
	}

	feed := &Feed{URL: url, Title: parsed.Title}
	if err := c.db.WithContext(ctx).Where("url = ?", url).FirstOrCreate(feed).Error; err != nil {
		return nil, fmt.Errorf("store feed: %w", err)
	}
	return feed, nil
}

// ListFeeds returns all subscribed feeds.
func (c *Cache) ListFeeds(ctx context.Context) ([]Feed, error) {
	var feeds []Feed
	if err := c.db.WithContext(ctx).Order("id").Find(&feeds).Error; err != nil {
		return nil, err
	}
	return feeds, nil
}

// RefreshFeeds re-fetches every subscribed feed and stores entries not
// seen before. Returns the number of new articles. A feed that fails to
// fetch is skipped, not fatal.
func (c *Cache) RefreshFeeds(ctx context.Context) (int, error) {
	feeds, err := c.ListFeeds(ctx)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, feed := range feeds {
		parsed, err := fetchFeed(ctx, feed.URL)
		if err != nil {
			continue
		}

		for _, entry := range parsed.Entries {
			if entry.URL == "" {
				continue
			}
			article := FeedArticle{
				FeedID:    feed.ID,
				Title:     entry.Title,
				Summary:   entry.Summary,
				Author:    entry.Author,
				URL:       entry.URL,
				Published: entry.Published,
			}
			res := c.db.WithContext(ctx).Where("url = ?", entry.URL).FirstOrCreate(&article)
			if res.Error != nil {
				return added, fmt.Errorf("store article: %w", res.Error)
			}
			added += int(res.RowsAffected)
		}

		now := time.Now()
		feed.LastFetched = &now
		if err := c.db.WithContext(ctx).Save(&feed).Error; err != nil {
			return added, err
		}
	}
	return added, nil
}

// LatestArticles returns the newest feed articles, most recent first.
func (c *Cache) LatestArticles(ctx context.Context, limit int) ([]FeedArticle, error) {
	if limit <= 0 {
		limit = 10
	}
	var articles []FeedArticle
	err := c.db.WithContext(ctx).Order("published desc").Limit(limit).Find(&articles).Error
	if err != nil {
		return nil, err
	}
	return articles, nil
}

// MarkInteresting flags or unflags a feed article by its URL.
func (c *Cache) MarkInteresting(ctx context.Context, articleURL string, interesting bool) error {
	res := c.db.WithContext(ctx).Model(&FeedArticle{}).
		Where("url = ?", articleURL).
		Update("interesting", interesting)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("article not found: %s", articleURL)
	}
	return nil
}

func fetchFeed(ctx context.Context, url string) (*parsedFeed, error) {
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
	return parseFeed(data)
}

// parseFeed decodes a feed document, trying RSS 2.0 first and Atom
// second.
func parseFeed(data []byte) (*parsedFeed, error) {
	var rss rss2Feed
	if err := xml.Unmarshal(data, &rss); err == nil && rss.XMLName.Local == "rss" {
		feed := &parsedFeed{Title: rss.Channel.Title}
		for _, item := range rss.Channel.Items {
			author := item.Creator
			if author == "" {
				author = item.Author
			}
			date := item.PubDate
			if date == "" {
				date = item.Date
			}
			feed.Entries = append(feed.Entries, feedEntry{
				Title:     item.Title,
				Summary:   item.Description,
				Author:    author,
				URL:       item.Link,
				Published: parseFeedTime(date),
			})
		}
		return feed, nil
	}

	var atom atomFeed
	if err := xml.Unmarshal(data, &atom); err == nil && atom.XMLName.Local == "feed" {
		feed := &parsedFeed{Title: atom.Title}
		for _, entry := range atom.Entries {
			link := ""
			for _, l := range entry.Links {
				if l.Rel == "" || l.Rel == "alternate" {
					link = l.Href
					break
				}
			}
			date := entry.Published
			if date == "" {
				date = entry.Updated
			}
			feed.Entries = append(feed.Entries, feedEntry{
				Title:     entry.Title,
				Summary:   entry.Summary,
				Author:    entry.Author.Name,
				URL:       link,
				Published: parseFeedTime(date),
			})
		}
		return feed, nil
	}

	return nil, &extract.ParseError{Err: fmt.Errorf("unrecognized feed format")}
}

var feedTimeFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	time.RFC822Z,
	time.RFC822,
	"2006-01-02",
}

func parseFeedTime(s string) time.Time {
	for _, format := range feedTimeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
