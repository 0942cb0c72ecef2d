// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package news

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/reader-engine/internal/httputil"
	"github.com/pdiddy/reader-engine/pkg/types"
)

// RSS fetches RSS 2.0 and Atom feeds. Feed URLs are configured per topic;
// URLs under the "*" key apply to every fetch.
type RSS struct {
	Feeds      map[string][]string
	Window     time.Duration
	UserAgent  string
	MaxRetries int
	Client     *http.Client
}

// NewRSS builds the feed source from config.
func NewRSS(cfg types.NewsConfig) *RSS {
	return &RSS{
		Feeds:     cfg.Feeds,
		Window:    cfg.Window,
		UserAgent: cfg.UserAgent,
		Client:    &http.Client{Timeout: cfg.Timeout},
	}
}

// Name returns the source identifier.
func (s *RSS) Name() string { return "rss" }

// Fetch downloads every feed configured for the topics and returns the items
// inside the date window. Feeds that fail are skipped; an error is returned
// only when every feed failed.
func (s *RSS) Fetch(ctx context.Context, topics []string, date time.Time) ([]types.NewsItem, error) {
	urls := s.feedURLs(topics)
	if len(urls) == 0 {
		return nil, nil
	}

	var items []types.NewsItem
	var firstErr error
	failed := 0
	for _, u := range urls {
		feedItems, err := s.fetchFeed(ctx, u)
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = fmt.Errorf("feed %s: %w", u, err)
			}
			continue
		}
		items = append(items, feedItems...)
	}
	if failed == len(urls) {
		return nil, firstErr
	}

	return s.filterWindow(items, date), nil
}

// feedURLs returns the deduplicated feed list for the topics plus the
// wildcard feeds.
func (s *RSS) feedURLs(topics []string) []string {
	seen := make(map[string]struct{})
	var urls []string
	add := func(list []string) {
		for _, u := range list {
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			urls = append(urls, u)
		}
	}
	for _, topic := range topics {
		add(s.Feeds[topic])
	}
	add(s.Feeds["*"])
	return urls
}

func (s *RSS) fetchFeed(ctx context.Context, feedURL string) ([]types.NewsItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, s.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading feed: %w", err)
	}
	return parseFeed(body)
}

// parseFeed decodes an RSS 2.0 document, falling back to Atom.
func parseFeed(body []byte) ([]types.NewsItem, error) {
	var rss rssEnvelope
	if err := xml.Unmarshal(body, &rss); err == nil {
		var items []types.NewsItem
		for _, it := range rss.Channel.Items {
			item := types.NewsItem{
				Title:   strings.TrimSpace(it.Title),
				Source:  strings.TrimSpace(rss.Channel.Title),
				Summary: cleanHTML(it.Description),
				Link:    strings.TrimSpace(it.Link),
			}
			if t, ok := parseFeedTime(it.PubDate); ok {
				item.Published = t
			}
			items = append(items, item)
		}
		return items, nil
	}

	var atom atomFeed
	if err := xml.Unmarshal(body, &atom); err != nil {
		return nil, fmt.Errorf("parsing feed: not RSS 2.0 or Atom: %w", err)
	}
	var items []types.NewsItem
	for _, e := range atom.Entries {
		item := types.NewsItem{
			Title:   strings.TrimSpace(e.Title),
			Source:  strings.TrimSpace(atom.Title),
			Summary: cleanHTML(e.Summary),
			Link:    atomEntryLink(e),
		}
		stamp := e.Published
		if stamp == "" {
			stamp = e.Updated
		}
		if t, ok := parseFeedTime(stamp); ok {
			item.Published = t
		}
		items = append(items, item)
	}
	return items, nil
}

// filterWindow keeps items published within [date-Window, date+24h]. Items
// without a publication date pass through. A zero window disables filtering.
func (s *RSS) filterWindow(items []types.NewsItem, date time.Time) []types.NewsItem {
	if s.Window <= 0 || date.IsZero() {
		return items
	}
	cutoff := date.Add(-s.Window)
	limit := date.Add(24 * time.Hour)
	var out []types.NewsItem
	for _, item := range items {
		if item.Published.IsZero() {
			out = append(out, item)
			continue
		}
		if item.Published.Before(cutoff) || item.Published.After(limit) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// feedTimeFormats covers the date formats seen in real feeds.
var feedTimeFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02",
}

func parseFeedTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range feedTimeFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var tagExpr = regexp.MustCompile(`<[^>]*>`)

// cleanHTML strips markup and entities from feed descriptions.
func cleanHTML(raw string) string {
	text := tagExpr.ReplaceAllString(raw, " ")
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}

// RSS 2.0 feed XML structures.
type rssEnvelope struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

// Atom feed XML structures.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string     `xml:"title"`
	Links     []atomLink `xml:"link"`
	Summary   string     `xml:"summary"`
	Published string     `xml:"published"`
	Updated   string     `xml:"updated"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

// atomEntryLink prefers the alternate link, falling back to the first.
func atomEntryLink(e atomEntry) string {
	for _, l := range e.Links {
		if l.Rel == "" || l.Rel == "alternate" {
			return strings.TrimSpace(l.Href)
		}
	}
	if len(e.Links) > 0 {
		return strings.TrimSpace(e.Links[0].Href)
	}
	return ""
}
