// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/reader-engine/internal/httputil"
	"github.com/pdiddy/reader-engine/pkg/types"
)

// Page scrapes configured HTML pages with CSS selectors. Each page config
// names an item selector plus title/link/summary selectors evaluated inside
// every matched item.
type Page struct {
	Pages      []types.PageConfig
	UserAgent  string
	MaxRetries int
	Client     *http.Client
}

// NewPage builds the page source from config.
func NewPage(cfg types.NewsConfig) *Page {
	return &Page{
		Pages:     cfg.Pages,
		UserAgent: cfg.UserAgent,
		Client:    &http.Client{Timeout: cfg.Timeout},
	}
}

// Name returns the source identifier.
func (s *Page) Name() string { return "page" }

// Fetch scrapes every configured page serving one of the topics. Pages with
// an empty topic list serve all topics. Failed pages are skipped; an error
// is returned only when every page failed.
func (s *Page) Fetch(ctx context.Context, topics []string, _ time.Time) ([]types.NewsItem, error) {
	pages := s.pagesForTopics(topics)
	if len(pages) == 0 {
		return nil, nil
	}

	var items []types.NewsItem
	var firstErr error
	failed := 0
	for _, page := range pages {
		pageItems, err := s.scrape(ctx, page)
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = fmt.Errorf("page %s: %w", page.URL, err)
			}
			continue
		}
		items = append(items, pageItems...)
	}
	if failed == len(pages) {
		return nil, firstErr
	}
	return items, nil
}

func (s *Page) pagesForTopics(topics []string) []types.PageConfig {
	want := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		want[t] = struct{}{}
	}

	var pages []types.PageConfig
	for _, page := range s.Pages {
		if len(page.Topics) == 0 {
			pages = append(pages, page)
			continue
		}
		for _, t := range page.Topics {
			if _, ok := want[t]; ok {
				pages = append(pages, page)
				break
			}
		}
	}
	return pages
}

func (s *Page) scrape(ctx context.Context, page types.PageConfig) ([]types.NewsItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, page.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, s.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	base, err := url.Parse(page.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url %s: %w", page.URL, err)
	}

	source := page.Source
	if source == "" {
		source = base.Host
	}

	var items []types.NewsItem
	doc.Find(page.Item).Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Find(page.Title).First().Text())
		if title == "" {
			return
		}

		item := types.NewsItem{Title: title, Source: source}
		if page.Summary != "" {
			item.Summary = strings.Join(strings.Fields(sel.Find(page.Summary).First().Text()), " ")
		}
		if href, ok := sel.Find(page.Link).First().Attr("href"); ok {
			item.Link = resolveLink(base, href)
		}
		items = append(items, item)
	})
	return items, nil
}

// resolveLink makes relative hrefs absolute against the page URL.
func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
