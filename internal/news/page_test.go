// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/pdiddy/reader-engine/pkg/types"
)

const samplePage = `<!DOCTYPE html>
<html><body>
  <div class="story">
    <h3 class="headline">Rivers Run Clearer After Cleanup</h3>
    <a class="more" href="/news/rivers">Read more</a>
    <p class="standfirst">Volunteers  report   progress.</p>
  </div>
  <div class="story">
    <h3 class="headline">Local Team Wins Finals</h3>
    <a class="more" href="https://example.org/finals">Read more</a>
    <p class="standfirst">A close match.</p>
  </div>
  <div class="story">
    <h3 class="headline"></h3>
    <a class="more" href="/untitled">Read more</a>
  </div>
</body></html>`

func testPageConfig(pageURL string) types.PageConfig {
	return types.PageConfig{
		URL:     pageURL,
		Source:  "city-news",
		Topics:  []string{"local"},
		Item:    "div.story",
		Title:   "h3.headline",
		Link:    "a.more",
		Summary: "p.standfirst",
	}
}

func TestPageFetchScrapes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(samplePage))
	}))
	defer ts.Close()

	src := NewPage(types.NewsConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test/0.1"},
		Pages:      []types.PageConfig{testPageConfig(ts.URL)},
	})

	items, err := src.Fetch(context.Background(), []string{"local"}, time.Now())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	// The untitled story is dropped.
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}

	got := items[0]
	if got.Title != "Rivers Run Clearer After Cleanup" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Source != "city-news" {
		t.Errorf("Source = %q, want configured source name", got.Source)
	}
	if got.Summary != "Volunteers report progress." {
		t.Errorf("Summary = %q, want whitespace collapsed", got.Summary)
	}
	if got.Link != ts.URL+"/news/rivers" {
		t.Errorf("Link = %q, want relative href resolved against page URL", got.Link)
	}
	if items[1].Link != "https://example.org/finals" {
		t.Errorf("absolute Link = %q, should be untouched", items[1].Link)
	}
}

func TestPageFetchSkipsOtherTopics(t *testing.T) {
	src := NewPage(types.NewsConfig{
		Pages: []types.PageConfig{testPageConfig("http://example.com")},
	})
	items, err := src.Fetch(context.Background(), []string{"science"}, time.Now())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if items != nil {
		t.Errorf("items = %+v, want nil when no page serves the topic", items)
	}
}

func TestPageFetchEmptyTopicListServesAll(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(samplePage))
	}))
	defer ts.Close()

	cfg := testPageConfig(ts.URL)
	cfg.Topics = nil
	src := NewPage(types.NewsConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second},
		Pages:      []types.PageConfig{cfg},
	})

	items, err := src.Fetch(context.Background(), []string{"anything"}, time.Now())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len(items) = %d, want 2", len(items))
	}
}

func TestPageFetchReportsFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	src := NewPage(types.NewsConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second},
		Pages:      []types.PageConfig{testPageConfig(ts.URL)},
	})

	_, err := src.Fetch(context.Background(), []string{"local"}, time.Now())
	if err == nil {
		t.Fatal("expected error when the only page fails")
	}
}

func TestPageSourceFallsBackToHost(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(samplePage))
	}))
	defer ts.Close()

	cfg := testPageConfig(ts.URL)
	cfg.Source = ""
	src := NewPage(types.NewsConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second},
		Pages:      []types.PageConfig{cfg},
	})

	items, err := src.Fetch(context.Background(), []string{"local"}, time.Now())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	u, _ := url.Parse(ts.URL)
	if len(items) == 0 || items[0].Source != u.Host {
		t.Errorf("Source should fall back to the page host %q", u.Host)
	}
}

func TestResolveLink(t *testing.T) {
	base, _ := url.Parse("https://example.com/news/")
	tests := []struct {
		href string
		want string
	}{
		{"/story/1", "https://example.com/story/1"},
		{"story/2", "https://example.com/news/story/2"},
		{"https://other.org/x", "https://other.org/x"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := resolveLink(base, tt.href); got != tt.want {
			t.Errorf("resolveLink(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}
