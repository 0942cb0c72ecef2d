// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package news gathers candidate news items for the selection stage.
// Sources (RSS/Atom feeds, scraped HTML pages) are fanned out concurrently
// and their results deduplicated; the whole package is best-effort, a
// failed source never fails the caller as long as another one delivers.
package news

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pdiddy/reader-engine/pkg/types"
)

// cacheSize bounds the aggregator's topic+date result cache.
const cacheSize = 32

// Source fetches news candidates from one backend.
type Source interface {
	Name() string
	Fetch(ctx context.Context, topics []string, date time.Time) ([]types.NewsItem, error)
}

// Aggregator fans a fetch out to all configured sources, deduplicates by
// normalized title, orders newest first and caps the result. Results are
// cached per topics+date for the configured TTL so back-to-back pipeline
// runs do not refetch.
type Aggregator struct {
	Sources  []Source
	MaxItems int
	Log      *slog.Logger

	ttl   time.Duration
	cache *lru.Cache[string, cacheEntry]
}

type cacheEntry struct {
	items     []types.NewsItem
	fetchedAt time.Time
}

// NewAggregator builds an aggregator over the given sources. A nil logger
// disables logging; a zero TTL disables the cache.
func NewAggregator(cfg types.NewsConfig, sources []Source, log *slog.Logger) *Aggregator {
	a := &Aggregator{
		Sources:  sources,
		MaxItems: cfg.MaxItems,
		Log:      log,
		ttl:      cfg.CacheTTL,
	}
	if a.ttl > 0 {
		if cache, err := lru.New[string, cacheEntry](cacheSize); err == nil {
			a.cache = cache
		}
	}
	return a
}

// Fetch gathers candidates for the topics around the given date. Per-source
// failures are logged and tolerated; an error is returned only when every
// source failed and nothing was collected.
func (a *Aggregator) Fetch(ctx context.Context, topics []string, date time.Time) ([]types.NewsItem, error) {
	key := cacheKey(topics, date)
	if a.cache != nil {
		if entry, ok := a.cache.Get(key); ok && time.Since(entry.fetchedAt) < a.ttl {
			return append([]types.NewsItem(nil), entry.items...), nil
		}
	}

	type sourceResult struct {
		name  string
		items []types.NewsItem
		err   error
	}

	ch := make(chan sourceResult, len(a.Sources))
	var wg sync.WaitGroup
	for _, src := range a.Sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			items, err := src.Fetch(ctx, topics, date)
			ch <- sourceResult{name: src.Name(), items: items, err: err}
		}(src)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var all []types.NewsItem
	failed := 0
	for sr := range ch {
		if sr.err != nil {
			failed++
			a.log().Warn("news source failed", "source", sr.name, "error", sr.err)
			continue
		}
		all = append(all, sr.items...)
	}

	if len(all) == 0 && failed > 0 && failed == len(a.Sources) {
		return nil, fmt.Errorf("all %d news sources failed", failed)
	}

	items := dedupe(all)
	sort.SliceStable(items, func(i, j int) bool {
		pi, pj := items[i].Published, items[j].Published
		if pi.IsZero() != pj.IsZero() {
			return !pi.IsZero()
		}
		return pi.After(pj)
	})
	if a.MaxItems > 0 && len(items) > a.MaxItems {
		items = items[:a.MaxItems]
	}

	if a.cache != nil {
		a.cache.Add(key, cacheEntry{
			items:     append([]types.NewsItem(nil), items...),
			fetchedAt: time.Now(),
		})
	}
	return items, nil
}

func (a *Aggregator) log() *slog.Logger {
	if a.Log != nil {
		return a.Log
	}
	return slog.Default()
}

func cacheKey(topics []string, date time.Time) string {
	sorted := append([]string(nil), topics...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",") + "|" + date.Format("2006-01-02")
}

// dedupe drops items whose normalized title was already seen. The first
// occurrence wins; its empty fields are filled from later duplicates.
func dedupe(items []types.NewsItem) []types.NewsItem {
	seen := make(map[string]int)
	var out []types.NewsItem
	for _, item := range items {
		key := normalizeTitle(item.Title)
		if key == "" {
			continue
		}
		if idx, ok := seen[key]; ok {
			mergeInto(&out[idx], item)
			continue
		}
		seen[key] = len(out)
		out = append(out, item)
	}
	return out
}

func mergeInto(dst *types.NewsItem, src types.NewsItem) {
	if dst.Summary == "" && src.Summary != "" {
		dst.Summary = src.Summary
	}
	if dst.Link == "" && src.Link != "" {
		dst.Link = src.Link
	}
	if dst.Published.IsZero() && !src.Published.IsZero() {
		dst.Published = src.Published
	}
}

// normalizeTitle returns a lowercased, punctuation-stripped version of the
// title for dedup keys.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
