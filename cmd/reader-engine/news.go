// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/reader-engine/internal/news"
)

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "List candidate news stories",
	Long: `News fetches and prints the candidate stories the selection stage would
see: RSS and Atom feeds plus scraped HTML pages, merged, deduplicated, and
filtered to the publication window around the target date.`,
	RunE: runNews,
}

func init() {
	newsCmd.Flags().String("topic", "", "topic to fetch candidates for (empty: all configured topics)")
	newsCmd.Flags().String("date", "", "target publication date (YYYY-MM-DD, default today)")
	newsCmd.Flags().Bool("json", false, "output candidates as JSON")

	rootCmd.AddCommand(newsCmd)
}

func runNews(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log := newLogger(cmd, cfg)

	date, err := flagDate(cmd)
	if err != nil {
		return err
	}
	var topics []string
	if topic, _ := cmd.Flags().GetString("topic"); topic != "" {
		topics = append(topics, topic)
	}

	agg := news.NewAggregator(cfg.News, []news.Source{
		news.NewRSS(cfg.News),
		news.NewPage(cfg.News),
	}, log)

	items, err := agg.Fetch(context.Background(), topics, date)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	if len(items) == 0 {
		fmt.Println("No candidate stories found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-60s  %-10s  %-10s\n", "Title", "Source", "Published")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 84))
	for _, item := range items {
		title := item.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		published := "-"
		if !item.Published.IsZero() {
			published = item.Published.Format("2006-01-02")
		}
		fmt.Fprintf(os.Stdout, "%-60s  %-10s  %-10s\n", title, item.Source, published)
	}
	fmt.Fprintf(os.Stdout, "\n%d candidates\n", len(items))
	return nil
}
