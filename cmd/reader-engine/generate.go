// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/reader-engine/internal/news"
	"github.com/pdiddy/reader-engine/internal/pipeline"
	"github.com/pdiddy/reader-engine/internal/provider"
	"github.com/pdiddy/reader-engine/internal/store"
	"github.com/pdiddy/reader-engine/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a graded news article",
	Long: `Generate runs the full article pipeline: select target vocabulary and a
story, plan the article, draft it, convert the draft into difficulty
levels, and annotate every level's grammar. A checkpoint is written to the
store after each stage and each annotated level; rerunning with the same
--run and --resume continues from the latest checkpoint instead of
starting over.

The finished article is written as JSON with a YAML sidecar.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("topic", "", "topic preference for story selection")
	generateCmd.Flags().String("words", "", "candidate vocabulary words (comma-separated)")
	generateCmd.Flags().String("words-file", "", "file with one candidate word per line")
	generateCmd.Flags().String("run", "", "run identifier for checkpointing (default: topic and date)")
	generateCmd.Flags().Bool("resume", false, "resume from the run's latest checkpoint")
	generateCmd.Flags().Int("levels", 0, "number of difficulty levels (default from config)")
	generateCmd.Flags().String("date", "", "target publication date (YYYY-MM-DD, default today)")
	generateCmd.Flags().String("out", "", "output directory (default from config)")
	generateCmd.Flags().String("db", "", "checkpoint database path (default from config)")
	generateCmd.Flags().Bool("no-news", false, "skip news gathering; the model picks the story itself")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log := newLogger(cmd, cfg)

	topic, _ := cmd.Flags().GetString("topic")
	date, err := flagDate(cmd)
	if err != nil {
		return err
	}
	words, err := candidateWords(cmd)
	if err != nil {
		return err
	}

	runID, _ := cmd.Flags().GetString("run")
	if runID == "" {
		runID = defaultRunID(topic, date)
	}

	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		dbPath = cfg.Store.Path
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()

	var cp *types.Checkpoint
	if resume, _ := cmd.Flags().GetBool("resume"); resume {
		cp, err = st.Latest(ctx, runID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			fmt.Fprintf(os.Stdout, "run %s: no checkpoint found, starting fresh\n", runID)
		case err != nil:
			return err
		default:
			fmt.Fprintf(os.Stdout, "run %s: resuming from stage %s\n", runID, cp.Stage)
		}
	}

	prov, err := provider.New(cfg.AI)
	if err != nil {
		return err
	}

	var fetcher pipeline.NewsFetcher
	if noNews, _ := cmd.Flags().GetBool("no-news"); !noNews {
		fetcher = news.NewAggregator(cfg.News, []news.Source{
			news.NewRSS(cfg.News),
			news.NewPage(cfg.News),
		}, log)
	}

	levels, _ := cmd.Flags().GetInt("levels")
	p := &pipeline.Pipeline{
		Provider:    prov,
		News:        fetcher,
		Sink:        st.Sink(runID),
		Out:         os.Stdout,
		Log:         log,
		Levels:      cfg.Generate.Levels,
		MinDraftLen: cfg.Generate.MinDraftLen,
	}
	res, err := p.Run(ctx, pipeline.Request{
		Topic:          topic,
		CandidateWords: words,
		Date:           date,
		Checkpoint:     cp,
		Levels:         levels,
	})
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("out")
	if outDir == "" {
		outDir = cfg.Generate.OutputDir
	}
	article := &types.Article{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Topic:       topic,
		Words:       res.Words,
		Summary:     res.Summary,
		SourceURLs:  res.SourceURLs,
		Document:    res.Document,
		Usage:       res.Usage,
	}
	jsonPath, yamlPath, err := writeArticle(outDir, article)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "\nArticle: %s\n", article.Document.Title)
	fmt.Fprintf(os.Stdout, "Written: %s, %s\n", jsonPath, yamlPath)
	printUsage(res.Usage)
	return nil
}

// flagDate parses --date, defaulting to today.
func flagDate(cmd *cobra.Command) (time.Time, error) {
	raw, _ := cmd.Flags().GetString("date")
	if raw == "" {
		return time.Now(), nil
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing --date: want YYYY-MM-DD, got %q", raw)
	}
	return d, nil
}

// candidateWords merges --words and --words-file into one list.
func candidateWords(cmd *cobra.Command) ([]string, error) {
	var words []string
	if raw, _ := cmd.Flags().GetString("words"); raw != "" {
		for _, w := range strings.Split(raw, ",") {
			if w = strings.TrimSpace(w); w != "" {
				words = append(words, w)
			}
		}
	}
	if path, _ := cmd.Flags().GetString("words-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading words file: %w", err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if w := strings.TrimSpace(line); w != "" {
				words = append(words, w)
			}
		}
	}
	return words, nil
}

// defaultRunID derives a stable run identifier so that rerunning the same
// topic on the same day resumes rather than forks.
func defaultRunID(topic string, date time.Time) string {
	slug := "article"
	if topic != "" {
		slug = strings.ToLower(strings.Join(strings.Fields(topic), "-"))
	}
	return slug + "-" + date.Format("2006-01-02")
}

// writeArticle writes the article as pretty-printed JSON plus a YAML sidecar.
func writeArticle(dir string, article *types.Article) (string, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating %s: %w", dir, err)
	}

	jsonPath := filepath.Join(dir, article.RunID+".json")
	data, err := json.MarshalIndent(article, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("encoding article: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return "", "", err
	}

	yamlPath := filepath.Join(dir, article.RunID+".yaml")
	ydata, err := yaml.Marshal(article)
	if err != nil {
		return "", "", fmt.Errorf("encoding article sidecar: %w", err)
	}
	if err := os.WriteFile(yamlPath, ydata, 0o644); err != nil {
		return "", "", err
	}
	return jsonPath, yamlPath, nil
}

// printUsage prints a per-stage token usage table.
func printUsage(usage map[string]types.Usage) {
	if len(usage) == 0 {
		return
	}
	keys := make([]string, 0, len(usage))
	for k := range usage {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(os.Stdout, "\n%-20s  %10s  %10s  %10s\n", "Stage", "Input", "Output", "Total")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 56))
	var sum types.Usage
	for _, k := range keys {
		u := usage[k]
		sum = sum.Add(u)
		fmt.Fprintf(os.Stdout, "%-20s  %10d  %10d  %10d\n", k, u.Input, u.Output, u.Total)
	}
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 56))
	fmt.Fprintf(os.Stdout, "%-20s  %10d  %10d  %10d\n", "total", sum.Input, sum.Output, sum.Total)
}
