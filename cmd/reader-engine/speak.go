// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/reader-engine/internal/speech"
	"github.com/pdiddy/reader-engine/pkg/types"
)

var speakCmd = &cobra.Command{
	Use:   "speak <article.json>",
	Short: "Synthesize audio for one level of a generated article",
	Long: `Speak reads a generated article file and synthesizes MP3 audio for one
of its difficulty levels through the edge-tts bridge script. Alongside the
audio it writes a timings file with per-word boundaries for read-along
highlighting.`,
	Args: cobra.ExactArgs(1),
	RunE: runSpeak,
}

func runSpeak(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	level, _ := cmd.Flags().GetInt("level")
	outBase, _ := cmd.Flags().GetString("out")

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading article: %w", err)
	}
	var art types.Article
	if err := json.Unmarshal(raw, &art); err != nil {
		return fmt.Errorf("decoding article: %w", err)
	}

	lvl := art.Document.Level(level)
	if lvl == nil {
		return fmt.Errorf("article has no level %d (levels: %v)", level, art.Document.LevelNumbers())
	}

	syn := speech.NewSynthesizer(cfg.Speech)
	if !syn.Available() {
		return fmt.Errorf("speech interpreter %q not found on PATH; install it or set speech.python", cfg.Speech.Python)
	}

	sp, err := syn.Synthesize(context.Background(), lvl.Content)
	if err != nil {
		return err
	}

	if outBase == "" {
		outBase = strings.TrimSuffix(args[0], ".json")
	}
	audioPath := fmt.Sprintf("%s-level%d.mp3", outBase, level)
	timingsPath := fmt.Sprintf("%s-level%d-timings.json", outBase, level)

	if err := os.WriteFile(audioPath, sp.Audio, 0o644); err != nil {
		return fmt.Errorf("writing audio: %w", err)
	}
	timings, err := json.MarshalIndent(sp.Boundaries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding timings: %w", err)
	}
	if err := os.WriteFile(timingsPath, timings, 0o644); err != nil {
		return fmt.Errorf("writing timings: %w", err)
	}

	fmt.Printf("Audio:   %s\n", audioPath)
	fmt.Printf("Timings: %s (%d words)\n", timingsPath, len(sp.Boundaries))
	return nil
}

func init() {
	speakCmd.Flags().Int("level", 1, "difficulty level to synthesize")
	speakCmd.Flags().String("out", "", "output path base (default: article path without .json)")

	rootCmd.AddCommand(speakCmd)
}
