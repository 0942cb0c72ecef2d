// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/reader-engine/internal/annotate"
	"github.com/pdiddy/reader-engine/internal/provider"
	"github.com/pdiddy/reader-engine/pkg/types"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate [file]",
	Short: "Annotate grammar in plain text",
	Long: `Annotate tags the grammatical constituents (subjects, verbs, objects,
clauses, phrases) of plain text read from a file or stdin, and prints them
as JSON. Offsets are byte offsets into the input; the text at each offset
range is included so results can be verified without the input.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnnotate,
}

func init() {
	rootCmd.AddCommand(annotateCmd)
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log := newLogger(cmd, cfg)

	var text []byte
	var err error
	if len(args) == 1 {
		text, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
	} else {
		text, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}
	if len(text) == 0 {
		return fmt.Errorf("no input text")
	}

	prov, err := provider.New(cfg.AI)
	if err != nil {
		return err
	}

	eng := &annotate.Engine{
		Provider: prov,
		Out:      os.Stderr,
		Log:      log,
	}
	results, err := eng.Annotate(context.Background(),
		[]types.Level{{Level: 1, Content: string(text)}}, nil)
	if err != nil {
		return err
	}

	anns := results[0].Annotations
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(anns); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%d annotations, %d tokens used\n", len(anns), results[0].Usage.Total)
	return nil
}
