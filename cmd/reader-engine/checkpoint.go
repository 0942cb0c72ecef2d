// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/reader-engine/internal/store"
)

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Inspect and manage stored checkpoints",
	Long: `Checkpoint inspects the run checkpoints the generate pipeline writes.
Use subcommands to list runs and their checkpoints, show a run's latest
checkpoint, or prune old checkpoints.`,
}

// --- list subcommand ---

var checkpointListCmd = &cobra.Command{
	Use:   "list [run]",
	Short: "List runs, or the checkpoints of one run",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheckpointList,
}

func runCheckpointList(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()

	if len(args) == 0 {
		runs, err := st.Runs(ctx)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs found.")
			return nil
		}
		for _, r := range runs {
			fmt.Println(r)
		}
		return nil
	}

	records, err := st.List(ctx, args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Printf("No checkpoints for run %s.\n", args[0])
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-6s  %-10s  %-7s  %s\n", "ID", "Stage", "Levels", "Created")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 50))
	for _, r := range records {
		fmt.Fprintf(os.Stdout, "%-6d  %-10s  %-7d  %s\n",
			r.ID, r.Stage, r.Levels, r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// --- show subcommand ---

var checkpointShowCmd = &cobra.Command{
	Use:   "show <run>",
	Short: "Print a run's latest checkpoint as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckpointShow,
}

func runCheckpointShow(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	cp, err := st.Latest(context.Background(), args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(cp)
}

// --- prune subcommand ---

var checkpointPruneCmd = &cobra.Command{
	Use:   "prune <run>",
	Short: "Delete a run's old checkpoints",
	Long: `Prune deletes all but the newest checkpoints of a run. With --keep 0
every checkpoint of the run is deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckpointPrune,
}

func runCheckpointPrune(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	keep, _ := cmd.Flags().GetInt("keep")
	deleted, err := st.Prune(context.Background(), args[0], keep)
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d checkpoint(s) from run %s.\n", deleted, args[0])
	return nil
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		dbPath = loadConfig().Store.Path
	}
	return store.Open(dbPath)
}

func init() {
	checkpointCmd.PersistentFlags().String("db", "", "checkpoint database path (default from config)")
	checkpointPruneCmd.Flags().Int("keep", 1, "number of newest checkpoints to keep")

	checkpointCmd.AddCommand(checkpointListCmd)
	checkpointCmd.AddCommand(checkpointShowCmd)
	checkpointCmd.AddCommand(checkpointPruneCmd)

	rootCmd.AddCommand(checkpointCmd)
}
