// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the reader-engine CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/reader-engine/internal/logging"
	"github.com/pdiddy/reader-engine/internal/secrets"
	"github.com/pdiddy/reader-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the reader-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "reader-engine",
	Short: "Graded news articles for language learners",
	Long: `reader-engine generates short news articles for language learners: one
story rewritten at several difficulty levels, with target vocabulary,
per-level grammar annotations, and optional audio. Progress checkpoints
after every stage, so an interrupted run resumes where it stopped.

Each operation is a subcommand: generate runs the full pipeline; annotate,
news, checkpoint, and speak expose the individual pieces.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real environment variables win over it.
		_ = godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./reader-engine.yaml or ~/.config/reader-engine/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, or error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text or json")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("reader-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "reader-engine"))
		}
	}

	viper.SetEnvPrefix("READER_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the effective configuration: documented defaults,
// overridden by the config file and READER_ENGINE_* environment variables,
// with API keys filled from .secrets/ when the config leaves them blank.
func loadConfig() types.Config {
	cfg := types.DefaultConfig()

	if v := viper.GetString("ai.provider"); v != "" {
		cfg.AI.Provider = v
	}
	if v := viper.GetString("ai.model"); v != "" {
		cfg.AI.Model = v
	}
	if v := viper.GetString("ai.api_key"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := viper.GetString("ai.base_url"); v != "" {
		cfg.AI.BaseURL = v
	}
	if v := viper.GetDuration("ai.timeout"); v > 0 {
		cfg.AI.Timeout = v
	}
	if v := viper.GetInt("ai.max_retries"); v > 0 {
		cfg.AI.MaxRetries = v
	}

	if v := viper.GetStringMapStringSlice("news.feeds"); len(v) > 0 {
		cfg.News.Feeds = v
	}
	var pages []types.PageConfig
	if err := viper.UnmarshalKey("news.pages", &pages); err == nil && len(pages) > 0 {
		cfg.News.Pages = pages
	}
	if v := viper.GetInt("news.max_items"); v > 0 {
		cfg.News.MaxItems = v
	}
	if v := viper.GetDuration("news.window"); v > 0 {
		cfg.News.Window = v
	}
	if v := viper.GetDuration("news.cache_ttl"); v > 0 {
		cfg.News.CacheTTL = v
	}
	if v := viper.GetDuration("news.timeout"); v > 0 {
		cfg.News.Timeout = v
	}

	if v := viper.GetInt("generate.levels"); v > 0 {
		cfg.Generate.Levels = v
	}
	if v := viper.GetInt("generate.min_draft_len"); v > 0 {
		cfg.Generate.MinDraftLen = v
	}
	if v := viper.GetString("generate.output_dir"); v != "" {
		cfg.Generate.OutputDir = v
	}

	if v := viper.GetString("store.path"); v != "" {
		cfg.Store.Path = v
	}

	if v := viper.GetString("speech.python"); v != "" {
		cfg.Speech.Python = v
	}
	if v := viper.GetString("speech.script"); v != "" {
		cfg.Speech.Script = v
	}
	if v := viper.GetString("speech.voice"); v != "" {
		cfg.Speech.Voice = v
	}
	if v := viper.GetString("speech.rate"); v != "" {
		cfg.Speech.Rate = v
	}
	if v := viper.GetString("speech.pitch"); v != "" {
		cfg.Speech.Pitch = v
	}

	if v := viper.GetString("log.level"); v != "" {
		cfg.Log.Level = v
	}
	if v := viper.GetString("log.format"); v != "" {
		cfg.Log.Format = v
	}

	cfg.AI.APIKey = secretDefault(cfg.AI.Provider+"-api-key", cfg.AI.APIKey)
	return cfg
}

// newLogger builds the logger from config, with the persistent log flags
// taking precedence.
func newLogger(cmd *cobra.Command, cfg types.Config) *slog.Logger {
	level := cfg.Log.Level
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		level = v
	}
	format := cfg.Log.Format
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		format = v
	}
	return logging.New(level, format)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
