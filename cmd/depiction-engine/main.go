// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the depiction-engine CLI.
// Implements: prd001-corpus, prd002-prn-compiler, prd004-mention-extraction,
//             prd005-gender-resolution, prd006-statistics (CLI surface).
// See docs/ARCHITECTURE.md § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/depiction-engine/internal/secrets"
	"github.com/pdiddy/depiction-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds values loaded from .secrets/ at startup.
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

// rootCmd is the base command for the depiction-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "depiction-engine",
	Short: "Batch pipeline analyzing gender depiction in a magazine corpus",
	Long: `depiction-engine analyzes how people are depicted across a scraped
magazine corpus. The pipeline compiles a lexicon of people-referencing
nouns from a dictionary dump, extracts person mentions from every
article, resolves a gender label per mention against a knowledge base,
and aggregates depiction statistics per article, volume, and author.

Each stage is a subcommand: fetch, compile, extract, resolve, stats,
and report. corpus inspects the input snapshot read-only.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./depiction-engine.yaml or ~/.config/depiction-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("depiction-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "depiction-engine"))
		}
	}

	viper.SetEnvPrefix("DEPICTION_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig returns the pipeline configuration: defaults overlaid with
// whatever the config file and environment provide.
func loadConfig() (types.PipelineConfig, error) {
	cfg := types.DefaultConfig()
	if err := viper.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
		dc.Squash = true
	}); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
