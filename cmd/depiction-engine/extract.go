package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/depiction-engine/internal/corpus"
	"github.com/pdiddy/depiction-engine/internal/extract"
	"github.com/pdiddy/depiction-engine/internal/prnlex"
	"github.com/pdiddy/depiction-engine/internal/store"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract person mentions from every corpus article",
	Long: `Extract annotates every article, records named persons and
people-referencing nouns as mentions in the analysis store, and counts
gender-inclusive writing forms. Articles already extracted are skipped
unless --force is given. Gender labels stay empty until the resolve
stage runs.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().Bool("force", false, "re-extract articles already in the store")
	extractCmd.Flags().String("model", "", "trained recognition model directory (default: built-in model)")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if modelDir, _ := cmd.Flags().GetString("model"); modelDir != "" {
		cfg.Extract.ModelDir = modelDir
	}
	force, _ := cmd.Flags().GetBool("force")

	table, err := prn.LoadMerged(cfg.Lexicon.ListPath, cfg.Lexicon.AdjustedPath, os.Stderr)
	if err != nil {
		return err
	}

	repo, err := corpus.Open(cfg.Corpus)
	if err != nil {
		return err
	}
	defer repo.Close()

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	articles, err := repo.Articles(ctx, os.Stderr)
	if err != nil {
		return err
	}

	extractor := extract.NewExtractor(table, cfg.Extract)
	summary, err := extract.ExtractAll(ctx, extractor, articles, st, force, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d article(s) failed extraction", summary.Failed)
	}
	return nil
}
