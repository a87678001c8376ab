package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/depiction-engine/internal/affect"
	"github.com/pdiddy/depiction-engine/internal/corpus"
	"github.com/pdiddy/depiction-engine/internal/stats"
	"github.com/pdiddy/depiction-engine/internal/store"
	"github.com/pdiddy/depiction-engine/pkg/types"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate resolved mentions into depiction statistics",
	Long: `Stats joins the resolved mentions against the corpus metadata and
writes one CSV per grouping (article, volume, author) to the output
directory. Undetermined and ambiguous mentions get their own columns
and are never folded into the female or male counts.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().Bool("table", false, "also print the volume table to stdout")

	rootCmd.AddCommand(statsCmd)
}

// granularityFiles names the CSV written per grouping.
var granularityFiles = map[types.Granularity]string{
	types.GranularityArticle: "article_stats.csv",
	types.GranularityVolume:  "volume_stats.csv",
	types.GranularityAuthor:  "author_stats.csv",
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	showTable, _ := cmd.Flags().GetBool("table")

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	in, err := statsInput(ctx, cfg, st, os.Stderr)
	if err != nil {
		return err
	}

	for _, g := range []types.Granularity{types.GranularityArticle, types.GranularityVolume, types.GranularityAuthor} {
		records, err := stats.Aggregate(in, g)
		if err != nil {
			return err
		}
		path := filepath.Join(cfg.Stats.OutDir, granularityFiles[g])
		if err := stats.WriteCSVFile(records, path); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d records)\n", path, len(records))

		if showTable && g == types.GranularityVolume {
			fmt.Println()
			stats.FormatTable(records, os.Stdout)
		}
	}
	return nil
}

// statsInput loads everything the aggregator joins: corpus metadata,
// stored mentions, connotation norms, inclusive-form counts, and the
// inferred author genders. Missing norms leave the affect columns
// unscored with a warning rather than failing the run.
func statsInput(ctx context.Context, cfg types.PipelineConfig, st *store.Store, w io.Writer) (stats.Input, error) {
	repo, err := corpus.Open(cfg.Corpus)
	if err != nil {
		return stats.Input{}, err
	}
	defer repo.Close()

	var in stats.Input
	if in.Articles, err = repo.Articles(ctx, w); err != nil {
		return stats.Input{}, err
	}
	if in.Volumes, err = repo.Volumes(ctx, w); err != nil {
		return stats.Input{}, err
	}
	if in.Authors, err = repo.Authors(ctx, w); err != nil {
		return stats.Input{}, err
	}
	if in.Mentions, err = st.Mentions(ctx); err != nil {
		return stats.Input{}, err
	}

	lex, err := affect.Load(cfg.Lexicon.AffectPath, w)
	if err != nil {
		fmt.Fprintf(w, "warning: connotation norms unavailable, affect columns stay unscored: %v\n", err)
	} else {
		in.Affect = lex
	}

	forms, err := st.InclusiveForms(ctx)
	if err != nil {
		return stats.Input{}, err
	}
	in.Inclusive = make(map[string]int)
	for _, f := range forms {
		in.Inclusive[f.ArticleID] += f.Count
	}

	if in.AuthorGenders, err = st.AuthorGenders(ctx); err != nil {
		return stats.Input{}, err
	}
	return in, nil
}
