package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/depiction-engine/internal/corpus"
	"github.com/pdiddy/depiction-engine/internal/prnlex"
	"github.com/pdiddy/depiction-engine/internal/resolve"
	"github.com/pdiddy/depiction-engine/internal/store"
	"github.com/pdiddy/depiction-engine/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve gender labels for extracted mentions and authors",
	Long: `Resolve assigns a gender label to every unresolved mention in the
analysis store. Noun mentions are labeled from the PRN table; named
persons are looked up in the configured knowledge base, with results
cached in the store so repeated runs stay cheap. Lookup failures
degrade the affected mentions to undetermined instead of failing the
run. Author genders are inferred afterwards unless --skip-authors is
given.

Put a contact-email secret under .secrets/ to have it appended to the
User-Agent header, as the public query service requests.`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().Int("workers", 0, "concurrent knowledge-base lookups (default: config)")
	resolveCmd.Flags().String("backend", "", "lookup backend: wikidata or fixture (default: config)")
	resolveCmd.Flags().String("fixture", "", "name-to-gender YAML table for the fixture backend")
	resolveCmd.Flags().Bool("skip-authors", false, "skip author gender inference")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		cfg.Resolve.Workers = workers
	}
	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		cfg.Resolve.Backend = types.ResolveBackend(backend)
	}
	if fixture, _ := cmd.Flags().GetString("fixture"); fixture != "" {
		cfg.Resolve.FixturePath = fixture
	}
	skipAuthors, _ := cmd.Flags().GetBool("skip-authors")

	if email := secretDefault("contact-email", ""); email != "" {
		cfg.Resolve.UserAgent = fmt.Sprintf("%s (%s)", cfg.Resolve.UserAgent, email)
	}
	cfg.Resolve.BearerToken = secretDefault("kb-bearer-token", "")

	table, err := prn.LoadMerged(cfg.Lexicon.ListPath, cfg.Lexicon.AdjustedPath, os.Stderr)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	backend, err := resolve.NewLookup(cfg.Resolve, st)
	if err != nil {
		return err
	}

	ctx := context.Background()
	mentions, err := st.Unresolved(ctx)
	if err != nil {
		return err
	}

	resolver := resolve.NewResolver(table, backend, cfg.Resolve)
	if _, err := resolver.ResolveAll(ctx, mentions, os.Stdout); err != nil {
		return err
	}
	if err := st.SaveResolutions(ctx, mentions); err != nil {
		return err
	}

	if skipAuthors {
		return nil
	}

	repo, err := corpus.Open(cfg.Corpus)
	if err != nil {
		return err
	}
	defer repo.Close()

	authors, err := repo.Authors(ctx, os.Stderr)
	if err != nil {
		return err
	}

	inferrer := &resolve.AuthorResolver{Table: table, Backend: backend}
	_, err = resolve.ResolveAuthors(ctx, inferrer, authors, st, os.Stdout)
	return err
}
