// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/depiction-engine/internal/corpus"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Inspect the corpus snapshot (info, volumes, authors, show)",
	Long: `Corpus provides read-only views of the scraper-produced snapshot the
pipeline analyzes. Use subcommands to list volumes or authors, show one
article, or print table counts.`,
}

// --- info subcommand ---

var corpusInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print corpus table counts",
	RunE:  runCorpusInfo,
}

func runCorpusInfo(cmd *cobra.Command, args []string) error {
	repo, err := openCorpus()
	if err != nil {
		return err
	}
	defer repo.Close()

	articles, authors, volumes, err := repo.Counts(context.Background())
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "articles: %d\n", articles)
	fmt.Fprintf(os.Stdout, "authors:  %d\n", authors)
	fmt.Fprintf(os.Stdout, "volumes:  %d\n", volumes)
	return nil
}

// --- volumes subcommand ---

var corpusVolumesCmd = &cobra.Command{
	Use:   "volumes",
	Short: "List the volumes in the snapshot",
	RunE:  runCorpusVolumes,
}

func runCorpusVolumes(cmd *cobra.Command, args []string) error {
	repo, err := openCorpus()
	if err != nil {
		return err
	}
	defer repo.Close()

	volumes, err := repo.Volumes(context.Background(), os.Stderr)
	if err != nil {
		return err
	}
	if len(volumes) == 0 {
		fmt.Println("No volumes found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-16s  %-40s  %s\n", "ID", "Title", "Published")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 72))
	for _, v := range volumes {
		published := ""
		if !v.PublishedDate.IsZero() {
			published = v.PublishedDate.Format("2006-01-02")
		}
		title := v.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-16s  %-40s  %s\n", v.ID, title, published)
	}

	fmt.Fprintf(os.Stdout, "\n%d volumes\n", len(volumes))
	return nil
}

// --- authors subcommand ---

var corpusAuthorsCmd = &cobra.Command{
	Use:   "authors",
	Short: "List the deduplicated authors in the snapshot",
	RunE:  runCorpusAuthors,
}

func runCorpusAuthors(cmd *cobra.Command, args []string) error {
	repo, err := openCorpus()
	if err != nil {
		return err
	}
	defer repo.Close()

	authors, err := repo.Authors(context.Background(), os.Stderr)
	if err != nil {
		return err
	}
	if len(authors) == 0 {
		fmt.Println("No authors found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-16s  %-30s  %s\n", "ID", "Name", "Bio")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, a := range authors {
		info := a.Info
		if len(info) > 50 {
			info = info[:47] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-16s  %-30s  %s\n", a.ID, a.Name, info)
	}

	fmt.Fprintf(os.Stdout, "\n%d authors\n", len(authors))
	return nil
}

// --- show subcommand ---

var corpusShowCmd = &cobra.Command{
	Use:   "show [article-id]",
	Short: "Print one article by id or unique id prefix",
	RunE:  runCorpusShow,
}

func runCorpusShow(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("article id required: depiction-engine corpus show <id>")
	}

	repo, err := openCorpus()
	if err != nil {
		return err
	}
	defer repo.Close()

	a, err := repo.ArticleByID(context.Background(), args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "ID:      %s\n", a.ID)
	fmt.Fprintf(os.Stdout, "Title:   %s\n", a.Title)
	fmt.Fprintf(os.Stdout, "Volume:  %s\n", a.VolumeID)
	if len(a.AuthorIDs) > 0 {
		fmt.Fprintf(os.Stdout, "Authors: %s\n", strings.Join(a.AuthorIDs, ", "))
	}
	fmt.Fprintf(os.Stdout, "\n%s\n", a.Text)
	return nil
}

// --- shared helpers ---

func openCorpus() (*corpus.Repository, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return corpus.Open(cfg.Corpus)
}

func init() {
	// Wire subcommands.
	corpusCmd.AddCommand(corpusInfoCmd)
	corpusCmd.AddCommand(corpusVolumesCmd)
	corpusCmd.AddCommand(corpusAuthorsCmd)
	corpusCmd.AddCommand(corpusShowCmd)

	rootCmd.AddCommand(corpusCmd)
}
