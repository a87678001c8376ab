package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/depiction-engine/internal/stats"
	"github.com/pdiddy/depiction-engine/internal/store"
	"github.com/pdiddy/depiction-engine/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the markdown run report",
	Long: `Report summarizes the analysis store and the volume and author
aggregates into one markdown file for sharing. Run the extract, resolve,
and stats stages first for a complete report.`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

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

	volumes, err := stats.Aggregate(in, types.GranularityVolume)
	if err != nil {
		return err
	}
	authors, err := stats.Aggregate(in, types.GranularityAuthor)
	if err != nil {
		return err
	}
	tally, err := st.Tally(ctx)
	if err != nil {
		return err
	}

	data := stats.ReportData{
		Tally:   tally,
		Volumes: volumes,
		Authors: authors,
	}
	if err := stats.WriteReportFile(data, cfg.Stats.ReportPath); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", cfg.Stats.ReportPath)
	return nil
}
