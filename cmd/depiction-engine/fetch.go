package main

import (
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/depiction-engine/internal/prnlex"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the dictionary dump the compiler reads",
	Long: `Fetch downloads the configured dictionary dump (a bz2-compressed XML
export) into the dump directory and records url, size, and fetch time in
a YAML sidecar next to it. A dump whose sidecar matches the configured
URL is skipped unless --force is given.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Bool("force", false, "re-download even when the sidecar matches")
	fetchCmd.Flags().String("url", "", "dump URL (default from config)")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dumpURL, _ := cmd.Flags().GetString("url"); dumpURL != "" {
		cfg.Lexicon.DumpURL = dumpURL
	}
	force, _ := cmd.Flags().GetBool("force")

	client := &http.Client{Timeout: cfg.Lexicon.Timeout}
	_, _, err = prn.FetchDump(client, cfg.Lexicon, force, os.Stdout)
	return err
}
