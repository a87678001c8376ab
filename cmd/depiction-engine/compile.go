package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/depiction-engine/internal/prnlex"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile the PRN table from the dictionary dump",
	Long: `Compile streams the dictionary dump once and writes the table of
people-referencing nouns with their grammatical gender. A lemma claimed
by both genders is dropped entirely. The output is deterministic for a
given dump; when it is already newer than the dump the run is skipped
unless --force is given.`,
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().Bool("force", false, "recompile even when the table is current")
	compileCmd.Flags().String("dump", "", "dump path (default: the fetched dump)")
	compileCmd.Flags().Bool("progress", true, "render a progress bar over the dump stream")

	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dumpPath, _ := cmd.Flags().GetString("dump")
	if dumpPath == "" {
		dumpPath, err = prn.DumpPath(cfg.Lexicon)
		if err != nil {
			return err
		}
	}
	force, _ := cmd.Flags().GetBool("force")
	progress, _ := cmd.Flags().GetBool("progress")

	opts := prn.CompileOptions{
		DumpPath: dumpPath,
		OutPath:  cfg.Lexicon.ListPath,
		Force:    force,
		Progress: progress,
	}
	_, err = prn.Compile(context.Background(), opts, os.Stdout)
	return err
}
