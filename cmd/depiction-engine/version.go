package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the depiction-engine version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("depiction-engine %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
