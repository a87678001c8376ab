//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// pipelineStages lists the CLI stages in dependency order. Fetch is
// deliberately absent: dumps are large and the compile stage reports a
// clear error when none is present.
var pipelineStages = [][]string{
	{"compile"},
	{"extract"},
	{"resolve"},
	{"stats"},
	{"report"},
}

// Pipeline builds the CLI and runs every analysis stage in order.
func Pipeline() error {
	mg.Deps(Build)

	bin := filepath.Join(binDir, binName)
	for _, stage := range pipelineStages {
		fmt.Printf("\n==> %s\n", stage[0])
		cmd := exec.Command(bin, stage...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("stage %s: %w", stage[0], err)
		}
	}
	return nil
}
