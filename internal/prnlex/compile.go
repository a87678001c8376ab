// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prn compiles the people-referencing-noun lexicon from a
// dictionary dump and serves the merged lookup table.
// Implements: prd002-prn-compiler (R1-R6), prd009-dump-acquisition (R1-R3);
//
//	docs/ARCHITECTURE.md § PRN Lexicon.
package prn

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/pdiddy/depiction-engine/pkg/types"
)

// sourceBase is the provenance URL prefix recorded for compiled entries.
const sourceBase = "https://de.wiktionary.org/w/index.php?title="

// CompileOptions control a lexicon compilation run.
type CompileOptions struct {
	// DumpPath is the XML export, plain or .bz2.
	DumpPath string

	// OutPath is the compiled CSV table.
	OutPath string

	// Force recompiles even when the output is newer than the dump.
	Force bool

	// Progress renders a progress bar over the dump stream.
	Progress bool
}

// CompileSummary holds counts from one compilation run.
type CompileSummary struct {
	// Pages is the number of main-namespace pages streamed.
	Pages int

	// Classified counts lemma-gender assignments before deduplication.
	Classified int

	// Entries is the number of rows in the written table.
	Entries int

	// Conflicts counts lemmas dropped for being claimed by both genders.
	Conflicts int

	// Skipped reports that the output was current and nothing ran.
	Skipped bool
}

// Compile streams the dump once and writes the deduplicated PRN table.
// The result is idempotent: the same dump yields byte-identical output
// regardless of page order (R2.2). A lemma claimed by both genders
// across the dump is dropped entirely (R3.5); within one gender the
// lexicographically smallest provenance URL is kept so reruns stay
// stable. When the output is newer than the dump the run is skipped
// unless forced.
func Compile(ctx context.Context, opts CompileOptions, w io.Writer) (CompileSummary, error) {
	if !opts.Force && upToDate(opts.DumpPath, opts.OutPath) {
		fmt.Fprintf(w, "skipped: %s is newer than the dump\n", opts.OutPath)
		return CompileSummary{Skipped: true}, nil
	}

	reader, counter, closer, size, err := openDump(opts.DumpPath)
	if err != nil {
		return CompileSummary{}, err
	}
	defer closer.Close()

	var bar *pb.ProgressBar
	if opts.Progress {
		bar = pb.Full.Start64(size)
		defer bar.Finish()
	}

	// byLemma records, per lemma and gender, the smallest provenance URL
	// seen. The two-level shape makes the conflict drop a pure function
	// of the dump contents.
	byLemma := make(map[string]map[types.GenderLabel]string)
	var summary CompileSummary

	for {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		page, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return summary, fmt.Errorf("streaming dump: %w", err)
		}
		if bar != nil {
			bar.SetCurrent(counter.count())
		}
		if page.Ns != 0 {
			continue
		}
		summary.Pages++

		source := sourceBase + url.QueryEscape(page.Title)
		for _, c := range classify(parseEntry(page.Title, page.Text)) {
			summary.Classified++
			genders := byLemma[c.Lemma]
			if genders == nil {
				genders = make(map[types.GenderLabel]string)
				byLemma[c.Lemma] = genders
			}
			if prev, ok := genders[c.Gender]; !ok || source < prev {
				genders[c.Gender] = source
			}
		}
	}

	entries := make([]types.PRNEntry, 0, len(byLemma))
	for lemma, genders := range byLemma {
		if len(genders) > 1 {
			summary.Conflicts++
			continue
		}
		for gender, source := range genders {
			entries = append(entries, types.PRNEntry{
				Lemma:     lemma,
				Gender:    gender,
				SourceURL: source,
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Lemma < entries[j].Lemma })
	summary.Entries = len(entries)

	if err := WriteTable(opts.OutPath, entries); err != nil {
		return summary, err
	}

	fmt.Fprintf(w, "\ncompiled %s entries from %s pages (%d conflicting lemmas dropped)\n",
		humanize.Comma(int64(summary.Entries)), humanize.Comma(int64(summary.Pages)), summary.Conflicts)
	return summary, nil
}

// upToDate reports whether the output exists and is newer than the dump.
func upToDate(dumpPath, outPath string) bool {
	out, err := os.Stat(outPath)
	if err != nil {
		return false
	}
	dump, err := os.Stat(dumpPath)
	if err != nil {
		return false
	}
	return out.ModTime().After(dump.ModTime())
}

// WriteTable writes entries as indicator,lemma,source_url rows. The file
// lands via temp-and-rename so a crashed run never leaves a truncated
// table behind.
func WriteTable(path string, entries []types.PRNEntry) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating lexicon directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".compile-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp table: %w", err)
	}
	tmpPath := tmp.Name()

	cw := csv.NewWriter(tmp)
	for _, e := range entries {
		ind, err := indicator(e.Gender)
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("entry %s: %w", e.Lemma, err)
		}
		if err := cw.Write([]string{ind, e.Lemma, e.SourceURL}); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("writing entry %s: %w", e.Lemma, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flushing table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp table: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp table: %w", err)
	}
	return nil
}
