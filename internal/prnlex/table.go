// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prn

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pdiddy/depiction-engine/pkg/types"
)

// Table is the merged people-referencing-noun lookup table. Load once,
// read many: nothing mutates it after construction (R4.2).
type Table struct {
	entries map[string]types.PRNEntry
}

// NewTable builds a table from entries. Later entries win on duplicate
// lemmas, mirroring the overlay order of LoadMerged.
func NewTable(entries []types.PRNEntry) *Table {
	t := &Table{entries: make(map[string]types.PRNEntry, len(entries))}
	for _, e := range entries {
		t.entries[e.Lemma] = e
	}
	return t
}

// Lookup returns the entry for a lemma.
func (t *Table) Lookup(lemma string) (types.PRNEntry, bool) {
	e, ok := t.entries[lemma]
	return e, ok
}

// Len returns the number of lemmas in the table.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns the table rows sorted by lemma.
func (t *Table) Entries() []types.PRNEntry {
	out := make([]types.PRNEntry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Lemma < out[j].Lemma })
	return out
}

// indicator maps a gender label to its single-letter table encoding.
func indicator(g types.GenderLabel) (string, error) {
	switch g {
	case types.GenderFemale:
		return "f", nil
	case types.GenderMale:
		return "m", nil
	case types.GenderAmbiguous:
		return "a", nil
	default:
		return "", fmt.Errorf("gender %q has no table encoding", g)
	}
}

// parseIndicator is the inverse of indicator. The ambiguous marker is
// legal only in the manual overlay: the compiler never infers it (R5.3).
func parseIndicator(s string) (types.GenderLabel, error) {
	switch s {
	case "f":
		return types.GenderFemale, nil
	case "m":
		return types.GenderMale, nil
	case "a":
		return types.GenderAmbiguous, nil
	default:
		return "", fmt.Errorf("unknown gender indicator %q", s)
	}
}

// LoadTable reads an indicator,lemma[,source_url] CSV into a Table.
// Malformed rows are skipped with a warning on w; a duplicate lemma
// keeps the first row (R4.3).
func LoadTable(path string, w io.Writer) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PRN table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	t := &Table{entries: make(map[string]types.PRNEntry)}
	line := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			fmt.Fprintf(w, "warning: %s line %d: %v\n", path, line, err)
			continue
		}
		if len(record) < 2 || record[1] == "" {
			fmt.Fprintf(w, "warning: %s line %d: short row\n", path, line)
			continue
		}

		gender, err := parseIndicator(record[0])
		if err != nil {
			fmt.Fprintf(w, "warning: %s line %d: %v\n", path, line, err)
			continue
		}

		entry := types.PRNEntry{Lemma: record[1], Gender: gender}
		if len(record) > 2 {
			entry.SourceURL = record[2]
		}
		if _, ok := t.entries[entry.Lemma]; ok {
			continue
		}
		t.entries[entry.Lemma] = entry
	}
	return t, nil
}

// LoadMerged loads the compiled table and overlays the manual
// adjustments: an overlay row replaces the compiled entry with the same
// lemma, and overlay-only lemmas are added (R5.1, R5.2). A missing
// compiled table is fatal to the run; a missing overlay just means no
// adjustments. An empty adjustedPath disables the overlay.
func LoadMerged(listPath, adjustedPath string, w io.Writer) (*Table, error) {
	table, err := LoadTable(listPath, w)
	if err != nil {
		return nil, fmt.Errorf("compiled PRN table: %w", err)
	}

	if adjustedPath == "" {
		return table, nil
	}
	if _, err := os.Stat(adjustedPath); os.IsNotExist(err) {
		return table, nil
	}
	overlay, err := LoadTable(adjustedPath, w)
	if err != nil {
		return nil, fmt.Errorf("adjusted PRN table: %w", err)
	}

	for lemma, e := range overlay.entries {
		table.entries[lemma] = e
	}
	return table, nil
}
