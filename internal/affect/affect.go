// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package affect loads the connotation norm table consulted by the
// statistics stage.
// Implements: prd003-connotation-lexicon (R1-R3);
//
//	docs/ARCHITECTURE.md § Statistics.
package affect

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pdiddy/depiction-engine/pkg/types"
)

// Lexicon is the in-memory connotation norm table, keyed by lemma.
// Loaded once per run and read-only afterwards; absent lemmas are
// reported through the ok flag so callers can track coverage (R3.2).
type Lexicon struct {
	scores map[string]types.AffectScore
}

// NewLexicon builds a lexicon from already-parsed scores.
func NewLexicon(scores map[string]types.AffectScore) *Lexicon {
	l := &Lexicon{scores: make(map[string]types.AffectScore, len(scores))}
	for lemma, s := range scores {
		l.scores[lemma] = s
	}
	return l
}

// Load reads a semicolon-separated norm table. The first row is a
// header and is skipped. Short rows and rows with unparsable numbers
// are skipped with a warning; a later row for an already-seen lemma
// replaces the earlier one.
func Load(path string, w io.Writer) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening norm table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1

	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("reading norm table header: %w", err)
	}

	lex := &Lexicon{scores: make(map[string]types.AffectScore)}
	skipped := 0
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			fmt.Fprintf(w, "warning: norm table line %d: %v\n", line, err)
			skipped++
			continue
		}
		if len(row) < 5 || row[0] == "" {
			fmt.Fprintf(w, "warning: norm table line %d: want 5 fields, got %d\n", line, len(row))
			skipped++
			continue
		}
		score, err := parseScores(row)
		if err != nil {
			fmt.Fprintf(w, "warning: norm table line %d (%s): %v\n", line, row[0], err)
			skipped++
			continue
		}
		lex.scores[row[0]] = score
	}

	fmt.Fprintf(w, "loaded %d connotation entries from %s", len(lex.scores), path)
	if skipped > 0 {
		fmt.Fprintf(w, " (%d rows skipped)", skipped)
	}
	fmt.Fprintln(w)
	return lex, nil
}

// parseScores reads the numeric columns of a norm row. Artifact column
// order is lemma, arousal, valence, imageability, concreteness.
func parseScores(row []string) (types.AffectScore, error) {
	var score types.AffectScore
	for i, col := range []struct {
		name string
		dst  *float64
	}{
		{"arousal", &score.Arousal},
		{"valence", &score.Valence},
		{"imageability", &score.Imageability},
		{"concreteness", &score.Concreteness},
	} {
		v, err := strconv.ParseFloat(row[i+1], 64)
		if err != nil {
			return types.AffectScore{}, fmt.Errorf("parsing %s: %w", col.name, err)
		}
		*col.dst = v
	}
	return score, nil
}

// Lookup returns the norm scores recorded for a lemma.
func (l *Lexicon) Lookup(lemma string) (types.AffectScore, bool) {
	s, ok := l.scores[lemma]
	return s, ok
}

// Len reports the number of lemmas in the table.
func (l *Lexicon) Len() int { return len(l.scores) }
