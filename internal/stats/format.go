// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stats

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/depiction-engine/pkg/types"
)

// FormatTable writes records as a human-readable table to w (R5.2).
func FormatTable(records []types.AggregateRecord, w io.Writer) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No records.")
		return
	}

	fmt.Fprintf(w, "%-28s  %-40s  %8s  %8s  %6s  %6s  %6s  %6s  %7s\n",
		"Key", "Label", "Articles", "Mentions", "F", "M", "Und", "Amb", "F-Share")
	fmt.Fprintln(w, strings.Repeat("-", 128))

	for _, r := range records {
		label := r.Label
		if len(label) > 40 {
			label = label[:37] + "..."
		}
		fmt.Fprintf(w, "%-28s  %-40s  %8d  %8d  %6d  %6d  %6d  %6d  %7.3f\n",
			r.Key, label, r.Articles, r.Mentions,
			r.Female(), r.Male(), r.Undetermined, r.Ambiguous, r.FemaleShare)
	}

	fmt.Fprintf(w, "\n%d records\n", len(records))
}

// csvHeader fixes the column order of the aggregate tables (R5.1).
var csvHeader = []string{
	"key", "label", "articles", "mentions",
	"female_per", "female_prn", "male_per", "male_prn",
	"undetermined", "ambiguous",
	"female_share", "male_share", "undetermined_share", "ambiguous_share",
	"female_valence", "female_arousal", "female_imageability", "female_concreteness",
	"female_scored", "female_no_score",
	"male_valence", "male_arousal", "male_imageability", "male_concreteness",
	"male_scored", "male_no_score",
	"inclusive_forms", "author_gender",
}

// WriteCSV writes records with a header row (R5.1).
func WriteCSV(records []types.AggregateRecord, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.Key, r.Label,
			strconv.Itoa(r.Articles), strconv.Itoa(r.Mentions),
			strconv.Itoa(r.FemalePER), strconv.Itoa(r.FemalePRN),
			strconv.Itoa(r.MalePER), strconv.Itoa(r.MalePRN),
			strconv.Itoa(r.Undetermined), strconv.Itoa(r.Ambiguous),
			f4(r.FemaleShare), f4(r.MaleShare), f4(r.UndeterminedShare), f4(r.AmbiguousShare),
			f4(r.FemaleAffect.Valence), f4(r.FemaleAffect.Arousal),
			f4(r.FemaleAffect.Imageability), f4(r.FemaleAffect.Concreteness),
			strconv.Itoa(r.FemaleAffect.Scored), strconv.Itoa(r.FemaleAffect.NoScore),
			f4(r.MaleAffect.Valence), f4(r.MaleAffect.Arousal),
			f4(r.MaleAffect.Imageability), f4(r.MaleAffect.Concreteness),
			strconv.Itoa(r.MaleAffect.Scored), strconv.Itoa(r.MaleAffect.NoScore),
			strconv.Itoa(r.InclusiveForms), string(r.AuthorGender),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing record %s: %w", r.Key, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes records to path, creating parent directories.
func WriteCSVFile(records []types.AggregateRecord, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	if err := WriteCSV(records, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func f4(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
