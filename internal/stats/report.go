// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stats

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pdiddy/depiction-engine/internal/store"
	"github.com/pdiddy/depiction-engine/pkg/types"
)

// ReportData bundles what the run report renders: store tallies plus the
// volume and author aggregates.
type ReportData struct {
	GeneratedAt time.Time
	Tally       store.Tally
	Volumes     []types.AggregateRecord
	Authors     []types.AggregateRecord
}

// WriteReport renders the markdown run report: corpus coverage,
// per-volume gender ratios, connotation coverage, and author genders
// (R5.3).
func WriteReport(data ReportData, w io.Writer) {
	generated := data.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	fmt.Fprintf(w, "# Gender depiction report\n\n")
	fmt.Fprintf(w, "Generated %s.\n\n", generated.Format("2006-01-02 15:04"))

	fmt.Fprintf(w, "## Corpus\n\n")
	fmt.Fprintf(w, "- articles extracted: %s\n", humanize.Comma(int64(data.Tally.Articles)))
	fmt.Fprintf(w, "- mentions: %s\n", humanize.Comma(int64(data.Tally.Mentions)))
	fmt.Fprintf(w, "- unresolved mentions: %s\n", humanize.Comma(int64(data.Tally.Unresolved)))
	fmt.Fprintf(w, "- cached lookups: %s\n\n", humanize.Comma(int64(data.Tally.Cached)))

	fmt.Fprintf(w, "## Volumes\n\n")
	if len(data.Volumes) == 0 {
		fmt.Fprintf(w, "No volume statistics. Run the stats stage first.\n\n")
	} else {
		fmt.Fprintf(w, "| Volume | Articles | Mentions | Female | Male | Undet. | Amb. | F share | Inclusive |\n")
		fmt.Fprintf(w, "|---|---:|---:|---:|---:|---:|---:|---:|---:|\n")
		for _, r := range data.Volumes {
			fmt.Fprintf(w, "| %s | %d | %d | %d | %d | %d | %d | %.3f | %d |\n",
				r.Label, r.Articles, r.Mentions, r.Female(), r.Male(),
				r.Undetermined, r.Ambiguous, r.FemaleShare, r.InclusiveForms)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "## Connotation coverage\n\n")
	var femaleScored, femaleNoScore, maleScored, maleNoScore int
	for _, r := range data.Volumes {
		femaleScored += r.FemaleAffect.Scored
		femaleNoScore += r.FemaleAffect.NoScore
		maleScored += r.MaleAffect.Scored
		maleNoScore += r.MaleAffect.NoScore
	}
	fmt.Fprintf(w, "- female mentions scored: %s of %s (%s)\n",
		humanize.Comma(int64(femaleScored)),
		humanize.Comma(int64(femaleScored+femaleNoScore)),
		pct(femaleScored, femaleScored+femaleNoScore))
	fmt.Fprintf(w, "- male mentions scored: %s of %s (%s)\n\n",
		humanize.Comma(int64(maleScored)),
		humanize.Comma(int64(maleScored+maleNoScore)),
		pct(maleScored, maleScored+maleNoScore))

	fmt.Fprintf(w, "## Authors\n\n")
	if len(data.Authors) == 0 {
		fmt.Fprintf(w, "No author statistics.\n")
		return
	}
	var counts [4]int
	for _, r := range data.Authors {
		switch r.AuthorGender {
		case types.GenderFemale:
			counts[0]++
		case types.GenderMale:
			counts[1]++
		case types.GenderAmbiguous:
			counts[3]++
		default:
			counts[2]++
		}
	}
	fmt.Fprintf(w, "| Inferred gender | Authors |\n|---|---:|\n")
	fmt.Fprintf(w, "| female | %d |\n", counts[0])
	fmt.Fprintf(w, "| male | %d |\n", counts[1])
	fmt.Fprintf(w, "| undetermined | %d |\n", counts[2])
	fmt.Fprintf(w, "| ambiguous | %d |\n", counts[3])
}

// WriteReportFile renders the report to path, creating parent
// directories.
func WriteReportFile(data ReportData, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	WriteReport(data, f)
	return f.Close()
}

func pct(part, whole int) string {
	if whole == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(part)/float64(whole))
}
