// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/pdiddy/depiction-engine/internal/prnlex"
	"github.com/pdiddy/depiction-engine/pkg/types"
)

// Gendered German pronoun forms matched in author bios (R1.1). The
// feminine set doubles as the third-person plural, an ambiguity bios
// about a single person rarely trip over.
var (
	femalePronouns = wordSet("sie", "ihr", "ihre", "ihrer", "ihrem", "ihren", "ihres")
	malePronouns   = wordSet("er", "sein", "seine", "seiner", "seinem", "seinen", "seines", "ihn", "ihm")
)

func wordSet(words ...string) map[string]bool {
	s := make(map[string]bool, len(words))
	for _, w := range words {
		s[w] = true
	}
	return s
}

// bioWords splits bio text into candidate words.
var bioWords = regexp.MustCompile(`\pL+`)

// AuthorResolver infers one gender label per author from the bio text and
// a knowledge-base lookup of the name (prd008-author-gender).
type AuthorResolver struct {
	// Table supplies PRN hits for the bio signal. Optional.
	Table *prn.Table

	// Backend resolves the author name. Optional.
	Backend Lookup
}

// InferAuthor combines three signals: gendered pronouns in the bio, PRN
// hits in the bio, and the knowledge-base verdict for the name (R1.1-R1.3).
// Definite signals that agree win; disagreement is ambiguous; an
// ambiguous signal with no definite one is ambiguous too; silence is
// undetermined (R2.1). The second return names the contributing signals.
func (a *AuthorResolver) InferAuthor(ctx context.Context, author types.Author) (types.GenderLabel, string) {
	signals := []struct {
		name  string
		label types.GenderLabel
	}{
		{"kb-name", a.nameSignal(ctx, author.Name)},
		{"bio-pronouns", pronounSignal(author.Info)},
		{"bio-prn", a.prnSignal(author.Info)},
	}

	var label types.GenderLabel
	var definite, ambiguous []string
	for _, s := range signals {
		switch s.label {
		case types.GenderFemale, types.GenderMale:
			if label != "" && label != s.label {
				return types.GenderAmbiguous, "conflict"
			}
			label = s.label
			definite = append(definite, s.name)
		case types.GenderAmbiguous:
			ambiguous = append(ambiguous, s.name)
		}
	}

	if label != "" {
		return label, strings.Join(definite, "+")
	}
	if len(ambiguous) > 0 {
		return types.GenderAmbiguous, strings.Join(ambiguous, "+")
	}
	return types.GenderUndetermined, ""
}

// nameSignal consults the knowledge base. Lookup failures contribute
// nothing rather than failing the pass (R3.4).
func (a *AuthorResolver) nameSignal(ctx context.Context, name string) types.GenderLabel {
	if a.Backend == nil || name == "" {
		return ""
	}
	res, err := a.Backend.GenderByName(ctx, name)
	if err != nil || res.Gender == types.GenderUndetermined {
		return ""
	}
	return res.Gender
}

// pronounSignal scans the bio for gendered pronouns (R1.1). Both sets
// present is ambiguous, neither contributes nothing.
func pronounSignal(bio string) types.GenderLabel {
	var female, male bool
	for _, word := range bioWords.FindAllString(strings.ToLower(bio), -1) {
		if femalePronouns[word] {
			female = true
		}
		if malePronouns[word] {
			male = true
		}
	}
	switch {
	case female && male:
		return types.GenderAmbiguous
	case female:
		return types.GenderFemale
	case male:
		return types.GenderMale
	}
	return ""
}

// prnSignal counts female and male PRN hits in the bio (R1.2). German
// nouns are capitalized, so matching every word against the table only
// ever hits nouns.
func (a *AuthorResolver) prnSignal(bio string) types.GenderLabel {
	if a.Table == nil {
		return ""
	}
	var female, male int
	for _, word := range bioWords.FindAllString(bio, -1) {
		entry, ok := a.Table.Lookup(word)
		if !ok {
			continue
		}
		switch entry.Gender {
		case types.GenderFemale:
			female++
		case types.GenderMale:
			male++
		}
	}
	switch {
	case female > 0 && male > 0:
		return types.GenderAmbiguous
	case female > 0:
		return types.GenderFemale
	case male > 0:
		return types.GenderMale
	}
	return ""
}

// AuthorSink persists inferred author genders. *store.Store satisfies it.
type AuthorSink interface {
	SaveAuthorGender(ctx context.Context, authorID string, gender types.GenderLabel, source string) error
}

// AuthorSummary reports one inference pass over the author list.
type AuthorSummary struct {
	Female       int
	Male         int
	Undetermined int
	Ambiguous    int
	Failed       int
}

// Total returns the number of authors that received a label.
func (s AuthorSummary) Total() int {
	return s.Female + s.Male + s.Undetermined + s.Ambiguous
}

// ResolveAuthors infers and persists a label for every author (R3.1).
// Authors are processed sequentially: the interesting lookups hit the
// shared cache the mention pass already warmed.
func ResolveAuthors(ctx context.Context, a *AuthorResolver, authors []types.Author, sink AuthorSink, w io.Writer) (AuthorSummary, error) {
	var summary AuthorSummary
	for _, author := range authors {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		label, source := a.InferAuthor(ctx, author)
		if err := sink.SaveAuthorGender(ctx, author.ID, label, source); err != nil {
			summary.Failed++
			fmt.Fprintf(w, "failed  %s (%s): %v\n", author.ID, author.Name, err)
			continue
		}

		switch label {
		case types.GenderFemale:
			summary.Female++
		case types.GenderMale:
			summary.Male++
		case types.GenderAmbiguous:
			summary.Ambiguous++
		default:
			summary.Undetermined++
		}
	}

	fmt.Fprintf(w, "\nauthors: %d female, %d male, %d undetermined, %d ambiguous, %d failed\n",
		summary.Female, summary.Male, summary.Undetermined, summary.Ambiguous, summary.Failed)
	return summary, nil
}
