package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pdiddy/depiction-engine/pkg/types"
)

// --- test helpers ---

func testSetup(t *testing.T) *Store {
	t.Helper()
	cfg := types.StoreConfig{
		Path: filepath.Join(t.TempDir(), "analysis.db"),
	}
	s, err := Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleMentions(articleID string) []types.Mention {
	return []types.Mention{
		{
			ID:        "aaa111bbb222",
			ArticleID: articleID,
			Surface:   "Lehrerin",
			Lemma:     "Lehrerin",
			Start:     4,
			End:       12,
			Kind:      types.KindPRN,
		},
		{
			ID:        "ccc333ddd444",
			ArticleID: articleID,
			Surface:   "Maria Schmidt",
			Lemma:     "Maria Schmidt",
			Start:     13,
			End:       26,
			Kind:      types.KindPER,
		},
	}
}

// --- tests ---

func TestReplaceArticleMentions(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()

	if err := s.ReplaceArticleMentions(ctx, "art-1", sampleMentions("art-1")); err != nil {
		t.Fatal(err)
	}

	got, err := s.MentionsByArticle(ctx, "art-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d mentions, want 2", len(got))
	}
	if got[0].Surface != "Lehrerin" || got[1].Surface != "Maria Schmidt" {
		t.Errorf("mentions out of span order: %q, %q", got[0].Surface, got[1].Surface)
	}
	if got[0].Kind != types.KindPRN || got[1].Kind != types.KindPER {
		t.Errorf("kinds %q, %q", got[0].Kind, got[1].Kind)
	}

	ok, err := s.HasExtraction(ctx, "art-1")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("article should be marked extracted")
	}
	ok, err = s.HasExtraction(ctx, "art-2")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("unseen article must not be marked extracted")
	}

	// A rerun replaces rather than appends.
	if err := s.ReplaceArticleMentions(ctx, "art-1", sampleMentions("art-1")[:1]); err != nil {
		t.Fatal(err)
	}
	got, err = s.MentionsByArticle(ctx, "art-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("after replace got %d mentions, want 1", len(got))
	}
}

func TestUnresolvedAndSaveResolutions(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()

	mentions := sampleMentions("art-1")
	if err := s.ReplaceArticleMentions(ctx, "art-1", mentions); err != nil {
		t.Fatal(err)
	}

	pending, err := s.Unresolved(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Fatalf("got %d unresolved, want 2", len(pending))
	}

	pending[0].Gender = types.GenderFemale
	pending[0].Source = "prn-table"
	pending[0].Confidence = 1.0
	pending[1].Gender = types.GenderFemale
	pending[1].Source = "wikidata"
	pending[1].Confidence = 1.0
	if err := s.SaveResolutions(ctx, pending); err != nil {
		t.Fatal(err)
	}

	pending, err = s.Unresolved(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("got %d unresolved after save, want 0", len(pending))
	}

	all, err := s.Mentions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range all {
		if m.Gender != types.GenderFemale {
			t.Errorf("mention %s gender %q, want female", m.ID, m.Gender)
		}
	}
}

func TestCacheRoundTrip(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()

	_, ok, err := s.CacheGet(ctx, "maria schmidt")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("empty cache must miss")
	}

	if err := s.CachePut(ctx, "maria schmidt", types.GenderFemale); err != nil {
		t.Fatal(err)
	}
	gender, ok, err := s.CacheGet(ctx, "maria schmidt")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || gender != types.GenderFemale {
		t.Errorf("got (%q, %v), want (female, true)", gender, ok)
	}

	// A second put overwrites.
	if err := s.CachePut(ctx, "maria schmidt", types.GenderAmbiguous); err != nil {
		t.Fatal(err)
	}
	gender, _, err = s.CacheGet(ctx, "maria schmidt")
	if err != nil {
		t.Fatal(err)
	}
	if gender != types.GenderAmbiguous {
		t.Errorf("got %q after overwrite, want ambiguous", gender)
	}
}

func TestInclusiveForms(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()

	err := s.ReplaceInclusiveForms(ctx, "art-1", map[string]int{
		"gender-star": 3,
		"binnen-i":    1,
		"colon":       0,
	})
	if err != nil {
		t.Fatal(err)
	}

	forms, err := s.InclusiveForms(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(forms) != 2 {
		t.Fatalf("got %d rows, want 2 (zero counts dropped)", len(forms))
	}
	if forms[0].Form != "binnen-i" || forms[0].Count != 1 {
		t.Errorf("first row %+v", forms[0])
	}
	if forms[1].Form != "gender-star" || forms[1].Count != 3 {
		t.Errorf("second row %+v", forms[1])
	}

	// Replacement clears earlier counts.
	if err := s.ReplaceInclusiveForms(ctx, "art-1", map[string]int{"pair-form": 2}); err != nil {
		t.Fatal(err)
	}
	forms, err = s.InclusiveForms(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(forms) != 1 || forms[0].Form != "pair-form" {
		t.Errorf("after replace: %+v", forms)
	}
}

func TestAuthorGenders(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()

	if err := s.SaveAuthorGender(ctx, "auth-1", types.GenderFemale, "bio-pronouns"); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveAuthorGender(ctx, "auth-2", types.GenderUndetermined, "kb-name"); err != nil {
		t.Fatal(err)
	}
	// Re-running the stage overwrites.
	if err := s.SaveAuthorGender(ctx, "auth-2", types.GenderMale, "kb-name"); err != nil {
		t.Fatal(err)
	}

	genders, err := s.AuthorGenders(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(genders) != 2 {
		t.Fatalf("got %d authors, want 2", len(genders))
	}
	if genders["auth-1"] != types.GenderFemale || genders["auth-2"] != types.GenderMale {
		t.Errorf("genders %v", genders)
	}
}

func TestTally(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()

	if err := s.ReplaceArticleMentions(ctx, "art-1", sampleMentions("art-1")); err != nil {
		t.Fatal(err)
	}
	if err := s.CachePut(ctx, "maria schmidt", types.GenderFemale); err != nil {
		t.Fatal(err)
	}

	tally, err := s.Tally(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := Tally{Articles: 1, Mentions: 2, Unresolved: 2, Cached: 1}
	if tally != want {
		t.Errorf("tally %+v, want %+v", tally, want)
	}
}
