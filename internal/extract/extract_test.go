package extract

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	prose "github.com/tsawler/prose/v3"

	"github.com/pdiddy/depiction-engine/internal/prnlex"
	"github.com/pdiddy/depiction-engine/pkg/types"
)

// --- test helpers ---

type fakeAnnotator struct {
	tokens   []prose.Token
	entities []prose.Entity
	err      error
}

func (f *fakeAnnotator) Annotate(string) ([]prose.Token, []prose.Entity, error) {
	return f.tokens, f.entities, f.err
}

func testTable() *prn.Table {
	return prn.NewTable([]types.PRNEntry{
		{Lemma: "Lehrerin", Gender: types.GenderFemale},
		{Lemma: "Lehrer", Gender: types.GenderMale},
	})
}

// classroomSentence is annotated by hand so extraction tests do not
// depend on model behavior. Offsets index into the sentence itself;
// Normalize leaves it unchanged.
const classroomSentence = "Die Lehrerin Maria Schmidt unterrichtet Physik."

func classroomTokens() []prose.Token {
	return []prose.Token{
		{Tag: "ART", Text: "Die", Start: 0, End: 3},
		{Tag: "NN", Text: "Lehrerin", Start: 4, End: 12},
		{Tag: "NNP", Text: "Maria", Start: 13, End: 18},
		{Tag: "NNP", Text: "Schmidt", Start: 19, End: 26},
		{Tag: "VB", Text: "unterrichtet", Start: 27, End: 39},
		{Tag: "NN", Text: "Physik", Start: 40, End: 46},
		{Tag: ".", Text: ".", Start: 46, End: 47},
	}
}

func classroomEntities() []prose.Entity {
	return []prose.Entity{
		{Text: "Maria Schmidt", Label: "PERSON", Start: 13, End: 26, Confidence: 0.9},
	}
}

// --- tests ---

func TestExtractArticle(t *testing.T) {
	e := &Extractor{
		Table:         testTable(),
		Annotator:     &fakeAnnotator{tokens: classroomTokens(), entities: classroomEntities()},
		MinConfidence: 0.5,
	}
	article := types.Article{ID: "art-1", Text: classroomSentence}

	result, err := e.ExtractArticle(article)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Mentions) != 2 {
		t.Fatalf("got %d mentions, want 2: %+v", len(result.Mentions), result.Mentions)
	}

	first, second := result.Mentions[0], result.Mentions[1]
	if first.Kind != types.KindPRN || first.Surface != "Lehrerin" || first.Start != 4 || first.End != 12 {
		t.Errorf("first mention %+v, want PRN Lehrerin [4,12)", first)
	}
	if first.Lemma != "Lehrerin" {
		t.Errorf("PRN lemma %q, want table lemma", first.Lemma)
	}
	if second.Kind != types.KindPER || second.Surface != "Maria Schmidt" || second.Start != 13 || second.End != 26 {
		t.Errorf("second mention %+v, want PER Maria Schmidt [13,26)", second)
	}

	for _, m := range result.Mentions {
		if m.Gender != "" {
			t.Errorf("mention %s already labeled %q, resolution is a later stage", m.ID, m.Gender)
		}
		if m.ArticleID != "art-1" {
			t.Errorf("mention %s article %q", m.ID, m.ArticleID)
		}
		if len(m.ID) != 12 {
			t.Errorf("mention ID %q not 12 hex chars", m.ID)
		}
	}
	if first.ID == second.ID {
		t.Error("distinct spans must get distinct IDs")
	}

	// Maria and Schmidt are noun tokens inside the PER span and must
	// not surface as separate mentions.
	if result.Tokens != 7 {
		t.Errorf("token count %d, want 7", result.Tokens)
	}
}

func TestExtractArticleDeterministicIDs(t *testing.T) {
	e := &Extractor{
		Table:         testTable(),
		Annotator:     &fakeAnnotator{tokens: classroomTokens(), entities: classroomEntities()},
		MinConfidence: 0.5,
	}
	article := types.Article{ID: "art-1", Text: classroomSentence}

	first, err := e.ExtractArticle(article)
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.ExtractArticle(article)
	if err != nil {
		t.Fatal(err)
	}
	for i := range first.Mentions {
		if first.Mentions[i].ID != second.Mentions[i].ID {
			t.Errorf("mention %d ID changed between runs: %s vs %s",
				i, first.Mentions[i].ID, second.Mentions[i].ID)
		}
	}
}

func TestExtractArticlePERWinsOverlap(t *testing.T) {
	// "Lehrerin" is both a recognized entity and a PRN lemma here; the
	// entity wins and the span is counted once.
	e := &Extractor{
		Table: testTable(),
		Annotator: &fakeAnnotator{
			tokens: []prose.Token{
				{Tag: "NN", Text: "Lehrerin", Start: 4, End: 12},
			},
			entities: []prose.Entity{
				{Text: "Lehrerin", Label: "PERSON", Start: 4, End: 12, Confidence: 0.8},
			},
		},
		MinConfidence: 0.5,
	}

	result, err := e.ExtractArticle(types.Article{ID: "art-1", Text: "Die Lehrerin kam."})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Mentions) != 1 {
		t.Fatalf("got %d mentions, want 1", len(result.Mentions))
	}
	if result.Mentions[0].Kind != types.KindPER {
		t.Errorf("overlapping span classified %q, want PER", result.Mentions[0].Kind)
	}
}

func TestExtractArticleLowConfidenceEntity(t *testing.T) {
	// A rejected entity frees its span for PRN matching.
	e := &Extractor{
		Table: testTable(),
		Annotator: &fakeAnnotator{
			tokens: []prose.Token{
				{Tag: "NN", Text: "Lehrerin", Start: 4, End: 12},
			},
			entities: []prose.Entity{
				{Text: "Lehrerin", Label: "PERSON", Start: 4, End: 12, Confidence: 0.2},
			},
		},
		MinConfidence: 0.5,
	}

	result, err := e.ExtractArticle(types.Article{ID: "art-1", Text: "Die Lehrerin kam."})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Mentions) != 1 {
		t.Fatalf("got %d mentions, want 1", len(result.Mentions))
	}
	if result.Mentions[0].Kind != types.KindPRN {
		t.Errorf("got kind %q, want PRN fallback", result.Mentions[0].Kind)
	}
}

func TestExtractArticleIgnoresOtherEntities(t *testing.T) {
	e := &Extractor{
		Table: testTable(),
		Annotator: &fakeAnnotator{
			entities: []prose.Entity{
				{Text: "Berlin", Label: "GPE", Start: 0, End: 6, Confidence: 0.9},
			},
		},
		MinConfidence: 0.5,
	}
	result, err := e.ExtractArticle(types.Article{ID: "art-1", Text: "Berlin."})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Mentions) != 0 {
		t.Errorf("got %d mentions for a place entity, want 0", len(result.Mentions))
	}
}

func TestExtractArticleAnnotatorError(t *testing.T) {
	e := &Extractor{
		Table:     testTable(),
		Annotator: &fakeAnnotator{err: errors.New("model not loaded")},
	}
	_, err := e.ExtractArticle(types.Article{ID: "art-1", Text: "x"})
	if err == nil || !strings.Contains(err.Error(), "annotating article") {
		t.Errorf("got %v, want wrapped annotation error", err)
	}
}

// --- batch tests ---

type fakeSink struct {
	extracted map[string]bool
	mentions  map[string][]types.Mention
	forms     map[string]map[string]int
	writeErr  error
}

func newFakeSink() *fakeSink {
	return &fakeSink{
		extracted: make(map[string]bool),
		mentions:  make(map[string][]types.Mention),
		forms:     make(map[string]map[string]int),
	}
}

func (f *fakeSink) HasExtraction(_ context.Context, articleID string) (bool, error) {
	return f.extracted[articleID], nil
}

func (f *fakeSink) ReplaceArticleMentions(_ context.Context, articleID string, mentions []types.Mention) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.extracted[articleID] = true
	f.mentions[articleID] = mentions
	return nil
}

func (f *fakeSink) ReplaceInclusiveForms(_ context.Context, articleID string, counts map[string]int) error {
	f.forms[articleID] = counts
	return nil
}

func TestExtractAll(t *testing.T) {
	e := &Extractor{
		Table:         testTable(),
		Annotator:     &fakeAnnotator{tokens: classroomTokens(), entities: classroomEntities()},
		MinConfidence: 0.5,
	}
	articles := []types.Article{
		{ID: "art-1", Text: classroomSentence},
		{ID: "art-2", Text: classroomSentence},
	}
	sink := newFakeSink()
	sink.extracted["art-1"] = true

	var out strings.Builder
	summary, err := ExtractAll(context.Background(), e, articles, sink, false, &out)
	if err != nil {
		t.Fatal(err)
	}
	want := BatchSummary{Extracted: 1, Skipped: 1}
	if summary != want {
		t.Errorf("summary %+v, want %+v", summary, want)
	}
	if summary.Total() != 2 || summary.HasFailures() {
		t.Errorf("Total=%d HasFailures=%v", summary.Total(), summary.HasFailures())
	}
	if len(sink.mentions["art-2"]) != 2 {
		t.Errorf("art-2 got %d mentions", len(sink.mentions["art-2"]))
	}
	if _, ok := sink.mentions["art-1"]; ok {
		t.Error("art-1 was already extracted and must not be rewritten")
	}
	if !strings.Contains(out.String(), "skipped art-1") {
		t.Errorf("log %q should note the skip", out.String())
	}

	// force reruns everything.
	summary, err = ExtractAll(context.Background(), e, articles, sink, true, &out)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Extracted != 2 {
		t.Errorf("forced run extracted %d, want 2", summary.Extracted)
	}
}

func TestExtractAllContinuesOnFailure(t *testing.T) {
	e := &Extractor{
		Table:     testTable(),
		Annotator: &fakeAnnotator{err: errors.New("boom")},
	}
	articles := []types.Article{{ID: "art-1"}, {ID: "art-2"}}

	var out strings.Builder
	summary, err := ExtractAll(context.Background(), e, articles, newFakeSink(), false, &out)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Failed != 2 {
		t.Errorf("failed %d, want 2", summary.Failed)
	}
	if !summary.HasFailures() {
		t.Error("HasFailures should report the failed articles")
	}
	if !strings.Contains(out.String(), "failed  art-1") {
		t.Errorf("log %q should name the failed article", out.String())
	}
}

func TestExtractAllCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := &Extractor{Table: testTable(), Annotator: &fakeAnnotator{}}
	_, err := ExtractAll(ctx, e, []types.Article{{ID: "art-1"}}, newFakeSink(), false, io.Discard)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
