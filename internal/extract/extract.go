// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract identifies person mentions within article text.
// Implements: prd004-mention-extraction (R1-R6), prd007-inclusive-forms (R1-R3);
//
//	docs/ARCHITECTURE.md § Mention Extraction.
package extract

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"sort"
	"strings"

	prose "github.com/tsawler/prose/v3"

	"github.com/pdiddy/depiction-engine/internal/prnlex"
	"github.com/pdiddy/depiction-engine/pkg/types"
)

// Annotator produces tokens and entities for normalized article text.
// ProseAnnotator is the production implementation; tests supply a
// deterministic fake. Per Strategy pattern (prd004-mention-extraction
// R2.1).
type Annotator interface {
	Annotate(text string) ([]prose.Token, []prose.Entity, error)
}

// ProseAnnotator runs the prose tagging and entity pipeline.
type ProseAnnotator struct {
	model *prose.Model
}

// NewProseAnnotator builds the production annotator. When cfg.ModelDir
// is set, a trained model from disk replaces the built-in German
// pipeline.
func NewProseAnnotator(cfg types.ExtractConfig) *ProseAnnotator {
	a := &ProseAnnotator{}
	if cfg.ModelDir != "" {
		a.model = prose.ModelFromDisk(cfg.ModelDir)
	}
	return a
}

// Annotate tokenizes, tags, and entity-annotates text.
func (a *ProseAnnotator) Annotate(text string) ([]prose.Token, []prose.Entity, error) {
	opts := []prose.DocOpt{prose.WithSegmentation(false)}
	if a.model != nil {
		opts = append(opts, prose.UsingModel(a.model))
	} else {
		opts = append(opts, prose.WithLanguage(prose.German))
	}
	doc, err := prose.NewDocument(text, opts...)
	if err != nil {
		return nil, nil, err
	}
	return doc.Tokens(), doc.Entities(), nil
}

// Sink receives extraction output. *store.Store satisfies it; tests
// supply an in-memory fake.
type Sink interface {
	HasExtraction(ctx context.Context, articleID string) (bool, error)
	ReplaceArticleMentions(ctx context.Context, articleID string, mentions []types.Mention) error
	ReplaceInclusiveForms(ctx context.Context, articleID string, counts map[string]int) error
}

// Extractor turns annotated article text into typed person mentions.
// Gender stays unset here; the resolver fills it in a later stage
// (R1.4).
type Extractor struct {
	Table         *prn.Table
	Annotator     Annotator
	MinConfidence float64
}

// NewExtractor builds an Extractor over a merged PRN table using the
// prose pipeline.
func NewExtractor(table *prn.Table, cfg types.ExtractConfig) *Extractor {
	return &Extractor{
		Table:         table,
		Annotator:     NewProseAnnotator(cfg),
		MinConfidence: cfg.MinEntityConfidence,
	}
}

// ArticleResult is the extraction output for one article.
type ArticleResult struct {
	Mentions       []types.Mention
	InclusiveForms map[string]int
	Tokens         int
	SlashesRemoved int
}

// ExtractArticle annotates one article. Named-person entities become
// PER mentions; noun tokens whose lemma is in the PRN table become PRN
// mentions. A token covered by a PER span is never also counted as a
// PRN match (R3.2). Span offsets refer to the normalized text.
func (e *Extractor) ExtractArticle(article types.Article) (*ArticleResult, error) {
	text, slashes := Normalize(article.Text)

	tokens, entities, err := e.Annotator.Annotate(text)
	if err != nil {
		return nil, fmt.Errorf("annotating article: %w", err)
	}

	var mentions []types.Mention
	var perSpans [][2]int
	for _, ent := range entities {
		if ent.Label != string(prose.PersonEntity) {
			continue
		}
		if ent.Confidence < e.MinConfidence {
			continue
		}
		perSpans = append(perSpans, [2]int{ent.Start, ent.End})
		mentions = append(mentions, types.Mention{
			ID:         mentionID(article.ID, ent.Start, ent.End),
			ArticleID:  article.ID,
			Surface:    ent.Text,
			Lemma:      normalizeName(ent.Text),
			Start:      ent.Start,
			End:        ent.End,
			Kind:       types.KindPER,
			Confidence: ent.Confidence,
		})
	}

	for _, tok := range tokens {
		if !strings.HasPrefix(tok.Tag, "NN") {
			continue
		}
		if overlapsAny(tok.Start, tok.End, perSpans) {
			continue
		}
		lemma, ok := e.matchPRN(tok.Text)
		if !ok {
			continue
		}
		mentions = append(mentions, types.Mention{
			ID:         mentionID(article.ID, tok.Start, tok.End),
			ArticleID:  article.ID,
			Surface:    tok.Text,
			Lemma:      lemma,
			Start:      tok.Start,
			End:        tok.End,
			Kind:       types.KindPRN,
			Confidence: 1,
		})
	}

	// Span order keeps reruns byte-identical (R5.1).
	sort.Slice(mentions, func(i, j int) bool {
		if mentions[i].Start != mentions[j].Start {
			return mentions[i].Start < mentions[j].Start
		}
		if mentions[i].End != mentions[j].End {
			return mentions[i].End < mentions[j].End
		}
		return mentions[i].Kind < mentions[j].Kind
	})

	return &ArticleResult{
		Mentions:       mentions,
		InclusiveForms: CountInclusiveForms(text),
		Tokens:         len(tokens),
		SlashesRemoved: slashes,
	}, nil
}

// matchPRN reports whether a noun surface maps into the PRN table and
// returns the table lemma that matched.
func (e *Extractor) matchPRN(surface string) (string, bool) {
	for _, candidate := range lemmaCandidates(surface) {
		if entry, ok := e.Table.Lookup(candidate); ok {
			return entry.Lemma, true
		}
	}
	return "", false
}

// BatchSummary holds counts from a batch extraction run (R6.3).
type BatchSummary struct {
	Extracted int
	Skipped   int
	Failed    int
}

// Total returns the number of articles processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Skipped + s.Failed
}

// HasFailures reports whether any articles failed (R6.4).
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// ExtractAll runs extraction over the whole corpus and persists the
// results. Articles already extracted are skipped unless force is set
// (R6.1); a failed article is reported and the batch continues (R6.2).
func ExtractAll(ctx context.Context, e *Extractor, articles []types.Article, sink Sink, force bool, w io.Writer) (BatchSummary, error) {
	var summary BatchSummary

	for _, article := range articles {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		done, err := sink.HasExtraction(ctx, article.ID)
		if err != nil {
			return summary, fmt.Errorf("checking extraction status: %w", err)
		}
		if done && !force {
			fmt.Fprintf(w, "skipped %s\n", article.ID)
			summary.Skipped++
			continue
		}

		result, err := e.ExtractArticle(article)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", article.ID, err)
			summary.Failed++
			continue
		}

		if err := sink.ReplaceArticleMentions(ctx, article.ID, result.Mentions); err != nil {
			fmt.Fprintf(w, "failed  %s: write error: %v\n", article.ID, err)
			summary.Failed++
			continue
		}
		if err := sink.ReplaceInclusiveForms(ctx, article.ID, result.InclusiveForms); err != nil {
			fmt.Fprintf(w, "failed  %s: write error: %v\n", article.ID, err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "extracted %s (%d mentions, %d tokens)\n",
			article.ID, len(result.Mentions), result.Tokens)
		summary.Extracted++
	}

	fmt.Fprintf(w, "\nextracted: %d, skipped: %d, failed: %d\n",
		summary.Extracted, summary.Skipped, summary.Failed)
	return summary, nil
}

// overlapsAny reports whether [start, end) intersects any span.
func overlapsAny(start, end int, spans [][2]int) bool {
	for _, s := range spans {
		if start < s[1] && end > s[0] {
			return true
		}
	}
	return false
}

// normalizeName collapses inner whitespace so cache keys and
// knowledge-base queries see one spelling per name.
func normalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// mentionID derives a deterministic ID from article ID and span.
// The ID is the first 12 hex characters of SHA-256(articleID|start|end).
func mentionID(articleID string, start, end int) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%d", articleID, start, end)
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}
