// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// GenderLabel classifies the gender signal resolved for a mention.
// Per prd005-gender-resolution R1.1: undetermined means no signal was
// found, ambiguous means the signals found conflict (or the noun is
// usable for mixed-gender groups).
type GenderLabel string

const (
	GenderFemale       GenderLabel = "female"
	GenderMale         GenderLabel = "male"
	GenderUndetermined GenderLabel = "undetermined"
	GenderAmbiguous    GenderLabel = "ambiguous"
)

// Resolved reports whether the label carries a usable female/male signal.
// Undetermined and ambiguous mentions are counted separately and never
// folded into female/male totals. Per prd006-statistics R2.2.
func (g GenderLabel) Resolved() bool {
	return g == GenderFemale || g == GenderMale
}

// MentionKind distinguishes how a person reference was detected.
// Per prd004-mention-extraction R1.2.
type MentionKind string

const (
	// KindPER is a named person found by entity recognition.
	KindPER MentionKind = "PER"

	// KindPRN is a people-referencing noun matched against the compiled lexicon.
	KindPRN MentionKind = "PRN"
)

// Mention is one occurrence of a person reference within an article.
// Created by the extraction stage, enriched in place by the resolution
// stage; only Gender, Source, and Confidence change after creation.
// Per prd004-mention-extraction R1.1-R1.5, prd005-gender-resolution R2.1.
type Mention struct {
	// ID is a stable identifier derived from the article id and span,
	// consistent across re-extractions of unchanged text.
	ID string `json:"id" yaml:"id"`

	// ArticleID references the containing article.
	ArticleID string `json:"article_id" yaml:"article_id"`

	// Surface is the mention text exactly as it appears in the article.
	Surface string `json:"surface" yaml:"surface"`

	// Lemma is the base form used for lexicon lookups. For PER mentions
	// this is the normalized full name.
	Lemma string `json:"lemma" yaml:"lemma"`

	// Start and End are byte offsets of the span within the preprocessed
	// article text.
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`

	// Kind is PER for named persons, PRN for people-referencing nouns.
	Kind MentionKind `json:"kind" yaml:"kind"`

	// Gender is the resolved label. Empty until the resolution stage runs.
	Gender GenderLabel `json:"gender,omitempty" yaml:"gender,omitempty"`

	// Source records what resolved the mention: "prn-table", "wikidata",
	// "cache", or "fixture". Empty until resolved.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// Confidence is the detection confidence between 0.0 and 1.0. PRN
	// matches are exact and carry 1.0; PER mentions carry the recognizer's
	// confidence.
	Confidence float64 `json:"confidence" yaml:"confidence"`
}
