// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PRNEntry is one people-referencing noun in the compiled lexicon.
// Per prd002-prn-compiler R4.1: lemma, inferred gender, and provenance.
// Entries from the manual overlay replace compiled entries with the same
// lemma (R5.2).
type PRNEntry struct {
	// Lemma is the noun's base form as it appears in the dictionary.
	Lemma string `json:"lemma" yaml:"lemma"`

	// Gender is the inferred label: female, male, or ambiguous for nouns
	// usable for mixed-gender groups (overlay only).
	Gender GenderLabel `json:"gender" yaml:"gender"`

	// SourceURL points at the dictionary page the entry was compiled from.
	// Overlay entries carry an empty URL.
	SourceURL string `json:"source_url,omitempty" yaml:"source_url,omitempty"`
}

// AffectScore is the connotation tuple recorded for a lemma in the affect
// norms table. Per prd003-connotation-lexicon R1.2. Scores may be absent
// for a lemma; the statistics stage tracks such mentions separately.
type AffectScore struct {
	Valence      float64 `json:"valence" yaml:"valence"`
	Arousal      float64 `json:"arousal" yaml:"arousal"`
	Imageability float64 `json:"imageability" yaml:"imageability"`
	Concreteness float64 `json:"concreteness" yaml:"concreteness"`
}
