// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Granularity selects the grouping key for aggregate statistics.
// Per prd006-statistics R1.1.
type Granularity string

const (
	GranularityArticle Granularity = "article"
	GranularityVolume  Granularity = "volume"
	GranularityAuthor  Granularity = "author"
)

// AffectMeans holds mean connotation values over the female- or
// male-labeled mentions of one group. Means cover only mentions with an
// affect-norm entry for their lemma; NoScore counts the mentions excluded
// for lack of one, so lexicon coverage stays auditable.
// Per prd006-statistics R3.1-R3.3.
type AffectMeans struct {
	Valence      float64 `json:"valence" yaml:"valence"`
	Arousal      float64 `json:"arousal" yaml:"arousal"`
	Imageability float64 `json:"imageability" yaml:"imageability"`
	Concreteness float64 `json:"concreteness" yaml:"concreteness"`

	// Scored is the number of mentions the means were computed over.
	Scored int `json:"scored" yaml:"scored"`

	// NoScore is the number of labeled mentions without a norms entry.
	NoScore int `json:"no_score" yaml:"no_score"`
}

// AggregateRecord is one row of the pipeline's terminal statistics
// tables: mention counts, label proportions, and mean connotation values
// for one article, volume, or author. Fully derived and recomputable.
// Per prd006-statistics R2.1-R2.6.
type AggregateRecord struct {
	// Granularity names the grouping the record belongs to.
	Granularity Granularity `json:"granularity" yaml:"granularity"`

	// Key is the grouping id (article, volume, or author id).
	Key string `json:"key" yaml:"key"`

	// Label is the human-readable name for the key (title or author name).
	Label string `json:"label" yaml:"label"`

	// Articles is the number of articles contributing to the group.
	Articles int `json:"articles" yaml:"articles"`

	// Mentions is the total mention count across all labels.
	Mentions int `json:"mentions" yaml:"mentions"`

	// Counts per gender label, split by detection kind for female/male.
	FemalePER    int `json:"female_per" yaml:"female_per"`
	FemalePRN    int `json:"female_prn" yaml:"female_prn"`
	MalePER      int `json:"male_per" yaml:"male_per"`
	MalePRN      int `json:"male_prn" yaml:"male_prn"`
	Undetermined int `json:"undetermined" yaml:"undetermined"`
	Ambiguous    int `json:"ambiguous" yaml:"ambiguous"`

	// Proportions of Mentions per label. Undetermined and ambiguous keep
	// their own shares rather than being folded into female/male. Per R2.2.
	FemaleShare       float64 `json:"female_share" yaml:"female_share"`
	MaleShare         float64 `json:"male_share" yaml:"male_share"`
	UndeterminedShare float64 `json:"undetermined_share" yaml:"undetermined_share"`
	AmbiguousShare    float64 `json:"ambiguous_share" yaml:"ambiguous_share"`

	// FemaleAffect and MaleAffect hold the mean connotation values per
	// resolved gender.
	FemaleAffect AffectMeans `json:"female_affect" yaml:"female_affect"`
	MaleAffect   AffectMeans `json:"male_affect" yaml:"male_affect"`

	// InclusiveForms counts gender-inclusive writing forms found in the
	// group's text. Per prd007-inclusive-forms R2.1.
	InclusiveForms int `json:"inclusive_forms" yaml:"inclusive_forms"`

	// AuthorGender is the author's inferred gender; set only at author
	// granularity. Per prd008-author-gender R3.1.
	AuthorGender GenderLabel `json:"author_gender,omitempty" yaml:"author_gender,omitempty"`
}

// Female returns the total female mention count across detection kinds.
func (r AggregateRecord) Female() int { return r.FemalePER + r.FemalePRN }

// Male returns the total male mention count across detection kinds.
func (r AggregateRecord) Male() int { return r.MalePER + r.MalePRN }
