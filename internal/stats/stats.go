// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stats aggregates resolved mentions into depiction statistics.
// Implements: prd006-statistics (R1-R5), prd007-inclusive-forms (R2);
//
//	docs/ARCHITECTURE.md § Statistics.
package stats

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pdiddy/depiction-engine/internal/affect"
	"github.com/pdiddy/depiction-engine/pkg/types"
)

// Input carries everything the aggregator joins: corpus metadata,
// resolved mentions, the connotation lexicon, and the per-article
// supplements earlier stages stored.
type Input struct {
	Articles []types.Article
	Volumes  []types.Volume
	Authors  []types.Author

	// Mentions are the resolved mentions of every article. A mention
	// that somehow skipped resolution counts as undetermined.
	Mentions []types.Mention

	// Affect supplies connotation norms per lemma. Nil counts every
	// labeled mention as no-score.
	Affect *affect.Lexicon

	// Inclusive maps article ids to their total inclusive-form count.
	Inclusive map[string]int

	// AuthorGenders maps author ids to their inferred label.
	AuthorGenders map[string]types.GenderLabel
}

// group is one aggregation unit: a key plus the articles that feed it.
type group struct {
	key          string
	label        string
	articles     []types.Article
	authorGender types.GenderLabel
}

// Aggregate computes one record per group at the requested granularity
// (R1.1). Groups derive from the article join, so a volume or author
// without any article yields no record. Records come back sorted by key.
func Aggregate(in Input, g types.Granularity) ([]types.AggregateRecord, error) {
	var groups []group
	switch g {
	case types.GranularityArticle:
		groups = articleGroups(in)
	case types.GranularityVolume:
		groups = volumeGroups(in)
	case types.GranularityAuthor:
		groups = authorGroups(in)
	default:
		return nil, fmt.Errorf("unknown granularity %q", g)
	}

	byArticle := make(map[string][]types.Mention, len(in.Articles))
	for _, m := range in.Mentions {
		byArticle[m.ArticleID] = append(byArticle[m.ArticleID], m)
	}

	records := make([]types.AggregateRecord, 0, len(groups))
	for _, grp := range groups {
		records = append(records, aggregateGroup(g, grp, byArticle, in))
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Key < records[j].Key })
	return records, nil
}

func articleGroups(in Input) []group {
	groups := make([]group, 0, len(in.Articles))
	for _, a := range in.Articles {
		groups = append(groups, group{key: a.ID, label: a.Title, articles: []types.Article{a}})
	}
	return groups
}

func volumeGroups(in Input) []group {
	titles := make(map[string]string, len(in.Volumes))
	for _, v := range in.Volumes {
		titles[v.ID] = v.Title
	}

	byVolume := make(map[string]*group)
	var order []string
	for _, a := range in.Articles {
		grp, ok := byVolume[a.VolumeID]
		if !ok {
			label := titles[a.VolumeID]
			if label == "" {
				label = a.VolumeID
			}
			grp = &group{key: a.VolumeID, label: label}
			byVolume[a.VolumeID] = grp
			order = append(order, a.VolumeID)
		}
		grp.articles = append(grp.articles, a)
	}

	groups := make([]group, 0, len(order))
	for _, id := range order {
		groups = append(groups, *byVolume[id])
	}
	return groups
}

func authorGroups(in Input) []group {
	names := make(map[string]string, len(in.Authors))
	for _, a := range in.Authors {
		names[a.ID] = a.Name
	}

	byAuthor := make(map[string]*group)
	var order []string
	for _, a := range in.Articles {
		for _, authorID := range a.AuthorIDs {
			grp, ok := byAuthor[authorID]
			if !ok {
				label := names[authorID]
				if label == "" {
					label = authorID
				}
				grp = &group{
					key:          authorID,
					label:        label,
					authorGender: in.AuthorGenders[authorID],
				}
				byAuthor[authorID] = grp
				order = append(order, authorID)
			}
			grp.articles = append(grp.articles, a)
		}
	}

	groups := make([]group, 0, len(order))
	for _, id := range order {
		groups = append(groups, *byAuthor[id])
	}
	return groups
}

// scoreAcc collects affect values for one gender within a group.
type scoreAcc struct {
	valence      []float64
	arousal      []float64
	imageability []float64
	concreteness []float64
	noScore      int
}

func (s *scoreAcc) add(score types.AffectScore) {
	s.valence = append(s.valence, score.Valence)
	s.arousal = append(s.arousal, score.Arousal)
	s.imageability = append(s.imageability, score.Imageability)
	s.concreteness = append(s.concreteness, score.Concreteness)
}

func (s *scoreAcc) means() types.AffectMeans {
	m := types.AffectMeans{Scored: len(s.valence), NoScore: s.noScore}
	if len(s.valence) > 0 {
		m.Valence = stat.Mean(s.valence, nil)
		m.Arousal = stat.Mean(s.arousal, nil)
		m.Imageability = stat.Mean(s.imageability, nil)
		m.Concreteness = stat.Mean(s.concreteness, nil)
	}
	return m
}

// collect routes one labeled mention into the accumulator: scored when
// the norms know its lemma, no-score otherwise (R3.2, R3.3).
func (s *scoreAcc) collect(m types.Mention, lex *affect.Lexicon) {
	if lex == nil {
		s.noScore++
		return
	}
	score, ok := lex.Lookup(m.Lemma)
	if !ok {
		s.noScore++
		return
	}
	s.add(score)
}

func aggregateGroup(g types.Granularity, grp group, byArticle map[string][]types.Mention, in Input) types.AggregateRecord {
	rec := types.AggregateRecord{
		Granularity:  g,
		Key:          grp.key,
		Label:        grp.label,
		AuthorGender: grp.authorGender,
	}
	var female, male scoreAcc

	for _, a := range grp.articles {
		rec.Articles++
		rec.InclusiveForms += in.Inclusive[a.ID]

		for _, m := range byArticle[a.ID] {
			rec.Mentions++
			switch m.Gender {
			case types.GenderFemale:
				if m.Kind == types.KindPER {
					rec.FemalePER++
				} else {
					rec.FemalePRN++
				}
				female.collect(m, in.Affect)
			case types.GenderMale:
				if m.Kind == types.KindPER {
					rec.MalePER++
				} else {
					rec.MalePRN++
				}
				male.collect(m, in.Affect)
			case types.GenderAmbiguous:
				rec.Ambiguous++
			default:
				rec.Undetermined++
			}
		}
	}

	// Shares keep undetermined and ambiguous as their own buckets; they
	// are never folded into female or male (R2.2).
	if rec.Mentions > 0 {
		n := float64(rec.Mentions)
		rec.FemaleShare = float64(rec.Female()) / n
		rec.MaleShare = float64(rec.Male()) / n
		rec.UndeterminedShare = float64(rec.Undetermined) / n
		rec.AmbiguousShare = float64(rec.Ambiguous) / n
	}

	rec.FemaleAffect = female.means()
	rec.MaleAffect = male.means()
	return rec
}
