// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the depiction-engine pipeline.
// Implements: prd001-corpus (Article, Author, Volume, R2.1-R2.4);
//
//	prd002-prn-compiler (PRNEntry, R4.1);
//	prd003-connotation-lexicon (AffectScore, R1.2);
//	prd004-mention-extraction (Mention, R1.1-R1.5);
//	prd005-gender-resolution (GenderLabel, R1.1);
//	prd006-statistics (AggregateRecord, R2.1-R2.6).
//
// See docs/ARCHITECTURE.md § Pipeline Interface, § Data Structures.
package types

import "time"

// Article is one magazine article from the corpus snapshot. Immutable once
// ingested; the pipeline never writes back to the corpus. Per prd001-corpus R2.1.
type Article struct {
	// ID is the scraper-assigned identifier (UUIDv3 over the source URL).
	ID string `json:"id" yaml:"id"`

	// VolumeID references the issue the article appeared in.
	VolumeID string `json:"volume_id" yaml:"volume_id"`

	// Title is the article headline.
	Title string `json:"title" yaml:"title"`

	// Text is the full article body as delivered by the scraper.
	Text string `json:"text" yaml:"text"`

	// AuthorIDs lists the article's authors in byline order.
	AuthorIDs []string `json:"author_ids" yaml:"author_ids"`
}

// Author is a byline record. Duplicate ids across scraper exports are
// deduplicated before any join; the first occurrence wins. Per prd001-corpus R2.2.
type Author struct {
	// ID is the scraper-assigned identifier (UUIDv3 over the author page URL).
	ID string `json:"id" yaml:"id"`

	// Name is the author's byline name.
	Name string `json:"name" yaml:"name"`

	// Info is the author's short biography as published, if any.
	Info string `json:"info,omitempty" yaml:"info,omitempty"`
}

// Volume is one magazine issue. Per prd001-corpus R2.3.
type Volume struct {
	// ID is the scraper-assigned identifier.
	ID string `json:"id" yaml:"id"`

	// Title is the issue title (e.g. "Ausgabe 3/2019").
	Title string `json:"title" yaml:"title"`

	// PublishedDate is the issue's publication date.
	PublishedDate time.Time `json:"published_date" yaml:"published_date"`
}
