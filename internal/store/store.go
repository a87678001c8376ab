// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists mentions and resolution state between
// pipeline stages.
// Implements: prd010-analysis-store (R1-R5);
//
//	docs/ARCHITECTURE.md § Pipeline Interface.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/depiction-engine/pkg/types"
)

// Store manages the analysis SQLite database. Extraction writes
// mentions with an empty gender field; resolution fills it in place
// (R2.3). The knowledge-base cache and per-article auxiliary counts
// live in the same file so a run can resume after any stage.
type Store struct {
	db *sql.DB
}

// Open opens or creates the analysis database. The schema is created
// if it does not exist (R1.1).
func Open(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating analysis directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening analysis database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS mentions (
			id TEXT PRIMARY KEY,
			article_id TEXT NOT NULL,
			surface TEXT NOT NULL,
			lemma TEXT,
			span_start INTEGER NOT NULL,
			span_end INTEGER NOT NULL,
			kind TEXT NOT NULL,
			gender TEXT NOT NULL DEFAULT '',
			source TEXT,
			confidence REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_mentions_article_id ON mentions(article_id)`,
		`CREATE INDEX IF NOT EXISTS idx_mentions_gender ON mentions(gender)`,
		`CREATE TABLE IF NOT EXISTS extraction_status (
			article_id TEXT PRIMARY KEY,
			extracted_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS kb_cache (
			name TEXT PRIMARY KEY,
			gender TEXT NOT NULL,
			resolved_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS inclusive_forms (
			article_id TEXT NOT NULL,
			form TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (article_id, form)
		)`,
		`CREATE TABLE IF NOT EXISTS author_gender (
			author_id TEXT PRIMARY KEY,
			gender TEXT NOT NULL,
			source TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// HasExtraction reports whether an article's mentions are already
// recorded, so reruns can skip it (R2.2).
func (s *Store) HasExtraction(ctx context.Context, articleID string) (bool, error) {
	var at string
	err := s.db.QueryRowContext(ctx,
		`SELECT extracted_at FROM extraction_status WHERE article_id = ?`, articleID,
	).Scan(&at)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking extraction status: %w", err)
	}
	return true, nil
}

// ReplaceArticleMentions replaces all mentions recorded for an article
// in one transaction and marks the article extracted (R2.1).
func (s *Store) ReplaceArticleMentions(ctx context.Context, articleID string, mentions []types.Mention) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM mentions WHERE article_id = ?`, articleID); err != nil {
		return fmt.Errorf("deleting old mentions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO mentions (id, article_id, surface, lemma, span_start, span_end, kind, gender, source, confidence)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range mentions {
		_, err := stmt.ExecContext(ctx,
			m.ID, m.ArticleID, m.Surface, m.Lemma, m.Start, m.End,
			string(m.Kind), string(m.Gender), m.Source, m.Confidence,
		)
		if err != nil {
			return fmt.Errorf("inserting mention %s: %w", m.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO extraction_status (article_id, extracted_at) VALUES (?, ?)
		 ON CONFLICT(article_id) DO UPDATE SET extracted_at=excluded.extracted_at`,
		articleID, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("updating extraction status: %w", err)
	}

	return tx.Commit()
}

// Mentions returns every recorded mention in deterministic order.
func (s *Store) Mentions(ctx context.Context) ([]types.Mention, error) {
	return s.queryMentions(ctx,
		`SELECT id, article_id, surface, lemma, span_start, span_end, kind, gender, source, confidence
		 FROM mentions ORDER BY article_id, span_start, span_end`)
}

// MentionsByArticle returns the mentions of one article ordered by span.
func (s *Store) MentionsByArticle(ctx context.Context, articleID string) ([]types.Mention, error) {
	return s.queryMentions(ctx,
		`SELECT id, article_id, surface, lemma, span_start, span_end, kind, gender, source, confidence
		 FROM mentions WHERE article_id = ? ORDER BY span_start, span_end`, articleID)
}

// Unresolved returns mentions the resolver has not labeled yet.
func (s *Store) Unresolved(ctx context.Context) ([]types.Mention, error) {
	return s.queryMentions(ctx,
		`SELECT id, article_id, surface, lemma, span_start, span_end, kind, gender, source, confidence
		 FROM mentions WHERE gender = '' ORDER BY article_id, span_start, span_end`)
}

func (s *Store) queryMentions(ctx context.Context, query string, args ...any) ([]types.Mention, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying mentions: %w", err)
	}
	defer rows.Close()

	var mentions []types.Mention
	for rows.Next() {
		var m types.Mention
		var kind, gender string
		var lemma, source sql.NullString
		var confidence sql.NullFloat64
		if err := rows.Scan(&m.ID, &m.ArticleID, &m.Surface, &lemma,
			&m.Start, &m.End, &kind, &gender, &source, &confidence); err != nil {
			return nil, fmt.Errorf("scanning mention: %w", err)
		}
		m.Lemma = lemma.String
		m.Kind = types.MentionKind(kind)
		m.Gender = types.GenderLabel(gender)
		m.Source = source.String
		m.Confidence = confidence.Float64
		mentions = append(mentions, m)
	}
	return mentions, rows.Err()
}

// SaveResolutions writes gender, source, and confidence for the given
// mentions in one transaction (R3.1).
func (s *Store) SaveResolutions(ctx context.Context, mentions []types.Mention) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`UPDATE mentions SET gender = ?, source = ?, confidence = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("preparing update: %w", err)
	}
	defer stmt.Close()

	for _, m := range mentions {
		if _, err := stmt.ExecContext(ctx, string(m.Gender), m.Source, m.Confidence, m.ID); err != nil {
			return fmt.Errorf("updating mention %s: %w", m.ID, err)
		}
	}
	return tx.Commit()
}

// CacheGet looks up a persisted knowledge-base result by normalized
// name (R4.1).
func (s *Store) CacheGet(ctx context.Context, name string) (types.GenderLabel, bool, error) {
	var gender string
	err := s.db.QueryRowContext(ctx,
		`SELECT gender FROM kb_cache WHERE name = ?`, name,
	).Scan(&gender)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading cache: %w", err)
	}
	return types.GenderLabel(gender), true, nil
}

// CachePut records a knowledge-base result so later runs skip the
// lookup (R4.2).
func (s *Store) CachePut(ctx context.Context, name string, gender types.GenderLabel) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kb_cache (name, gender, resolved_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET gender=excluded.gender, resolved_at=excluded.resolved_at`,
		name, string(gender), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

// InclusiveForm is one inclusive-writing count for an article.
type InclusiveForm struct {
	ArticleID string
	Form      string
	Count     int
}

// ReplaceInclusiveForms replaces the inclusive-writing counts recorded
// for an article (R5.1).
func (s *Store) ReplaceInclusiveForms(ctx context.Context, articleID string, counts map[string]int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM inclusive_forms WHERE article_id = ?`, articleID); err != nil {
		return fmt.Errorf("deleting old counts: %w", err)
	}
	for form, count := range counts {
		if count == 0 {
			continue
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO inclusive_forms (article_id, form, count) VALUES (?, ?, ?)`,
			articleID, form, count,
		)
		if err != nil {
			return fmt.Errorf("inserting count for %s: %w", form, err)
		}
	}
	return tx.Commit()
}

// InclusiveForms returns all recorded inclusive-writing counts ordered
// by article and form.
func (s *Store) InclusiveForms(ctx context.Context) ([]InclusiveForm, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT article_id, form, count FROM inclusive_forms ORDER BY article_id, form`)
	if err != nil {
		return nil, fmt.Errorf("querying inclusive forms: %w", err)
	}
	defer rows.Close()

	var forms []InclusiveForm
	for rows.Next() {
		var f InclusiveForm
		if err := rows.Scan(&f.ArticleID, &f.Form, &f.Count); err != nil {
			return nil, fmt.Errorf("scanning inclusive form: %w", err)
		}
		forms = append(forms, f)
	}
	return forms, rows.Err()
}

// SaveAuthorGender records the inferred gender of an author (R5.2).
func (s *Store) SaveAuthorGender(ctx context.Context, authorID string, gender types.GenderLabel, source string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO author_gender (author_id, gender, source) VALUES (?, ?, ?)
		 ON CONFLICT(author_id) DO UPDATE SET gender=excluded.gender, source=excluded.source`,
		authorID, string(gender), source,
	)
	if err != nil {
		return fmt.Errorf("writing author gender: %w", err)
	}
	return nil
}

// AuthorGenders returns the inferred gender per author id.
func (s *Store) AuthorGenders(ctx context.Context) (map[string]types.GenderLabel, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT author_id, gender FROM author_gender`)
	if err != nil {
		return nil, fmt.Errorf("querying author genders: %w", err)
	}
	defer rows.Close()

	genders := make(map[string]types.GenderLabel)
	for rows.Next() {
		var id, gender string
		if err := rows.Scan(&id, &gender); err != nil {
			return nil, fmt.Errorf("scanning author gender: %w", err)
		}
		genders[id] = types.GenderLabel(gender)
	}
	return genders, rows.Err()
}

// Tally summarizes the analysis database for status output.
type Tally struct {
	Articles   int
	Mentions   int
	Unresolved int
	Cached     int
}

// Tally counts the recorded artifacts.
func (s *Store) Tally(ctx context.Context) (Tally, error) {
	var t Tally
	counts := []struct {
		query string
		dst   *int
	}{
		{`SELECT count(*) FROM extraction_status`, &t.Articles},
		{`SELECT count(*) FROM mentions`, &t.Mentions},
		{`SELECT count(*) FROM mentions WHERE gender = ''`, &t.Unresolved},
		{`SELECT count(*) FROM kb_cache`, &t.Cached},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return Tally{}, fmt.Errorf("counting: %w", err)
		}
	}
	return t, nil
}
