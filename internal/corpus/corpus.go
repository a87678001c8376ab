// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus reads the scraper-produced article snapshot.
// Implements: prd001-corpus (R1-R5);
//
//	docs/ARCHITECTURE.md § Corpus Repository.
package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/depiction-engine/pkg/types"
)

// ErrNotFound is returned when no article matches an id or id prefix.
var ErrNotFound = errors.New("article not found")

// Repository provides read-only access to the corpus snapshot. The
// pipeline never writes to it; aggregate output lives elsewhere (R1.2).
type Repository struct {
	db *sql.DB
}

// Open opens the corpus snapshot read-only. A missing snapshot is fatal
// to the run: no meaningful partial result is possible without a corpus
// (R1.1, prd001-corpus R5.1).
func Open(cfg types.CorpusConfig) (*Repository, error) {
	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, fmt.Errorf("corpus snapshot %s: %w", cfg.Path, err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening corpus: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Articles returns every article in the snapshot in rowid order, with
// author references in byline order. Malformed rows (empty id or empty
// text) are skipped with a warning on w and never abort the run (R2.1, R4.1).
func (r *Repository) Articles(ctx context.Context, w io.Writer) ([]types.Article, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, volume_id, title, text FROM articles ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var articles []types.Article
	for rows.Next() {
		var a types.Article
		var volumeID, title, text sql.NullString
		if err := rows.Scan(&a.ID, &volumeID, &title, &text); err != nil {
			return nil, fmt.Errorf("scanning article row: %w", err)
		}
		a.VolumeID = volumeID.String
		a.Title = title.String
		a.Text = text.String

		if a.ID == "" || a.Text == "" {
			fmt.Fprintf(w, "warning: skipping malformed article record (id=%q)\n", a.ID)
			continue
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating articles: %w", err)
	}

	for i := range articles {
		ids, err := r.articleAuthorIDs(ctx, articles[i].ID)
		if err != nil {
			return nil, err
		}
		articles[i].AuthorIDs = ids
	}

	return articles, nil
}

func (r *Repository) articleAuthorIDs(ctx context.Context, articleID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT author_id FROM article_authors WHERE article_id = ? ORDER BY rowid`, articleID)
	if err != nil {
		return nil, fmt.Errorf("querying article authors: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning author reference: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Authors returns the deduplicated author records. Scraper exports repeat
// author ids across volumes; the first occurrence wins and the returned
// set contains exactly one record per id (R2.2).
func (r *Repository) Authors(ctx context.Context, w io.Writer) ([]types.Author, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, info FROM authors ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying authors: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var authors []types.Author
	for rows.Next() {
		var a types.Author
		var name, info sql.NullString
		if err := rows.Scan(&a.ID, &name, &info); err != nil {
			return nil, fmt.Errorf("scanning author row: %w", err)
		}
		a.Name = name.String
		a.Info = info.String

		if a.ID == "" {
			fmt.Fprintf(w, "warning: skipping author record without id (name=%q)\n", a.Name)
			continue
		}
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// Volumes returns the volume records in rowid order. Rows with an
// unparseable date keep a zero date and a warning on w (R2.3, R4.1).
func (r *Repository) Volumes(ctx context.Context, w io.Writer) ([]types.Volume, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, published_date FROM volumes ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying volumes: %w", err)
	}
	defer rows.Close()

	var volumes []types.Volume
	for rows.Next() {
		var v types.Volume
		var title, published sql.NullString
		if err := rows.Scan(&v.ID, &title, &published); err != nil {
			return nil, fmt.Errorf("scanning volume row: %w", err)
		}
		v.Title = title.String

		if v.ID == "" {
			fmt.Fprintf(w, "warning: skipping volume record without id (title=%q)\n", v.Title)
			continue
		}
		if published.String != "" {
			t, err := parseDate(published.String)
			if err != nil {
				fmt.Fprintf(w, "warning: volume %s: unparseable date %q\n", v.ID, published.String)
			} else {
				v.PublishedDate = t
			}
		}
		volumes = append(volumes, v)
	}
	return volumes, rows.Err()
}

// parseDate accepts the two date encodings scraper exports have used.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// ArticleByID finds an article by exact id, then by unique id prefix for
// human convenience (R3.1). An ambiguous prefix is an error listing the
// match count; no match returns ErrNotFound.
func (r *Repository) ArticleByID(ctx context.Context, id string) (*types.Article, error) {
	a, err := r.scanArticle(ctx, `SELECT id, volume_id, title, text FROM articles WHERE id = ?`, id)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM articles WHERE id LIKE ? ESCAPE '\' ORDER BY id`, escapeLike(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("querying article prefix: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scanning id match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("id %q: %w", id, ErrNotFound)
	case 1:
		return r.scanArticle(ctx, `SELECT id, volume_id, title, text FROM articles WHERE id = ?`, matches[0])
	default:
		return nil, fmt.Errorf("id prefix %q is ambiguous (%d matches)", id, len(matches))
	}
}

func (r *Repository) scanArticle(ctx context.Context, query, id string) (*types.Article, error) {
	var a types.Article
	var volumeID, title, text sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &volumeID, &title, &text)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("querying article %s: %w", id, err)
	}
	a.VolumeID = volumeID.String
	a.Title = title.String
	a.Text = text.String

	ids, err := r.articleAuthorIDs(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.AuthorIDs = ids
	return &a, nil
}

// escapeLike escapes LIKE metacharacters so an id prefix matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}

// Counts reports the table sizes for the inspection command.
func (r *Repository) Counts(ctx context.Context) (articles, authors, volumes int, err error) {
	for _, q := range []struct {
		query string
		dst   *int
	}{
		{`SELECT count(*) FROM articles`, &articles},
		{`SELECT count(*) FROM authors`, &authors},
		{`SELECT count(*) FROM volumes`, &volumes},
	} {
		if err = r.db.QueryRowContext(ctx, q.query).Scan(q.dst); err != nil {
			return 0, 0, 0, fmt.Errorf("counting corpus rows: %w", err)
		}
	}
	return articles, authors, volumes, nil
}
