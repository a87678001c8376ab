// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve assigns gender labels to mentions and authors.
// Implements: prd005-gender-resolution (R1-R5), prd008-author-gender (R1-R3);
//
//	docs/ARCHITECTURE.md § Gender Resolution.
package resolve

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/depiction-engine/internal/prnlex"
	"github.com/pdiddy/depiction-engine/pkg/types"
)

// Result is one knowledge-base verdict for a person name.
type Result struct {
	// Gender is the resolved label.
	Gender types.GenderLabel

	// Source identifies what produced the label: "wikidata", "fixture",
	// or "cache" for a persisted earlier verdict.
	Source string

	// Note carries diagnostic detail worth logging, such as a gender
	// item outside the binary mapping. Empty for ordinary results.
	Note string
}

// Lookup resolves a person name to a gender label. Implementations exist
// for the live Wikidata query service and for a YAML fixture table; the
// caching decorator wraps either (R4.1).
type Lookup interface {
	// Name returns the backend identifier used in logs and mention sources.
	Name() string

	// GenderByName resolves one normalized person name. Implementations
	// return an error only for transport or decoding failures; a name the
	// knowledge base does not know yields undetermined with a nil error.
	GenderByName(ctx context.Context, name string) (Result, error)
}

// NewLookup builds the configured knowledge-base backend, wrapped with the
// persistent resolution cache when one is supplied (R4.1, R4.2).
func NewLookup(cfg types.ResolveConfig, cache GenderCache) (Lookup, error) {
	var inner Lookup
	switch cfg.Backend {
	case types.BackendWikidata, "":
		inner = &WikidataLookup{
			Client:      &http.Client{Timeout: cfg.Timeout},
			UserAgent:   cfg.UserAgent,
			Endpoint:    cfg.Endpoint,
			BearerToken: cfg.BearerToken,
		}
	case types.BackendFixture:
		fixture, err := LoadFixture(cfg.FixturePath)
		if err != nil {
			return nil, err
		}
		inner = fixture
	default:
		return nil, fmt.Errorf("unknown resolve backend %q", cfg.Backend)
	}

	if cache != nil {
		return &CachedLookup{Inner: inner, Cache: cache}, nil
	}
	return inner, nil
}

// Resolver labels extracted mentions: PRN mentions from the merged table,
// PER mentions through the knowledge-base backend (R1, R2).
type Resolver struct {
	// Table is the merged PRN table the extraction stage matched against.
	Table *prn.Table

	// Backend resolves person names.
	Backend Lookup

	// Workers bounds concurrent backend lookups (default 4).
	Workers int

	// LookupTimeout caps one name lookup. Zero disables the cap. A lookup
	// that exceeds it degrades to undetermined (R3.4).
	LookupTimeout time.Duration

	// MaxNameTokens skips lookups for names longer than this many tokens
	// (default 12); such mentions stay undetermined (R5.3).
	MaxNameTokens int
}

// NewResolver wires a resolver from the stage configuration.
func NewResolver(table *prn.Table, backend Lookup, cfg types.ResolveConfig) *Resolver {
	return &Resolver{
		Table:         table,
		Backend:       backend,
		Workers:       cfg.Workers,
		LookupTimeout: cfg.Timeout,
		MaxNameTokens: cfg.MaxNameTokens,
	}
}

func (r *Resolver) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return 4
}

func (r *Resolver) maxNameTokens() int {
	if r.MaxNameTokens > 0 {
		return r.MaxNameTokens
	}
	return 12
}

// Summary reports one resolution pass.
type Summary struct {
	Female       int
	Male         int
	Undetermined int
	Ambiguous    int

	// Degraded counts mentions labeled undetermined because a lookup
	// failed or timed out rather than because the knowledge base had no
	// answer (R3.4).
	Degraded int

	// Skipped counts mentions of an unknown kind.
	Skipped int
}

// Total returns the number of mentions that received a label.
func (s Summary) Total() int {
	return s.Female + s.Male + s.Undetermined + s.Ambiguous
}

// ResolveAll labels every mention in place and reports counts per label.
// PRN mentions resolve inline from the table. PER lookups are grouped by
// name and fan out through a bounded worker pool; each distinct name hits
// the backend once (R5.1). Lookup failures degrade the affected mentions
// to undetermined and are logged to w, they never fail the pass (R3.4).
// The error return is non-nil only when ctx is cancelled.
func (r *Resolver) ResolveAll(ctx context.Context, mentions []types.Mention, w io.Writer) (Summary, error) {
	var summary Summary
	var mu sync.Mutex // guards w and summary.Degraded across lookup goroutines

	byName := make(map[string][]*types.Mention)
	for i := range mentions {
		m := &mentions[i]
		switch m.Kind {
		case types.KindPRN:
			entry, ok := r.Table.Lookup(m.Lemma)
			if !ok {
				// Extraction ran against a different table revision.
				m.Gender = types.GenderUndetermined
				m.Source = "prn-table"
				summary.Degraded++
				fmt.Fprintf(w, "warning: %s: lemma %q missing from the merged table\n", m.ID, m.Lemma)
				continue
			}
			m.Gender = entry.Gender
			m.Source = "prn-table"
		case types.KindPER:
			byName[m.Lemma] = append(byName[m.Lemma], m)
		default:
			summary.Skipped++
			fmt.Fprintf(w, "warning: %s: unknown mention kind %q\n", m.ID, m.Kind)
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())

	for _, name := range names {
		name := name
		group := byName[name]

		// Overlong "names" are almost always recognizer glue; querying
		// them wastes the rate budget (R5.3).
		if len(strings.Fields(name)) > r.maxNameTokens() {
			for _, m := range group {
				m.Gender = types.GenderUndetermined
				m.Source = r.Backend.Name()
			}
			fmt.Fprintf(w, "warning: not querying %q: longer than %d tokens\n", name, r.maxNameTokens())
			continue
		}

		g.Go(func() error {
			lctx := gctx
			if r.LookupTimeout > 0 {
				var cancel context.CancelFunc
				lctx, cancel = context.WithTimeout(gctx, r.LookupTimeout)
				defer cancel()
			}

			res, err := r.Backend.GenderByName(lctx, name)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				res = Result{Gender: types.GenderUndetermined, Source: r.Backend.Name()}
				mu.Lock()
				summary.Degraded += len(group)
				fmt.Fprintf(w, "failed  %q: %v\n", name, err)
				mu.Unlock()
			} else if res.Note != "" {
				mu.Lock()
				fmt.Fprintf(w, "warning: %q: %s\n", name, res.Note)
				mu.Unlock()
			}

			for _, m := range group {
				m.Gender = res.Gender
				m.Source = res.Source
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}

	for i := range mentions {
		switch mentions[i].Gender {
		case types.GenderFemale:
			summary.Female++
		case types.GenderMale:
			summary.Male++
		case types.GenderUndetermined:
			summary.Undetermined++
		case types.GenderAmbiguous:
			summary.Ambiguous++
		}
	}

	fmt.Fprintf(w, "\nresolved: %d female, %d male, %d undetermined, %d ambiguous (degraded: %d)\n",
		summary.Female, summary.Male, summary.Undetermined, summary.Ambiguous, summary.Degraded)
	return summary, nil
}
