// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/depiction-engine/pkg/types"
)

// FixtureLookup serves gender labels from a YAML table instead of a live
// knowledge base, for offline runs and tests (R4.2). The file is a flat
// mapping of names to labels:
//
//	Maria Schmidt: female
//	Hans Meyer: male
type FixtureLookup struct {
	names map[string]types.GenderLabel
}

// LoadFixture reads and validates a fixture table.
func LoadFixture(path string) (*FixtureLookup, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture table: %w", err)
	}

	var entries map[string]string
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parsing fixture table: %w", err)
	}

	l := &FixtureLookup{names: make(map[string]types.GenderLabel, len(entries))}
	for name, label := range entries {
		switch g := types.GenderLabel(label); g {
		case types.GenderFemale, types.GenderMale, types.GenderUndetermined, types.GenderAmbiguous:
			l.names[strings.ToLower(name)] = g
		default:
			return nil, fmt.Errorf("fixture entry %q: unknown label %q", name, label)
		}
	}
	return l, nil
}

// Name returns the backend identifier.
func (l *FixtureLookup) Name() string { return "fixture" }

// GenderByName returns the table entry for the name, or undetermined when
// the table has none. Matching ignores case.
func (l *FixtureLookup) GenderByName(_ context.Context, name string) (Result, error) {
	if g, ok := l.names[strings.ToLower(name)]; ok {
		return Result{Gender: g, Source: "fixture"}, nil
	}
	return Result{Gender: types.GenderUndetermined, Source: "fixture"}, nil
}
