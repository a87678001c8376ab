package resolve

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pdiddy/depiction-engine/internal/prnlex"
	"github.com/pdiddy/depiction-engine/pkg/types"
)

// fakeLookup is a canned Lookup backend recording every call.
type fakeLookup struct {
	mu      sync.Mutex
	calls   []string
	results map[string]Result
	err     error
	delay   time.Duration
}

func (f *fakeLookup) Name() string { return "fake" }

func (f *fakeLookup) GenderByName(ctx context.Context, name string) (Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return Result{}, f.err
	}
	if r, ok := f.results[name]; ok {
		return r, nil
	}
	return Result{Gender: types.GenderUndetermined, Source: "fake"}, nil
}

func (f *fakeLookup) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testTable() *prn.Table {
	return prn.NewTable([]types.PRNEntry{
		{Lemma: "Lehrerin", Gender: types.GenderFemale},
		{Lemma: "Lehrer", Gender: types.GenderMale},
		{Lemma: "Lehrkraft", Gender: types.GenderAmbiguous},
	})
}

func TestResolveAllLabelsMentions(t *testing.T) {
	backend := &fakeLookup{results: map[string]Result{
		"Maria Schmidt": {Gender: types.GenderFemale, Source: "fake"},
	}}
	r := &Resolver{Table: testTable(), Backend: backend, Workers: 2}

	mentions := []types.Mention{
		{ID: "m1", Kind: types.KindPRN, Lemma: "Lehrerin", Surface: "Lehrerin"},
		{ID: "m2", Kind: types.KindPER, Lemma: "Maria Schmidt", Surface: "Maria Schmidt"},
		{ID: "m3", Kind: types.KindPRN, Lemma: "Lehrkraft", Surface: "Lehrkräfte"},
	}

	var log bytes.Buffer
	summary, err := r.ResolveAll(context.Background(), mentions, &log)
	if err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}

	if mentions[0].Gender != types.GenderFemale || mentions[0].Source != "prn-table" {
		t.Errorf("PRN mention = %s/%s, want female/prn-table", mentions[0].Gender, mentions[0].Source)
	}
	if mentions[1].Gender != types.GenderFemale || mentions[1].Source != "fake" {
		t.Errorf("PER mention = %s/%s, want female/fake", mentions[1].Gender, mentions[1].Source)
	}
	if mentions[2].Gender != types.GenderAmbiguous {
		t.Errorf("mixed-group PRN = %s, want ambiguous", mentions[2].Gender)
	}

	if summary.Female != 2 || summary.Ambiguous != 1 || summary.Total() != 3 {
		t.Errorf("summary = %+v, want 2 female, 1 ambiguous, total 3", summary)
	}
	if !strings.Contains(log.String(), "resolved: 2 female") {
		t.Errorf("log missing summary line: %q", log.String())
	}
}

func TestResolveAllMissingLemma(t *testing.T) {
	r := &Resolver{Table: testTable(), Backend: &fakeLookup{}}
	mentions := []types.Mention{
		{ID: "m1", Kind: types.KindPRN, Lemma: "Bäckerin"},
	}

	var log bytes.Buffer
	summary, err := r.ResolveAll(context.Background(), mentions, &log)
	if err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}

	if mentions[0].Gender != types.GenderUndetermined {
		t.Errorf("gender = %s, want undetermined", mentions[0].Gender)
	}
	if summary.Degraded != 1 {
		t.Errorf("degraded = %d, want 1", summary.Degraded)
	}
	if !strings.Contains(log.String(), "warning:") {
		t.Errorf("log missing warning: %q", log.String())
	}
}

func TestResolveAllDedupesNames(t *testing.T) {
	backend := &fakeLookup{results: map[string]Result{
		"Maria Schmidt": {Gender: types.GenderFemale, Source: "fake"},
		"Hans Meyer":    {Gender: types.GenderMale, Source: "fake"},
	}}
	r := &Resolver{Table: testTable(), Backend: backend, Workers: 4}

	mentions := []types.Mention{
		{ID: "m1", Kind: types.KindPER, Lemma: "Maria Schmidt"},
		{ID: "m2", Kind: types.KindPER, Lemma: "Maria Schmidt"},
		{ID: "m3", Kind: types.KindPER, Lemma: "Maria Schmidt"},
		{ID: "m4", Kind: types.KindPER, Lemma: "Hans Meyer"},
	}

	if _, err := r.ResolveAll(context.Background(), mentions, &bytes.Buffer{}); err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}

	if got := backend.callCount(); got != 2 {
		t.Errorf("backend calls = %d, want 2 (one per distinct name)", got)
	}
	for i := range mentions[:3] {
		if mentions[i].Gender != types.GenderFemale {
			t.Errorf("mention %d = %s, want female", i, mentions[i].Gender)
		}
	}
	if mentions[3].Gender != types.GenderMale {
		t.Errorf("mention 3 = %s, want male", mentions[3].Gender)
	}
}

func TestResolveAllLookupTimeout(t *testing.T) {
	backend := &fakeLookup{delay: 200 * time.Millisecond}
	r := &Resolver{Table: testTable(), Backend: backend, LookupTimeout: 10 * time.Millisecond}

	mentions := []types.Mention{
		{ID: "m1", Kind: types.KindPER, Lemma: "Maria Schmidt"},
	}

	var log bytes.Buffer
	summary, err := r.ResolveAll(context.Background(), mentions, &log)
	if err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}

	if mentions[0].Gender != types.GenderUndetermined {
		t.Errorf("gender = %s, want undetermined after timeout", mentions[0].Gender)
	}
	if summary.Degraded != 1 {
		t.Errorf("degraded = %d, want 1", summary.Degraded)
	}
	if !strings.Contains(log.String(), "failed") {
		t.Errorf("log missing failure line: %q", log.String())
	}
}

func TestResolveAllLookupError(t *testing.T) {
	backend := &fakeLookup{err: errors.New("boom")}
	r := &Resolver{Table: testTable(), Backend: backend}

	mentions := []types.Mention{
		{ID: "m1", Kind: types.KindPER, Lemma: "Maria Schmidt"},
		{ID: "m2", Kind: types.KindPER, Lemma: "Hans Meyer"},
	}

	var log bytes.Buffer
	summary, err := r.ResolveAll(context.Background(), mentions, &log)
	if err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}

	for i := range mentions {
		if mentions[i].Gender != types.GenderUndetermined {
			t.Errorf("mention %d = %s, want undetermined", i, mentions[i].Gender)
		}
	}
	if summary.Degraded != 2 {
		t.Errorf("degraded = %d, want 2", summary.Degraded)
	}
}

func TestResolveAllLongName(t *testing.T) {
	backend := &fakeLookup{}
	r := &Resolver{Table: testTable(), Backend: backend, MaxNameTokens: 3}

	mentions := []types.Mention{
		{ID: "m1", Kind: types.KindPER, Lemma: "Eins Zwei Drei Vier"},
	}

	var log bytes.Buffer
	if _, err := r.ResolveAll(context.Background(), mentions, &log); err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}

	if got := backend.callCount(); got != 0 {
		t.Errorf("backend calls = %d, want 0 for an overlong name", got)
	}
	if mentions[0].Gender != types.GenderUndetermined {
		t.Errorf("gender = %s, want undetermined", mentions[0].Gender)
	}
}

func TestResolveAllCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	backend := &fakeLookup{delay: time.Second}
	r := &Resolver{Table: testTable(), Backend: backend}

	mentions := []types.Mention{
		{ID: "m1", Kind: types.KindPER, Lemma: "Maria Schmidt"},
	}

	if _, err := r.ResolveAll(ctx, mentions, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error after cancellation")
	}
}
