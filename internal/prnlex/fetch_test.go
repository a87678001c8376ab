// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prn

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pdiddy/depiction-engine/pkg/types"
)

func TestFetchDump(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		hits.Add(1)
		if got := req.Header.Get("User-Agent"); got != "depiction-engine-test/1" {
			t.Errorf("got User-Agent %q", got)
		}
		rw.Write([]byte("dump-bytes"))
	}))
	defer srv.Close()

	cfg := types.LexiconConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "depiction-engine-test/1"},
		DumpURL:    srv.URL + "/dewiktionary-test-pages-articles.xml.bz2",
		DumpDir:    t.TempDir(),
	}
	client := srv.Client()

	var out strings.Builder
	path, skipped, err := FetchDump(client, cfg, false, &out)
	if err != nil {
		t.Fatal(err)
	}
	if skipped {
		t.Error("first fetch must not be skipped")
	}
	if filepath.Base(path) != "dewiktionary-test-pages-articles.xml.bz2" {
		t.Errorf("unexpected dump name %q", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "dump-bytes" {
		t.Errorf("dump content %q", data)
	}

	meta, err := readDumpMeta(path + ".yaml")
	if err != nil {
		t.Fatal(err)
	}
	if meta.URL != cfg.DumpURL || meta.Size != int64(len("dump-bytes")) {
		t.Errorf("sidecar %+v does not match the fetch", meta)
	}
	if meta.FetchedAt.IsZero() || time.Since(meta.FetchedAt) > time.Minute {
		t.Errorf("sidecar timestamp %v is implausible", meta.FetchedAt)
	}

	// A matching sidecar short-circuits the next run.
	_, skipped, err = FetchDump(client, cfg, false, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if !skipped {
		t.Error("second fetch should be skipped")
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}

	// Force refetches regardless.
	_, skipped, err = FetchDump(client, cfg, true, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if skipped {
		t.Error("forced fetch must not be skipped")
	}
	if hits.Load() != 2 {
		t.Errorf("server hit %d times, want 2", hits.Load())
	}
}

func TestFetchDumpServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		rw.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := types.LexiconConfig{
		DumpURL: srv.URL + "/dump.xml.bz2",
		DumpDir: t.TempDir(),
	}
	_, _, err := FetchDump(srv.Client(), cfg, false, io.Discard)
	if err == nil {
		t.Fatal("expected error for HTTP 503")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error %v should name the status", err)
	}

	// No partial dump may remain.
	entries, readErr := os.ReadDir(cfg.DumpDir)
	if readErr != nil {
		t.Fatal(readErr)
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), ".") {
			t.Errorf("unexpected file %s after failed fetch", e.Name())
		}
	}
}
