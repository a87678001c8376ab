// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prn

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/depiction-engine/pkg/types"
)

// DumpMeta is the YAML sidecar written next to a fetched dump so reruns
// can tell whether the local copy matches the configured source
// (prd009-dump-acquisition R2.2).
type DumpMeta struct {
	URL       string    `yaml:"url"`
	Size      int64     `yaml:"size"`
	FetchedAt time.Time `yaml:"fetched_at"`
}

// DumpPath returns where FetchDump lands the configured dump.
func DumpPath(cfg types.LexiconConfig) (string, error) {
	parsed, err := url.Parse(cfg.DumpURL)
	if err != nil {
		return "", fmt.Errorf("parsing dump URL: %w", err)
	}
	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("dump URL %q has no file name", cfg.DumpURL)
	}
	return filepath.Join(cfg.DumpDir, name), nil
}

// FetchDump downloads the configured dump into the dump directory. A
// dump whose sidecar already records the same URL is not fetched again
// unless forced. The download lands via temp-and-rename so an
// interrupted fetch never leaves a partial dump (R2.3).
func FetchDump(client *http.Client, cfg types.LexiconConfig, force bool, w io.Writer) (string, bool, error) {
	destPath, err := DumpPath(cfg)
	if err != nil {
		return "", false, err
	}
	name := filepath.Base(destPath)
	metaPath := destPath + ".yaml"

	if !force {
		if meta, err := readDumpMeta(metaPath); err == nil && meta.URL == cfg.DumpURL {
			if _, err := os.Stat(destPath); err == nil {
				fmt.Fprintf(w, "skipped: %s (already fetched)\n", name)
				return destPath, true, nil
			}
		}
	}

	if err := os.MkdirAll(cfg.DumpDir, 0o755); err != nil {
		return "", false, fmt.Errorf("creating dump directory: %w", err)
	}

	fmt.Fprintf(w, "fetching %s\n", cfg.DumpURL)

	size, err := downloadDump(client, cfg, destPath)
	if err != nil {
		return "", false, fmt.Errorf("fetching dump: %w", err)
	}

	meta := DumpMeta{URL: cfg.DumpURL, Size: size, FetchedAt: time.Now().UTC()}
	data, err := yaml.Marshal(&meta)
	if err != nil {
		return "", false, fmt.Errorf("marshaling dump sidecar: %w", err)
	}
	if err := os.WriteFile(metaPath, data, 0o644); err != nil {
		return "", false, fmt.Errorf("writing dump sidecar: %w", err)
	}

	fmt.Fprintf(w, "fetched %s (%s)\n", name, humanize.Bytes(uint64(size)))
	return destPath, false, nil
}

// downloadDump fetches the dump to destPath via a temporary file.
func downloadDump(client *http.Client, cfg types.LexiconConfig, destPath string) (int64, error) {
	req, err := http.NewRequest(http.MethodGet, cfg.DumpURL, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d from %s", resp.StatusCode, cfg.DumpURL)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	size, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return size, nil
}

// readDumpMeta reads a dump sidecar. Returns an error if the sidecar is
// missing or unparseable.
func readDumpMeta(path string) (*DumpMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var meta DumpMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
