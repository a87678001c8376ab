package types

import (
	"runtime"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Lookups that exceed it degrade
	// to an undetermined label rather than failing the run.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "depiction-engine/0.1"). Per prd005-gender-resolution R5.2,
	// prd009-dump-acquisition R3.1.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CorpusConfig holds settings for the corpus repository.
// Per prd001-corpus R1.1.
type CorpusConfig struct {
	// Path is the scraper-produced SQLite snapshot. Opened read-only;
	// a missing file aborts the run.
	Path string `json:"path" yaml:"path"`
}

// LexiconConfig holds settings for the lexicon stages (dump acquisition,
// PRN compilation, affect norms). Per prd002-prn-compiler R6.1-R6.3,
// prd009-dump-acquisition R2.1.
type LexiconConfig struct {
	HTTPConfig `yaml:",inline"`

	// DumpURL is the dictionary dump to fetch (bz2-compressed XML export).
	DumpURL string `json:"dump_url" yaml:"dump_url"`

	// DumpDir is the directory dumps and their metadata sidecars land in.
	DumpDir string `json:"dump_dir" yaml:"dump_dir"`

	// ListPath is the compiled PRN table (CSV).
	ListPath string `json:"list_path" yaml:"list_path"`

	// AdjustedPath is the manual overlay table; entries there win over
	// compiled entries with the same lemma. Optional.
	AdjustedPath string `json:"adjusted_path,omitempty" yaml:"adjusted_path,omitempty"`

	// AffectPath is the connotation norms table (semicolon-separated CSV).
	AffectPath string `json:"affect_path" yaml:"affect_path"`
}

// ExtractConfig holds settings for the mention-extraction stage.
// Per prd004-mention-extraction R5.1-R5.3.
type ExtractConfig struct {
	// ModelDir optionally points at a trained recognition model on disk.
	// Empty selects the library's built-in model.
	ModelDir string `json:"model_dir,omitempty" yaml:"model_dir,omitempty"`

	// MinEntityConfidence drops recognized entities below this confidence
	// (default 0.5).
	MinEntityConfidence float64 `json:"min_entity_confidence" yaml:"min_entity_confidence"`
}

// ResolveBackend identifies the knowledge-base lookup implementation.
// Per prd005-gender-resolution R4.1.
type ResolveBackend string

const (
	BackendWikidata ResolveBackend = "wikidata"
	BackendFixture  ResolveBackend = "fixture"
)

// ResolveConfig holds settings for the gender-resolution stage.
// Per prd005-gender-resolution R4.1-R4.5, R5.1-R5.3.
type ResolveConfig struct {
	HTTPConfig `yaml:",inline"`

	// Backend selects the knowledge base: wikidata or fixture.
	Backend ResolveBackend `json:"backend" yaml:"backend"`

	// Endpoint overrides the SPARQL endpoint URL. Empty selects the
	// public query service.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// FixturePath is the YAML name-to-gender table used by the fixture
	// backend.
	FixturePath string `json:"fixture_path,omitempty" yaml:"fixture_path,omitempty"`

	// BearerToken authenticates against a self-hosted query service.
	// Usually supplied through .secrets/kb-bearer-token rather than the
	// config file. The public endpoint needs none.
	BearerToken string `json:"-" yaml:"-"`

	// Workers bounds the concurrent knowledge-base lookups (default:
	// number of CPUs, capped at 8 to respect endpoint rate limits).
	Workers int `json:"workers" yaml:"workers"`

	// MaxNameTokens skips lookups for names longer than this many tokens;
	// such mentions stay undetermined (default 12).
	MaxNameTokens int `json:"max_name_tokens" yaml:"max_name_tokens"`
}

// StoreConfig holds settings for the analysis store shared by the
// extraction, resolution, and statistics stages. Per prd010-analysis-store R1.1.
type StoreConfig struct {
	// Path is the SQLite database holding mentions and the lookup cache.
	Path string `json:"path" yaml:"path"`
}

// StatsConfig holds settings for the statistics stage.
// Per prd006-statistics R5.1-R5.2.
type StatsConfig struct {
	// OutDir is the directory the aggregate tables are written to.
	OutDir string `json:"out_dir" yaml:"out_dir"`

	// ReportPath is the markdown run report location.
	ReportPath string `json:"report_path" yaml:"report_path"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Corpus  CorpusConfig  `json:"corpus" yaml:"corpus"`
	Lexicon LexiconConfig `json:"lexicon" yaml:"lexicon"`
	Extract ExtractConfig `json:"extract" yaml:"extract"`
	Resolve ResolveConfig `json:"resolve" yaml:"resolve"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Stats   StatsConfig   `json:"stats" yaml:"stats"`
}

// DefaultConfig returns the pipeline configuration with every default
// applied. Flag and file values override individual fields.
func DefaultConfig() PipelineConfig {
	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	return PipelineConfig{
		Corpus: CorpusConfig{
			Path: "corpus.db",
		},
		Lexicon: LexiconConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   5 * time.Minute,
				UserAgent: "depiction-engine/0.1",
			},
			DumpURL:      "https://dumps.wikimedia.org/dewiktionary/latest/dewiktionary-latest-pages-articles.xml.bz2",
			DumpDir:      "data/dumps",
			ListPath:     "data/lexicon/prn_list.csv",
			AdjustedPath: "data/lexicon/prn_list_adjusted.csv",
			AffectPath:   "data/lexicon/affect_norms.csv",
		},
		Extract: ExtractConfig{
			MinEntityConfidence: 0.5,
		},
		Resolve: ResolveConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "depiction-engine/0.1",
			},
			Backend:       BackendWikidata,
			Workers:       workers,
			MaxNameTokens: 12,
		},
		Store: StoreConfig{
			Path: "analysis.db",
		},
		Stats: StatsConfig{
			OutDir:     "out",
			ReportPath: "out/report.md",
		},
	}
}
