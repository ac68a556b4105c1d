package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv        = "READVAULT_CONFIG"
	logLevelEnv          = "READVAULT_LOG_LEVEL"
	manifestPathEnv      = "READVAULT_MANIFEST_PATH"
	ledgerPathEnv        = "READVAULT_LEDGER_PATH"
	storePathEnv         = "READVAULT_STORE_PATH"
	datasetPathEnv       = "READVAULT_DATASET_PATH"
	upstreamEndpointEnv  = "READVAULT_UPSTREAM_ENDPOINT"
	upstreamTokenEnv     = "READVAULT_UPSTREAM_TOKEN"
	rateDelayEnv         = "READVAULT_RATE_DELAY"
	inferenceBackendEnv  = "READVAULT_INFERENCE_BACKEND"
	inferenceEndpointEnv = "READVAULT_INFERENCE_ENDPOINT"
	inferenceModelEnv    = "READVAULT_INFERENCE_MODEL"
	schemaVersionEnv     = "READVAULT_SCHEMA_VERSION"
	geminiAPIKeyEnv      = "GEMINI_API_KEY"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Store      StoreConfig      `yaml:"store"`
	Index      IndexConfig      `yaml:"index"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Status     StatusConfig     `yaml:"status"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// IngestConfig describes the manifest, the progress ledger, and the
// upstream per-item content endpoint with its retry and rate-limit
// tuning. Durations in YAML are integer nanoseconds; the environment
// overrides accept strings like "1500ms".
type IngestConfig struct {
	ManifestPath     string        `yaml:"manifestPath"`
	LedgerPath       string        `yaml:"ledgerPath"`
	UpstreamEndpoint string        `yaml:"upstreamEndpoint"`
	UpstreamToken    string        `yaml:"upstreamToken"`
	RateDelay        time.Duration `yaml:"rateDelay"`
	MaxRetries       int           `yaml:"maxRetries"`
	InitialBackoff   time.Duration `yaml:"initialBackoff"`
	FetchTimeout     time.Duration `yaml:"fetchTimeout"`
}

// StoreConfig locates the document store directory.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// IndexConfig locates the columnar dataset snapshot.
type IndexConfig struct {
	DatasetPath string `yaml:"datasetPath"`
}

// EnrichmentConfig defines the inference backend and the enrichment
// run's bounds. SchemaVersion tags freshly written enrichment blocks;
// raising it makes every document eligible again.
type EnrichmentConfig struct {
	Backend        string        `yaml:"backend"`
	Endpoint       string        `yaml:"endpoint"`
	Model          string        `yaml:"model"`
	GeminiAPIKey   string        `yaml:"-"`
	SchemaVersion  int           `yaml:"schemaVersion"`
	MaxBatchSize   int           `yaml:"maxBatchSize"`
	MaxPromptChars int           `yaml:"maxPromptChars"`
	Timeout        time.Duration `yaml:"timeout"`
	Workers        int           `yaml:"workers"`
}

// StatusConfig controls the optional pending-items report.
type StatusConfig struct {
	ReportPath string `yaml:"reportPath"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(manifestPathEnv); v != "" {
		c.Ingest.ManifestPath = v
	}
	if v := os.Getenv(ledgerPathEnv); v != "" {
		c.Ingest.LedgerPath = v
	}
	if v := os.Getenv(upstreamEndpointEnv); v != "" {
		c.Ingest.UpstreamEndpoint = v
	}
	if v := os.Getenv(upstreamTokenEnv); v != "" {
		c.Ingest.UpstreamToken = v
	}
	if v := os.Getenv(rateDelayEnv); v != "" {
		if d, err := time.ParseDuration(v); err != nil {
			log.Printf("config: invalid %s %q: %v", rateDelayEnv, v, err)
		} else {
			c.Ingest.RateDelay = d
		}
	}

	if v := os.Getenv(storePathEnv); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv(datasetPathEnv); v != "" {
		c.Index.DatasetPath = v
	}

	if v := os.Getenv(inferenceBackendEnv); v != "" {
		c.Enrichment.Backend = v
	}
	if v := os.Getenv(inferenceEndpointEnv); v != "" {
		c.Enrichment.Endpoint = v
	}
	if v := os.Getenv(inferenceModelEnv); v != "" {
		c.Enrichment.Model = v
	}
	if v := os.Getenv(schemaVersionEnv); v != "" {
		if n, err := strconv.Atoi(v); err != nil {
			log.Printf("config: invalid %s %q: %v", schemaVersionEnv, v, err)
		} else {
			c.Enrichment.SchemaVersion = n
		}
	}
	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.Enrichment.GeminiAPIKey = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Ingest.ManifestPath != "" {
		base.Ingest.ManifestPath = override.Ingest.ManifestPath
	}
	if override.Ingest.LedgerPath != "" {
		base.Ingest.LedgerPath = override.Ingest.LedgerPath
	}
	if override.Ingest.UpstreamEndpoint != "" {
		base.Ingest.UpstreamEndpoint = override.Ingest.UpstreamEndpoint
	}
	if override.Ingest.UpstreamToken != "" {
		base.Ingest.UpstreamToken = override.Ingest.UpstreamToken
	}
	if override.Ingest.RateDelay > 0 {
		base.Ingest.RateDelay = override.Ingest.RateDelay
	}
	if override.Ingest.MaxRetries > 0 {
		base.Ingest.MaxRetries = override.Ingest.MaxRetries
	}
	if override.Ingest.InitialBackoff > 0 {
		base.Ingest.InitialBackoff = override.Ingest.InitialBackoff
	}
	if override.Ingest.FetchTimeout > 0 {
		base.Ingest.FetchTimeout = override.Ingest.FetchTimeout
	}

	if override.Store.Path != "" {
		base.Store.Path = override.Store.Path
	}

	if override.Index.DatasetPath != "" {
		base.Index.DatasetPath = override.Index.DatasetPath
	}

	if override.Enrichment.Backend != "" {
		base.Enrichment.Backend = override.Enrichment.Backend
	}
	if override.Enrichment.Endpoint != "" {
		base.Enrichment.Endpoint = override.Enrichment.Endpoint
	}
	if override.Enrichment.Model != "" {
		base.Enrichment.Model = override.Enrichment.Model
	}
	if override.Enrichment.SchemaVersion > 0 {
		base.Enrichment.SchemaVersion = override.Enrichment.SchemaVersion
	}
	if override.Enrichment.MaxBatchSize > 0 {
		base.Enrichment.MaxBatchSize = override.Enrichment.MaxBatchSize
	}
	if override.Enrichment.MaxPromptChars > 0 {
		base.Enrichment.MaxPromptChars = override.Enrichment.MaxPromptChars
	}
	if override.Enrichment.Timeout > 0 {
		base.Enrichment.Timeout = override.Enrichment.Timeout
	}
	if override.Enrichment.Workers > 0 {
		base.Enrichment.Workers = override.Enrichment.Workers
	}

	if override.Status.ReportPath != "" {
		base.Status.ReportPath = override.Status.ReportPath
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Ingest: IngestConfig{
			ManifestPath:     "data/archive-manifest.csv",
			LedgerPath:       "data/ingest-ledger.jsonl",
			UpstreamEndpoint: "https://reader.example.org/api/1/items/text",
			RateDelay:        time.Second,
			MaxRetries:       5,
			InitialBackoff:   time.Second,
			FetchTimeout:     30 * time.Second,
		},
		Store: StoreConfig{Path: "vault/archive"},
		Index: IndexConfig{DatasetPath: "data/archive-index.parquet"},
		Enrichment: EnrichmentConfig{
			Backend:        "ollama",
			Endpoint:       "http://localhost:11434",
			Model:          "qwen2.5:7b",
			SchemaVersion:  2,
			MaxBatchSize:   10,
			MaxPromptChars: 3500,
			Timeout:        2 * time.Minute,
			Workers:        1,
		},
		Status: StatusConfig{ReportPath: ""},
	}
}
