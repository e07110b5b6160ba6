package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// WikiConfig holds connection details for the MediaWiki knowledge source.
type WikiConfig struct {
	URL        string `yaml:"url"`
	MaxWorkers int    `yaml:"max_workers"`
}

// EmbeddingConfig configures the embedding service.
type EmbeddingConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
}

// GenerationConfig configures the LLM used for answer generation.
type GenerationConfig struct {
	Host        string  `yaml:"host"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutSecs int     `yaml:"timeout_secs"`
}

// ChunkingConfig configures how documents are split before embedding.
type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// StorageConfig configures the vector index.
type StorageConfig struct {
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
}

// RetrievalConfig configures query-time retrieval.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// TracesConfig configures trace persistence.
type TracesConfig struct {
	Dir string `yaml:"dir"`
}

// Config is the root application configuration.
type Config struct {
	Wiki       WikiConfig       `yaml:"wiki"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Storage    StorageConfig    `yaml:"storage"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Traces     TracesConfig     `yaml:"traces"`
}

// Load reads a config from the specified path. If the file does not exist,
// returns defaults. Environment variables (optionally from a .env file)
// override file values.
//
// The file is decoded on top of Default(), so keys absent from the file keep
// their defaults while explicit values, including zeros, are honored.
func Load(path string) (*Config, error) {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Wiki: WikiConfig{
			URL:        "http://localhost:8080",
			MaxWorkers: 10,
		},
		Embedding: EmbeddingConfig{
			Host:  "http://localhost:11434/v1",
			Model: "all-minilm",
		},
		Generation: GenerationConfig{
			Host:        "http://localhost:11434",
			Model:       "llama3",
			Temperature: 0.3,
			TopP:        0.9,
			MaxTokens:   1024,
			TimeoutSecs: 120,
		},
		Chunking: ChunkingConfig{
			Size:    1000,
			Overlap: 200,
		},
		Storage: StorageConfig{
			Path:       "data/index",
			Collection: "mediawiki_rag",
		},
		Retrieval: RetrievalConfig{
			TopK: 5,
		},
		Traces: TracesConfig{
			Dir: "logs/traces",
		},
	}
}

// applyEnvOverrides lets the environment override the usual deployment
// knobs without touching the config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MEDIAWIKI_URL"); v != "" {
		cfg.Wiki.URL = v
	}
	if v := os.Getenv("OLLAMA_URL"); v != "" {
		cfg.Generation.Host = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		cfg.Generation.Model = v
	}
	if v := os.Getenv("EMBEDDING_HOST"); v != "" {
		cfg.Embedding.Host = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("WIKIRAG_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("WIKIRAG_TRACES_DIR"); v != "" {
		cfg.Traces.Dir = v
	}
	if v := os.Getenv("WIKIRAG_TOP_K"); v != "" {
		if k, err := strconv.Atoi(v); err == nil && k > 0 {
			cfg.Retrieval.TopK = k
		}
	}
}
