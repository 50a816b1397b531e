// Package file provides file-based configuration using TOML.
// Configuration lives in a single config.toml under the orquel config
// directory and maps directly onto a typed Config struct.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/0xKoller/orquel-sub001/internal/core/domain"
)

// DefaultDirName is the per-user configuration directory name.
const DefaultDirName = ".orquel"

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is "openai" or "ollama".
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	BaseURL  string `toml:"base_url"`
	APIKey   string `toml:"api_key"`
}

// AnswererConfig selects and configures the answer generation model.
type AnswererConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	BaseURL  string `toml:"base_url"`
	APIKey   string `toml:"api_key"`
}

// StoreConfig selects the retrieval backends.
type StoreConfig struct {
	// Vector is "memory" or "sqlite".
	Vector string `toml:"vector"`
	// VectorPath is the SQLite database path when Vector is "sqlite".
	VectorPath string `toml:"vector_path"`
	// Lexical is "memory", "bleve", or "none".
	Lexical string `toml:"lexical"`
	// LexicalPath is the bleve index path when Lexical is "bleve".
	LexicalPath string `toml:"lexical_path"`
}

// QueryConfig holds retrieval tuning knobs.
type QueryConfig struct {
	K             int     `toml:"k"`
	Hybrid        bool    `toml:"hybrid"`
	DenseWeight   float64 `toml:"dense_weight"`
	LexicalWeight float64 `toml:"lexical_weight"`
}

// ChunkerConfig holds chunking tuning knobs.
type ChunkerConfig struct {
	MaxChunkSize int `toml:"max_chunk_size"`
	Overlap      int `toml:"overlap"`
}

// Config is the full orquel configuration.
type Config struct {
	Embedding EmbeddingConfig `toml:"embedding"`
	Answerer  AnswererConfig  `toml:"answerer"`
	Store     StoreConfig     `toml:"store"`
	Query     QueryConfig     `toml:"query"`
	Chunker   ChunkerConfig   `toml:"chunker"`
}

// Default returns a configuration with working defaults: in-memory
// stores, hybrid retrieval on, and OpenAI providers pending an API key.
func Default() Config {
	return Config{
		Embedding: EmbeddingConfig{Provider: "openai"},
		Answerer:  AnswererConfig{Provider: "openai"},
		Store: StoreConfig{
			Vector:  "memory",
			Lexical: "memory",
		},
		Query: QueryConfig{
			K:             domain.DefaultQueryK,
			Hybrid:        true,
			DenseWeight:   domain.DefaultDenseWeight,
			LexicalWeight: domain.DefaultLexicalWeight,
		},
	}
}

// DefaultPath returns the default config file path under the user's
// home directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, DefaultDirName, "config.toml"), nil
}

// Load reads configuration from path. A missing file returns defaults
// rather than an error, so first runs work without any setup.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to path with restricted permissions,
// creating parent directories as needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
