// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the corpus configuration from YAML.
//
// Values absent from the file keep their defaults. Connection settings for
// the embedding service can be overridden from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/pdfcorpus/ai"
	"github.com/poiesic/pdfcorpus/chunking"
	"github.com/poiesic/pdfcorpus/embedding"
	"github.com/poiesic/pdfcorpus/storage"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Environment variables that override the ai section.
const (
	EnvAIHost     = "PDFCORPUS_AI_HOST"
	EnvAIToken    = "PDFCORPUS_AI_TOKEN"
	EnvAIProvider = "PDFCORPUS_AI_PROVIDER"
	EnvGeminiKey  = "GEMINI_API_KEY"
)

// Paths locates every artifact directory. An empty Catalog disables the
// badger catalog.
type Paths struct {
	Chunks     string `yaml:"chunks"`
	Embeddings string `yaml:"embeddings"`
	Vectors    string `yaml:"vectors"`
	BM25       string `yaml:"bm25"`
	Metadata   string `yaml:"metadata"`
	Results    string `yaml:"results"`
	Catalog    string `yaml:"catalog"`
}

// Chunking configures the chunker.
type Chunking struct {
	Size         int      `yaml:"size"`
	Headers      []string `yaml:"headers"`
	MinPageWords int      `yaml:"min_page_words"`
}

// Model names one embedding model. Name is the short alias used in file
// names, ID the identifier sent to the embedding service.
type Model struct {
	Name string `yaml:"name"`
	ID   string `yaml:"id"`
}

// Embedding configures vector generation.
type Embedding struct {
	BatchSize int    `yaml:"batch_size"`
	Normalize bool   `yaml:"normalize"`
	Device    string `yaml:"device"`
	SaveRaw   bool   `yaml:"save_raw"`
	PoolSize  int    `yaml:"pool_size"`

	// MaxAttempts bounds embedder calls per batch, first try included.
	// The default of 1 disables retries.
	MaxAttempts  int           `yaml:"max_attempts"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// AI configures the embedding service connection.
type AI struct {
	Provider          string  `yaml:"provider"`
	Host              string  `yaml:"host"`
	Token             string  `yaml:"token"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// Config is the root configuration.
type Config struct {
	Paths     Paths     `yaml:"paths"`
	Chunking  Chunking  `yaml:"chunking"`
	Models    []Model   `yaml:"models"`
	Embedding Embedding `yaml:"embedding"`
	AI        AI        `yaml:"ai"`
}

// Default returns the built-in configuration.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		Paths: Paths{
			Chunks:     "data/chunks",
			Embeddings: "data/embeddings",
			Vectors:    "data/vectors",
			BM25:       "data/bm25",
			Metadata:   "data/metadata",
			Results:    "results",
			Catalog:    "data/catalog",
		},
		Chunking: Chunking{
			Size:         chunking.DefaultChunkSize,
			Headers:      append([]string(nil), chunking.DefaultHeaders...),
			MinPageWords: chunking.DefaultMinPageWords,
		},
		Models: []Model{
			{Name: "minilm", ID: "sentence-transformers/all-MiniLM-L6-v2"},
			{Name: "mpnet", ID: "sentence-transformers/all-mpnet-base-v2"},
		},
		Embedding: Embedding{
			BatchSize: embedding.DefaultBatchSize,
			Normalize: true,
			Device:    embedding.DefaultDevice,
			SaveRaw:   true,
			PoolSize:  1,

			MaxAttempts:  1,
			RetryBackoff: 500 * time.Millisecond,
		},
		AI: AI{
			Provider: aiDefaults.Provider,
			Host:     aiDefaults.Host,
			Token:    aiDefaults.Token,
		},
	}
}

// Load reads the YAML file at path over the defaults and applies
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
		}
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return storage.WriteFileAtomic(path, data, 0o644)
}

// LoadEnv loads .env files into the process environment without overriding
// variables that are already set. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides the ai section from the environment. GEMINI_API_KEY
// only applies when the provider is gemini and no token was given
// explicitly through PDFCORPUS_AI_TOKEN.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvAIProvider); v != "" {
		c.AI.Provider = v
	}
	if v := os.Getenv(EnvAIHost); v != "" {
		c.AI.Host = v
	}
	if v := os.Getenv(EnvAIToken); v != "" {
		c.AI.Token = v
	} else if v := os.Getenv(EnvGeminiKey); v != "" && strings.EqualFold(c.AI.Provider, ai.ProviderGemini) {
		c.AI.Token = v
	}
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	var problems []string
	for _, p := range []struct{ key, value string }{
		{"paths.chunks", c.Paths.Chunks},
		{"paths.embeddings", c.Paths.Embeddings},
		{"paths.vectors", c.Paths.Vectors},
		{"paths.bm25", c.Paths.BM25},
		{"paths.metadata", c.Paths.Metadata},
		{"paths.results", c.Paths.Results},
	} {
		if strings.TrimSpace(p.value) == "" {
			problems = append(problems, p.key+" is required")
		}
	}

	if c.Chunking.Size < 1 {
		problems = append(problems, "chunking.size must be positive")
	}
	if c.Chunking.MinPageWords < 0 {
		problems = append(problems, "chunking.min_page_words cannot be negative")
	}
	if c.Embedding.BatchSize < 1 {
		problems = append(problems, "embedding.batch_size must be positive")
	}
	if c.Embedding.PoolSize < 0 {
		problems = append(problems, "embedding.pool_size cannot be negative")
	}
	if c.Embedding.MaxAttempts < 1 {
		problems = append(problems, "embedding.max_attempts must be positive")
	}
	if c.Embedding.RetryBackoff < 0 {
		problems = append(problems, "embedding.retry_backoff cannot be negative")
	}

	if len(c.Models) == 0 {
		problems = append(problems, "at least one model is required")
	}
	seen := make(map[string]bool, len(c.Models))
	for i, m := range c.Models {
		switch {
		case m.Name == "" || m.ID == "":
			problems = append(problems, fmt.Sprintf("models[%d] needs name and id", i))
		case strings.ContainsAny(m.Name, `/\ `):
			problems = append(problems, fmt.Sprintf("models[%d] name %q is not usable in file names", i, m.Name))
		case seen[m.Name]:
			problems = append(problems, fmt.Sprintf("models[%d] duplicates name %q", i, m.Name))
		}
		seen[m.Name] = true
	}

	for _, m := range c.Models {
		if m.ID == "" {
			continue
		}
		if err := c.AIConfig(m).Validate(); err != nil {
			problems = append(problems, err.Error())
			break
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// AIConfig returns the embedding service settings bound to model.
func (c *Config) AIConfig(model Model) *ai.Config {
	return ai.NewConfig(
		ai.WithProvider(c.AI.Provider),
		ai.WithHost(c.AI.Host),
		ai.WithToken(c.AI.Token),
		ai.WithEmbeddingModel(model.ID),
		ai.WithRequestsPerSecond(c.AI.RequestsPerSecond),
	)
}

// ModelIDs maps each model alias to its identifier.
func (c *Config) ModelIDs() map[string]string {
	ids := make(map[string]string, len(c.Models))
	for _, m := range c.Models {
		ids[m.Name] = m.ID
	}
	return ids
}

// EnsureDirs creates every configured artifact directory.
func (c *Config) EnsureDirs() error {
	dirs := []string{
		c.Paths.Chunks, c.Paths.Embeddings, c.Paths.Vectors,
		c.Paths.BM25, c.Paths.Metadata, c.Paths.Results,
	}
	if c.Paths.Catalog != "" {
		dirs = append(dirs, c.Paths.Catalog)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// ChunksFile returns the chunk file path for a document base name.
func (c *Config) ChunksFile(base string) string {
	return filepath.Join(c.Paths.Chunks, "chunks_"+base+".json")
}

// EmbeddingsFile returns the raw vector file path for a model and document.
func (c *Config) EmbeddingsFile(alias, base string) string {
	return filepath.Join(c.Paths.Embeddings, "embeddings_"+alias+"_"+base+".npy")
}

// EmbeddingInfoFile returns the info JSON path for a model and document.
func (c *Config) EmbeddingInfoFile(alias, base string) string {
	return filepath.Join(c.Paths.Embeddings, "embeddings_"+alias+"_"+base+".json")
}

// IndexFile returns the vector index path for a model.
func (c *Config) IndexFile(alias string) string {
	return filepath.Join(c.Paths.Vectors, "index_"+alias+".bin")
}

// MetadataFile returns the metadata path for a document.
func (c *Config) MetadataFile(base string) string {
	return filepath.Join(c.Paths.Metadata, "metadata_"+base+".json")
}

// LedgerFile returns the ingestion ledger path.
func (c *Config) LedgerFile() string {
	return filepath.Join(c.Paths.Metadata, "ingestion_index.json")
}

// LogFile returns the process log path.
func (c *Config) LogFile() string {
	return filepath.Join(c.Paths.Results, "process.log")
}
