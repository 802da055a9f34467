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

// Package pdfcorpus ingests PDF documents into a hybrid retrieval corpus.
//
// A Corpus ties a configuration to its collaborators: the PDF extractor, one
// embedder per configured model and the optional badger catalog. It hands
// out ingestion pipelines and exposes the corpus-level maintenance
// operations.
//
//	cfg, err := config.Load("config.yaml")
//	corpus, err := pdfcorpus.Open(ctx, cfg)
//	defer corpus.Close()
//	res, err := corpus.Ingest(ctx, "docs/privacy-framework.pdf")
package pdfcorpus

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/pdfcorpus/ai"
	"github.com/poiesic/pdfcorpus/ai/gemini"
	"github.com/poiesic/pdfcorpus/ai/openai"
	"github.com/poiesic/pdfcorpus/config"
	"github.com/poiesic/pdfcorpus/extract"
	"github.com/poiesic/pdfcorpus/ingestion"
	"github.com/poiesic/pdfcorpus/lexical"
	"github.com/poiesic/pdfcorpus/metadata"
	"github.com/poiesic/pdfcorpus/storage"
	"github.com/poiesic/pdfcorpus/storage/badger"
)

// EmbedderFactory creates the embedder for one model configuration.
type EmbedderFactory func(ctx context.Context, cfg *ai.Config) (ai.Embedder, error)

// NewEmbedder creates an embedder for the configured provider.
func NewEmbedder(ctx context.Context, cfg *ai.Config) (ai.Embedder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case ai.ProviderGemini:
		return gemini.NewEmbedder(ctx, cfg)
	default:
		return openai.NewEmbedder(cfg)
	}
}

type Corpus struct {
	cfg       *config.Config
	backend   *badger.Backend
	catalog   storage.CatalogRepository
	extractor extract.PageExtractor
	models    []ingestion.Model
	logger    *slog.Logger
}

// Option configures a Corpus.
type Option func(*options)

type options struct {
	logger          *slog.Logger
	extractor       extract.PageExtractor
	embedderFactory EmbedderFactory
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithExtractor replaces the ledongthuc/pdf page extractor.
func WithExtractor(extractor extract.PageExtractor) Option {
	return func(o *options) {
		o.extractor = extractor
	}
}

// WithEmbedderFactory replaces NewEmbedder.
func WithEmbedderFactory(factory EmbedderFactory) Option {
	return func(o *options) {
		o.embedderFactory = factory
	}
}

// Open validates cfg, creates the artifact directories, opens the catalog
// when one is configured and builds one embedder per model.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Corpus, error) {
	o := &options{
		logger:          slog.Default(),
		embedderFactory: NewEmbedder,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.extractor == nil {
		o.extractor = extract.NewPDFExtractor(o.logger)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return nil, err
	}

	c := &Corpus{
		cfg:       cfg,
		extractor: o.extractor,
		logger:    o.logger,
	}

	if cfg.Paths.Catalog != "" {
		backend, err := badger.OpenBackend(cfg.Paths.Catalog, badger.WithLogger(o.logger))
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", cfg.Paths.Catalog, err)
		}
		c.backend = backend

		catalog, err := badger.NewCatalogRepository(backend)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.catalog = catalog
	}

	for _, m := range cfg.Models {
		embedder, err := o.embedderFactory(ctx, cfg.AIConfig(m))
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("model %s: %w", m.Name, err)
		}
		c.models = append(c.models, ingestion.Model{Name: m.Name, ID: m.ID, Embedder: embedder})
	}

	return c, nil
}

// Close releases embedders and the catalog.
func (c *Corpus) Close() error {
	for _, m := range c.models {
		if closer, ok := m.Embedder.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				c.logger.Error("error closing embedder", "model", m.Name, "err", err)
			}
		}
	}

	if c.catalog != nil {
		if err := c.catalog.Close(); err != nil {
			c.logger.Error("error closing catalog", "err", err)
		}
	}
	if c.backend != nil {
		if err := c.backend.Close(); err != nil {
			c.logger.Error("error closing backend storage", "err", err)
			return err
		}
	}
	return nil
}

// Config returns the corpus configuration.
func (c *Corpus) Config() *config.Config {
	return c.cfg
}

// Catalog returns the document catalog, or nil when it is disabled.
func (c *Corpus) Catalog() storage.CatalogRepository {
	return c.catalog
}

// NewIngestionPipeline creates a pipeline wired to the corpus collaborators.
// The caller must Release it.
func (c *Corpus) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	base := []ingestion.Option{ingestion.WithLogger(c.logger)}
	if c.catalog != nil {
		base = append(base, ingestion.WithCatalog(c.catalog))
	}
	return ingestion.NewPipeline(c.cfg, c.extractor, c.models, append(base, opts...)...)
}

// Ingest runs a single ingestion of the PDF at path.
func (c *Corpus) Ingest(ctx context.Context, path string, opts ...ingestion.Option) (*ingestion.Result, error) {
	p, err := c.NewIngestionPipeline(opts...)
	if err != nil {
		return nil, err
	}
	defer p.Release()
	return p.Ingest(ctx, path)
}

// RebuildLexical rebuilds the BM25 index from every chunk file on disk.
func (c *Corpus) RebuildLexical(ctx context.Context) (*lexical.Stats, error) {
	return lexical.Rebuild(ctx, c.cfg.Paths.Chunks, c.cfg.Paths.BM25, c.logger)
}

// Ledger loads the ingestion ledger.
func (c *Corpus) Ledger() (*metadata.Ledger, error) {
	return metadata.LoadLedger(c.cfg.LedgerFile(), c.logger)
}
