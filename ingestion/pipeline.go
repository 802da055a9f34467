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

package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/pdfcorpus/ai"
	"github.com/poiesic/pdfcorpus/chunking"
	"github.com/poiesic/pdfcorpus/config"
	"github.com/poiesic/pdfcorpus/core"
	"github.com/poiesic/pdfcorpus/embedding"
	"github.com/poiesic/pdfcorpus/extract"
	"github.com/poiesic/pdfcorpus/storage"
)

// Model binds an embedding model alias and identifier to an embedder.
type Model struct {
	Name     string
	ID       string
	Embedder ai.Embedder
}

// ModelResult reports what a run did for one model.
type ModelResult struct {
	Name         string
	ID           string
	Vectors      int
	Dim          int
	IndexTotal   int
	IndexCreated bool
}

// Result reports the outcome of one run.
type Result struct {
	RunID       string
	State       State
	Skipped     bool
	Document    core.Document
	Chunks      int
	Models      []ModelResult
	LexicalDocs int
	Transitions []State
	Elapsed     time.Duration
}

// Pipeline ingests PDFs one at a time into the corpus described by a config.
type Pipeline struct {
	cfg            *config.Config
	extractor      extract.PageExtractor
	models         []Model
	chunker        *chunking.Chunker
	generators     []*embedding.Generator
	genOpts        []embedding.Option
	catalog        storage.CatalogRepository
	saveEmbeddings bool
	clock          func() time.Time
	baseLogger     *slog.Logger // untagged, handed to sub-components
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithClock sets the time source used for ingestion dates.
// Default is time.Now.
func WithClock(clock func() time.Time) Option {
	return func(p *Pipeline) error {
		if clock == nil {
			clock = time.Now
		}
		p.clock = clock
		return nil
	}
}

// WithCatalog mirrors every committed document into catalog.
// The pipeline does not close it.
func WithCatalog(catalog storage.CatalogRepository) Option {
	return func(p *Pipeline) error {
		p.catalog = catalog
		return nil
	}
}

// WithSaveEmbeddings controls whether raw vectors and info files are written.
// Default is the config's embedding.save_raw.
func WithSaveEmbeddings(save bool) Option {
	return func(p *Pipeline) error {
		p.saveEmbeddings = save
		return nil
	}
}

// WithChunker replaces the chunker built from the config.
func WithChunker(c *chunking.Chunker) Option {
	return func(p *Pipeline) error {
		p.chunker = c
		return nil
	}
}

// WithGeneratorOptions adds options to every embedding generator, applied
// after the ones derived from the config.
func WithGeneratorOptions(opts ...embedding.Option) Option {
	return func(p *Pipeline) error {
		p.genOpts = append(p.genOpts, opts...)
		return nil
	}
}

// NewPipeline creates a pipeline over cfg. Models are embedded and indexed
// in the given order. Call Release when done.
func NewPipeline(cfg *config.Config, extractor extract.PageExtractor, models []Model, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if len(models) == 0 {
		return nil, ErrModelsRequired
	}

	p := &Pipeline{
		cfg:            cfg,
		extractor:      extractor,
		models:         models,
		saveEmbeddings: cfg.Embedding.SaveRaw,
		clock:          time.Now,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.baseLogger = p.logger
	p.logger = p.logger.With("component", "ingestion")

	if p.chunker == nil {
		chunker, err := chunking.NewChunker(
			chunking.WithChunkSize(cfg.Chunking.Size),
			chunking.WithHeaders(cfg.Chunking.Headers...),
			chunking.WithMinPageWords(cfg.Chunking.MinPageWords),
			chunking.WithLogger(p.baseLogger),
		)
		if err != nil {
			return nil, err
		}
		p.chunker = chunker
	}

	genOpts := append([]embedding.Option{
		embedding.WithBatchSize(cfg.Embedding.BatchSize),
		embedding.WithNormalize(cfg.Embedding.Normalize),
		embedding.WithDevice(cfg.Embedding.Device),
		embedding.WithPoolSize(cfg.Embedding.PoolSize),
		embedding.WithRetry(cfg.Embedding.MaxAttempts, cfg.Embedding.RetryBackoff),
		embedding.WithLogger(p.baseLogger),
	}, p.genOpts...)
	for _, m := range models {
		gen, err := embedding.NewGenerator(m.Embedder, genOpts...)
		if err != nil {
			p.Release()
			return nil, err
		}
		p.generators = append(p.generators, gen)
	}

	return p, nil
}

// Release frees the embedding worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	for _, g := range p.generators {
		g.Release()
	}
}

func (p *Pipeline) modelIDs() map[string]string {
	ids := make(map[string]string, len(p.models))
	for _, m := range p.models {
		ids[m.Name] = m.ID
	}
	return ids
}

func (p *Pipeline) modelNames() []string {
	names := make([]string, len(p.models))
	for i, m := range p.models {
		names[i] = m.Name
	}
	return names
}

// stages returns the states after HASH_CHECK in execution order.
func (p *Pipeline) stages() []stage {
	stages := []stage{chunkStage{p}}
	for i := range p.models {
		stages = append(stages, embedStage{p: p, model: i})
	}
	for i := range p.models {
		stages = append(stages, indexStage{p: p, model: i})
	}
	return append(stages, lexicalStage{p}, metadataStage{p}, qaStage{p})
}

// Ingest runs the pipeline for the PDF at path. A document whose hash is
// already in the ledger ends in DONE with Skipped set and no error. On
// failure the returned Result is in state FAILED and the error is a
// *StageError.
func (p *Pipeline) Ingest(ctx context.Context, path string) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()

	result := &Result{
		RunID:       runID,
		State:       StateStart,
		Transitions: []State{StateStart},
		Models:      make([]ModelResult, len(p.models)),
	}
	for i, m := range p.models {
		result.Models[i] = ModelResult{Name: m.Name, ID: m.ID}
	}

	r := &run{
		path:    path,
		vectors: make([][][]float32, len(p.models)),
		date:    p.clock().Format(core.DateLayout),
		result:  result,
		logger:  p.logger.With("run_id", runID, "pdf", path),
	}
	r.logger.Info("starting ingestion")

	enter := func(s State) {
		result.State = s
		result.Transitions = append(result.Transitions, s)
		r.logger.Debug("entering state", "state", s)
	}
	fail := func(s State, err error) (*Result, error) {
		enter(StateFailed)
		result.Elapsed = time.Since(start)
		r.logger.Error("ingestion failed", "state", s, "err", err)
		return result, &StageError{State: s, Err: err}
	}

	gate := hashCheckStage{p}
	enter(gate.state())
	if err := gate.run(ctx, r); err != nil {
		return fail(gate.state(), err)
	}
	if r.skipped {
		result.Skipped = true
		enter(StateDone)
		result.Elapsed = time.Since(start)
		return result, nil
	}

	for _, s := range p.stages() {
		if err := ctx.Err(); err != nil {
			return fail(result.State, err)
		}
		enter(s.state())
		if err := s.run(ctx, r); err != nil {
			return fail(s.state(), err)
		}
	}

	enter(StateDone)
	result.Elapsed = time.Since(start)
	r.logger.Info("ingestion complete", "chunks", result.Chunks, "lexical_docs", result.LexicalDocs, "elapsed", result.Elapsed)
	return result, nil
}

// IsSkip reports whether err is nil and res describes a skipped document.
func IsSkip(res *Result, err error) bool {
	return err == nil && res != nil && res.Skipped
}

// FailedState returns the state a run failed in, or false if err is not a
// *StageError.
func FailedState(err error) (State, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.State, true
	}
	return 0, false
}
