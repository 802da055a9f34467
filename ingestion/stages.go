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
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/poiesic/pdfcorpus/chunking"
	"github.com/poiesic/pdfcorpus/core"
	"github.com/poiesic/pdfcorpus/embedding"
	"github.com/poiesic/pdfcorpus/lexical"
	"github.com/poiesic/pdfcorpus/metadata"
	"github.com/poiesic/pdfcorpus/storage"
	"github.com/poiesic/pdfcorpus/vectorindex"
)

// stage is one step of a run. Stages run in order and share the run state.
type stage interface {
	state() State
	run(ctx context.Context, r *run) error
}

// run carries the state of one ingestion.
type run struct {
	path    string
	doc     core.Document
	ledger  *metadata.Ledger
	chunks  []core.Chunk
	vectors [][][]float32 // per model, in model order
	date    string
	skipped bool
	result  *Result
	logger  *slog.Logger
}

type hashCheckStage struct {
	p *Pipeline
}

func (s hashCheckStage) state() State { return StateHashCheck }

func (s hashCheckStage) run(ctx context.Context, r *run) error {
	hash, err := core.HashFile(r.path)
	if err != nil {
		return err
	}
	r.doc = core.Document{Name: filepath.Base(r.path), Hash: hash}
	r.result.Document = r.doc
	r.logger = r.logger.With("sha256", hash)

	ledger, err := metadata.LoadLedger(s.p.cfg.LedgerFile(), s.p.baseLogger)
	if err != nil {
		return err
	}
	r.ledger = ledger

	if ledger.Contains(hash) {
		entry, _ := ledger.Lookup(hash)
		r.logger.Info("document already ingested, skipping", "ingested_as", entry.Document, "date_indexed", entry.DateIndexed)
		r.skipped = true
	}
	return nil
}

type chunkStage struct {
	p *Pipeline
}

func (s chunkStage) state() State { return StateChunk }

func (s chunkStage) run(ctx context.Context, r *run) error {
	pages, err := s.p.extractor.ExtractPages(ctx, r.path)
	if err != nil {
		return err
	}
	r.doc.PageCount = len(pages)
	r.result.Document = r.doc

	chunks, usable := s.p.chunker.Chunk(r.doc.Name, pages)
	if err := chunking.WriteChunks(s.p.cfg.ChunksFile(r.doc.Base()), chunks); err != nil {
		return err
	}
	r.chunks = chunks
	r.result.Chunks = len(chunks)
	r.logger.Info("chunked document", "pages", len(pages), "usable_pages", len(usable), "chunks", len(chunks))
	return nil
}

type embedStage struct {
	p     *Pipeline
	model int
}

func (s embedStage) state() State { return StateEmbed }

func (s embedStage) run(ctx context.Context, r *run) error {
	m := s.p.models[s.model]
	gen := s.p.generators[s.model]

	texts := make([]string, len(r.chunks))
	for i := range r.chunks {
		texts[i] = r.chunks[i].Text
	}

	res, err := gen.Generate(ctx, texts)
	if err != nil {
		return fmt.Errorf("model %s: %w", m.Name, err)
	}
	r.vectors[s.model] = res.Vectors
	r.result.Models[s.model].Vectors = len(res.Vectors)
	r.result.Models[s.model].Dim = res.Dim

	if s.p.saveEmbeddings {
		base := r.doc.Base()
		if err := embedding.WriteNPY(s.p.cfg.EmbeddingsFile(m.Name, base), res.Vectors); err != nil {
			return fmt.Errorf("model %s: %w", m.Name, err)
		}
		if err := embedding.WriteInfo(s.p.cfg.EmbeddingInfoFile(m.Name, base), gen.Info(m.ID, res)); err != nil {
			return fmt.Errorf("model %s: %w", m.Name, err)
		}
	}
	r.logger.Info("embedded chunks", "model", m.Name, "vectors", len(res.Vectors), "dim", res.Dim)
	return nil
}

type indexStage struct {
	p     *Pipeline
	model int
}

func (s indexStage) state() State { return StateIndexUpdate }

func (s indexStage) run(ctx context.Context, r *run) error {
	m := s.p.models[s.model]
	res, err := vectorindex.Update(s.p.cfg.IndexFile(m.Name), r.vectors[s.model])
	if err != nil {
		return fmt.Errorf("model %s: %w", m.Name, err)
	}
	r.result.Models[s.model].IndexTotal = res.Total
	r.result.Models[s.model].IndexCreated = res.Created
	r.logger.Info("updated vector index", "model", m.Name, "added", res.Added, "total", res.Total, "created", res.Created)
	return nil
}

type lexicalStage struct {
	p *Pipeline
}

func (s lexicalStage) state() State { return StateLexicalRebuild }

func (s lexicalStage) run(ctx context.Context, r *run) error {
	stats, err := lexical.Rebuild(ctx, s.p.cfg.Paths.Chunks, s.p.cfg.Paths.BM25, s.p.baseLogger)
	if err != nil {
		return err
	}
	r.result.LexicalDocs = stats.Chunks
	return nil
}

type metadataStage struct {
	p *Pipeline
}

func (s metadataStage) state() State { return StateMetadataWrite }

func (s metadataStage) run(ctx context.Context, r *run) error {
	path := s.p.cfg.MetadataFile(r.doc.Base())
	if err := metadata.WriteDocument(path, r.chunks, r.doc.Hash, s.p.modelIDs(), r.date); err != nil {
		return err
	}
	r.logger.Info("wrote metadata", "path", path, "records", len(r.chunks))
	return nil
}

// qaStage checks the run for consistency and, when it holds, commits the
// document to the catalog and the ledger.
type qaStage struct {
	p *Pipeline
}

func (s qaStage) state() State { return StateQACheck }

func (s qaStage) run(ctx context.Context, r *run) error {
	if err := core.ValidateChunks(r.chunks, s.p.chunker.ChunkSize()); err != nil {
		return fmt.Errorf("%w: %w", ErrQACheckFailed, err)
	}
	for i, m := range s.p.models {
		if n := len(r.vectors[i]); n != len(r.chunks) {
			return fmt.Errorf("%w: model %s has %d vectors for %d chunks", ErrQACheckFailed, m.Name, n, len(r.chunks))
		}
	}

	if s.p.catalog != nil {
		doc, chunks := catalogRecords(r, s.p.modelNames())
		if err := s.p.catalog.PutDocument(ctx, doc, chunks); err != nil {
			return fmt.Errorf("updating catalog: %w", err)
		}
	}

	r.ledger.Append(core.LedgerEntry{Document: r.doc.Name, Hash: r.doc.Hash, DateIndexed: r.date})
	return r.ledger.Save()
}

func catalogRecords(r *run, models []string) (*storage.DocumentRecord, []storage.ChunkRecord) {
	doc := &storage.DocumentRecord{
		Hash:        r.doc.Hash,
		Name:        r.doc.Name,
		PageCount:   r.doc.PageCount,
		ChunkCount:  len(r.chunks),
		Models:      models,
		DateIndexed: r.date,
	}
	chunks := make([]storage.ChunkRecord, len(r.chunks))
	for i := range r.chunks {
		ch := &r.chunks[i]
		chunks[i] = storage.ChunkRecord{
			DocumentHash: r.doc.Hash,
			Index:        ch.Index,
			Pages:        ch.Pages,
			Titles:       ch.Titles,
			WordCount:    ch.WordCount,
			Fingerprint:  core.IDFromContent(ch.Text),
		}
	}
	return doc, chunks
}
