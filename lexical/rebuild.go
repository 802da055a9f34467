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

package lexical

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/poiesic/pdfcorpus/chunking"
	"github.com/poiesic/pdfcorpus/core"
	"github.com/poiesic/pdfcorpus/storage"
	"golang.org/x/sync/errgroup"
)

// Artifact names inside the output directory.
const (
	IndexFile = "bm25_index.bin"
	TextsFile = "texts.json"
	IDsFile   = "ids.json"
)

// ChunkFilePattern matches per-document chunk files.
const ChunkFilePattern = "chunks_*.json"

// Stats summarizes a rebuild.
type Stats struct {
	Files  int
	Chunks int
	Terms  int
}

// Corpus is the ordered text and id lists the index is built from.
type Corpus struct {
	Texts []string
	IDs   []string
}

// LoadCorpus reads every chunk file in chunksDir in lexicographic file
// order. Files are read concurrently; the order of the result does not
// depend on scheduling.
func LoadCorpus(ctx context.Context, chunksDir string) (*Corpus, int, error) {
	files, err := filepath.Glob(filepath.Join(chunksDir, ChunkFilePattern))
	if err != nil {
		return nil, 0, err
	}
	slices.Sort(files)

	perFile := make([][]core.Chunk, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			chunks, err := chunking.ReadChunks(file)
			if err != nil {
				return err
			}
			perFile[i] = chunks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	corpus := &Corpus{}
	for _, chunks := range perFile {
		for i := range chunks {
			corpus.Texts = append(corpus.Texts, chunks[i].Text)
			corpus.IDs = append(corpus.IDs, chunks[i].ID())
		}
	}
	return corpus, len(files), nil
}

// Rebuild builds a fresh BM25 index from every chunk file in chunksDir and
// writes the index, texts.json and ids.json to outDir. Nothing is written
// when the corpus is empty.
func Rebuild(ctx context.Context, chunksDir, outDir string, logger *slog.Logger) (*Stats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "lexical")

	corpus, files, err := LoadCorpus(ctx, chunksDir)
	if err != nil {
		return nil, fmt.Errorf("loading chunk files: %w", err)
	}
	if len(corpus.Texts) == 0 {
		return nil, fmt.Errorf("%w: no chunks in %s", ErrEmptyCorpus, chunksDir)
	}

	tokenized := make([][]string, len(corpus.Texts))
	for i, text := range corpus.Texts {
		tokenized[i] = Tokenize(text)
	}
	idx := Build(tokenized)

	// The three artifacts are index-aligned, so they are published together.
	// Companions go first so the structure never runs ahead of them.
	var set storage.FileSet
	if err := stageCorpus(&set, outDir, corpus); err != nil {
		set.Discard()
		return nil, err
	}
	if err := set.Stage(filepath.Join(outDir, IndexFile), idx.Marshal(), 0o644); err != nil {
		set.Discard()
		return nil, fmt.Errorf("staging bm25 index: %w", err)
	}
	if err := set.Commit(); err != nil {
		return nil, fmt.Errorf("publishing lexical index: %w", err)
	}

	stats := &Stats{Files: files, Chunks: len(corpus.Texts), Terms: len(idx.IDF)}
	logger.Info("rebuilt lexical index", "files", stats.Files, "chunks", stats.Chunks, "terms", stats.Terms)
	return stats, nil
}

// WriteCorpus replaces texts.json and ids.json in dir together.
func WriteCorpus(dir string, corpus *Corpus) error {
	var set storage.FileSet
	if err := stageCorpus(&set, dir, corpus); err != nil {
		set.Discard()
		return err
	}
	return set.Commit()
}

func stageCorpus(set *storage.FileSet, dir string, corpus *Corpus) error {
	if len(corpus.Texts) != len(corpus.IDs) {
		return ErrCorpusMismatch
	}
	if err := set.StageJSON(filepath.Join(dir, TextsFile), corpus.Texts); err != nil {
		return fmt.Errorf("staging texts: %w", err)
	}
	if err := set.StageJSON(filepath.Join(dir, IDsFile), corpus.IDs); err != nil {
		return fmt.Errorf("staging ids: %w", err)
	}
	return nil
}

// ReadCorpus reads texts.json and ids.json from dir.
func ReadCorpus(dir string) (*Corpus, error) {
	corpus := &Corpus{}
	if err := storage.ReadJSON(filepath.Join(dir, TextsFile), &corpus.Texts); err != nil {
		return nil, err
	}
	if err := storage.ReadJSON(filepath.Join(dir, IDsFile), &corpus.IDs); err != nil {
		return nil, err
	}
	if len(corpus.Texts) != len(corpus.IDs) {
		return nil, ErrCorpusMismatch
	}
	return corpus, nil
}
