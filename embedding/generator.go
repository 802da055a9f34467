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

package embedding

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/pdfcorpus/ai"
)

const (
	// DefaultBatchSize is the number of texts sent to the embedder per call.
	DefaultBatchSize = 32

	// DefaultDevice is recorded when no device is configured.
	DefaultDevice = "cpu"
)

// Result holds the vectors of one Generate call.
type Result struct {
	Vectors [][]float32
	Dim     int
	Elapsed time.Duration
}

// Generator embeds texts in batches with a single embedding model.
type Generator struct {
	embedder  ai.Embedder
	pool      *ants.Pool
	batchSize int
	normalize bool
	device    string
	attempts  int
	backoff   time.Duration
	progress  io.Writer
	logger    *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator) error

// WithBatchSize sets how many texts go into one embedder call.
// Default is 32.
func WithBatchSize(size int) Option {
	return func(g *Generator) error {
		if size < 1 {
			return ErrInvalidBatchSize
		}
		g.batchSize = size
		return nil
	}
}

// WithNormalize controls L2 normalization of the output vectors.
// Default is true.
func WithNormalize(normalize bool) Option {
	return func(g *Generator) error {
		g.normalize = normalize
		return nil
	}
}

// WithDevice records the compute device in logs and info files.
// Default is "cpu".
func WithDevice(device string) Option {
	return func(g *Generator) error {
		if device == "" {
			device = DefaultDevice
		}
		g.device = device
		return nil
	}
}

// WithPoolSize sets the number of batches embedded concurrently.
// Default is 1.
func WithPoolSize(size int) Option {
	return func(g *Generator) error {
		if size < 1 {
			size = 1
		}
		if g.pool != nil {
			g.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		g.pool = pool
		return nil
	}
}

// WithRetry retries a failed embedder call up to attempts times in total,
// doubling the delay from backoff after each failure. Default is a single
// attempt.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(g *Generator) error {
		if attempts < 1 {
			return ErrInvalidRetry
		}
		g.attempts = attempts
		g.backoff = backoff
		return nil
	}
}

// WithProgress reports per-batch progress to w.
func WithProgress(w io.Writer) Option {
	return func(g *Generator) error {
		g.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) error {
		if logger == nil {
			logger = slog.Default()
		}
		g.logger = logger
		return nil
	}
}

// NewGenerator creates a Generator around embedder.
// Call Release when done to free the worker pool.
func NewGenerator(embedder ai.Embedder, opts ...Option) (*Generator, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	g := &Generator{
		embedder:  embedder,
		batchSize: DefaultBatchSize,
		normalize: true,
		device:    DefaultDevice,
		attempts:  1,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			g.Release()
			return nil, err
		}
	}
	if g.pool == nil {
		pool, err := ants.NewPool(1)
		if err != nil {
			return nil, err
		}
		g.pool = pool
	}
	g.logger = g.logger.With("component", "embedding-generator")
	return g, nil
}

// Normalized reports whether output vectors are scaled to unit length.
func (g *Generator) Normalized() bool {
	return g.normalize
}

// Device returns the recorded compute device.
func (g *Generator) Device() string {
	return g.device
}

// Release frees the worker pool. The Generator must not be used afterwards.
func (g *Generator) Release() {
	if g.pool != nil {
		g.pool.Release()
	}
}

// Generate embeds texts and returns one vector per text in input order.
// The output does not depend on the batch or pool size. An empty input
// yields an empty Result without calling the embedder.
func (g *Generator) Generate(ctx context.Context, texts []string) (*Result, error) {
	start := time.Now()
	if len(texts) == 0 {
		return &Result{Vectors: [][]float32{}}, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	numBatches := (len(texts) + g.batchSize - 1) / g.batchSize
	results := make([][][]float32, numBatches)

	var (
		errOnce  sync.Once
		firstErr error
	)
	fail := func(batch int, err error) {
		errOnce.Do(func() {
			firstErr = fmt.Errorf("batch %d: %w", batch+1, err)
			cancel()
		})
	}

	var tracker *ProgressTracker
	if g.progress != nil {
		tracker = NewProgressTracker(g.progress, len(texts), g.batchSize)
		tracker.Start()
	}

	g.logger.Info("generating embeddings", "texts", len(texts), "batches", numBatches,
		"batch_size", g.batchSize, "device", g.device)

	var wg sync.WaitGroup
	for b := 0; b < numBatches; b++ {
		lo := b * g.batchSize
		hi := min(lo+g.batchSize, len(texts))
		batch := texts[lo:hi]
		idx := b

		wg.Add(1)
		err := g.pool.Submit(func() {
			defer wg.Done()
			vectors, err := g.embedBatch(ctx, batch)
			if err != nil {
				fail(idx, err)
				return
			}
			results[idx] = vectors
			if tracker != nil {
				tracker.Increment(len(batch))
			}
		})
		if err != nil {
			wg.Done()
			fail(idx, err)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	vectors := make([][]float32, 0, len(texts))
	for _, r := range results {
		vectors = append(vectors, r...)
	}
	if tracker != nil {
		tracker.Finish()
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, expected %d", ErrDimensionMismatch, i, len(v), dim)
		}
	}

	elapsed := time.Since(start)
	g.logger.Info("generated embeddings", "vectors", len(vectors), "dim", dim, "elapsed", elapsed)
	return &Result{Vectors: vectors, Dim: dim, Elapsed: elapsed}, nil
}

// embedBatch embeds one batch and checks the result count.
func (g *Generator) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var vectors [][]float32
	err := g.retry(ctx, func() error {
		var err error
		vectors, err = g.embedder.EmbedTexts(ctx, batch)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(batch) {
		return nil, fmt.Errorf("%w: expected %d, received %d", ErrEmbeddingMismatch, len(batch), len(vectors))
	}
	if g.normalize {
		for i := range vectors {
			vectors[i] = NormalizeVector(vectors[i])
		}
	}
	return vectors, nil
}
