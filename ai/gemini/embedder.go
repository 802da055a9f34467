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

package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"github.com/poiesic/pdfcorpus/ai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// maxBatch is the largest request the Gemini batch endpoint accepts.
const maxBatch = 100

// Embedder implements ai.Embedder using Gemini embedding models.
type Embedder struct {
	client  *genai.Client
	model   *genai.EmbeddingModel
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

func newEmbedder(ctx context.Context, config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.Token))
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}

	return &Embedder{
		client:  client,
		model:   client.EmbeddingModel(config.EmbeddingModel),
		limiter: limiter,
		logger:  slog.Default().With("component", "gemini-embedder", "model", config.EmbeddingModel),
	}, nil
}

// NewEmbedder creates a Gemini embedder. The returned value also implements
// io.Closer; callers should close it to release the client connection.
func NewEmbedder(ctx context.Context, config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(ctx, config)
}

// Close releases the underlying client.
func (e *Embedder) Close() error {
	return e.client.Close()
}

func (e *Embedder) wait(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}
	return e.limiter.Wait(ctx)
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	resp, err := e.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		e.logger.Error("failed to generate embedding", "err", err)
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if resp.Embedding == nil {
		return []float32{}, nil
	}
	return resp.Embedding.Values, nil
}

// EmbedTexts embeds texts in requests of at most maxBatch items.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatch {
		end := min(start+maxBatch, len(texts))

		if err := e.wait(ctx); err != nil {
			return nil, err
		}

		batch := e.model.NewBatch()
		for _, t := range texts[start:end] {
			batch.AddContent(genai.Text(t))
		}

		resp, err := e.model.BatchEmbedContents(ctx, batch)
		if err != nil {
			e.logger.Error("failed to generate embeddings", "count", end-start, "err", err)
			return nil, fmt.Errorf("gemini batch embed: %w", err)
		}
		for _, emb := range resp.Embeddings {
			out = append(out, emb.Values)
		}
	}
	return out, nil
}
