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

// Package ai provides abstractions for the embedding services used by the corpus.
//
// The package defines the Embedder interface consumed by the embedding
// generator and a Config shared by every provider. The ingestion pipeline
// depends only on the interface, so chunking, indexing and bookkeeping can be
// tested without a model server.
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible servers through langchaingo
//   - ai/gemini: Google Gemini embedding models
//   - ai/mock: deterministic test doubles
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewEmbedder, gemini.NewEmbedder) return the
// ai.Embedder INTERFACE to keep callers decoupled from a provider:
//
//	embedder, err := openai.NewEmbedder(config)  // returns ai.Embedder
//
// Test constructors (mock.NewMockEmbedder) return CONCRETE types so tests can
// inject behavior and assert on call counts:
//
//	mockEmbed := mock.NewMockEmbedder()
//	mockEmbed.EmbedTextsFunc = func(...) { ... }
//	count := mockEmbed.CallCount()
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithHost("http://localhost:8080"))
//	for _, model := range []string{"all-MiniLM-L6-v2", "all-mpnet-base-v2"} {
//	    embedder, err := openai.NewEmbedder(cfg.ForModel(model))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    vectors, err := embedder.EmbedTexts(ctx, texts)
//	}
package ai
