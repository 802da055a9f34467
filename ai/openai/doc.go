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

// Package openai provides an ai.Embedder backed by OpenAI-compatible APIs.
//
// It uses the langchaingo client and therefore works with OpenAI itself and
// with local servers that speak the same protocol (Ollama, LocalAI, vLLM,
// text-embeddings-inference). Sentence-transformer models such as
// all-MiniLM-L6-v2 are typically served this way.
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithHost("http://localhost:8080"),  // /v1 added automatically
//	    ai.WithEmbeddingModel("sentence-transformers/all-MiniLM-L6-v2"),
//	    ai.WithRequestsPerSecond(10),
//	)
//
//	embedder, err := openai.NewEmbedder(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	vectors, err := embedder.EmbedTexts(ctx, texts)
package openai
