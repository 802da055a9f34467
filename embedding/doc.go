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

// Package embedding turns chunk texts into dense vectors for one model.
//
// A Generator wraps an ai.Embedder, splits the input into batches, runs the
// batches on an ants worker pool and reassembles the vectors in input order.
// Vectors are optionally scaled to unit length so that inner product equals
// cosine similarity in the vector index.
//
// The package also owns the on-disk vector formats: raw matrices are
// written as NumPy .npy files and each run is described by an info JSON.
package embedding
