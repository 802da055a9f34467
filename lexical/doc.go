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

// Package lexical builds the corpus-wide BM25 index.
//
// The index is never updated in place. Each Rebuild reads every chunk file
// on disk, tokenizes the chunk texts on whitespace and builds a fresh
// BM25Okapi model, which is written next to the ordered texts.json and
// ids.json files. Position i in all three artifacts refers to the same chunk.
package lexical
