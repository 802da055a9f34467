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

// Package storage provides the persistence primitives shared by the corpus.
//
// It has three parts:
//
//   - Encoder/Decoder: the mus-go binary codec used by the vector index,
//     the lexical index and the catalog records
//   - WriteFileAtomic/WriteJSONAtomic: temp-file-then-rename writes used for
//     every artifact, so an aborted run never leaves a half-written file
//   - CatalogRepository: an optional queryable mirror of the ingestion
//     ledger, implemented by the badger sub-package
//
// # Constructor Return Type Pattern
//
// Public constructors in implementation packages return the storage
// interface:
//
//	catalog, err := badger.NewCatalogRepository(backend)  // storage.CatalogRepository
//
// Test helpers such as badger.NewMemoryCatalog do the same so callers stay
// decoupled from BadgerDB specifics.
//
// # Thread Safety
//
// Catalog implementations must be thread-safe. The atomic writers are safe
// for distinct paths; concurrent writers to the same artifact are the
// caller's problem, the last rename wins.
package storage
