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

// Package ingestion orchestrates the ingestion of one PDF into the corpus.
//
// A run moves through a fixed sequence of states:
//
//	START → HASH_CHECK → CHUNK → EMBED(×N) → INDEX_UPDATE(×N)
//	      → LEXICAL_REBUILD → METADATA_WRITE → QA_CHECK → DONE
//
// HASH_CHECK jumps straight to DONE when the document's hash is already in
// the ledger. Any failure moves the run to FAILED and is reported as a
// *StageError naming the state it happened in. The ledger is only updated
// once QA_CHECK has passed, so a failed run can simply be retried.
//
// Runs are sequential. The pipeline does not lock the index or ledger files;
// callers must not ingest into the same corpus from two processes at once.
package ingestion
