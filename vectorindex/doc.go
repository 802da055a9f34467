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

// Package vectorindex provides an append-only flat inner-product index.
//
// One index file exists per embedding model. Vectors are stored in insertion
// order, so position i in the index corresponds to the i-th chunk ever
// ingested for that model. The index is only ever appended to: Update loads
// the existing file (or starts a new one), checks the dimension, appends and
// replaces the file atomically.
package vectorindex
