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

package vectorindex

import (
	"errors"
	"fmt"
)

// UpdateResult reports the outcome of Update.
type UpdateResult struct {
	Created bool // The index file did not exist before
	Added   int
	Total   int
	Dim     int
}

// Update appends vectors to the index stored at path, creating it with the
// width of the first vector when absent. The dimension is checked before
// anything is written, and the file is replaced atomically, so on error the
// previous file is left as it was. An empty batch writes nothing.
func Update(path string, vectors [][]float32) (*UpdateResult, error) {
	idx, err := Load(path)
	created := false
	switch {
	case errors.Is(err, ErrIndexNotFound):
		if len(vectors) == 0 {
			return &UpdateResult{}, nil
		}
		idx, err = New(len(vectors[0]))
		if err != nil {
			return nil, err
		}
		created = true
	case err != nil:
		return nil, err
	}

	if len(vectors) == 0 {
		return &UpdateResult{Total: idx.Len(), Dim: idx.Dim()}, nil
	}

	if err := idx.Add(vectors); err != nil {
		return nil, err
	}
	if err := idx.Save(path); err != nil {
		return nil, fmt.Errorf("saving vector index: %w", err)
	}

	return &UpdateResult{
		Created: created,
		Added:   len(vectors),
		Total:   idx.Len(),
		Dim:     idx.Dim(),
	}, nil
}
