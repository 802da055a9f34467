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
	"fmt"
	"math"

	"github.com/poiesic/pdfcorpus/core"
	"github.com/poiesic/pdfcorpus/storage"
)

// Info describes a finished Generate call for the named model.
func (g *Generator) Info(model string, result *Result) core.EmbeddingInfo {
	return core.EmbeddingInfo{
		Model:          model,
		Chunks:         len(result.Vectors),
		ElapsedSeconds: math.Round(result.Elapsed.Seconds()*100) / 100,
		Dim:            result.Dim,
		Normalized:     g.normalize,
		Device:         g.device,
	}
}

// WriteInfo writes the embedding info JSON next to the vector file.
func WriteInfo(path string, info core.EmbeddingInfo) error {
	if err := storage.WriteJSONAtomic(path, info); err != nil {
		return fmt.Errorf("writing embedding info: %w", err)
	}
	return nil
}

// ReadInfo loads an embedding info JSON.
func ReadInfo(path string) (core.EmbeddingInfo, error) {
	var info core.EmbeddingInfo
	err := storage.ReadJSON(path, &info)
	return info, err
}
