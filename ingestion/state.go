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

package ingestion

// State is a step of an ingestion run.
type State int

const (
	StateStart State = iota
	StateHashCheck
	StateChunk
	StateEmbed
	StateIndexUpdate
	StateLexicalRebuild
	StateMetadataWrite
	StateQACheck
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateStart:          "START",
	StateHashCheck:      "HASH_CHECK",
	StateChunk:          "CHUNK",
	StateEmbed:          "EMBED",
	StateIndexUpdate:    "INDEX_UPDATE",
	StateLexicalRebuild: "LEXICAL_REBUILD",
	StateMetadataWrite:  "METADATA_WRITE",
	StateQACheck:        "QA_CHECK",
	StateDone:           "DONE",
	StateFailed:         "FAILED",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
