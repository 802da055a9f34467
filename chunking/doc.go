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

// Package chunking turns raw page text into fixed-size word chunks.
//
// Each page is cleaned line by line: running headers, URLs and page-number
// lines are dropped, the rest is NFC-normalized and stripped of control
// characters. Pages that are too short after cleaning are discarded. The
// surviving words are then concatenated across pages and cut every
// ChunkSize words, carrying the contributing page numbers and titles along.
//
// Basic usage:
//
//	c, err := chunking.NewChunker(chunking.WithChunkSize(300))
//	if err != nil {
//	    return err
//	}
//	chunks, pages := c.Chunk("report.pdf", rawPages)
//	err = chunking.WriteChunks("chunks/chunks_report.json", chunks)
package chunking
