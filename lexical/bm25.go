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

package lexical

import (
	"maps"
	"math"
	"slices"
	"strings"
)

// BM25Okapi parameters.
const (
	DefaultK1      = 1.5
	DefaultB       = 0.75
	DefaultEpsilon = 0.25
)

// Index is a BM25Okapi model over a tokenized corpus.
type Index struct {
	K1        float64
	B         float64
	Epsilon   float64
	AvgDocLen float64
	DocLens   []int
	DocFreqs  []map[string]int
	IDF       map[string]float64
}

// Tokenize splits text on whitespace.
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// Build creates an index over the tokenized corpus with the default
// parameters. Terms with a negative idf get Epsilon times the average idf.
func Build(corpus [][]string) *Index {
	idx := &Index{
		K1:       DefaultK1,
		B:        DefaultB,
		Epsilon:  DefaultEpsilon,
		DocLens:  make([]int, len(corpus)),
		DocFreqs: make([]map[string]int, len(corpus)),
		IDF:      make(map[string]float64),
	}

	docsWithTerm := make(map[string]int)
	total := 0
	for i, doc := range corpus {
		freqs := make(map[string]int)
		for _, term := range doc {
			freqs[term]++
		}
		for term := range freqs {
			docsWithTerm[term]++
		}
		idx.DocFreqs[i] = freqs
		idx.DocLens[i] = len(doc)
		total += len(doc)
	}
	if len(corpus) > 0 {
		idx.AvgDocLen = float64(total) / float64(len(corpus))
	}

	// Sorted term order keeps the floating point sum identical across runs.
	terms := slices.Sorted(maps.Keys(docsWithTerm))
	n := float64(len(corpus))
	var idfSum float64
	var negative []string
	for _, term := range terms {
		df := float64(docsWithTerm[term])
		idf := math.Log(n-df+0.5) - math.Log(df+0.5)
		idx.IDF[term] = idf
		idfSum += idf
		if idf < 0 {
			negative = append(negative, term)
		}
	}
	if len(terms) > 0 {
		eps := idx.Epsilon * idfSum / float64(len(terms))
		for _, term := range negative {
			idx.IDF[term] = eps
		}
	}
	return idx
}

// Len returns the number of indexed documents.
func (idx *Index) Len() int {
	return len(idx.DocLens)
}

// Scores returns the BM25 score of every document for the query tokens.
func (idx *Index) Scores(query []string) []float64 {
	scores := make([]float64, idx.Len())
	for _, q := range query {
		idf, ok := idx.IDF[q]
		if !ok {
			continue
		}
		for i, freqs := range idx.DocFreqs {
			tf := float64(freqs[q])
			if tf == 0 {
				continue
			}
			norm := idx.K1 * (1 - idx.B + idx.B*float64(idx.DocLens[i])/idx.AvgDocLen)
			scores[i] += idf * tf * (idx.K1 + 1) / (tf + norm)
		}
	}
	return scores
}
