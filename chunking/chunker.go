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

package chunking

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/pdfcorpus/core"
)

const (
	// DefaultChunkSize is the number of words per chunk.
	DefaultChunkSize = 300

	// DefaultMinPageWords is the smallest cleaned page that is kept.
	DefaultMinPageWords = 20
)

// DefaultHeaders are running header lines removed from every page.
var DefaultHeaders = []string{"EN", "NIST Privacy Framework"}

// Chunker splits documents into fixed-size word chunks.
// A Chunker holds no per-document state and is safe for concurrent use.
type Chunker struct {
	chunkSize    int
	minPageWords int
	headers      map[string]struct{}
	logger       *slog.Logger
}

// Option configures a Chunker.
type Option func(*Chunker) error

// WithChunkSize sets the number of words per chunk.
// Default is 300.
func WithChunkSize(size int) Option {
	return func(c *Chunker) error {
		if size < 1 {
			return ErrInvalidChunkSize
		}
		c.chunkSize = size
		return nil
	}
}

// WithHeaders replaces the set of header lines to drop.
// Lines are compared after trimming, case-sensitively.
func WithHeaders(headers ...string) Option {
	return func(c *Chunker) error {
		c.headers = make(map[string]struct{}, len(headers))
		for _, h := range headers {
			c.headers[strings.TrimSpace(h)] = struct{}{}
		}
		return nil
	}
}

// WithMinPageWords sets the word count below which a cleaned page is discarded.
// Default is 20.
func WithMinPageWords(n int) Option {
	return func(c *Chunker) error {
		if n < 0 {
			return ErrInvalidMinPageWords
		}
		c.minPageWords = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chunker) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewChunker creates a Chunker with the default settings overridden by opts.
func NewChunker(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		chunkSize:    DefaultChunkSize,
		minPageWords: DefaultMinPageWords,
		logger:       slog.Default(),
	}
	if err := WithHeaders(DefaultHeaders...)(c); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "chunker")
	return c, nil
}

// ChunkSize returns the configured number of words per chunk.
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Pages cleans raw page text and returns the usable pages in order.
// rawPages[i] is the text of real page i+1.
func (c *Chunker) Pages(rawPages []string) []core.Page {
	pages := make([]core.Page, 0, len(rawPages))
	for i, raw := range rawPages {
		text, title := c.cleanPage(raw)
		if n := len(strings.Fields(text)); n < c.minPageWords {
			c.logger.Debug("dropping short page", "page", i+1, "words", n)
			continue
		}
		pages = append(pages, core.Page{
			RealNumber:   i + 1,
			UsableNumber: len(pages) + 1,
			Title:        title,
			Text:         text,
		})
	}
	return pages
}

// Chunk cleans the pages of one document and cuts the surviving words into
// chunks of ChunkSize words. Every chunk but the last is full. A chunk lists
// each real page that contributed at least one word to it, so a page that
// straddles a boundary appears in both chunks.
func (c *Chunker) Chunk(docName string, rawPages []string) ([]core.Chunk, []core.Page) {
	pages := c.Pages(rawPages)
	c.logger.Info("cleaned pages", "document", docName, "total", len(rawPages), "usable", len(pages))

	var (
		chunks []core.Chunk
		acc    = newAccumulator(c.chunkSize)
	)
	flush := func() {
		chunks = append(chunks, acc.chunk(docName, len(chunks)+1))
		acc.reset()
	}

	for _, page := range pages {
		for _, word := range strings.Fields(page.Text) {
			acc.add(word, page)
			if len(acc.words) == c.chunkSize {
				flush()
			}
		}
	}
	if len(acc.words) > 0 {
		flush()
	}

	c.logger.Info("chunked document", "document", docName, "chunks", len(chunks))
	return chunks, pages
}

// accumulator collects the words of the chunk being built.
type accumulator struct {
	words  []string
	pages  []int
	titles []string
}

func newAccumulator(size int) *accumulator {
	return &accumulator{words: make([]string, 0, size)}
}

func (a *accumulator) add(word string, page core.Page) {
	if n := len(a.pages); n == 0 || a.pages[n-1] != page.RealNumber {
		a.pages = append(a.pages, page.RealNumber)
		if page.Title != "" && !slices.Contains(a.titles, page.Title) {
			a.titles = append(a.titles, page.Title)
		}
	}
	a.words = append(a.words, word)
}

func (a *accumulator) chunk(docName string, index int) core.Chunk {
	titles := a.titles
	if titles == nil {
		titles = []string{}
	}
	return core.Chunk{
		Document:  docName,
		Pages:     a.pages,
		Titles:    titles,
		Index:     index,
		Text:      strings.Join(a.words, " "),
		WordCount: len(a.words),
	}
}

func (a *accumulator) reset() {
	a.words = a.words[:0]
	a.pages = nil
	a.titles = nil
}
