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

package extract

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/poiesic/pdfcorpus/core"
)

// PDFExtractor reads page text with the pure-Go ledongthuc/pdf reader.
type PDFExtractor struct {
	logger *slog.Logger
	textOf func(pdf.Page, map[string]*pdf.Font) (string, error)
}

var _ PageExtractor = (*PDFExtractor)(nil)

// NewPDFExtractor creates a PDFExtractor. A nil logger uses slog.Default().
func NewPDFExtractor(logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExtractor{
		logger: logger.With("component", "pdf-extractor"),
		textOf: pageText,
	}
}

// ExtractPages returns the plain text of every page. Null pages yield an
// empty string. A page whose text cannot be decoded fails the whole document
// with ErrUnreadablePDF.
func (e *PDFExtractor) ExtractPages(ctx context.Context, path string) (pages []string, err error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrDocumentNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadablePDF, path, err)
	}
	defer f.Close()

	// The reader panics on some malformed object streams.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: %s: %v", ErrUnreadablePDF, path, r)
		}
	}()

	total := reader.NumPage()
	if total == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPages, path)
	}
	e.logger.Info("loaded pdf", "path", path, "pages", total)

	pages = make([]string, total)
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				font := page.Font(name)
				fonts[name] = &font
			}
		}

		text, err := e.textOf(page, fonts)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: page %d: %w", ErrUnreadablePDF, path, i, err)
		}
		pages[i-1] = text
	}
	return pages, nil
}

// pageText rebuilds line structure from positioned rows, falling back to the
// reader's plain text when rows are unavailable. Fragments within a row are
// concatenated as-is since TJ arrays split words for kerning.
func pageText(page pdf.Page, fonts map[string]*pdf.Font) (string, error) {
	rows, err := page.GetTextByRow()
	if err == nil && len(rows) > 0 {
		var b strings.Builder
		for _, row := range rows {
			for _, text := range row.Content {
				b.WriteString(text.S)
			}
			b.WriteByte('\n')
		}
		return b.String(), nil
	}
	return page.GetPlainText(fonts)
}

// Exists reports whether path names a regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
