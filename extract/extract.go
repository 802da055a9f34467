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

// Package extract turns PDF files into ordered per-page text.
//
// The chunker only needs one raw string per page, so extraction sits behind
// the PageExtractor interface and can be replaced with a stub in tests.
package extract

import (
	"context"
	"errors"
)

var (
	// ErrUnreadablePDF indicates the file could not be parsed as a PDF.
	ErrUnreadablePDF = errors.New("unreadable pdf")

	// ErrNoPages indicates the PDF has no pages.
	ErrNoPages = errors.New("pdf has no pages")
)

// PageExtractor extracts raw text for every page of a PDF, in page order.
// The slice index is the zero-based page number, so pages without text are
// returned as empty strings rather than skipped.
type PageExtractor interface {
	ExtractPages(ctx context.Context, path string) ([]string, error)
}

// PageExtractorFunc adapts a function to the PageExtractor interface.
type PageExtractorFunc func(ctx context.Context, path string) ([]string, error)

// ExtractPages calls f.
func (f PageExtractorFunc) ExtractPages(ctx context.Context, path string) ([]string, error) {
	return f(ctx, path)
}
