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
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	letteredHeading  = regexp.MustCompile(`^[A-Z]\.\s`)
	numberedHeading  = regexp.MustCompile(`^\d+(\.\d+)*`)
	pageLabelPattern = regexp.MustCompile(`(?i)^page\s+\d+$`)
)

// isURL reports whether the line references a web address.
func isURL(line string) bool {
	return strings.Contains(line, "http") || strings.Contains(line, "www.")
}

// isPageNumber reports whether the line is a bare page number or a
// "Page N" label.
func isPageNumber(line string) bool {
	if line == "" {
		return false
	}
	allDigits := true
	for _, r := range line {
		if !unicode.IsDigit(r) {
			allDigits = false
			break
		}
	}
	return allDigits || pageLabelPattern.MatchString(line)
}

// cleanLine normalizes to NFC and replaces control characters with spaces.
func cleanLine(line string) string {
	line = norm.NFC.String(line)
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return ' '
		}
		return r
	}, line)
}

// isUpper reports whether s has at least one cased letter and no lower case
// letters.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			return false
		case unicode.IsUpper(r) || unicode.IsTitle(r):
			cased = true
		}
	}
	return cased
}

// isTitle reports whether a cleaned line looks like a heading.
func isTitle(line string) bool {
	return isUpper(line) || letteredHeading.MatchString(line) || numberedHeading.MatchString(line)
}

// cleanPage filters and normalizes the lines of one page. It returns the
// cleaned text and the first title candidate, which is empty if none.
func (c *Chunker) cleanPage(raw string) (text string, title string) {
	lines := strings.Split(raw, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, ok := c.headers[line]; ok || isURL(line) || isPageNumber(line) {
			continue
		}
		line = cleanLine(line)
		if title == "" && isTitle(line) {
			title = line
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n"), title
}
