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
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/poiesic/pdfcorpus/storage"
)

// NumPy format version 1.0: magic, version, little-endian uint16 header
// length, then a Python dict literal padded to a 64 byte boundary.
const (
	npyMagic      = "\x93NUMPY"
	npyPrefixLen  = len(npyMagic) + 2 + 2
	npyAlignment  = 64
	npyDescriptor = "<f4"
)

var npyHeaderPattern = regexp.MustCompile(
	`'descr':\s*'([^']*)'.*'fortran_order':\s*(True|False).*'shape':\s*\(\s*(\d+)\s*,\s*(\d*)\s*,?\s*\)`)

// WriteNPY writes vectors as a float32 (n, d) matrix in C order.
// All vectors must have the same width. The file is replaced atomically.
func WriteNPY(path string, vectors [][]float32) error {
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: row %d has %d columns, expected %d", ErrDimensionMismatch, i, len(v), dim)
		}
	}

	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': (%d, %d), }",
		npyDescriptor, len(vectors), dim)
	// Pad with spaces so the data starts aligned; the header ends in a newline.
	total := npyPrefixLen + len(header) + 1
	if rem := total % npyAlignment; rem != 0 {
		header += strings.Repeat(" ", npyAlignment-rem)
	}
	header += "\n"

	var buf bytes.Buffer
	buf.Grow(npyPrefixLen + len(header) + 4*len(vectors)*dim)
	buf.WriteString(npyMagic)
	buf.Write([]byte{1, 0})
	binary.Write(&buf, binary.LittleEndian, uint16(len(header)))
	buf.WriteString(header)

	row := make([]byte, 4*dim)
	for _, v := range vectors {
		for j, x := range v {
			binary.LittleEndian.PutUint32(row[4*j:], math.Float32bits(x))
		}
		buf.Write(row)
	}

	return storage.WriteFileAtomic(path, buf.Bytes(), 0o644)
}

// ReadNPY reads a matrix written by WriteNPY.
func ReadNPY(path string) ([][]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeNPY(data)
}

func decodeNPY(data []byte) ([][]float32, error) {
	if len(data) < npyPrefixLen || string(data[:len(npyMagic)]) != npyMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrInvalidNPY)
	}
	if major := data[len(npyMagic)]; major != 1 {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidNPY, major)
	}
	headerLen := int(binary.LittleEndian.Uint16(data[len(npyMagic)+2:]))
	if len(data) < npyPrefixLen+headerLen {
		return nil, fmt.Errorf("%w: truncated header", ErrInvalidNPY)
	}
	header := string(data[npyPrefixLen : npyPrefixLen+headerLen])

	m := npyHeaderPattern.FindStringSubmatch(header)
	if m == nil {
		return nil, fmt.Errorf("%w: unrecognized header %q", ErrInvalidNPY, header)
	}
	if m[1] != npyDescriptor {
		return nil, fmt.Errorf("%w: unsupported dtype %s", ErrInvalidNPY, m[1])
	}
	if m[2] != "False" {
		return nil, fmt.Errorf("%w: fortran order not supported", ErrInvalidNPY)
	}
	rows, _ := strconv.Atoi(m[3])
	cols := 1
	if m[4] != "" {
		cols, _ = strconv.Atoi(m[4])
	}

	body := data[npyPrefixLen+headerLen:]
	if len(body) != 4*rows*cols {
		return nil, fmt.Errorf("%w: expected %d data bytes, found %d", ErrInvalidNPY, 4*rows*cols, len(body))
	}

	vectors := make([][]float32, rows)
	for i := range vectors {
		v := make([]float32, cols)
		for j := range v {
			off := 4 * (i*cols + j)
			v[j] = math.Float32frombits(binary.LittleEndian.Uint32(body[off:]))
		}
		vectors[i] = v
	}
	return vectors, nil
}
