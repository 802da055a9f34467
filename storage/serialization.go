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

package storage

import (
	"fmt"
	"slices"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Encoder appends mus-encoded values to a growing buffer.
// It is the single serialization path for every binary artifact in the corpus.
type Encoder struct {
	buf []byte
}

// NewEncoder creates an Encoder with the given initial capacity.
func NewEncoder(capacity int) *Encoder {
	return &Encoder{buf: make([]byte, 0, capacity)}
}

func (e *Encoder) reserve(n int) []byte {
	l := len(e.buf)
	e.buf = slices.Grow(e.buf, n)[:l+n]
	return e.buf[l:]
}

// String writes a length-prefixed string.
func (e *Encoder) String(v string) {
	ord.String.Marshal(v, e.reserve(ord.String.Size(v)))
}

// Int writes a varint-encoded int.
func (e *Encoder) Int(v int) {
	varint.Int.Marshal(v, e.reserve(varint.Int.Size(v)))
}

// Uint64 writes a varint-encoded uint64.
func (e *Encoder) Uint64(v uint64) {
	varint.Uint64.Marshal(v, e.reserve(varint.Uint64.Size(v)))
}

// Float32 writes a fixed-width float32.
func (e *Encoder) Float32(v float32) {
	raw.Float32.Marshal(v, e.reserve(raw.Float32.Size(v)))
}

// Float64 writes a fixed-width float64.
func (e *Encoder) Float64(v float64) {
	raw.Float64.Marshal(v, e.reserve(raw.Float64.Size(v)))
}

// Ints writes a count followed by each element.
func (e *Encoder) Ints(vs []int) {
	e.Int(len(vs))
	for _, v := range vs {
		e.Int(v)
	}
}

// Strings writes a count followed by each element.
func (e *Encoder) Strings(vs []string) {
	e.Int(len(vs))
	for _, v := range vs {
		e.String(v)
	}
}

// Bytes returns the encoded buffer.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Decoder reads values written by an Encoder. The first failure is sticky:
// later reads return zero values and Err reports the original problem.
type Decoder struct {
	bs  []byte
	err error
}

// NewDecoder creates a Decoder over data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{bs: data}
}

func (d *Decoder) advance(n int, err error) bool {
	if err != nil {
		d.err = fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		return false
	}
	d.bs = d.bs[n:]
	return true
}

// String reads a length-prefixed string.
func (d *Decoder) String() string {
	if d.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(d.bs)
	if !d.advance(n, err) {
		return ""
	}
	return v
}

// Int reads a varint-encoded int.
func (d *Decoder) Int() int {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Int.Unmarshal(d.bs)
	if !d.advance(n, err) {
		return 0
	}
	return v
}

// Len reads a count and checks it against the remaining input, assuming each
// element needs at least minElemSize bytes.
func (d *Decoder) Len(minElemSize int) int {
	n := d.Int()
	if d.err != nil {
		return 0
	}
	if n < 0 || (minElemSize > 0 && n > len(d.bs)/minElemSize) {
		d.err = fmt.Errorf("%w: length %d exceeds remaining input", ErrTruncatedData, n)
		return 0
	}
	return n
}

// Uint64 reads a varint-encoded uint64.
func (d *Decoder) Uint64() uint64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Uint64.Unmarshal(d.bs)
	if !d.advance(n, err) {
		return 0
	}
	return v
}

// Float32 reads a fixed-width float32.
func (d *Decoder) Float32() float32 {
	if d.err != nil {
		return 0
	}
	v, n, err := raw.Float32.Unmarshal(d.bs)
	if !d.advance(n, err) {
		return 0
	}
	return v
}

// Float64 reads a fixed-width float64.
func (d *Decoder) Float64() float64 {
	if d.err != nil {
		return 0
	}
	v, n, err := raw.Float64.Unmarshal(d.bs)
	if !d.advance(n, err) {
		return 0
	}
	return v
}

// Ints reads a slice written by Encoder.Ints.
func (d *Decoder) Ints() []int {
	n := d.Len(1)
	if d.err != nil {
		return nil
	}
	vs := make([]int, n)
	for i := range vs {
		vs[i] = d.Int()
	}
	return vs
}

// Strings reads a slice written by Encoder.Strings.
func (d *Decoder) Strings() []string {
	n := d.Len(1)
	if d.err != nil {
		return nil
	}
	vs := make([]string, n)
	for i := range vs {
		vs[i] = d.String()
	}
	return vs
}

// Expect reads a string and fails with ErrBadMagic unless it equals tag.
func (d *Decoder) Expect(tag string) {
	got := d.String()
	if d.err == nil && got != tag {
		d.err = fmt.Errorf("%w: got %q, want %q", ErrBadMagic, got, tag)
	}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.bs)
}

// Err returns the first decoding error.
func (d *Decoder) Err() error {
	return d.err
}
