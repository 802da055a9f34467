package storage

import (
	"testing"

	"github.com/poiesic/pdfcorpus/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentRecordRoundTrip(t *testing.T) {
	doc := &DocumentRecord{
		Hash:        "e3b0c442",
		Name:        "privacidad.pdf",
		PageCount:   12,
		ChunkCount:  7,
		Models:      []string{"minilm", "mpnet"},
		DateIndexed: "2025-03-04",
	}

	got, err := UnmarshalDocumentRecord(MarshalDocumentRecord(doc))
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestChunkRecordRoundTrip(t *testing.T) {
	chunk := &ChunkRecord{
		DocumentHash: "e3b0c442",
		Index:        2,
		Pages:        []int{3, 4},
		Titles:       []string{"Ámbito", "1.2 Scope"},
		WordCount:    300,
		Fingerprint:  core.IDFromContent("text"),
	}

	got, err := UnmarshalChunkRecord(MarshalChunkRecord(chunk))
	require.NoError(t, err)
	assert.Equal(t, chunk, got)
}

func TestDecoder_Truncated(t *testing.T) {
	data := MarshalDocumentRecord(&DocumentRecord{Hash: "abc", Name: "doc.pdf"})

	_, err := UnmarshalDocumentRecord(data[:len(data)/2])
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestDecoder_Len_RejectsOversizedCount(t *testing.T) {
	enc := NewEncoder(8)
	enc.Int(1 << 20)

	dec := NewDecoder(enc.Bytes())
	assert.Equal(t, 0, dec.Len(4))
	assert.ErrorIs(t, dec.Err(), ErrTruncatedData)
}

func TestDecoder_Expect(t *testing.T) {
	enc := NewEncoder(8)
	enc.String("other")

	dec := NewDecoder(enc.Bytes())
	dec.Expect("pdfcorpus/flat-ip")
	assert.ErrorIs(t, dec.Err(), ErrBadMagic)
}

func TestEncoder_Floats(t *testing.T) {
	enc := NewEncoder(0)
	enc.Float32(0.25)
	enc.Float64(-1.5)

	dec := NewDecoder(enc.Bytes())
	assert.Equal(t, float32(0.25), dec.Float32())
	assert.Equal(t, -1.5, dec.Float64())
	require.NoError(t, dec.Err())
	assert.Equal(t, 0, dec.Remaining())
}
