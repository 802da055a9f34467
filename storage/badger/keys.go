package badger

import (
	"encoding/binary"
)

// Key prefixes for different data types
const (
	documentPrefix      = "doc"
	documentOrderPrefix = "docord"
	chunkPrefix         = "chk"
	documentSeq         = "docseq"
)

// makeDocumentKey generates a key for a document by content hash.
// Format: prefix:hash
func makeDocumentKey(hash string) []byte {
	return []byte(documentPrefix + ":" + hash)
}

// makeDocumentOrderKey generates a key in the insertion-order index.
// Format: prefix:seq
func makeDocumentOrderKey(seq uint64) []byte {
	prefix := []byte(documentOrderPrefix + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makeChunkKey generates a composite key for a chunk record.
// Format: prefix:hash:index
func makeChunkKey(hash string, index int) []byte {
	prefix := makePartialChunkKey(hash)
	buf := make([]byte, len(prefix)+4)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint32(buf[offset:], uint32(index))
	return buf
}

// makePartialChunkKey generates the prefix shared by all chunks of a document.
// Format: prefix:hash:
func makePartialChunkKey(hash string) []byte {
	return []byte(chunkPrefix + ":" + hash + ":")
}
