package badger

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Key prefixes for different data types. A chunk key embeds its owning
// document's ID, which materializes the ownership edge: cascading deletes and
// per-document scans are prefix iterations, and a chunk can never exist
// without the document segment of its key.
const (
	documentPrefix = "docrec"
	chunkPrefix    = "chkrec"
	keySeparator   = ":"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(docID string) []byte {
	return []byte(fmt.Sprintf("%s%s%s", documentPrefix, keySeparator, docID))
}

// makeChunkKey generates a composite key for a chunk.
// Format: prefix:docID:index, with the index in BigEndian so lexicographic
// iteration yields chunks in split order.
func makeChunkKey(docID string, index int) []byte {
	prefix := chunkPrefix + keySeparator + docID + keySeparator
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(index))
	return buf
}

// makeChunkScanPrefix generates the prefix covering every chunk of a document.
func makeChunkScanPrefix(docID string) []byte {
	return []byte(chunkPrefix + keySeparator + docID + keySeparator)
}

// allChunksPrefix covers every chunk record in the store.
func allChunksPrefix() []byte {
	return []byte(chunkPrefix + keySeparator)
}

// allDocumentsPrefix covers every document record in the store.
func allDocumentsPrefix() []byte {
	return []byte(documentPrefix + keySeparator)
}

// docIDFromDocumentKey extracts the document ID from a document key.
func docIDFromDocumentKey(key []byte) string {
	return strings.TrimPrefix(string(key), documentPrefix+keySeparator)
}
