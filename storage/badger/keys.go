package badger

import (
	"encoding/binary"

	"github.com/poiesic/quaerit/core"
)

// Key prefixes for different data types
const (
	documentIndexPrefix = "docidx"
)

// makeIndexKey generates a key for a document index by fingerprint.
// The fingerprint is written in BigEndian order so lexicographic
// iteration visits indexes in fingerprint order.
func makeIndexKey(fingerprint core.Fingerprint) []byte {
	prefix := documentIndexPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(fingerprint))
	return buf
}

// fingerprintFromKey recovers the fingerprint from an index key.
func fingerprintFromKey(key []byte) (core.Fingerprint, bool) {
	prefix := documentIndexPrefix + ":"
	if len(key) != len(prefix)+8 {
		return 0, false
	}
	return core.Fingerprint(binary.BigEndian.Uint64(key[len(prefix):])), true
}
