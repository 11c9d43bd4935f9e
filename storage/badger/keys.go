package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/beanvault/core"
)

// Key prefixes for different data types
const (
	beanPrefix        = "bean"
	beanCreatedPrefix = "beanc"
	beanUpdatedPrefix = "beanu"
	chatterPrefix     = "chat"
	chatterURLPrefix  = "chaturl"
	chatterIDSeq      = "chatseq"
	publisherPrefix   = "pub"
	aggregatePrefix   = "aggr"
	edgePrefix        = "cledge"
	refVectorPrefix   = "refv"
)

// makeBeanKey generates a key for a bean by ID.
func makeBeanKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", beanPrefix, id))
}

// makeTimeIndexKey generates a composite key for a time-ordered index.
// Format: prefix:timestamp:id
func makeTimeIndexKey(prefix string, timestamp time.Time, id core.ID) []byte {
	prefixBytes := []byte(prefix + ":")
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for timestamp + 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialTimeIndexKey generates a partial key for time range scans.
// Format: prefix:timestamp
func makePartialTimeIndexKey(prefix string, timestamp time.Time) []byte {
	prefixBytes := []byte(prefix + ":")
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}

// makeBeanCreatedKey generates the created-index key for a bean.
func makeBeanCreatedKey(created time.Time, id core.ID) []byte {
	return makeTimeIndexKey(beanCreatedPrefix, created, id)
}

// makeBeanUpdatedKey generates the updated-index key for a bean.
func makeBeanUpdatedKey(updated time.Time, id core.ID) []byte {
	return makeTimeIndexKey(beanUpdatedPrefix, updated, id)
}

// makeChatterKey generates a key for a chatter snapshot.
// Format: prefix:urlID:seq, so all snapshots for a bean are adjacent and
// ordered by append sequence.
func makeChatterKey(urlID core.ID, seq uint64) []byte {
	prefixBytes := []byte(chatterPrefix + ":")
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(urlID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makePartialChatterKey generates a partial key for scanning one bean's
// snapshots.
func makePartialChatterKey(urlID core.ID) []byte {
	prefixBytes := []byte(chatterPrefix + ":")
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(urlID))
	return buf
}

// chatterKeyURLID extracts the url ID from a chatter snapshot key.
func chatterKeyURLID(key []byte) core.ID {
	base := len(chatterPrefix) + 1
	return core.ID(binary.BigEndian.Uint64(key[base:]))
}

// makeChatterURLKey generates the distinct-URL marker key for a bean that
// has chatter.
func makeChatterURLKey(urlID core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chatterURLPrefix, urlID))
}

// makePublisherKey generates a key for a publisher by ID.
func makePublisherKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", publisherPrefix, id))
}

// makeAggregateKey generates a key for a materialized chatter aggregate.
func makeAggregateKey(urlID core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", aggregatePrefix, urlID))
}

// makeEdgeKey generates a composite key for a cluster edge.
// Format: prefix:fromID:toID
func makeEdgeKey(from, to core.ID) []byte {
	prefixBytes := []byte(edgePrefix + ":")
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(from))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(to))
	return buf
}

// makePartialEdgeKey generates a partial key for scanning one bean's edges.
func makePartialEdgeKey(from core.ID) []byte {
	prefixBytes := []byte(edgePrefix + ":")
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(from))
	return buf
}

// edgeKeyIDs extracts the from/to IDs from an edge key.
func edgeKeyIDs(key []byte) (from, to core.ID) {
	base := len(edgePrefix) + 1
	from = core.ID(binary.BigEndian.Uint64(key[base:]))
	to = core.ID(binary.BigEndian.Uint64(key[base+8:]))
	return
}

// makeRefVectorKey generates a key for a catalog anchor.
// Format: prefix:set:ordinal, so a prefix scan returns seed order.
func makeRefVectorKey(set core.RefSet, ordinal uint32) []byte {
	prefixBytes := []byte(refVectorPrefix + ":" + string(set) + ":")
	totalSize := len(prefixBytes) + 4
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint32(buf[offset:], ordinal)
	return buf
}

// makePartialRefVectorKey generates the scan prefix for one catalog.
func makePartialRefVectorKey(set core.RefSet) []byte {
	return []byte(refVectorPrefix + ":" + string(set) + ":")
}
