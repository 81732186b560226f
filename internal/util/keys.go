package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// MaxRawKey is the longest user key embedded verbatim in a storage key.
// Longer keys are replaced by a sha256 prefix so remote key sizes stay bounded.
const MaxRawKey = 128

// BufferPrefix returns "gb:<ns>:<buffer>:", the keyspace owned by one buffer.
func BufferPrefix(ns string, buffer int) string {
	var b strings.Builder
	b.Grow(len(ns) + 8)
	b.WriteString("gb:")
	b.WriteString(ns)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(buffer))
	b.WriteByte(':')
	return b.String()
}

// StorageKey namespaces key under prefix (see BufferPrefix).
func StorageKey(prefix, key string) string {
	if len(key) <= MaxRawKey {
		return prefix + key
	}
	sum := sha256.Sum256([]byte(key))
	return prefix + "h:" + hex.EncodeToString(sum[:16])
}
