// Package wire frames values written to byte-oriented buffer backends so foreign
// or truncated bytes are detected on read instead of being decoded as garbage.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version   byte = 1
	kindValue byte = 1

	headerLen = 4 + 1 + 1 + 8 + 4
)

var (
	ErrCorrupt = errors.New("greenblue: corrupt frame")
	magic4     = [...]byte{'G', 'B', 'L', 'U'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Encode frames payload with the store-local revision rev:
//
//	magic(4) | ver(1) | kind(1=value) | rev(u64 be) | vlen(u32 be) | payload(vlen)
func Encode(rev uint64, payload []byte) []byte {
	out := make([]byte, headerLen+len(payload))
	copy(out, magic4[:])
	out[4] = version
	out[5] = kindValue
	binary.BigEndian.PutUint64(out[6:14], rev)
	binary.BigEndian.PutUint32(out[14:18], uint32(len(payload)))
	copy(out[headerLen:], payload)
	return out
}

// Decode validates a frame and returns its revision and payload.
// payload aliases b. Trailing bytes are rejected.
func Decode(b []byte) (rev uint64, payload []byte, err error) {
	if len(b) < headerLen || !hasMagic(b) || b[4] != version || b[5] != kindValue {
		return 0, nil, ErrCorrupt
	}
	rev = binary.BigEndian.Uint64(b[6:14])
	vlen := uint64(binary.BigEndian.Uint32(b[14:18]))
	if vlen != uint64(len(b)-headerLen) {
		return 0, nil, ErrCorrupt
	}
	return rev, b[headerLen:], nil
}
