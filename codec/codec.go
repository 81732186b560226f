// Package codec serializes buffer values for byte-oriented backends
// (see store.Bytes). In-memory stores keep V as-is and need no codec.
package codec

// Codec encodes/decodes values V to []byte for storage.
// Decode must not retain b: backends may reuse the slice.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode(b []byte) (V, error)
}
