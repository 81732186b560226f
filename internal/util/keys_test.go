package util

import (
	"strings"
	"testing"
)

func TestBufferPrefixSeparatesBuffers(t *testing.T) {
	p0 := BufferPrefix("users", 0)
	p1 := BufferPrefix("users", 1)
	if p0 != "gb:users:0:" || p1 != "gb:users:1:" {
		t.Fatalf("unexpected prefixes %q %q", p0, p1)
	}
}

func TestStorageKeyShortIsVerbatim(t *testing.T) {
	if got := StorageKey("gb:n:0:", "k1"); got != "gb:n:0:k1" {
		t.Fatalf("got %q", got)
	}
}

func TestStorageKeyLongIsHashedAndStable(t *testing.T) {
	long := strings.Repeat("x", MaxRawKey+1)
	a := StorageKey("gb:n:0:", long)
	b := StorageKey("gb:n:0:", long)
	if a != b {
		t.Fatalf("hash not deterministic: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "gb:n:0:h:") || len(a) != len("gb:n:0:h:")+32 {
		t.Fatalf("unexpected hashed key %q", a)
	}
	if StorageKey("gb:n:0:", long+"y") == a {
		t.Fatalf("distinct keys collided")
	}
}
