package project

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
)

// Digest is a SHA-256 sum. source.File.Hash and config.Loaded.Digest
// convert to it directly.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

func (d Digest) IsZero() bool { return d == Digest{} }

// Key accumulates the parts of a cache key. Strings are length-prefixed,
// so ("ab", "c") and ("a", "bc") give different keys.
type Key struct{ h hash.Hash }

func NewKey() *Key { return &Key{h: sha256.New()} }

func (k *Key) Digest(d Digest) *Key {
	_, _ = k.h.Write(d[:])
	return k
}

func (k *Key) String(s string) *Key {
	var n [binary.MaxVarintLen64]byte
	_, _ = k.h.Write(n[:binary.PutUvarint(n[:], uint64(len(s)))])
	_, _ = k.h.Write([]byte(s))
	return k
}

func (k *Key) Sum() Digest {
	var out Digest
	k.h.Sum(out[:0])
	return out
}
