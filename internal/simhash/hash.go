package simhash

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"golang.org/x/crypto/blake2b"
)

// Hasher maps a shingle to a 64-bit value.
type Hasher func([]byte) uint64

// Hasher names accepted by HasherByName.
const (
	HashFNV64a  = "fnv64a"
	HashBLAKE2b = "blake2b"
)

// FNV64a hashes with 64-bit FNV-1a. It is the default: fast, well defined and
// good enough for bit voting.
func FNV64a(b []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(b) //nolint:errcheck // hash.Hash never returns an error
	return h.Sum64()
}

// BLAKE2b hashes with BLAKE2b-256 and keeps the first 8 bytes.
// It resists crafted collisions at a performance cost.
func BLAKE2b(b []byte) uint64 {
	sum := blake2b.Sum256(b)
	return binary.BigEndian.Uint64(sum[:8])
}

// HasherByName returns the hasher registered under name.
// The empty name selects FNV64a.
func HasherByName(name string) (Hasher, error) {
	switch name {
	case "", HashFNV64a:
		return FNV64a, nil
	case HashBLAKE2b:
		return BLAKE2b, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHasher, name)
	}
}
