// Package random provides seed generation and seeded generators.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// New returns a generator whose sequence is fully determined by seed.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(int64(seed)))
}

// Factory builds a generator. A nil seed asks for a fresh random one.
type Factory func(seed *uint64) (*rand.Rand, error)

// DefaultFactory seeds from crypto/rand unless a seed is given.
func DefaultFactory(seed *uint64) (*rand.Rand, error) {
	if seed != nil {
		return New(*seed), nil
	}
	s, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return New(s), nil
}
