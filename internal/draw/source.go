package draw

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// Source is the random source injected into every draw.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// SplitMix64 is a small deterministic PRNG; the same seed always yields the same sequence.
type SplitMix64 struct{ state uint64 }

// NewSource returns a SplitMix64 seeded with seed.
func NewSource(seed uint64) *SplitMix64 { return &SplitMix64{state: seed} }

// NewSourceFromString hashes s into a seed. Empty strings are rejected.
func NewSourceFromString(s string) (*SplitMix64, error) {
	if s == "" {
		return nil, fmt.Errorf("seed text must not be empty")
	}
	h := sha256.Sum256([]byte(s))
	return NewSource(binary.LittleEndian.Uint64(h[:8])), nil
}

// NewRandomSource seeds a SplitMix64 from crypto/rand.
func NewRandomSource() (*SplitMix64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return nil, fmt.Errorf("read random seed: %w", err)
	}
	return NewSource(binary.LittleEndian.Uint64(buf[:])), nil
}

func (s *SplitMix64) next() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// Intn returns a value in [0,n). It returns 0 for n <= 0.
func (s *SplitMix64) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(s.next() % uint64(n))
}

// Float64 returns a float in [0,1).
func (s *SplitMix64) Float64() float64 {
	return float64(s.next()>>11) / (1 << 53)
}
