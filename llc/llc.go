// Package llc implements the randomized-index last-level cache: a generic
// cache level composed with a keyed bijection (package spn) that translates
// line addresses to ciphertext indices before the inner level ever sees
// them.
package llc

import (
	"github.com/sarchlab/ceaser/level"
	"github.com/sarchlab/ceaser/spn"
)

// Level is a randomized-index cache level: the outermost caller always
// deals in plaintext line addresses, while the wrapped generic level's own
// storage is indexed entirely by ciphertext.
type Level struct {
	inner  *level.Generic
	cipher *spn.Cipher
}

// decryptEvictor adapts a plaintext Evictor so it can sit in the inner
// level's prev list, which only ever carries ciphertext line addresses.
// This is the one place in the system where the phi-inverse translation
// happens; everywhere else evict arguments pass through unchanged.
type decryptEvictor struct {
	cipher *spn.Cipher
	upper  level.Evictor
}

func (d decryptEvictor) Evict(cipherLine uint64) {
	d.upper.Evict(d.cipher.Decrypt(cipherLine))
}

// New builds a randomized LLC of shape 2^bitSets x 2^bitWays, keyed by
// cipher, whose evictions back-propagate (in plaintext) to upper.
func New(bitSets, bitWays int, cipher *spn.Cipher, upper level.Evictor, opts ...level.Option) *Level {
	inner := level.New(bitSets, bitWays, "LLC", opts...)
	inner.AddPrev(decryptEvictor{cipher: cipher, upper: upper})

	return &Level{inner: inner, cipher: cipher}
}

// SetNext wires the level a miss here recurses into (normally nil: the
// LLC is the bottom of this hierarchy and a miss here means main memory).
func (l *Level) SetNext(n level.Accessor) { l.inner.SetNext(n) }

// Access encrypts addr's line component before delegating to the inner
// generic level, then returns the unchanged miss depth.
func (l *Level) Access(addr uint64) int {
	line := addr >> 6
	word := addr & 0x3F
	cipherAddr := (l.cipher.Encrypt(line) << 6) | word
	return l.inner.Access(cipherAddr)
}
