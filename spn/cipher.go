// Package spn implements the keyed, invertible 40-bit substitution-
// permutation network used to randomize the last-level cache's index.
//
// No Mersenne-Twister-compatible package is available anywhere in the
// dependency pack this module draws from, and bit-for-bit compatibility
// with any particular reference trace is not a goal of this module (see
// DESIGN.md); math/rand's default generator, seeded deterministically, is
// used instead. Only the bijection invariant - decrypt(encrypt(x)) == x -
// is load-bearing, and that invariant is checked at construction time.
package spn

import (
	"math/rand"

	"github.com/lpabon/godbc"
)

const (
	// Bits is the width, in bits, of the line addresses the cipher maps.
	Bits = 40
	// Rounds is the fixed round count of the network.
	Rounds = 4
	// byteGroups is Bits/8: the number of S-boxes per round.
	byteGroups = Bits / 8

	mask40 = (uint64(1) << Bits) - 1
	// keyMask truncates a round key to its low 20 bits, per the
	// construction contract: keys are retained but not mixed into the
	// round function.
	keyMask = (uint64(1) << 20) - 1
)

type sbox [256]byte
type pbox [Bits]int

// Cipher is a keyed, invertible bijection on [0, 2^40).
type Cipher struct {
	sub     [Rounds][byteGroups]sbox
	subInv  [Rounds][byteGroups]sbox
	perm    [Rounds]pbox
	permInv [Rounds]pbox

	// keys holds the four 20-bit round keys. They are part of the
	// construction contract but, matching the reference behavior, are
	// never consumed by Encrypt or Decrypt.
	keys [Rounds]uint64
}

// New constructs a Cipher from a construction seed and a four-element key
// vector. Keys are truncated to their low 20 bits and stored, not mixed
// into the round function (see the keys field and DESIGN.md).
func New(seed uint64, keys [Rounds]uint64) *Cipher {
	c := &Cipher{}
	rng := rand.New(rand.NewSource(int64(seed)))

	for i := 0; i < Rounds; i++ {
		c.keys[i] = keys[i] & keyMask

		for j := 0; j < byteGroups; j++ {
			perm := shuffledRange(rng, 256)
			for v, p := range perm {
				c.sub[i][j][v] = byte(p)
				c.subInv[i][j][byte(p)] = byte(v)
			}
		}

		pp := shuffledRange(rng, Bits)
		for v, p := range pp {
			c.perm[i][v] = p
			c.permInv[i][p] = v
		}
	}

	c.selfTest(rng)
	return c
}

// shuffledRange returns a Fisher-Yates shuffle of {0, ..., n-1}.
func shuffledRange(rng *rand.Rand, n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}
	return p
}

// selfTest verifies decrypt(encrypt(x)) == x over a sample of values drawn
// from the same construction stream, per the fatal "bijection violation"
// error class.
func (c *Cipher) selfTest(rng *rand.Rand) {
	const samples = 256
	for i := 0; i < samples; i++ {
		x := uint64(rng.Int63()) & mask40
		godbc.Ensure(c.Decrypt(c.Encrypt(x)) == x)
	}
	godbc.Ensure(c.Decrypt(c.Encrypt(0)) == 0)
	godbc.Ensure(c.Decrypt(c.Encrypt(mask40)) == mask40)
}

// Encrypt maps a 40-bit line address to its ciphertext index.
func (c *Cipher) Encrypt(x uint64) uint64 {
	x &= mask40
	for i := 0; i < Rounds; i++ {
		x = substitute(x, c.sub[i])
		x = permute(x, c.perm[i])
	}
	return x
}

// Decrypt is the inverse of Encrypt.
func (c *Cipher) Decrypt(x uint64) uint64 {
	x &= mask40
	for i := Rounds - 1; i >= 0; i-- {
		x = permute(x, c.permInv[i])
		x = substitute(x, c.subInv[i])
	}
	return x
}

func substitute(x uint64, boxes [byteGroups]sbox) uint64 {
	var out uint64
	for j := 0; j < byteGroups; j++ {
		b := byte(x >> uint(8*j))
		out |= uint64(boxes[j][b]) << uint(8*j)
	}
	return out
}

func permute(x uint64, p pbox) uint64 {
	var out uint64
	for j := 0; j < Bits; j++ {
		bit := (x >> uint(j)) & 1
		out |= bit << uint(p[j])
	}
	return out
}
