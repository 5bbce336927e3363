// Package storage provides the set-associative backing array shared by every
// cache level: a fixed grid of (valid, tag, age) slots indexed by set and
// way. It holds no replacement or hit/miss logic of its own; callers in
// package level decide what the fields mean.
package storage

import "github.com/lpabon/godbc"

// Array is a 2^BitSets x 2^BitWays grid of cache slots.
//
// Age is meaningful only for valid slots, with 0 meaning most-recently-used.
// Package level keeps the ages of valid slots within a set a dense
// permutation of {0, ..., V-1}, where V is the number of valid slots in
// that set; Array itself stores whatever ages it is given.
type Array struct {
	BitSets int
	BitWays int

	valid [][]bool
	tag   [][]uint64
	age   [][]int
}

// New allocates an all-invalid array with 2^bitSets sets of 2^bitWays ways.
func New(bitSets, bitWays int) *Array {
	godbc.Require(bitSets > 0)
	godbc.Require(bitWays > 0)

	sets := 1 << uint(bitSets)
	ways := 1 << uint(bitWays)

	a := &Array{
		BitSets: bitSets,
		BitWays: bitWays,
		valid:   make([][]bool, sets),
		tag:     make([][]uint64, sets),
		age:     make([][]int, sets),
	}
	for s := 0; s < sets; s++ {
		a.valid[s] = make([]bool, ways)
		a.tag[s] = make([]uint64, ways)
		a.age[s] = make([]int, ways)
	}
	return a
}

// Sets returns the number of sets, 2^BitSets.
func (a *Array) Sets() int { return 1 << uint(a.BitSets) }

// Ways returns the associativity, 2^BitWays.
func (a *Array) Ways() int { return 1 << uint(a.BitWays) }

// Valid reports whether slot (set, way) holds a line.
func (a *Array) Valid(set, way int) bool { return a.valid[set][way] }

// Tag returns the tag stored at (set, way). Meaningful only when Valid.
func (a *Array) Tag(set, way int) uint64 { return a.tag[set][way] }

// Age returns the LRU age at (set, way), 0 = MRU. Meaningful only when Valid.
func (a *Array) Age(set, way int) int { return a.age[set][way] }

// SetAge overwrites the age of slot (set, way).
func (a *Array) SetAge(set, way, age int) { a.age[set][way] = age }

// Fill marks slot (set, way) valid with the given tag and age.
func (a *Array) Fill(set, way int, tag uint64, age int) {
	a.valid[set][way] = true
	a.tag[set][way] = tag
	a.age[set][way] = age
}

// Clear marks slot (set, way) invalid. Tag and age become undefined.
func (a *Array) Clear(set, way int) {
	a.valid[set][way] = false
}
