// Package level implements the generic inclusive cache level: set-associative
// lookup, true-LRU replacement and insertion, and the inclusive
// back-invalidation protocol shared by every level of the hierarchy.
//
// The randomized-index LLC (package llc) composes a Generic level rather
// than subclassing it: it translates addresses through its cipher and
// delegates everything else here.
package level

import (
	"log/slog"

	"github.com/lpabon/godbc"

	"github.com/sarchlab/ceaser/storage"
)

// Accessor is the capability a level exposes toward the core: resolve an
// address, recursing into the next level (further from the core) on miss.
type Accessor interface {
	Access(addr uint64) int
}

// Evictor is the capability a level exposes toward the levels above it:
// invalidate a line that was just evicted one level closer to memory.
type Evictor interface {
	Evict(line uint64)
}

// Generic is a set-associative cache level with true-LRU replacement.
type Generic struct {
	name string
	arr  *storage.Array

	next Accessor  // next_level, toward memory; nil at the bottom
	prev []Evictor // prev_level(s), toward the core

	logger *slog.Logger
}

// Option configures a Generic level at construction time.
type Option func(*Generic)

// WithLogger attaches a structured logger used for per-access debug records.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generic) { g.logger = l }
}

// New builds an empty cache level of shape 2^bitSets x 2^bitWays. name is
// used only for log records (e.g. "L1D").
func New(bitSets, bitWays int, name string, opts ...Option) *Generic {
	g := &Generic{
		name:   name,
		arr:    storage.New(bitSets, bitWays),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SetNext wires the level that a miss here recurses into.
func (g *Generic) SetNext(n Accessor) { g.next = n }

// AddPrev registers a level that must be back-invalidated when this level
// evicts a line.
func (g *Generic) AddPrev(p Evictor) { g.prev = append(g.prev, p) }

func (g *Generic) decompose(addr uint64) (set int, tag uint64) {
	line := addr >> 6
	mask := uint64(g.arr.Sets() - 1)
	set = int(line & mask)
	tag = line >> uint(g.arr.BitSets)
	return
}

// Access resolves addr, returning the miss depth: 0 on a hit at this level,
// otherwise 1 plus whatever the next level reports (or just 1 if there is
// no next level).
func (g *Generic) Access(addr uint64) int {
	set, tag := g.decompose(addr)

	if way, ok := g.findTag(set, tag); ok {
		g.promote(set, way)
		g.logAccess(addr, 0)
		return 0
	}

	depth := 1
	if g.next != nil {
		depth = 1 + g.next.Access(addr)
	}
	g.insert(set, tag)
	g.logAccess(addr, depth)
	return depth
}

func (g *Generic) logAccess(addr uint64, depth int) {
	if g.logger == nil {
		return
	}
	g.logger.Debug("cache access", "level", g.name, "addr", addr, "depth", depth)
}

// findTag returns the way within set holding tag, if any.
func (g *Generic) findTag(set int, tag uint64) (way int, ok bool) {
	for w := 0; w < g.arr.Ways(); w++ {
		if g.arr.Valid(set, w) && g.arr.Tag(set, w) == tag {
			return w, true
		}
	}
	return 0, false
}

// promote re-densifies ages in set so that way becomes age 0 (MRU),
// preserving the dense-permutation invariant.
func (g *Generic) promote(set, way int) {
	oldAge := g.arr.Age(set, way)
	if oldAge == 0 {
		return
	}
	for w := 0; w < g.arr.Ways(); w++ {
		if w == way || !g.arr.Valid(set, w) {
			continue
		}
		if a := g.arr.Age(set, w); a < oldAge {
			g.arr.SetAge(set, w, a+1)
		}
	}
	g.arr.SetAge(set, way, 0)
}

// insert places tag into set, evicting the LRU victim first if the set is
// full.
func (g *Generic) insert(set int, tag uint64) {
	way, ok := g.findInvalid(set)
	if !ok {
		way = g.findLRU(set)
		g.evictSlot(set, way)
	}

	for w := 0; w < g.arr.Ways(); w++ {
		if w != way && g.arr.Valid(set, w) {
			g.arr.SetAge(set, w, g.arr.Age(set, w)+1)
		}
	}
	g.arr.Fill(set, way, tag, 0)
}

func (g *Generic) findInvalid(set int) (way int, ok bool) {
	for w := 0; w < g.arr.Ways(); w++ {
		if !g.arr.Valid(set, w) {
			return w, true
		}
	}
	return 0, false
}

// findLRU returns the unique valid way whose age is Ways()-1.
func (g *Generic) findLRU(set int) int {
	lruAge := g.arr.Ways() - 1
	for w := 0; w < g.arr.Ways(); w++ {
		if g.arr.Valid(set, w) && g.arr.Age(set, w) == lruAge {
			return w
		}
	}
	// Unreachable under the age-permutation invariant: insert() only calls
	// findLRU when findInvalid failed, i.e. every way is valid, so some way
	// must carry the maximum age.
	godbc.Require(false)
	return 0
}

// Evict invalidates line in this level, then back-invalidates the same
// line in every prev level. A line not present here is silently ignored.
func (g *Generic) Evict(line uint64) {
	set := int(line & uint64(g.arr.Sets()-1))
	tag := line >> uint(g.arr.BitSets)

	way, ok := g.findTag(set, tag)
	if !ok {
		return
	}
	g.evictSlot(set, way)
}

// evictSlot invalidates (set, way), repairs the age invariant, and
// back-propagates to every prev level using the line address this level
// itself stores (ciphertext inside the LLC; llc.decryptEvictor translates it).
func (g *Generic) evictSlot(set, way int) {
	oldAge := g.arr.Age(set, way)
	tag := g.arr.Tag(set, way)
	line := (tag << uint(g.arr.BitSets)) | uint64(set)

	g.arr.Clear(set, way)
	for w := 0; w < g.arr.Ways(); w++ {
		if g.arr.Valid(set, w) {
			if a := g.arr.Age(set, w); a > oldAge {
				g.arr.SetAge(set, w, a-1)
			}
		}
	}

	for _, p := range g.prev {
		p.Evict(line)
	}
}
