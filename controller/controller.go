// Package controller wires the fixed three-level inclusive hierarchy -
// L1D -> L2D -> randomized-index LLC - and exposes the single access(addr)
// entry point the rest of the system (and the attacker driver) drives.
package controller

import (
	"log/slog"

	"github.com/lpabon/godbc"

	"github.com/sarchlab/ceaser/level"
	"github.com/sarchlab/ceaser/llc"
	"github.com/sarchlab/ceaser/spn"
)

// Fixed topology, per the reference machine this simulator models.
const (
	l1dBitSets = 8
	l1dBitWays = 3

	l2dBitSets = 10
	l2dBitWays = 4

	// LLCSets and LLCWays describe the LLC's shape; exported because the
	// attacker driver's candidate pool is sized off them directly.
	LLCSets = 1 << 11
	LLCWays = 1 << 5

	llcBitSets = 11
	llcBitWays = 5

	// MaxAddrBits is the width of the physical address space.
	MaxAddrBits = 46
)

// DefaultSeed and DefaultKeys are the fixed LLC construction parameters
// from the external interface contract.
var (
	DefaultSeed = uint64(0)
	DefaultKeys = [4]uint64{100, 200, 300, 400}
)

// Controller owns the three cache levels and is the sole entry point into
// the hierarchy.
type Controller struct {
	l1d *level.Generic
	l2d *level.Generic
	llc *llc.Level

	logger *slog.Logger
}

// Option configures a Controller at construction time.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger attaches a structured logger; every access emits one Debug
// record per level it touches. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New constructs a controller with the fixed L1D/L2D/LLC topology, an LLC
// keyed by seed and keys (each truncated to 20 bits by package spn).
func New(seed uint64, keys [4]uint64, opts ...Option) *Controller {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	l1d := level.New(l1dBitSets, l1dBitWays, "L1D", level.WithLogger(o.logger))
	l2d := level.New(l2dBitSets, l2dBitWays, "L2D", level.WithLogger(o.logger))

	cipher := spn.New(seed, keys)
	llcLevel := llc.New(llcBitSets, llcBitWays, cipher, l2d, level.WithLogger(o.logger))

	l1d.SetNext(l2d)
	l2d.SetNext(llcLevel)
	l2d.AddPrev(l1d)

	return &Controller{l1d: l1d, l2d: l2d, llc: llcLevel, logger: o.logger}
}

// Default constructs a controller with the reference's fixed LLC seed (0)
// and key vector ({100, 200, 300, 400}).
func Default(opts ...Option) *Controller {
	return New(DefaultSeed, DefaultKeys, opts...)
}

// Access resolves a physical address through the hierarchy, returning the
// miss depth: 0 (L1D hit), 1 (L2D hit), 2 (LLC hit), or 3 (main-memory
// miss).
func (c *Controller) Access(addr uint64) int {
	godbc.Require(addr < (uint64(1) << MaxAddrBits))
	return c.l1d.Access(addr)
}
