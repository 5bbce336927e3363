// Package attack implements the Prime+Probe eviction-set discovery driver:
// the external collaborator that exercises the cache hierarchy's hit/miss
// side channel to find a minimal set of addresses that evict a target line
// from the randomized-index LLC.
//
// The protocol here exercises the hierarchy from outside; it does not
// itself belong to the cache hierarchy's public API.
package attack

import (
	"log/slog"
	"math/rand"

	"github.com/rs/xid"

	"github.com/sarchlab/ceaser/controller"
)

// Accessor is the capability the driver needs from whatever it attacks.
// controller.Controller satisfies it.
type Accessor interface {
	Access(addr uint64) int
}

// Config parameterizes one run of the protocol.
type Config struct {
	// CandidateSeed seeds uniform sampling of the initial candidate pool.
	CandidateSeed int64
	// TargetLine is the victim's line address (not word-shifted).
	TargetLine uint64
}

// Result reports what one protocol run found.
type Result struct {
	RunID       string
	Candidates  int
	Pruned      int
	EvictionSet []uint64
	Verified    bool
}

// ExitCode maps Verified onto the documented driver exit codes: 0 on
// success, 1 on verification failure.
func (r Result) ExitCode() int {
	if r.Verified {
		return 0
	}
	return 1
}

// Driver runs the eviction-set discovery protocol against an Accessor.
type Driver struct {
	target Accessor
	logger *slog.Logger
	runID  string
}

// Option configures a Driver at construction time.
type Option func(*Driver)

// WithLogger attaches a structured logger for phase-level Info records.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// New builds a Driver against target.
func New(target Accessor, opts ...Option) *Driver {
	d := &Driver{
		target: target,
		logger: slog.Default(),
		runID:  xid.New().String(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RunID identifies this driver's invocation across log records.
func (d *Driver) RunID() string { return d.runID }

// Run executes the full prime/prune/refill/install/probe/verify protocol.
func (d *Driver) Run(cfg Config) Result {
	candidates := generateCandidates(cfg.CandidateSeed)
	d.logPhase("generate", len(candidates))

	d.prime(candidates)
	d.logPhase("prime", len(candidates))

	pruned := d.prune(candidates)
	d.logPhase("prune", len(pruned))

	d.refill(pruned)
	d.logPhase("refill", len(pruned))

	target := cfg.TargetLine << 6
	d.target.Access(target)
	d.logPhase("install", 1)

	evictionSet := d.probe(pruned)
	d.logPhase("probe", len(evictionSet))

	verified := d.verify(target, evictionSet)
	d.logPhase("verify", len(evictionSet))

	return Result{
		RunID:       d.runID,
		Candidates:  len(candidates),
		Pruned:      len(pruned),
		EvictionSet: evictionSet,
		Verified:    verified,
	}
}

func (d *Driver) logPhase(phase string, count int) {
	if d.logger == nil {
		return
	}
	d.logger.Info("eviction-set discovery phase", "phase", phase, "count", count, "run_id", d.runID)
}

// generateCandidates samples 2*LLCSets*LLCWays word-aligned addresses
// uniformly (with replacement) from line addresses in [1, 2^40).
func generateCandidates(seed int64) []uint64 {
	n := 2 * controller.LLCSets * controller.LLCWays
	rng := rand.New(rand.NewSource(seed))

	const span = (uint64(1) << 40) - 1 // line addresses [1, 2^40) has this many values
	addrs := make([]uint64, n)
	for i := range addrs {
		line := uint64(rng.Int63n(int64(span))) + 1
		addrs[i] = line << 6
	}
	return addrs
}

// prime accesses every candidate once, in order.
func (d *Driver) prime(addrs []uint64) {
	for _, a := range addrs {
		d.target.Access(a)
	}
}

// prune accesses candidates in reverse order, keeping (in original order)
// those still resident somewhere in the hierarchy.
func (d *Driver) prune(addrs []uint64) []uint64 {
	survives := make([]bool, len(addrs))
	for i := len(addrs) - 1; i >= 0; i-- {
		if d.target.Access(addrs[i]) < 3 {
			survives[i] = true
		}
	}

	pruned := make([]uint64, 0, len(addrs))
	for i, a := range addrs {
		if survives[i] {
			pruned = append(pruned, a)
		}
	}
	return pruned
}

// refill re-accesses the pruned list in its original order.
func (d *Driver) refill(addrs []uint64) {
	for _, a := range addrs {
		d.target.Access(a)
	}
}

// probe re-accesses the pruned list, collecting every address that now
// misses all the way to main memory: those collide with the target's LLC
// set under the current bijection.
func (d *Driver) probe(addrs []uint64) []uint64 {
	var evictionSet []uint64
	for _, a := range addrs {
		if d.target.Access(a) == 3 {
			evictionSet = append(evictionSet, a)
		}
	}
	return evictionSet
}

// verify re-installs target, replays the discovered eviction set, and
// confirms both that target now misses all the way to memory and that
// every member of the eviction set, accessed again in series, itself
// misses all the way to memory.
func (d *Driver) verify(target uint64, evictionSet []uint64) bool {
	d.target.Access(target)
	for _, a := range evictionSet {
		d.target.Access(a)
	}
	if d.target.Access(target) != 3 {
		return false
	}

	for _, a := range evictionSet {
		if d.target.Access(a) != 3 {
			return false
		}
	}
	return true
}
