package prep

import (
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

// Clock abstracts wall-clock access so optimizer timeouts (spec §5)
// are testable without sleeping; time.Now satisfies it trivially.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Context bundles every ambient collaborator a builder or optimizer
// needs: the single deterministic RNG (spec §5 "all random draws use a
// single deterministic global RNG state"), the Progress hook, the
// MemoryProbe, a Clock, and a structured logger. It is created once
// per top-level call (MultiTableFeatureConstructor.Construct or
// DataGridOptimizer.Optimize) and passed down explicitly — nothing in
// this module reads package-level mutable state, per SPEC_FULL §10.2
// and the "no global singleton" design note (spec §9).
type Context struct {
	RNG         *rand.Rand
	Progress    Progress
	MemoryProbe MemoryProbe
	Clock       Clock
	Log         *logrus.Entry
}

// NewContext builds a Context seeded deterministically from seed,
// using noop defaults for any nil collaborator so callers that don't
// care about progress/memory/logging can omit them.
func NewContext(seed int64, progress Progress, mem MemoryProbe, log *logrus.Entry) *Context {
	if progress == nil {
		progress = NoopProgress{}
	}
	if mem == nil {
		mem = UnboundedMemoryProbe{}
	}
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	return &Context{
		RNG:         rand.New(rand.NewSource(seed)),
		Progress:    progress,
		MemoryProbe: mem,
		Clock:       realClock{},
		Log:         log,
	}
}

// Snapshot captures the RNG state so a caller can save/restore it
// across a top-level call, per spec §5 ("the optimizer saves/restores
// [RNG state] across top-level calls to guarantee reproducibility").
// math/rand's *Rand doesn't expose its internal state directly, so the
// snapshot instead records the seed used to construct it; re-deriving
// the same seed on Restore reproduces the same draw sequence provided
// no draws happened between NewContext and Snapshot.
type Snapshot struct {
	seed int64
}

// SaveSeed returns a Snapshot for the seed the context's RNG was built
// from. Callers that need exact resumption should keep the seed around
// themselves; this helper exists for the common top-level save/restore
// pattern described in spec §5.
func SaveSeed(seed int64) Snapshot { return Snapshot{seed: seed} }

// Restore rebuilds ctx.RNG from the snapshot's seed.
func (ctx *Context) Restore(s Snapshot) {
	ctx.RNG = rand.New(rand.NewSource(s.seed))
}

// NoopProgress never reports interruption and ignores every call; it
// is the default when a caller doesn't supply a real Progress.
type NoopProgress struct{}

func (NoopProgress) BeginTask(string)            {}
func (NoopProgress) EndTask()                    {}
func (NoopProgress) DisplayProgression(int)      {}
func (NoopProgress) IsInterruptionRequested() bool { return false }

// UnboundedMemoryProbe reports an effectively unlimited memory budget;
// it is the default when a caller doesn't supply a real MemoryProbe.
type UnboundedMemoryProbe struct{}

func (UnboundedMemoryProbe) RemainingAvailable() uint64 { return 1 << 62 }
