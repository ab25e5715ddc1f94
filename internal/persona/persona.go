// Package persona produces the confused-human replies sent back to a scammer
// to keep them talking.
//
// Every reply is built from one phrase of each pool (confusion, action,
// outcome, filler), drawn independently. The persona is stateless: nothing
// about earlier replies influences the next one. Before a reply is returned
// the caller is held for a randomised think time so responses do not arrive
// faster than a person could type them.
package persona

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/snare/internal/rules"
)

const (
	DefaultMinThink = 1500 * time.Millisecond
	DefaultMaxThink = 3500 * time.Millisecond
)

// Rand is the randomness the generator draws from. *rand.Rand satisfies it;
// implementations must be safe for concurrent use when the generator is
// shared between requests.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// Sleeper suspends the calling goroutine for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

type Generator struct {
	pools    rules.Persona
	rng      Rand
	sleep    Sleeper
	minThink time.Duration
	maxThink time.Duration
}

type Option func(*Generator)

// WithRand replaces the default process-wide random source.
func WithRand(r Rand) Option {
	return func(g *Generator) { g.rng = r }
}

// WithSleeper replaces the real-time wait, e.g. with a no-op in tests.
func WithSleeper(s Sleeper) Option {
	return func(g *Generator) { g.sleep = s }
}

// WithThinkTime sets the range the think time is drawn from. A max below min
// is raised to min.
func WithThinkTime(lo, hi time.Duration) Option {
	return func(g *Generator) {
		if lo < 0 {
			lo = 0
		}
		if hi < lo {
			hi = lo
		}
		g.minThink, g.maxThink = lo, hi
	}
}

func New(pools rules.Persona, opts ...Option) *Generator {
	g := &Generator{
		pools:    pools,
		rng:      globalRand{},
		sleep:    SleepContext,
		minThink: DefaultMinThink,
		maxThink: DefaultMaxThink,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Reply composes a reply and waits out the think time before returning it.
// A cancelled ctx ends the wait early; the reply is returned regardless.
func (g *Generator) Reply(ctx context.Context) string {
	text := g.Compose()
	_ = g.sleep(ctx, g.ThinkTime())
	return text
}

// Compose draws one phrase from each pool and joins them with single spaces.
// An empty filler leaves no trailing space.
func (g *Generator) Compose() string {
	parts := []string{
		g.pick(g.pools.Confusion),
		g.pick(g.pools.Actions),
		g.pick(g.pools.Outcomes),
		g.pick(g.pools.Fillers),
	}
	return strings.TrimRight(strings.Join(parts, " "), " \t\n")
}

// ThinkTime draws a duration uniformly from [min, max).
func (g *Generator) ThinkTime() time.Duration {
	span := g.maxThink - g.minThink
	if span <= 0 {
		return g.minThink
	}
	return g.minThink + time.Duration(g.rng.Float64()*float64(span))
}

func (g *Generator) pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[g.rng.IntN(len(pool))]
}

// SleepContext waits for d, returning early with ctx.Err() if ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// globalRand uses the top-level math/rand/v2 functions, which are safe for
// concurrent use.
type globalRand struct{}

func (globalRand) IntN(n int) int   { return rand.IntN(n) }
func (globalRand) Float64() float64 { return rand.Float64() }
