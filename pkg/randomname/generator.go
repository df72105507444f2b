package randomname

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
)

// DefaultAttempts bounds how many candidates Generate tries.
const DefaultAttempts = 100

// ErrExhausted is returned when every candidate was rejected.
var ErrExhausted = errors.New("randomname: no acceptable name found")

// CheckFunc reports whether a candidate is acceptable, typically by checking
// that no user already has it.
type CheckFunc func(ctx context.Context, name string) (bool, error)

// Generator produces names in the form "adjective_noun_NNN".
// It is safe for concurrent use.
type Generator struct {
	mu       sync.Mutex
	rnd      *rand.Rand
	attempts int
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed makes the sequence deterministic.
func WithSeed(seed uint64) Option {
	return func(g *Generator) { g.rnd = rand.New(rand.NewPCG(seed, seed)) }
}

// WithAttempts overrides DefaultAttempts.
func WithAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.attempts = n
		}
	}
}

// New returns a Generator seeded from the runtime source.
func New(opts ...Option) *Generator {
	g := &Generator{
		rnd:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		attempts: DefaultAttempts,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next returns one candidate without any uniqueness check.
func (g *Generator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fmt.Sprintf("%s_%s_%03d",
		adjectives[g.rnd.IntN(len(adjectives))],
		nouns[g.rnd.IntN(len(nouns))],
		g.rnd.IntN(1000),
	)
}

// Generate returns the first candidate accepted by check. A nil check
// accepts anything. Errors from check abort generation.
func (g *Generator) Generate(ctx context.Context, check CheckFunc) (string, error) {
	for range g.attempts {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		name := g.Next()
		if check == nil {
			return name, nil
		}
		ok, err := check(ctx, name)
		if err != nil {
			return "", fmt.Errorf("check name: %w", err)
		}
		if ok {
			return name, nil
		}
	}
	return "", ErrExhausted
}
