// Package growth predicts derivation sizes without materializing sequences.
// Generation lengths of an L-system are generally exponential in the pass
// count, so projections run in exact 256-bit arithmetic and report overflow
// instead of silently wrapping. This makes pre-flight checks cheap: a caller
// can ask whether an expansion fits a budget before paying for it.
package growth

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-lsystem/lsystem"
)

// ErrOverflow is returned when a projected count exceeds 256 bits.
var ErrOverflow = errors.New("growth overflow: projected count exceeds 256 bits")

// Projection holds per-symbol counts and the total length after a number of
// generations.
type Projection struct {
	Generations int
	Counts      map[lsystem.Symbol]*uint256.Int
	Length      *uint256.Int
}

// Project computes per-symbol counts after the given number of generations.
// Counts evolve by the production rules alone: each occurrence of a symbol
// contributes one occurrence of every symbol in its replacement to the next
// generation. The cost is linear in iterations and the rule sizes, regardless
// of how long the actual sequence would be.
func Project(g *lsystem.Grammar, iterations int) (*Projection, error) {
	if iterations < 0 {
		return nil, fmt.Errorf("%w: iterations must be non-negative, got %d", lsystem.ErrInvalidArgument, iterations)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	counts := make(map[lsystem.Symbol]*uint256.Int)
	one := uint256.NewInt(1)
	for _, s := range g.Start {
		c, ok := counts[s]
		if !ok {
			c = uint256.NewInt(0)
			counts[s] = c
		}
		if _, overflow := c.AddOverflow(c, one); overflow {
			return nil, ErrOverflow
		}
	}

	for i := 0; i < iterations; i++ {
		next := make(map[lsystem.Symbol]*uint256.Int, len(counts))
		for s, c := range counts {
			if c.IsZero() {
				continue
			}
			for _, t := range g.Replacement(s) {
				n, ok := next[t]
				if !ok {
					n = uint256.NewInt(0)
					next[t] = n
				}
				if _, overflow := n.AddOverflow(n, c); overflow {
					return nil, ErrOverflow
				}
			}
		}
		counts = next
	}

	length := uint256.NewInt(0)
	for _, c := range counts {
		if _, overflow := length.AddOverflow(length, c); overflow {
			return nil, ErrOverflow
		}
	}

	return &Projection{
		Generations: iterations,
		Counts:      counts,
		Length:      length,
	}, nil
}

// Length returns the projected sequence length after the given number of
// generations.
func Length(g *lsystem.Grammar, iterations int) (*uint256.Int, error) {
	proj, err := Project(g, iterations)
	if err != nil {
		return nil, err
	}
	return proj.Length, nil
}

// FitsLimit reports whether the projected length after the given number of
// generations is at most limit. Overflow counts as not fitting.
func FitsLimit(g *lsystem.Grammar, iterations int, limit uint64) (bool, error) {
	length, err := Length(g, iterations)
	if err != nil {
		if errors.Is(err, ErrOverflow) {
			return false, nil
		}
		return false, err
	}
	if !length.IsUint64() {
		return false, nil
	}
	return length.Uint64() <= limit, nil
}
