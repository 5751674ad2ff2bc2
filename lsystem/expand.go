package lsystem

import "fmt"

// Options controls expansion guard rails.
type Options struct {
	// MaxLength caps the length of any generation, including the final one.
	// Zero means unlimited. Expansion fails with ErrLimitExceeded rather
	// than returning a truncated sequence.
	MaxLength int
}

// DefaultOptions returns options with no limits.
func DefaultOptions() *Options {
	return &Options{}
}

// Expand returns the sequence produced by applying the grammar's rules to the
// axiom for the given number of generations.
//
// Zero iterations is a valid base case and returns a copy of the axiom.
// A negative count fails with ErrInvalidArgument; a grammar that does not
// satisfy its invariants fails with ErrInvalidGrammar. The grammar is never
// mutated and the result is a fresh slice owned by the caller.
//
// Growth is generally exponential in iterations for non-trivial grammars.
// Callers exposed to untrusted iteration counts should use ExpandWithOptions
// with a MaxLength ceiling instead.
func Expand(g *Grammar, iterations int) ([]Symbol, error) {
	return ExpandWithOptions(g, iterations, nil)
}

// ExpandWithOptions is Expand with guard rails. A nil opts is equivalent to
// DefaultOptions.
func ExpandWithOptions(g *Grammar, iterations int, opts *Options) ([]Symbol, error) {
	if iterations < 0 {
		return nil, fmt.Errorf("%w: iterations must be non-negative, got %d", ErrInvalidArgument, iterations)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = DefaultOptions()
	}

	seq := g.Axiom()
	if opts.MaxLength > 0 && len(seq) > opts.MaxLength {
		return nil, fmt.Errorf("%w: axiom length %d exceeds limit %d", ErrLimitExceeded, len(seq), opts.MaxLength)
	}

	// Iterative accumulation instead of recursion on the generation count,
	// so large iteration counts never grow the call stack.
	for i := 0; i < iterations; i++ {
		next := g.Step(seq)
		if opts.MaxLength > 0 && len(next) > opts.MaxLength {
			return nil, fmt.Errorf("%w: generation %d length %d exceeds limit %d",
				ErrLimitExceeded, i+1, len(next), opts.MaxLength)
		}
		seq = next
	}

	return seq, nil
}

// Step applies one simultaneous rewrite pass to seq and returns the next
// generation. Every symbol is rewritten against the same snapshot of seq,
// never a partially rewritten one; replacements are concatenated in the
// original positional order.
//
// Step assumes a valid grammar and does not validate. It is the compositional
// building block of Expand: expanding m+n generations equals expanding m and
// then stepping n times.
func (g *Grammar) Step(seq []Symbol) []Symbol {
	next := make([]Symbol, 0, len(seq))
	for _, s := range seq {
		next = append(next, g.Replacement(s)...)
	}
	return next
}
