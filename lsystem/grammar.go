// Package lsystem implements core L-system (Lindenmayer system) data structures.
// An L-system is a formal grammar for generating sequences by iteratively
// rewriting symbols, consisting of an alphabet (Variables and Constants),
// an Axiom (the start sequence), and production Rules.
package lsystem

import "fmt"

// Symbol is an atomic token drawn from a grammar's alphabet.
// Symbols are compared by value and never carry state.
type Symbol string

// Grammar represents a complete L-system: the alphabet, the axiom, and the
// production rules. A Grammar is constructed once and never mutated; the
// expander treats it as a read-only value.
type Grammar struct {
	Variables []Symbol            // Rewritable tokens
	Constants []Symbol            // Tokens that always rewrite to themselves
	Start     []Symbol            // The axiom
	Rules     map[Symbol][]Symbol // One-step replacement per variable
}

// NewGrammar creates a grammar from the given alphabet, axiom, and rules.
// The grammar is not validated; call Validate before expanding, or use
// Build().Done() which validates for you.
func NewGrammar(variables, constants, start []Symbol, rules map[Symbol][]Symbol) *Grammar {
	if rules == nil {
		rules = make(map[Symbol][]Symbol)
	}
	return &Grammar{
		Variables: variables,
		Constants: constants,
		Start:     start,
		Rules:     rules,
	}
}

// Symbols returns a set of every symbol in the grammar's alphabet.
func (g *Grammar) Symbols() map[Symbol]bool {
	set := make(map[Symbol]bool, len(g.Variables)+len(g.Constants))
	for _, s := range g.Variables {
		set[s] = true
	}
	for _, s := range g.Constants {
		set[s] = true
	}
	return set
}

// IsVariable reports whether s is a declared variable.
func (g *Grammar) IsVariable(s Symbol) bool {
	for _, v := range g.Variables {
		if v == s {
			return true
		}
	}
	return false
}

// IsConstant reports whether s is a declared constant.
func (g *Grammar) IsConstant(s Symbol) bool {
	for _, c := range g.Constants {
		if c == s {
			return true
		}
	}
	return false
}

// Replacement returns the one-step rewrite for s. Variables without an
// explicit rule and constants both rewrite to themselves: the identity
// production is a deliberate policy, not an omission.
func (g *Grammar) Replacement(s Symbol) []Symbol {
	if body, ok := g.Rules[s]; ok {
		return body
	}
	return []Symbol{s}
}

// Validate checks the grammar's structural invariants:
//   - Variables and Constants are disjoint and free of duplicates
//   - every rule key is a declared variable
//   - every rule body symbol and every axiom symbol belongs to the alphabet
//
// All violations are reported as errors wrapping ErrInvalidGrammar.
func (g *Grammar) Validate() error {
	vars := make(map[Symbol]bool, len(g.Variables))
	for _, s := range g.Variables {
		if vars[s] {
			return fmt.Errorf("%w: duplicate variable %q", ErrInvalidGrammar, s)
		}
		vars[s] = true
	}

	consts := make(map[Symbol]bool, len(g.Constants))
	for _, s := range g.Constants {
		if consts[s] {
			return fmt.Errorf("%w: duplicate constant %q", ErrInvalidGrammar, s)
		}
		if vars[s] {
			return fmt.Errorf("%w: symbol %q is both variable and constant", ErrInvalidGrammar, s)
		}
		consts[s] = true
	}

	for key, body := range g.Rules {
		if !vars[key] {
			return fmt.Errorf("%w: rule key %q is not a declared variable", ErrInvalidGrammar, key)
		}
		for _, s := range body {
			if !vars[s] && !consts[s] {
				return fmt.Errorf("%w: rule for %q produces %q, which is outside the alphabet", ErrInvalidGrammar, key, s)
			}
		}
	}

	for _, s := range g.Start {
		if !vars[s] && !consts[s] {
			return fmt.Errorf("%w: axiom symbol %q is outside the alphabet", ErrInvalidGrammar, s)
		}
	}

	return nil
}

// Axiom returns a fresh copy of the start sequence.
func (g *Grammar) Axiom() []Symbol {
	out := make([]Symbol, len(g.Start))
	copy(out, g.Start)
	return out
}

// Seq converts plain strings to a symbol sequence. Convenience for literals.
func Seq(symbols ...string) []Symbol {
	out := make([]Symbol, len(symbols))
	for i, s := range symbols {
		out[i] = Symbol(s)
	}
	return out
}

// Strings converts a symbol sequence back to plain strings.
func Strings(seq []Symbol) []string {
	out := make([]string, len(seq))
	for i, s := range seq {
		out[i] = string(s)
	}
	return out
}
