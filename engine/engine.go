// Package engine provides a harness for stepped L-system derivation.
// It maintains a live derivation in memory that advances generation by
// generation and triggers actions when conditions on the current sequence
// are met, such as a length threshold being crossed.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pflow-xyz/go-lsystem/lsystem"
)

// Condition represents a predicate on the derivation state.
// It should return true when a specific condition is met.
type Condition func(generation int, seq []lsystem.Symbol) bool

// Action represents an action to be triggered when a condition is met.
// It receives a copy of the current state and can trigger external effects.
type Action func(generation int, seq []lsystem.Symbol) error

// Rule pairs a condition with an action to be triggered.
type Rule struct {
	Name      string
	Condition Condition
	Action    Action
	Enabled   bool
}

// Engine maintains a live derivation with generation stepping and
// condition-based action triggers.
type Engine struct {
	grammar    *lsystem.Grammar
	seq        []lsystem.Symbol
	generation int
	maxLength  int
	rules      []*Rule
	mu         sync.RWMutex
	running    bool
	cancel     context.CancelFunc
}

// NewEngine creates an engine for the given grammar, positioned at the axiom.
func NewEngine(g *lsystem.Grammar) (*Engine, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		grammar: g,
		seq:     g.Axiom(),
		rules:   make([]*Rule, 0),
	}, nil
}

// WithMaxLength caps generation length; stepping past the cap fails with
// ErrLimitExceeded. Zero means unlimited.
func (e *Engine) WithMaxLength(n int) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.maxLength = n
	return e
}

// AddRule adds a condition-action rule to the engine.
func (e *Engine) AddRule(name string, condition Condition, action Action) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append(e.rules, &Rule{
		Name:      name,
		Condition: condition,
		Action:    action,
		Enabled:   true,
	})
}

// Sequence returns a copy of the current generation's sequence.
func (e *Engine) Sequence() []lsystem.Symbol {
	e.mu.RLock()
	defer e.mu.RUnlock()
	seq := make([]lsystem.Symbol, len(e.seq))
	copy(seq, e.seq)
	return seq
}

// Generation returns the current generation number.
func (e *Engine) Generation() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.generation
}

// Reset rewinds the derivation to the axiom.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq = e.grammar.Axiom()
	e.generation = 0
}

// checkRules evaluates all rules and triggers actions for satisfied conditions.
func (e *Engine) checkRules() error {
	e.mu.RLock()
	generation := e.generation
	seqCopy := make([]lsystem.Symbol, len(e.seq))
	copy(seqCopy, e.seq)
	rulesToCheck := make([]*Rule, len(e.rules))
	copy(rulesToCheck, e.rules)
	e.mu.RUnlock()

	// Check rules without holding the lock (actions may use the engine)
	for _, rule := range rulesToCheck {
		if rule.Enabled && rule.Condition(generation, seqCopy) {
			if err := rule.Action(generation, seqCopy); err != nil {
				return fmt.Errorf("rule %s: %w", rule.Name, err)
			}
		}
	}
	return nil
}

// Step advances the derivation by one generation and checks rules.
// Returns a copy of the new sequence.
func (e *Engine) Step() ([]lsystem.Symbol, error) {
	e.mu.Lock()
	next := e.grammar.Step(e.seq)
	if e.maxLength > 0 && len(next) > e.maxLength {
		gen := e.generation + 1
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: generation %d length %d exceeds limit %d",
			lsystem.ErrLimitExceeded, gen, len(next), e.maxLength)
	}
	e.seq = next
	e.generation++
	e.mu.Unlock()

	if err := e.checkRules(); err != nil {
		return nil, err
	}

	return e.Sequence(), nil
}

// StepN advances the derivation by n generations.
func (e *Engine) StepN(n int) ([]lsystem.Symbol, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: steps must be non-negative, got %d", lsystem.ErrInvalidArgument, n)
	}
	for i := 0; i < n; i++ {
		if _, err := e.Step(); err != nil {
			return nil, err
		}
	}
	return e.Sequence(), nil
}

// Run starts a derivation loop that steps once per interval.
// The loop runs in a background goroutine until the context is cancelled,
// Stop is called, or a step fails.
func (e *Engine) Run(ctx context.Context, interval time.Duration) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	childCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		stop := func() {
			e.mu.Lock()
			if e.cancel != nil {
				e.cancel()
				e.cancel = nil
			}
			e.running = false
			e.mu.Unlock()
		}

		for {
			select {
			case <-childCtx.Done():
				stop()
				return
			case <-ticker.C:
				if _, err := e.Step(); err != nil {
					stop()
					return
				}
			}
		}
	}()
}

// Stop halts the derivation loop.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.running = false
}

// IsRunning returns whether the derivation loop is currently running.
func (e *Engine) IsRunning() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

// Example condition functions

// LengthExceeds returns a condition that triggers when the sequence grows
// past a threshold.
func LengthExceeds(threshold int) Condition {
	return func(generation int, seq []lsystem.Symbol) bool {
		return len(seq) > threshold
	}
}

// GenerationReached returns a condition that triggers at and after the given
// generation.
func GenerationReached(n int) Condition {
	return func(generation int, seq []lsystem.Symbol) bool {
		return generation >= n
	}
}

// SymbolAppears returns a condition that triggers when the sequence contains
// the given symbol.
func SymbolAppears(s lsystem.Symbol) Condition {
	return func(generation int, seq []lsystem.Symbol) bool {
		for _, sym := range seq {
			if sym == s {
				return true
			}
		}
		return false
	}
}

// AllOf returns a condition that triggers when all given conditions are true.
func AllOf(conditions ...Condition) Condition {
	return func(generation int, seq []lsystem.Symbol) bool {
		for _, c := range conditions {
			if !c(generation, seq) {
				return false
			}
		}
		return true
	}
}

// AnyOf returns a condition that triggers when any given condition is true.
func AnyOf(conditions ...Condition) Condition {
	return func(generation int, seq []lsystem.Symbol) bool {
		for _, c := range conditions {
			if c(generation, seq) {
				return true
			}
		}
		return false
	}
}
