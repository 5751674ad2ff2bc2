// Package eventlog records L-system derivations as structured logs.
// A derivation run captures every generation produced on the way to the
// final sequence, which supports replay, auditing, and offline analysis.
package eventlog

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pflow-xyz/go-lsystem/lsystem"
)

// Record represents a single generation within a derivation run.
type Record struct {
	RunID      string    `json:"run_id"`
	Generation int       `json:"generation"`
	Length     int       `json:"length"`
	Sequence   []string  `json:"sequence"`
	Timestamp  time.Time `json:"timestamp"`
}

// Derivation holds every generation record of one run, in generation order.
type Derivation struct {
	RunID   string
	Records []Record
}

// Log groups derivations by run ID.
type Log struct {
	Runs map[string]*Derivation
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{Runs: make(map[string]*Derivation)}
}

// AddRecord adds a record to the log, creating a new derivation if needed.
func (l *Log) AddRecord(rec Record) {
	run, exists := l.Runs[rec.RunID]
	if !exists {
		run = &Derivation{RunID: rec.RunID}
		l.Runs[rec.RunID] = run
	}
	run.Records = append(run.Records, rec)
}

// SortRuns sorts records within each derivation by generation.
func (l *Log) SortRuns() {
	for _, run := range l.Runs {
		sort.Slice(run.Records, func(i, j int) bool {
			return run.Records[i].Generation < run.Records[j].Generation
		})
	}
}

// Final returns the last recorded generation as a symbol sequence.
// Returns nil for an empty derivation.
func (d *Derivation) Final() []lsystem.Symbol {
	if len(d.Records) == 0 {
		return nil
	}
	return lsystem.Seq(d.Records[len(d.Records)-1].Sequence...)
}

// Derive expands the grammar for the given number of generations, recording
// every generation including the axiom. Each call gets a fresh run ID.
func Derive(g *lsystem.Grammar, iterations int) (*Derivation, error) {
	return DeriveWithOptions(g, iterations, nil)
}

// DeriveWithOptions is Derive with expansion guard rails. The derivation is
// all-or-nothing: if any generation exceeds the ceiling, no partial run is
// returned.
func DeriveWithOptions(g *lsystem.Grammar, iterations int, opts *lsystem.Options) (*Derivation, error) {
	if iterations < 0 {
		return nil, fmt.Errorf("%w: iterations must be non-negative, got %d", lsystem.ErrInvalidArgument, iterations)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = lsystem.DefaultOptions()
	}

	run := &Derivation{RunID: uuid.New().String()}

	seq := g.Axiom()
	if opts.MaxLength > 0 && len(seq) > opts.MaxLength {
		return nil, fmt.Errorf("%w: axiom length %d exceeds limit %d", lsystem.ErrLimitExceeded, len(seq), opts.MaxLength)
	}
	run.Records = append(run.Records, newRecord(run.RunID, 0, seq))

	for n := 1; n <= iterations; n++ {
		seq = g.Step(seq)
		if opts.MaxLength > 0 && len(seq) > opts.MaxLength {
			return nil, fmt.Errorf("%w: generation %d length %d exceeds limit %d",
				lsystem.ErrLimitExceeded, n, len(seq), opts.MaxLength)
		}
		run.Records = append(run.Records, newRecord(run.RunID, n, seq))
	}

	return run, nil
}

func newRecord(runID string, generation int, seq []lsystem.Symbol) Record {
	return Record{
		RunID:      runID,
		Generation: generation,
		Length:     len(seq),
		Sequence:   lsystem.Strings(seq),
		Timestamp:  time.Now().UTC(),
	}
}
