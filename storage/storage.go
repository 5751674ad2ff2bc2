// Package storage provides SQLite-backed persistence for grammars and
// derivation runs.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/pflow-xyz/go-lsystem/eventlog"
	"github.com/pflow-xyz/go-lsystem/lsystem"
	"github.com/pflow-xyz/go-lsystem/parser"
)

// Store handles SQLite database operations for the grammar catalog and
// derivation history.
type Store struct {
	db *sql.DB
}

// Run represents a recorded derivation run.
type Run struct {
	ID          string    `json:"id"`
	GrammarName string    `json:"grammar_name"`
	Iterations  int       `json:"iterations"`
	FinalLength int       `json:"final_length"`
	CreatedAt   time.Time `json:"created_at"`
}

// Generation represents one generation row within a run.
type Generation struct {
	RunID      string `json:"run_id"`
	Generation int    `json:"generation"`
	Length     int    `json:"length"`
	Sequence   string `json:"sequence"` // JSON array of symbols
}

// New creates a new Store with the given database path.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS grammars (
		name TEXT PRIMARY KEY,
		definition TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		grammar_name TEXT NOT NULL,
		iterations INTEGER NOT NULL,
		final_length INTEGER NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (grammar_name) REFERENCES grammars(name)
	);

	CREATE TABLE IF NOT EXISTS generations (
		run_id TEXT NOT NULL,
		generation INTEGER NOT NULL,
		length INTEGER NOT NULL,
		sequence TEXT NOT NULL,
		PRIMARY KEY (run_id, generation),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_grammar ON runs(grammar_name);
	CREATE INDEX IF NOT EXISTS idx_generations_run ON generations(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for custom queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// SaveGrammar stores a grammar under the given name, replacing any previous
// definition. The grammar is validated before writing.
func (s *Store) SaveGrammar(name string, g *lsystem.Grammar) error {
	if err := g.Validate(); err != nil {
		return err
	}
	data, err := parser.ToJSON(g)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(
		`INSERT INTO grammars (name, definition, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET definition = excluded.definition`,
		name, string(data), time.Now().UTC(),
	)
	return err
}

// GetGrammar retrieves a grammar by name.
func (s *Store) GetGrammar(name string) (*lsystem.Grammar, error) {
	row := s.db.QueryRow(`SELECT definition FROM grammars WHERE name = ?`, name)

	var definition string
	if err := row.Scan(&definition); err != nil {
		return nil, err
	}
	return parser.FromJSON([]byte(definition))
}

// ListGrammars returns the names of all stored grammars.
func (s *Store) ListGrammars() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM grammars ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// RecordRun expands a stored grammar and persists every generation.
// Returns the run record. The whole run is written in one transaction:
// either every generation lands or none do.
func (s *Store) RecordRun(grammarName string, iterations int, opts *lsystem.Options) (*Run, error) {
	g, err := s.GetGrammar(grammarName)
	if err != nil {
		return nil, err
	}

	derivation, err := eventlog.DeriveWithOptions(g, iterations, opts)
	if err != nil {
		return nil, err
	}

	run := &Run{
		ID:          uuid.New().String(),
		GrammarName: grammarName,
		Iterations:  iterations,
		FinalLength: len(derivation.Final()),
		CreatedAt:   time.Now().UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (id, grammar_name, iterations, final_length, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.GrammarName, run.Iterations, run.FinalLength, run.CreatedAt,
	); err != nil {
		return nil, err
	}

	for _, rec := range derivation.Records {
		seq, err := json.Marshal(rec.Sequence)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(
			`INSERT INTO generations (run_id, generation, length, sequence)
			 VALUES (?, ?, ?, ?)`,
			run.ID, rec.Generation, rec.Length, string(seq),
		); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return run, nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id, grammar_name, iterations, final_length, created_at
		 FROM runs WHERE id = ?`, id,
	)

	var run Run
	if err := row.Scan(&run.ID, &run.GrammarName, &run.Iterations, &run.FinalLength, &run.CreatedAt); err != nil {
		return nil, err
	}
	return &run, nil
}

// GetGenerations retrieves all generation rows for a run, in order.
func (s *Store) GetGenerations(runID string) ([]*Generation, error) {
	rows, err := s.db.Query(
		`SELECT run_id, generation, length, sequence
		 FROM generations WHERE run_id = ? ORDER BY generation`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var generations []*Generation
	for rows.Next() {
		var gen Generation
		if err := rows.Scan(&gen.RunID, &gen.Generation, &gen.Length, &gen.Sequence); err != nil {
			return nil, err
		}
		generations = append(generations, &gen)
	}
	return generations, rows.Err()
}

// Symbols returns a generation's sequence as symbols.
func (g *Generation) Symbols() ([]lsystem.Symbol, error) {
	var symbols []string
	if err := json.Unmarshal([]byte(g.Sequence), &symbols); err != nil {
		return nil, fmt.Errorf("decoding sequence: %w", err)
	}
	return lsystem.Seq(symbols...), nil
}

// RecentRuns returns the most recent runs for a grammar.
func (s *Store) RecentRuns(grammarName string, limit int) ([]*Run, error) {
	rows, err := s.db.Query(
		`SELECT id, grammar_name, iterations, final_length, created_at
		 FROM runs WHERE grammar_name = ?
		 ORDER BY created_at DESC LIMIT ?`, grammarName, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.GrammarName, &run.Iterations, &run.FinalLength, &run.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}
