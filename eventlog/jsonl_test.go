package eventlog

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/pflow-xyz/go-lsystem/lsystem"
)

func testGrammar(t *testing.T) *lsystem.Grammar {
	t.Helper()
	g, err := lsystem.Build().
		Variables("A", "B").
		Constants("+").
		Axiom("A").
		Rule("A", "A", "+", "B").
		Rule("B", "A").
		Done()
	if err != nil {
		t.Fatalf("building grammar: %v", err)
	}
	return g
}

func TestDerive(t *testing.T) {
	g := testGrammar(t)

	run, err := Derive(g, 3)
	if err != nil {
		t.Fatalf("Derive returned error: %v", err)
	}

	if run.RunID == "" {
		t.Error("Expected a non-empty run ID")
	}
	// Axiom plus 3 generations.
	if len(run.Records) != 4 {
		t.Fatalf("Expected 4 records, got %d", len(run.Records))
	}

	expectedLengths := []int{1, 3, 5, 9}
	for i, rec := range run.Records {
		if rec.Generation != i {
			t.Errorf("record %d: expected generation %d, got %d", i, i, rec.Generation)
		}
		if rec.Length != expectedLengths[i] {
			t.Errorf("generation %d: expected length %d, got %d", i, expectedLengths[i], rec.Length)
		}
		if len(rec.Sequence) != rec.Length {
			t.Errorf("generation %d: length field %d disagrees with sequence %v", i, rec.Length, rec.Sequence)
		}
		if rec.RunID != run.RunID {
			t.Errorf("record %d: run ID mismatch", i)
		}
	}

	final := run.Final()
	expected := lsystem.Seq("A", "+", "B", "+", "A", "+", "A", "+", "B")
	if len(final) != len(expected) {
		t.Fatalf("Expected final %v, got %v", expected, final)
	}
	for i := range expected {
		if final[i] != expected[i] {
			t.Errorf("Expected final %v, got %v", expected, final)
			break
		}
	}
}

func TestDeriveFreshRunIDs(t *testing.T) {
	g := testGrammar(t)

	a, err := Derive(g, 1)
	if err != nil {
		t.Fatalf("Derive returned error: %v", err)
	}
	b, err := Derive(g, 1)
	if err != nil {
		t.Fatalf("Derive returned error: %v", err)
	}
	if a.RunID == b.RunID {
		t.Error("Expected distinct run IDs for distinct runs")
	}
}

func TestDeriveNegativeIterations(t *testing.T) {
	g := testGrammar(t)
	_, err := Derive(g, -1)
	if !errors.Is(err, lsystem.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestDeriveWithOptionsLimit(t *testing.T) {
	g := testGrammar(t)

	_, err := DeriveWithOptions(g, 5, &lsystem.Options{MaxLength: 5})
	if !errors.Is(err, lsystem.ErrLimitExceeded) {
		t.Errorf("Expected ErrLimitExceeded, got %v", err)
	}
}

func TestJSONLRoundTrip(t *testing.T) {
	g := testGrammar(t)

	run, err := Derive(g, 2)
	if err != nil {
		t.Fatalf("Derive returned error: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteJSONL(&buf, run); err != nil {
		t.Fatalf("WriteJSONL returned error: %v", err)
	}

	log, err := ParseJSONLBytes(buf.Bytes(), DefaultParseConfig())
	if err != nil {
		t.Fatalf("ParseJSONLBytes returned error: %v", err)
	}

	parsed, ok := log.Runs[run.RunID]
	if !ok {
		t.Fatalf("Expected run %s in parsed log", run.RunID)
	}
	if len(parsed.Records) != len(run.Records) {
		t.Fatalf("Expected %d records, got %d", len(run.Records), len(parsed.Records))
	}
	for i := range run.Records {
		if parsed.Records[i].Generation != run.Records[i].Generation {
			t.Errorf("record %d: generation mismatch", i)
		}
		if parsed.Records[i].Length != run.Records[i].Length {
			t.Errorf("record %d: length mismatch", i)
		}
	}
}

func TestJSONLFileRoundTrip(t *testing.T) {
	g := testGrammar(t)

	run, err := Derive(g, 1)
	if err != nil {
		t.Fatalf("Derive returned error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "run.jsonl")
	if err := WriteJSONLFile(path, run); err != nil {
		t.Fatalf("WriteJSONLFile returned error: %v", err)
	}

	log, err := ParseJSONL(path, DefaultParseConfig())
	if err != nil {
		t.Fatalf("ParseJSONL returned error: %v", err)
	}
	if len(log.Runs) != 1 {
		t.Errorf("Expected 1 run, got %d", len(log.Runs))
	}
}

func TestParseJSONLInvalidLine(t *testing.T) {
	_, err := ParseJSONLBytes([]byte("{not json}\n"), DefaultParseConfig())
	if err == nil {
		t.Fatal("Expected error for malformed line")
	}
}

func TestParseJSONLMissingRunID(t *testing.T) {
	_, err := ParseJSONLBytes([]byte(`{"generation": 0, "length": 1, "sequence": ["A"]}`+"\n"), DefaultParseConfig())
	if err == nil {
		t.Fatal("Expected error for record without run_id")
	}
}

func TestParseJSONLSkipsEmptyLines(t *testing.T) {
	data := []byte(`{"run_id": "r1", "generation": 1, "length": 1, "sequence": ["A"]}

{"run_id": "r1", "generation": 0, "length": 1, "sequence": ["A"]}
`)
	log, err := ParseJSONLBytes(data, DefaultParseConfig())
	if err != nil {
		t.Fatalf("ParseJSONLBytes returned error: %v", err)
	}

	run := log.Runs["r1"]
	if run == nil || len(run.Records) != 2 {
		t.Fatalf("Expected 2 records for r1, got %+v", run)
	}
	// SortRuns orders by generation even when lines arrive out of order.
	if run.Records[0].Generation != 0 || run.Records[1].Generation != 1 {
		t.Error("Expected records sorted by generation")
	}
}

func TestJSONLRoundTripLargeGeneration(t *testing.T) {
	// A doubling grammar reaches 32768 symbols by generation 15, putting a
	// single record line well past bufio.Scanner's 64KB default.
	g, err := lsystem.Build().
		Variables("A").
		Axiom("A").
		Rule("A", "A", "A").
		Done()
	if err != nil {
		t.Fatalf("building grammar: %v", err)
	}

	run, err := Derive(g, 15)
	if err != nil {
		t.Fatalf("Derive returned error: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteJSONL(&buf, run); err != nil {
		t.Fatalf("WriteJSONL returned error: %v", err)
	}
	if buf.Len() <= 64*1024 {
		t.Fatalf("Expected output past 64KB, got %d bytes", buf.Len())
	}

	log, err := ParseJSONLBytes(buf.Bytes(), DefaultParseConfig())
	if err != nil {
		t.Fatalf("ParseJSONLBytes returned error: %v", err)
	}

	parsed, ok := log.Runs[run.RunID]
	if !ok {
		t.Fatalf("Expected run %s in parsed log", run.RunID)
	}
	final := parsed.Final()
	if len(final) != 1<<15 {
		t.Errorf("Expected final length %d, got %d", 1<<15, len(final))
	}
}

func TestParseJSONLLineLimit(t *testing.T) {
	g, err := lsystem.Build().
		Variables("A").
		Axiom("A").
		Rule("A", "A", "A").
		Done()
	if err != nil {
		t.Fatalf("building grammar: %v", err)
	}

	run, err := Derive(g, 12)
	if err != nil {
		t.Fatalf("Derive returned error: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteJSONL(&buf, run); err != nil {
		t.Fatalf("WriteJSONL returned error: %v", err)
	}

	// An explicit cap below the longest line is reported, never truncated.
	_, err = ParseJSONLBytes(buf.Bytes(), ParseConfig{MaxLineBytes: 1024})
	if err == nil {
		t.Fatal("Expected error for lines past MaxLineBytes")
	}

	// The zero value falls back to the default limit.
	if _, err := ParseJSONLBytes(buf.Bytes(), ParseConfig{}); err != nil {
		t.Fatalf("Expected zero-value config to use defaults, got %v", err)
	}
}
