package eventlog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ParseConfig configures JSONL parsing behavior.
type ParseConfig struct {
	// MaxLineBytes caps the size of a single JSONL line. Generation records
	// carry whole sequences, which grow exponentially, so lines far past
	// bufio.Scanner's default limit are routine. Zero means the default.
	MaxLineBytes int
}

// DefaultParseConfig returns a configuration with common defaults.
func DefaultParseConfig() ParseConfig {
	return ParseConfig{
		MaxLineBytes: 64 * 1024 * 1024,
	}
}

// WriteJSONL writes a derivation's records to w as JSON Lines, one record
// per line in generation order.
func WriteJSONL(w io.Writer, d *Derivation) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, rec := range d.Records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encoding record: %w", err)
		}
	}
	return bw.Flush()
}

// WriteJSONLFile writes a derivation to a JSONL file, replacing any
// existing content.
func WriteJSONLFile(filename string, d *Derivation) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if err := WriteJSONL(f, d); err != nil {
		return err
	}
	return f.Close()
}

// ParseJSONL parses a derivation log from a JSONL file.
func ParseJSONL(filename string, config ParseConfig) (*Log, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return ParseJSONLReader(f, config)
}

// ParseJSONLReader parses a derivation log from a JSONL reader.
// Each line must be a valid JSON record; empty lines are skipped.
// Records are grouped by run ID and sorted by generation.
func ParseJSONLReader(r io.Reader, config ParseConfig) (*Log, error) {
	// Use the default line limit if none provided
	if config.MaxLineBytes <= 0 {
		config.MaxLineBytes = DefaultParseConfig().MaxLineBytes
	}

	log := NewLog()
	scanner := bufio.NewScanner(r)
	// Scanner enforces the larger of max and the initial buffer size, so the
	// initial buffer must not exceed the configured cap.
	bufSize := 64 * 1024
	if config.MaxLineBytes < bufSize {
		bufSize = config.MaxLineBytes
	}
	scanner.Buffer(make([]byte, bufSize), config.MaxLineBytes)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("line %d: invalid JSON: %w", lineNum, err)
		}
		if rec.RunID == "" {
			return nil, fmt.Errorf("line %d: missing run_id", lineNum)
		}

		log.AddRecord(rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}

	log.SortRuns()
	return log, nil
}

// ParseJSONLBytes parses a derivation log from JSONL bytes.
func ParseJSONLBytes(data []byte, config ParseConfig) (*Log, error) {
	return ParseJSONLReader(bytes.NewReader(data), config)
}
