// Package parser handles JSON import/export for L-system grammars.
package parser

import (
	"encoding/json"
	"fmt"

	"github.com/pflow-xyz/go-lsystem/lsystem"
)

// FromJSON parses a grammar from JSON bytes.
// The JSON format:
//
//	{
//	  "variables": ["A", "B"],
//	  "constants": ["+"],
//	  "axiom": ["A"],
//	  "rules": {
//	    "A": ["A", "+", "B"],
//	    "B": ["A"]
//	  }
//	}
//
// The parsed grammar is validated before being returned.
func FromJSON(data []byte) (*lsystem.Grammar, error) {
	var raw struct {
		Variables []string            `json:"variables"`
		Constants []string            `json:"constants"`
		Axiom     []string            `json:"axiom"`
		Rules     map[string][]string `json:"rules"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	rules := make(map[lsystem.Symbol][]lsystem.Symbol, len(raw.Rules))
	for key, body := range raw.Rules {
		rules[lsystem.Symbol(key)] = lsystem.Seq(body...)
	}

	g := lsystem.NewGrammar(
		lsystem.Seq(raw.Variables...),
		lsystem.Seq(raw.Constants...),
		lsystem.Seq(raw.Axiom...),
		rules,
	)
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// ToJSON serializes a grammar to indented JSON bytes.
func ToJSON(g *lsystem.Grammar) ([]byte, error) {
	rules := make(map[string][]string, len(g.Rules))
	for key, body := range g.Rules {
		rules[string(key)] = lsystem.Strings(body)
	}

	result := map[string]interface{}{
		"variables": lsystem.Strings(g.Variables),
		"constants": lsystem.Strings(g.Constants),
		"axiom":     lsystem.Strings(g.Start),
		"rules":     rules,
	}

	return json.MarshalIndent(result, "", "  ")
}
