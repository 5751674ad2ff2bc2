package lsystem

import (
	"errors"
	"testing"
)

func TestBuilderDone(t *testing.T) {
	g, err := Build().
		Variables("A", "B").
		Constants("+").
		Axiom("A").
		Rule("A", "A", "+", "B").
		Rule("B", "A").
		Done()
	if err != nil {
		t.Fatalf("Done returned error: %v", err)
	}

	if len(g.Variables) != 2 {
		t.Errorf("Expected 2 variables, got %d", len(g.Variables))
	}
	if len(g.Constants) != 1 {
		t.Errorf("Expected 1 constant, got %d", len(g.Constants))
	}
	if !seqEqual(g.Start, Seq("A")) {
		t.Errorf("Expected axiom [A], got %v", g.Start)
	}
	if len(g.Rules) != 2 {
		t.Errorf("Expected 2 rules, got %d", len(g.Rules))
	}
}

func TestBuilderDoneValidates(t *testing.T) {
	_, err := Build().
		Variables("A").
		Constants("A").
		Axiom("A").
		Done()
	if err == nil {
		t.Fatal("Expected validation error for overlapping alphabet")
	}
	if !errors.Is(err, ErrInvalidGrammar) {
		t.Errorf("Expected ErrInvalidGrammar, got %v", err)
	}
}

func TestBuilderGrammarSkipsValidation(t *testing.T) {
	g := Build().Variables("A").Constants("A").Grammar()
	if g == nil {
		t.Fatal("Grammar returned nil")
	}
	if err := g.Validate(); err == nil {
		t.Error("Expected the unvalidated grammar to fail Validate")
	}
}

func TestBuilderPresets(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Builder
		// expected lengths of generations 0..3
		lengths []int
	}{
		{"algae", func() *Builder { return Build().Algae() }, []int{1, 2, 3, 5}},
		{"koch", func() *Builder { return Build().Koch() }, []int{1, 9, 49, 249}},
		{"cantor", func() *Builder { return Build().CantorSet() }, []int{1, 3, 9, 27}},
		{"sierpinski", func() *Builder { return Build().SierpinskiArrowhead() }, []int{1, 5, 17, 53}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := tt.build().Done()
			if err != nil {
				t.Fatalf("Done returned error: %v", err)
			}
			for n, want := range tt.lengths {
				result, err := Expand(g, n)
				if err != nil {
					t.Fatalf("Expand(g, %d) returned error: %v", n, err)
				}
				if len(result) != want {
					t.Errorf("generation %d: expected length %d, got %d", n, want, len(result))
				}
			}
		})
	}
}
