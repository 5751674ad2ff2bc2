package lsystem

// Builder provides a fluent API for constructing grammars.
// It simplifies grammar creation by chaining method calls.
//
// Example:
//
//	g, err := lsystem.Build().
//	    Variables("A", "B").
//	    Constants("+").
//	    Axiom("A").
//	    Rule("A", "A", "+", "B").
//	    Rule("B", "A").
//	    Done()
type Builder struct {
	grammar *Grammar
}

// Build creates a new Builder for constructing a grammar.
func Build() *Builder {
	return &Builder{
		grammar: NewGrammar(nil, nil, nil, nil),
	}
}

// Variables declares rewritable symbols.
func (b *Builder) Variables(symbols ...string) *Builder {
	b.grammar.Variables = append(b.grammar.Variables, Seq(symbols...)...)
	return b
}

// Constants declares symbols that always rewrite to themselves.
func (b *Builder) Constants(symbols ...string) *Builder {
	b.grammar.Constants = append(b.grammar.Constants, Seq(symbols...)...)
	return b
}

// Axiom sets the start sequence.
func (b *Builder) Axiom(symbols ...string) *Builder {
	b.grammar.Start = Seq(symbols...)
	return b
}

// Rule sets the production for a variable: one step of rewriting replaces
// the variable with the given body.
func (b *Builder) Rule(variable string, body ...string) *Builder {
	b.grammar.Rules[Symbol(variable)] = Seq(body...)
	return b
}

// Algae configures Lindenmayer's original algae system:
// A -> AB, B -> A, axiom A. Generation lengths follow the Fibonacci numbers.
func (b *Builder) Algae() *Builder {
	return b.
		Variables("A", "B").
		Axiom("A").
		Rule("A", "A", "B").
		Rule("B", "A")
}

// Koch configures the quadratic Koch curve:
// F -> F+F-F-F+F over constants + and -, axiom F.
func (b *Builder) Koch() *Builder {
	return b.
		Variables("F").
		Constants("+", "-").
		Axiom("F").
		Rule("F", "F", "+", "F", "-", "F", "-", "F", "+", "F")
}

// CantorSet configures the Cantor set system:
// A -> ABA, B -> BBB, axiom A.
func (b *Builder) CantorSet() *Builder {
	return b.
		Variables("A", "B").
		Axiom("A").
		Rule("A", "A", "B", "A").
		Rule("B", "B", "B", "B")
}

// SierpinskiArrowhead configures the Sierpinski arrowhead curve:
// A -> B-A-B, B -> A+B+A over constants + and -, axiom A.
func (b *Builder) SierpinskiArrowhead() *Builder {
	return b.
		Variables("A", "B").
		Constants("+", "-").
		Axiom("A").
		Rule("A", "B", "-", "A", "-", "B").
		Rule("B", "A", "+", "B", "+", "A")
}

// Done validates and returns the completed grammar.
func (b *Builder) Done() (*Grammar, error) {
	if err := b.grammar.Validate(); err != nil {
		return nil, err
	}
	return b.grammar, nil
}

// Grammar returns the grammar being built without validating it.
func (b *Builder) Grammar() *Grammar {
	return b.grammar
}
