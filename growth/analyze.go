package growth

import "github.com/pflow-xyz/go-lsystem/lsystem"

// Report contains the outcome of structural grammar analysis.
type Report struct {
	// Stable is true when the axiom is a fixed point: every axiom symbol
	// rewrites to itself, so every generation equals the axiom.
	Stable bool

	// IdentityVariables lists variables whose one-step rewrite is themselves,
	// either through an explicit self rule or through the identity policy for
	// variables without a rule.
	IdentityVariables []lsystem.Symbol

	// UnreachableVariables lists variables that can never appear in any
	// generation starting from the axiom. Rules for them are dead weight.
	UnreachableVariables []lsystem.Symbol
}

// Analyze inspects a grammar's rewriting structure. The grammar must be valid.
func Analyze(g *lsystem.Grammar) (*Report, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	report := &Report{Stable: true}

	for _, s := range g.Start {
		if !isIdentity(g, s) {
			report.Stable = false
			break
		}
	}

	for _, v := range g.Variables {
		if isIdentity(g, v) {
			report.IdentityVariables = append(report.IdentityVariables, v)
		}
	}

	reachable := reachableSymbols(g)
	for _, v := range g.Variables {
		if !reachable[v] {
			report.UnreachableVariables = append(report.UnreachableVariables, v)
		}
	}

	return report, nil
}

// isIdentity reports whether one rewrite step maps s to exactly [s].
func isIdentity(g *lsystem.Grammar, s lsystem.Symbol) bool {
	body := g.Replacement(s)
	return len(body) == 1 && body[0] == s
}

// reachableSymbols walks the rules from the axiom and collects every symbol
// that can occur in some generation.
func reachableSymbols(g *lsystem.Grammar) map[lsystem.Symbol]bool {
	reachable := make(map[lsystem.Symbol]bool)
	queue := make([]lsystem.Symbol, 0, len(g.Start))
	for _, s := range g.Start {
		if !reachable[s] {
			reachable[s] = true
			queue = append(queue, s)
		}
	}

	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, t := range g.Replacement(s) {
			if !reachable[t] {
				reachable[t] = true
				queue = append(queue, t)
			}
		}
	}

	return reachable
}
