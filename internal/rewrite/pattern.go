package rewrite

import "swpipe/internal/ir"

// RewritePattern matches a single op and, if applicable, replaces it.
// Mirrors the teacher's OptimizationPass interface, narrowed from
// "transform the whole program" to "match one op, rewrite it or decline" —
// the shape the pattern-driven pipelining entry point (AddPipeliningPattern,
// see internal/pipeline) is built around.
type RewritePattern interface {
	// Name identifies the pattern in logs and diagnostics.
	Name() string
	// Match reports whether the pattern applies to op.
	Match(op ir.Op) bool
	// Rewrite applies the pattern to op using r, returning true if it made
	// a change. A pattern that returns false from Rewrite after Match
	// returned true is refusing for a reason only discoverable during the
	// rewrite itself (e.g. pipelining's own validation failures).
	Rewrite(op ir.Op, r *Rewriter) bool
}

// PatternSet is an ordered collection of patterns applied together, mirrors
// the teacher's OptimizationPipeline.
type PatternSet struct {
	patterns []RewritePattern
}

// NewPatternSet creates an empty pattern set.
func NewPatternSet() *PatternSet {
	return &PatternSet{}
}

// Add appends a pattern to the set.
func (s *PatternSet) Add(p RewritePattern) {
	s.patterns = append(s.patterns, p)
}

// ApplyPatternsOnce walks block's ops in order and, for each, tries every
// pattern in the set until one matches and successfully rewrites it. It
// does not re-visit ops inserted by a rewrite and does not iterate to a
// fixed point — single-pass, matching the pipelining transform's own
// single-shot nature (it never needs to re-pipeline its own output).
func ApplyPatternsOnce(block *ir.Block, set *PatternSet, alloc *ir.IDAllocator) int {
	applied := 0
	r := NewRewriter(alloc)
	for _, op := range append([]ir.Op{}, block.AllOps()...) {
		for _, p := range set.patterns {
			if !p.Match(op) {
				continue
			}
			r.SetInsertionPointToEnd(op.Block())
			if p.Rewrite(op, r) {
				applied++
			}
			break
		}
	}
	return applied
}
