package pipeline

import (
	"swpipe/internal/ir"
	"swpipe/internal/rewrite"
)

// pipeliningPattern adapts PipelineLoop to the rewrite.RewritePattern
// interface, so it can be registered into a rewrite.PatternSet alongside
// any other pattern a caller is already running over the same program.
type pipeliningPattern struct {
	opts PipeliningOptions
	log  func(loop *ir.ForOp, result Result)
}

func (p *pipeliningPattern) Name() string { return "pipeline-for-loop" }

func (p *pipeliningPattern) Match(op ir.Op) bool {
	_, ok := op.(*ir.ForOp)
	return ok
}

func (p *pipeliningPattern) Rewrite(op ir.Op, r *rewrite.Rewriter) bool {
	loop := op.(*ir.ForOp)
	result := PipelineLoop(loop, r.Alloc, p.opts)
	if p.log != nil {
		p.log(loop, result)
	}
	_, ok := result.(*NewLoop)
	return ok
}

// AddPipeliningPattern registers software pipelining into set so that
// ApplyPatternsOnce will attempt it on every ForOp it encounters. log, if
// non-nil, is called once per attempt with the outcome — wire it to a
// logger to surface NotApplicable/DiagnosticResult outcomes that would
// otherwise be silent.
func AddPipeliningPattern(set *rewrite.PatternSet, opts PipeliningOptions, log func(loop *ir.ForOp, result Result)) {
	set.Add(&pipeliningPattern{opts: opts, log: log})
}
