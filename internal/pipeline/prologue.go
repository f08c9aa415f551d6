package pipeline

import (
	"swpipe/internal/ir"
	"swpipe/internal/rewrite"
)

// buildPrologue peels numStages-1 ramp-up trips (p = 0..numStages-2) ahead
// of the kernel. At trip p, only the ops whose stage is <= p have a real
// iteration to operate on (iteration p-stage); later-staged ops have not
// "started" yet and are skipped, exactly mirroring which ops the kernel's
// steady state has already primed by the time it begins at trip numStages-1.
func buildPrologue(ps *pipelineState, r *rewrite.Rewriter) {
	su := ps.su
	for p := 0; p <= su.numStages-2; p++ {
		for _, op := range su.bodyOps {
			stage := su.schedule[op]
			if stage > p {
				continue
			}
			clone := op.Clone(ir.NewMapping(), ps.alloc)
			ir.WalkOperandRefs(clone, func(ref ir.OperandRef) {
				ref.Set(ps.resolveStatic(ref.Get(), stage, p, r))
			})
			r.InsertionBlock().Append(clone)
			for i, result := range op.Results() {
				ps.vm.Set(result, p, clone.Results()[i])
			}
			if ps.opts.AnnotateFn != nil {
				ps.opts.AnnotateFn(Prologue, stage, op, clone)
			}
		}
	}
}

// resolveStatic returns the concrete value a cloned op should read in
// place of orig, for a clone built at a known, compile-time trip (used by
// both the prologue and the peeled epilogue — never by the kernel, whose
// trip is the dynamic loop induction variable).
func (ps *pipelineState) resolveStatic(orig *ir.Value, consumerStage, trip int, r *rewrite.Rewriter) *ir.Value {
	su := ps.su
	switch {
	case orig == su.loop.InductionVar():
		return r.Const(su.lb+int64(trip-consumerStage)*su.step, "iv")
	case orig.IsBlockArg() && orig.DefBlock == su.loop.Body.Body && orig.ArgNo > 0:
		j := orig.ArgNo - 1
		yieldVal := su.loop.Yield().Vals[j]
		defStage := su.schedule[yieldVal.DefOp]
		producerTrip := trip - (consumerStage - defStage) - 1
		return ps.seedValue(yieldVal, producerTrip)
	case orig.DefOp != nil:
		if defStage, ok := su.schedule[orig.DefOp]; ok {
			producerTrip := trip - (consumerStage - defStage)
			return ps.seedValue(orig, producerTrip)
		}
		return orig
	default:
		return orig
	}
}
