package pipeline

import (
	"swpipe/internal/ir"
	"swpipe/internal/rewrite"
)

// buildEpilogue peels numStages-1 drain trips (k = N..N+numStages-2) after
// the kernel. At trip k, only the ops whose stage is >= k-N+1 still have a
// real iteration left to finish (iteration k-stage, which must be <= N-1);
// earlier-staged ops have already retired inside the kernel's last trip.
// Used when options.PeelEpilogue is set; see kernel.go for the predicated
// alternative.
func buildEpilogue(ps *pipelineState, r *rewrite.Rewriter) {
	su := ps.su
	n := su.tripCount
	for k := n; k <= n+int64(su.numStages)-2; k++ {
		minStage := int(k - n + 1)
		for _, op := range su.bodyOps {
			stage := su.schedule[op]
			if stage < minStage {
				continue
			}
			clone := op.Clone(ir.NewMapping(), ps.alloc)
			ir.WalkOperandRefs(clone, func(ref ir.OperandRef) {
				ref.Set(ps.resolveStatic(ref.Get(), stage, int(k), r))
			})
			r.InsertionBlock().Append(clone)
			for i, result := range op.Results() {
				ps.vm.Set(result, int(k), clone.Results()[i])
			}
			if ps.opts.AnnotateFn != nil {
				ps.opts.AnnotateFn(Epilogue, stage, op, clone)
			}
		}
	}
}

// finalResults computes, for each of the loop's original iter-args, the
// value that now stands in for it once the kernel (and, if peeled, the
// epilogue) has finished: the version of the yielded value at trip N-1
// (the last real iteration), read from the kernel's own results when that
// trip fell inside the kernel's steady state, or from the epilogue's
// version map otherwise.
func finalResults(ps *pipelineState, kernel *ir.ForOp, slots []registerSlot) []*ir.Value {
	su := ps.su
	n := su.tripCount
	results := make([]*ir.Value, len(su.loop.Yield().Vals))
	for j, yv := range su.loop.Yield().Vals {
		defStage := su.schedule[yv.DefOp]
		switch {
		case !ps.opts.PeelEpilogue:
			// The kernel itself ran every trip, including the drain —
			// every final value is one of its own results.
			age := su.numStages - defStage
			idx := slotIndex(slots, yv, age)
			results[j] = kernel.Results()[idx]
		case defStage == 0:
			idx := slotIndex(slots, yv, 1)
			results[j] = kernel.Results()[idx]
		default:
			results[j] = ps.vm.Get(yv, int(n)-1+defStage)
		}
	}
	return results
}
