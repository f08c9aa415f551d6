package pipeline

import (
	"swpipe/internal/ir"
	"swpipe/internal/rewrite"
)

// PipelineLoop is the whole transform's single entry point (Section 4.6):
// validate, peel a prologue, build the steady-state kernel, retire the
// original loop, and either peel an epilogue or fold draining into the
// kernel itself via predication. alloc must be the same ID allocator the
// surrounding program was built with, so new ops never collide with it.
func PipelineLoop(loop *ir.ForOp, alloc *ir.IDAllocator, opts PipeliningOptions) Result {
	su, failure := validateAndSetup(loop, &opts)
	if failure != nil {
		return failure
	}

	parent := loop.Block()

	// Build the replacement in a scratch block rather than appending
	// straight onto parent: that keeps the new ops out of parent's op list
	// until ReplaceOp grafts them in at the original loop's position,
	// preserving the order of whatever else lives in parent.
	scratch := &ir.Block{Parent: loop.Body.Body.Parent}
	r := rewrite.NewRewriter(alloc)
	r.SetInsertionPointToEnd(scratch)

	ps := newPipelineState(su, &opts, alloc)

	buildPrologue(ps, r)
	kernel, slots := buildKernel(ps, r)
	if ps.predicationFailure != nil {
		return ps.predicationFailure
	}
	if opts.PeelEpilogue {
		buildEpilogue(ps, r)
	}

	results := finalResults(ps, kernel, slots)

	for i, old := range loop.Results() {
		rewrite.ReplaceAllUsesWith(parent, old, results[i])
	}
	parent.ReplaceOp(loop, scratch.Ops)

	return &NewLoop{Loop: kernel, Results: results}
}
