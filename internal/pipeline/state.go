package pipeline

import (
	"fmt"

	"swpipe/internal/ir"
)

// pipelineState threads the bookkeeping every phase after setup needs:
// the validated loop/schedule, the running version map the static
// (prologue/epilogue) phases populate, and the fresh ID allocator new code
// is built with.
type pipelineState struct {
	su    *setupResult
	opts  *PipeliningOptions
	vm    *VersionMap
	alloc *ir.IDAllocator

	// predicationFailure is set by buildKernel when PredicateFn declines a
	// kernel-cloned op; the driver turns it into a DiagnosticResult.
	predicationFailure *DiagnosticResult
}

func newPipelineState(su *setupResult, opts *PipeliningOptions, alloc *ir.IDAllocator) *pipelineState {
	return &pipelineState{su: su, opts: opts, vm: NewVersionMap(), alloc: alloc}
}

// seedValue returns the value that stands in for orig at trip. A trip
// earlier than orig's own stage belongs to a negative iteration (trip minus
// stage) and falls back to the pre-loop initial value supplied for whichever
// iter-arg orig was yielded into — the only way a negative iteration can
// arise is by walking back across the original loop's entry edge.
func (ps *pipelineState) seedValue(orig *ir.Value, trip int) *ir.Value {
	if trip >= ps.su.schedule[orig.DefOp] {
		return ps.vm.Get(orig, trip)
	}
	for j, yv := range ps.su.loop.Yield().Vals {
		if yv == orig {
			return ps.su.loop.InitArgs[j]
		}
	}
	panic(fmt.Sprintf("pipeline: no pre-loop value available for %s", orig))
}
