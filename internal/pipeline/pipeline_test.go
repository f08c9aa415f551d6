package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swpipe/internal/interp"
	"swpipe/internal/ir"
	"swpipe/internal/pipeline"
	"swpipe/internal/rewrite"
)

// sumLoop builds `for iv=0 to n step 1 iter_args(acc=0) { t = load a[iv]; acc2 = add acc, t; yield acc2 }`
// on a fresh root block, returning the builder, the loop, and a schedule
// assigning the load to stage 0 and the add to stage (numStages-1).
func sumLoop(n int64, numStages int) (*ir.Builder, *ir.ForOp, pipeline.Schedule) {
	b := ir.NewBuilder()
	root := ir.NewBlock(b.Alloc, nil, nil)
	b.SetInsertionBlock(root)

	lb := b.Const(0, "lb")
	ub := b.Const(n, "ub")
	step := b.Const(1, "step")
	init := b.Const(0, "acc.init")

	loop := b.BeginFor(lb, ub, step, []*ir.Value{init}, []string{"acc"})
	iv := loop.InductionVar()
	acc := loop.IterArgs()[0]

	t := b.Load("a", iv, "t")
	acc2 := b.Binary("add", acc, t, "acc2")
	b.Yield(acc2)
	b.EndFor(loop)

	schedule := pipeline.Schedule{}
	loadOp := loop.Body.Body.Ops[0]
	addOp := loop.Body.Body.Ops[1]
	schedule[loadOp] = 0
	schedule[addOp] = numStages - 1

	return b, loop, schedule
}

func runAndCompare(t *testing.T, n int64, numStages int, peel bool) {
	t.Helper()

	b, loop, schedule := sumLoop(n, numStages)
	root := b.InsertionBlock()

	mem := interp.Memory{"a": make([]int64, n)}
	for i := range mem["a"] {
		mem["a"][i] = int64(i) + 1
	}
	expected := interp.Eval(loop, []int64{0}, cloneMem(mem))

	opts := pipeline.PipeliningOptions{
		GetSchedule: func(l *ir.ForOp) (pipeline.Schedule, int, bool) {
			return schedule, numStages, true
		},
		PeelEpilogue: peel,
	}
	if !peel {
		// Trailing trips past the original trip count must not perform the
		// load: guard it by selecting index 0 instead of the real index,
		// which keeps every access in bounds without changing any result
		// that feeds a yielded value.
		opts.PredicateFn = func(part pipeline.Part, stage int, original, clone ir.Op, guard *ir.Value, r *rewrite.Rewriter) bool {
			loadClone, ok := clone.(*ir.LoadOp)
			if !ok {
				return true
			}
			safeIndex := r.Select(guard, loadClone.Index, r.Const(0, "oob.index"), "safe.index")
			loadClone.SetOperand(0, safeIndex)
			return true
		}
	}

	result := pipeline.PipelineLoop(loop, b.Alloc, opts)
	newLoop, ok := result.(*pipeline.NewLoop)
	require.True(t, ok, "expected pipelining to apply, got %#v", result)

	env := map[*ir.Value]int64{}
	mem2 := cloneMem(mem)
	interp.EvalOps(root.Ops, env, mem2)

	got := make([]int64, len(newLoop.Results))
	for i, v := range newLoop.Results {
		got[i] = env[v]
	}

	assert.Equal(t, expected, got)
	assert.Equal(t, mem["a"], mem2["a"])
}

func cloneMem(m interp.Memory) interp.Memory {
	out := make(interp.Memory, len(m))
	for k, v := range m {
		out[k] = append([]int64{}, v...)
	}
	return out
}

func TestPipelineLoop_SingleStagePassesThrough(t *testing.T) {
	runAndCompare(t, 8, 1, true)
}

func TestPipelineLoop_TwoStagesPeeledEpilogue(t *testing.T) {
	runAndCompare(t, 10, 2, true)
}

func TestPipelineLoop_ThreeStagesLongLiveRange(t *testing.T) {
	runAndCompare(t, 12, 3, true)
}

func TestPipelineLoop_TrailingTailPredicated(t *testing.T) {
	runAndCompare(t, 10, 2, false)
}

// copyLoop builds `for iv=0 to n step 1 { t = load in[iv]; store out[iv] = t; yield }`,
// with no iter-args at all: the store at the oldest stage is the only
// observable effect, which is exactly what a masking bug at the final
// kernel trips would corrupt.
func copyLoop(n int64, numStages int) (*ir.Builder, *ir.ForOp, pipeline.Schedule) {
	b := ir.NewBuilder()
	root := ir.NewBlock(b.Alloc, nil, nil)
	b.SetInsertionBlock(root)

	lb := b.Const(0, "lb")
	ub := b.Const(n, "ub")
	step := b.Const(1, "step")

	loop := b.BeginFor(lb, ub, step, nil, nil)
	iv := loop.InductionVar()

	t := b.Load("in", iv, "t")
	b.Store("out", iv, t)
	b.Yield()
	b.EndFor(loop)

	schedule := pipeline.Schedule{}
	loadOp := loop.Body.Body.Ops[0]
	storeOp := loop.Body.Body.Ops[1]
	schedule[loadOp] = 0
	schedule[storeOp] = numStages - 1

	return b, loop, schedule
}

// TestPipelineLoop_TrailingTailStoreAlwaysExecutesAtOldestStage exercises
// spec 4.4's per-stage predicate: the oldest stage's store must fire on
// every real iteration, including the kernel's last (extended) trips, while
// the newest stage's load must be masked once its iteration runs past the
// original trip count.
func TestPipelineLoop_TrailingTailStoreAlwaysExecutesAtOldestStage(t *testing.T) {
	const n = 10
	const numStages = 2

	b, loop, schedule := copyLoop(n, numStages)
	root := b.InsertionBlock()

	mem := interp.Memory{"in": make([]int64, n), "out": make([]int64, n)}
	for i := range mem["in"] {
		mem["in"][i] = int64(i) + 100
	}
	expected := cloneMem(mem)
	interp.Eval(loop, nil, expected)

	opts := pipeline.PipeliningOptions{
		GetSchedule: func(l *ir.ForOp) (pipeline.Schedule, int, bool) {
			return schedule, numStages, true
		},
		PeelEpilogue: false,
		PredicateFn: func(part pipeline.Part, stage int, original, clone ir.Op, guard *ir.Value, r *rewrite.Rewriter) bool {
			loadClone, ok := clone.(*ir.LoadOp)
			if !ok {
				return true
			}
			safeIndex := r.Select(guard, loadClone.Index, r.Const(0, "oob.index"), "safe.index")
			loadClone.SetOperand(0, safeIndex)
			return true
		},
	}

	result := pipeline.PipelineLoop(loop, b.Alloc, opts)
	require.IsType(t, &pipeline.NewLoop{}, result)

	env := map[*ir.Value]int64{}
	got := cloneMem(mem)
	interp.EvalOps(root.Ops, env, got)

	assert.Equal(t, expected["in"], got["in"])
	assert.Equal(t, expected["out"], got["out"], "every real iteration's store must land, including the last kernel trips")
}

func TestPipelineLoop_RefusesWhenTripTooShort(t *testing.T) {
	b, loop, schedule := sumLoop(2, 4)
	opts := pipeline.PipeliningOptions{
		GetSchedule: func(l *ir.ForOp) (pipeline.Schedule, int, bool) { return schedule, 4, true },
		PeelEpilogue: true,
	}
	result := pipeline.PipelineLoop(loop, b.Alloc, opts)
	_, ok := result.(pipeline.NotApplicable)
	assert.True(t, ok, "expected NotApplicable, got %#v", result)
}

func TestPipelineLoop_DiagnosesMissingStage(t *testing.T) {
	b, loop, schedule := sumLoop(8, 2)
	delete(schedule, loop.Body.Body.Ops[1])

	opts := pipeline.PipeliningOptions{
		GetSchedule: func(l *ir.ForOp) (pipeline.Schedule, int, bool) { return schedule, 2, true },
		PeelEpilogue: true,
	}
	result := pipeline.PipelineLoop(loop, b.Alloc, opts)
	diag, ok := result.(*pipeline.DiagnosticResult)
	require.True(t, ok, "expected DiagnosticResult, got %#v", result)
	assert.Equal(t, "E1001", diag.Diagnostic.Code)
}
