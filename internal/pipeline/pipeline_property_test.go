package pipeline_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"swpipe/internal/interp"
	"swpipe/internal/ir"
	"swpipe/internal/pipeline"
)

// TestPipelineLoopPreservesSemantics checks Section 8's central property: for
// any trip count long enough to admit the chosen stage count, pipelining a
// loop never changes the values it yields or the memory it writes, compared
// to interpreting the original loop directly.
func TestPipelineLoopPreservesSemantics(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("pipelined kernel yields the same result as the original loop", prop.ForAll(
		func(numStages, extraTrips int) bool {
			tripCount := numStages + extraTrips
			b, loop, schedule := sumLoop(int64(tripCount), numStages)
			root := b.InsertionBlock()

			mem := interp.Memory{"a": make([]int64, tripCount)}
			for i := range mem["a"] {
				mem["a"][i] = int64(i*3 + 1)
			}
			expected := interp.Eval(loop, []int64{0}, cloneMem(mem))

			opts := pipeline.PipeliningOptions{
				GetSchedule: func(l *ir.ForOp) (pipeline.Schedule, int, bool) {
					return schedule, numStages, true
				},
				PeelEpilogue: true,
			}

			result := pipeline.PipelineLoop(loop, b.Alloc, opts)
			newLoop, ok := result.(*pipeline.NewLoop)
			if !ok {
				return false
			}

			env := map[*ir.Value]int64{}
			mem2 := cloneMem(mem)
			interp.EvalOps(root.Ops, env, mem2)

			got := make([]int64, len(newLoop.Results))
			for i, v := range newLoop.Results {
				got[i] = env[v]
			}
			if len(got) != len(expected) || got[0] != expected[0] {
				return false
			}
			for i := range mem["a"] {
				if mem["a"][i] != mem2["a"][i] {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 4),
		gen.IntRange(0, 6),
	))

	properties.TestingRun(t)
}
