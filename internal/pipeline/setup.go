package pipeline

import (
	"fmt"

	"swpipe/internal/errors"
	"swpipe/internal/ir"
)

// setupResult is everything phase 4.1 establishes once a loop passes
// validation: the static bounds, the accepted schedule, and the body's ops
// in their original program order.
type setupResult struct {
	loop      *ir.ForOp
	schedule  Schedule
	numStages int
	lb, ub    int64
	step      int64
	tripCount int64
	bodyOps   []ir.Op
}

// validateAndSetup runs every check the transform needs before it is safe
// to build a single byte of replacement code. Any failure here leaves loop
// completely unmodified.
func validateAndSetup(loop *ir.ForOp, opts *PipeliningOptions) (*setupResult, Result) {
	lb, ok1 := constantValue(loop.LB)
	ub, ok2 := constantValue(loop.UB)
	step, ok3 := constantValue(loop.Step)
	if !ok1 || !ok2 || !ok3 || step <= 0 {
		return nil, NotApplicable{Reason: "loop bounds are not static, positive-step constants"}
	}

	schedule, numStages, ok := opts.GetSchedule(loop)
	if !ok {
		return nil, NotApplicable{Reason: "no schedule available for this loop"}
	}
	if numStages < 1 {
		return nil, NotApplicable{Reason: "schedule reports fewer than one pipeline stage"}
	}

	body := loop.Body.Body
	for _, op := range body.Ops {
		stage, staged := schedule[op]
		if !staged {
			return nil, diagnosticResult(errors.ErrorMissingStage, op,
				fmt.Sprintf("%s has no assigned pipeline stage", op.Mnemonic()))
		}
		if stage < 0 || stage >= numStages {
			return nil, diagnosticResult(errors.ErrorMissingStage, op,
				fmt.Sprintf("stage %d is out of range [0,%d)", stage, numStages))
		}
	}
	if _, staged := schedule[body.Terminator]; staged {
		return nil, diagnosticResult(errors.ErrorStagedTerminator, body.Terminator,
			"the yield terminator must not carry a pipeline stage")
	}

	yield := loop.Yield()
	for _, v := range yield.Vals {
		if v.IsBlockArg() || v.DefOp == nil {
			return nil, NotApplicable{Reason: fmt.Sprintf("yielded value %s is not produced inside the loop body (loop-carry distance greater than one)", v)}
		}
		if _, staged := schedule[v.DefOp]; !staged {
			return nil, diagnosticResult(errors.ErrorYieldOperandNotStaged, yield,
				fmt.Sprintf("yielded value %s does not trace to a staged operation", v))
		}
	}

	if !opts.PeelEpilogue && opts.PredicateFn == nil {
		return nil, NotApplicable{Reason: "no PredicateFn supplied and PeelEpilogue is not set"}
	}

	tripCount := (ub - lb + step - 1) / step
	if tripCount < int64(numStages) {
		return nil, NotApplicable{Reason: "loop trip count is shorter than the pipeline depth"}
	}

	return &setupResult{
		loop: loop, schedule: schedule, numStages: numStages,
		lb: lb, ub: ub, step: step, tripCount: tripCount,
		bodyOps: body.Ops,
	}, nil
}

func constantValue(v *ir.Value) (int64, bool) {
	c, ok := v.DefOp.(*ir.ConstantOp)
	if !ok {
		return 0, false
	}
	return c.Value_, true
}
