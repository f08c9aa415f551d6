package pipeline

import "swpipe/internal/ir"

// RegisterDepths maps each value defined inside the loop body that survives
// past its own pipeline stage to the number of shift-register ages the
// kernel must allocate for it: age 1 is "one kernel trip old", age 2 "two
// trips old", and so on. A value absent from the map never needs to cross a
// trip boundary and is read directly from the kernel body's local clone.
type RegisterDepths map[*ir.Value]int

// ComputeRegisterDepths walks every use of every staged value in body and
// works out how many pipeline trips separate each definition from its
// farthest use — directly, when a later-stage op reads the value within the
// same original iteration, and with one extra trip of latency when the
// value instead reaches its consumer by round-tripping through the loop's
// own iter-args (the yield/block-argument pair).
func ComputeRegisterDepths(body *ir.Block, schedule Schedule) RegisterDepths {
	depths := make(RegisterDepths)
	bump := func(v *ir.Value, age int) {
		if age > depths[v] {
			depths[v] = age
		}
	}

	yieldVals := body.Terminator.(*ir.YieldOp).Vals

	for _, op := range body.Ops {
		useStage := schedule[op]
		for _, operand := range op.Operands() {
			switch {
			case operand.IsBlockArg() && operand.DefBlock == body && operand.ArgNo > 0:
				j := operand.ArgNo - 1
				yv := yieldVals[j]
				if yv.DefOp == nil {
					continue
				}
				if defStage, ok := schedule[yv.DefOp]; ok {
					bump(yv, useStage-defStage+1)
				}
			case operand.DefOp != nil:
				if defStage, ok := schedule[operand.DefOp]; ok && useStage > defStage {
					bump(operand, useStage-defStage)
				}
			}
		}
	}
	return depths
}
