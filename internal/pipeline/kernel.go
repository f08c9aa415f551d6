package pipeline

import (
	"fmt"

	"swpipe/internal/errors"
	"swpipe/internal/ir"
	"swpipe/internal/rewrite"
)

func predicationRefusedDiagnostic(clone ir.Op) errors.Diagnostic {
	return errors.Diagnostic{
		Severity: errors.Error,
		Code:     errors.ErrorPredicationRefused,
		Message:  fmt.Sprintf("PredicateFn refused to predicate %s", clone.Mnemonic()),
		OpLabel:  clone.String(),
		HelpText: errors.GetErrorDescription(errors.ErrorPredicationRefused),
	}
}

// registerSlot identifies one shift-register iter-arg of the pipelined
// kernel: the original value it shadows, and how many kernel trips old
// (age) the slot holds. A value needing depth d ages gets d consecutive
// slots, age 1 (newest) through age d (oldest).
type registerSlot struct {
	value *ir.Value
	age   int
}

func slotIndex(slots []registerSlot, v *ir.Value, age int) int {
	for i, s := range slots {
		if s.value == v && s.age == age {
			return i
		}
	}
	panic(fmt.Sprintf("pipeline: no register slot for %s at age %d", v, age))
}

// buildKernel constructs the single steady-state loop that replaces every
// "all stages valid" trip (p = numStages-1 .. tripCount-1) at once: one new
// ForOp whose body clones the original body exactly once, with every
// cross-trip value read from a shift-register iter-arg instead of being
// recomputed, and whose iter-args are exactly those shift registers (the
// original loop's iter-args are entirely subsumed by them).
func buildKernel(ps *pipelineState, r *rewrite.Rewriter) (*ir.ForOp, []registerSlot) {
	su := ps.su
	depths := ComputeRegisterDepths(su.loop.Body.Body, su.schedule)

	// Every yielded value needs enough ages to still be readable once the
	// loop retires, even if no body op ever reads it back directly — the
	// final result (finalResults, in epilogue.go) is read off one of these
	// slots too.
	for _, yv := range su.loop.Yield().Vals {
		if yv.DefOp == nil {
			continue
		}
		defStage, ok := su.schedule[yv.DefOp]
		if !ok {
			continue
		}
		floor := 0
		switch {
		case !ps.opts.PeelEpilogue:
			floor = su.numStages - defStage
		case defStage == 0:
			floor = 1
		}
		if floor > depths[yv] {
			depths[yv] = floor
		}
	}

	var slots []registerSlot
	for v, depth := range depths {
		for age := 1; age <= depth; age++ {
			slots = append(slots, registerSlot{value: v, age: age})
		}
	}

	newLB := r.Const(su.lb+int64(su.numStages-1)*su.step, "kernel.lb")
	newUB := su.loop.UB
	if !ps.opts.PeelEpilogue {
		// Extend the kernel to also run the numStages-1 trips a peeled
		// epilogue would otherwise have drained, guarded by PredicateFn
		// instead of being skipped by construction.
		extra := r.Const(int64(su.numStages-1)*su.step, "drain.extent")
		newUB = r.Binary("add", su.loop.UB, extra, "kernel.ub")
	}

	initArgs := make([]*ir.Value, len(slots))
	argTypes := make([]ir.Type, len(slots)+1)
	argNames := make([]string, len(slots)+1)
	argTypes[0] = ir.I64
	argNames[0] = "kiv"
	for i, s := range slots {
		argTypes[i+1] = s.value.Typ
		argNames[i+1] = fmt.Sprintf("%s.age%d", s.value.Name, s.age)
		trip := (su.numStages - 1) - s.age
		initArgs[i] = ps.seedValue(s.value, trip)
	}

	kernel := ir.NewForOp(ps.alloc, newLB, newUB, su.loop.Step, initArgs, argTypes, argNames)
	r.InsertionBlock().Append(kernel)

	outer := r.SaveInsertionPoint()
	r.SetInsertionPointToEnd(kernel.Body.Body)
	defer r.RestoreInsertionPoint(outer)

	kiv := kernel.InductionVar()
	slotArg := func(v *ir.Value, age int) *ir.Value {
		return kernel.Body.Body.Args[1+slotIndex(slots, v, age)]
	}

	cloneMap := ir.NewMapping()
	ivByStage := map[int]*ir.Value{}
	ivForStage := func(stage int) *ir.Value {
		if stage == 0 {
			return kiv
		}
		if v, ok := ivByStage[stage]; ok {
			return v
		}
		offset := r.Const(int64(stage)*su.step, "stage.offset")
		v := r.Binary("sub", kiv, offset, "iv.stage")
		ivByStage[stage] = v
		return v
	}

	resolve := func(orig *ir.Value, consumerStage int) *ir.Value {
		switch {
		case orig == su.loop.InductionVar():
			return ivForStage(consumerStage)
		case orig.IsBlockArg() && orig.DefBlock == su.loop.Body.Body && orig.ArgNo > 0:
			j := orig.ArgNo - 1
			yieldVal := su.loop.Yield().Vals[j]
			defStage := su.schedule[yieldVal.DefOp]
			age := consumerStage - defStage + 1
			return slotArg(yieldVal, age)
		case orig.DefOp != nil:
			if defStage, ok := su.schedule[orig.DefOp]; ok {
				if age := consumerStage - defStage; age > 0 {
					return slotArg(orig, age)
				}
				return cloneMap.Lookup(orig)
			}
			return orig
		default:
			return orig
		}
	}

	// guardForStage computes pred_s = kiv < ub + s*step, the per-stage
	// predicate from spec 4.4: stage s's op is still operating on a real
	// iteration (iv' = kiv - s*step < ub) exactly while this holds. The
	// oldest stage (numStages-1) never needs one — its iv' is bounded by
	// the kernel's own loop bound regardless of how far the extension
	// runs, so it always executes and gets a nil guard.
	guardByStage := map[int]*ir.Value{}
	guardForStage := func(stage int) *ir.Value {
		if stage == su.numStages-1 {
			return nil
		}
		if v, ok := guardByStage[stage]; ok {
			return v
		}
		offset := r.Const(int64(stage)*su.step, "stage.guard.offset")
		bound := r.Binary("add", su.loop.UB, offset, "stage.guard.ub")
		v := r.Cmp("lt", kiv, bound, "kernel.inrange")
		guardByStage[stage] = v
		return v
	}

	for _, op := range su.bodyOps {
		stage := su.schedule[op]
		clone := op.Clone(ir.NewMapping(), ps.alloc)
		ir.WalkOperandRefs(clone, func(ref ir.OperandRef) {
			ref.Set(resolve(ref.Get(), stage))
		})

		if !ps.opts.PeelEpilogue && ps.predicationFailure == nil {
			if guard := guardForStage(stage); guard != nil {
				if !ps.opts.PredicateFn(Kernel, stage, op, clone, guard, r) {
					ps.predicationFailure = &DiagnosticResult{Diagnostic: predicationRefusedDiagnostic(clone)}
				}
			}
		}
		r.InsertionBlock().Append(clone)

		for i, result := range op.Results() {
			cloneMap.Set(result, clone.Results()[i])
		}
		if ps.opts.AnnotateFn != nil {
			ps.opts.AnnotateFn(Kernel, stage, op, clone)
		}
	}

	nextVals := make([]*ir.Value, len(slots))
	for i, s := range slots {
		if s.age == 1 {
			nextVals[i] = cloneMap.Lookup(s.value)
		} else {
			nextVals[i] = slotArg(s.value, s.age-1)
		}
	}
	r.InsertionBlock().SetTerminator(ir.NewYield(ps.alloc, nextVals))

	// The peeled epilogue resumes from the kernel's results: the slot of age
	// a holds the value produced at trip tripCount-a.
	if ps.opts.PeelEpilogue {
		lastTrip := int(su.tripCount) - 1
		for i, s := range slots {
			ps.vm.Set(s.value, lastTrip+1-s.age, kernel.Results()[i])
		}
	}

	return kernel, slots
}
