// Package interp evaluates the arithmetic dialect directly, with no stage
// awareness at all — used only by tests to check that a pipelined loop
// still computes what the original did, never by the transform itself.
package interp

import "swpipe/internal/ir"

// Memory is the flat abstract-array state a load/store op addresses.
type Memory map[string][]int64

// Eval runs loop to completion from initArgs and returns the final
// loop-carried values. loop's bounds must be compile-time constants.
func Eval(loop *ir.ForOp, initArgs []int64, mem Memory) []int64 {
	lb := constVal(loop.LB)
	ub := constVal(loop.UB)
	step := constVal(loop.Step)

	cur := append([]int64{}, initArgs...)
	for iv := lb; iv < ub; iv += step {
		env := map[*ir.Value]int64{loop.InductionVar(): iv}
		for i, a := range loop.IterArgs() {
			env[a] = cur[i]
		}
		for _, op := range loop.Body.Body.Ops {
			evalOp(op, env, mem)
		}
		y := loop.Yield()
		next := make([]int64, len(y.Vals))
		for i, v := range y.Vals {
			next[i] = env[v]
		}
		cur = next
	}
	return cur
}

// EvalOps interprets a flat sequence of ops (as found in a pipelined loop's
// parent block after PipelineLoop has spliced in its prologue/kernel/
// epilogue) under env, recursing into any nested ForOp it encounters. The
// same SSA values that the transform wired as operands are what env keys
// on, so no knowledge of stages or trips is needed here — the pipelined
// program is just read back like any other straight-line IR.
func EvalOps(ops []ir.Op, env map[*ir.Value]int64, mem Memory) {
	for _, op := range ops {
		if forOp, ok := op.(*ir.ForOp); ok {
			cur := make([]int64, len(forOp.InitArgs))
			for i, v := range forOp.InitArgs {
				cur[i] = env[v]
			}
			for iv := env[forOp.LB]; iv < env[forOp.UB]; iv += env[forOp.Step] {
				env[forOp.InductionVar()] = iv
				for i, a := range forOp.IterArgs() {
					env[a] = cur[i]
				}
				EvalOps(forOp.Body.Body.Ops, env, mem)
				for i, v := range forOp.Yield().Vals {
					cur[i] = env[v]
				}
			}
			for i, r := range forOp.Results() {
				env[r] = cur[i]
			}
			continue
		}
		evalOp(op, env, mem)
	}
}

func evalOp(op ir.Op, env map[*ir.Value]int64, mem Memory) {
	switch o := op.(type) {
	case *ir.ConstantOp:
		env[o.Result] = o.Value_
	case *ir.BinaryOp:
		l, r := env[o.LHS], env[o.RHS]
		switch o.Op {
		case "add":
			env[o.Result] = l + r
		case "sub":
			env[o.Result] = l - r
		case "mul":
			env[o.Result] = l * r
		}
	case *ir.CmpOp:
		l, r := env[o.LHS], env[o.RHS]
		var ok bool
		switch o.Pred {
		case "lt":
			ok = l < r
		case "le":
			ok = l <= r
		case "gt":
			ok = l > r
		case "ge":
			ok = l >= r
		case "eq":
			ok = l == r
		case "ne":
			ok = l != r
		}
		if ok {
			env[o.Result] = 1
		} else {
			env[o.Result] = 0
		}
	case *ir.LoadOp:
		env[o.Result] = mem[o.Memory][env[o.Index]]
	case *ir.StoreOp:
		mem[o.Memory][env[o.Index]] = env[o.Val]
	case *ir.SelectOp:
		if env[o.Cond] != 0 {
			env[o.Result] = env[o.TrueVal]
		} else {
			env[o.Result] = env[o.FalseVal]
		}
	}
}

func constVal(v *ir.Value) int64 {
	return v.DefOp.(*ir.ConstantOp).Value_
}
