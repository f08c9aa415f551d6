package dsl

import (
	"fmt"
	"strconv"

	"swpipe/internal/ir"
	"swpipe/internal/pipeline"
)

// Build turns a parsed Program into an ir.ForOp plus the pipeline.Schedule
// implied by its "s <N>:" stage annotations, using a fresh builder and ID
// allocator. Returns the allocator too, since pipeline.PipelineLoop needs
// the same one the program was built with.
func Build(prog *Program) (*ir.Builder, *ir.ForOp, pipeline.Schedule, error) {
	b := ir.NewBuilder()
	root := ir.NewBlock(b.Alloc, nil, nil)
	b.SetInsertionBlock(root)

	lb, err := parseInt(prog.Loop.LB)
	if err != nil {
		return nil, nil, nil, err
	}
	ub, err := parseInt(prog.Loop.UB)
	if err != nil {
		return nil, nil, nil, err
	}
	step, err := parseInt(prog.Loop.Step)
	if err != nil {
		return nil, nil, nil, err
	}

	lbVal := b.Const(lb, "lb")
	ubVal := b.Const(ub, "ub")
	stepVal := b.Const(step, "step")

	initArgs := make([]*ir.Value, len(prog.Loop.IterArgs))
	iterNames := make([]string, len(prog.Loop.IterArgs))
	for i, ia := range prog.Loop.IterArgs {
		init, err := parseInt(ia.Init)
		if err != nil {
			return nil, nil, nil, err
		}
		initArgs[i] = b.Const(init, ia.Name+".init")
		iterNames[i] = ia.Name
	}

	loop := b.BeginFor(lbVal, ubVal, stepVal, initArgs, iterNames)

	env := map[string]*ir.Value{"iv": loop.InductionVar()}
	for i, ia := range prog.Loop.IterArgs {
		env[ia.Name] = loop.IterArgs()[i]
	}

	schedule := pipeline.Schedule{}
	for _, stmt := range prog.Loop.Stmts {
		stage, err := strconv.Atoi(stmt.Stage)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("parsing stage %q: %w", stmt.Stage, err)
		}
		op, name, err := buildStmt(b, env, stmt)
		if err != nil {
			return nil, nil, nil, err
		}
		schedule[op] = stage
		if name != "" {
			env[name] = op.Results()[0]
		}
	}

	yieldVals := make([]*ir.Value, len(prog.Loop.Yield.Vals))
	for i, name := range prog.Loop.Yield.Vals {
		v, ok := env[name]
		if !ok {
			return nil, nil, nil, fmt.Errorf("yield refers to undefined value %q", name)
		}
		yieldVals[i] = v
	}
	b.Yield(yieldVals...)
	b.EndFor(loop)

	return b, loop, schedule, nil
}

func buildStmt(b *ir.Builder, env map[string]*ir.Value, stmt *Stmt) (ir.Op, string, error) {
	if stmt.Store != nil {
		s := stmt.Store
		index, ok := env[s.Index]
		if !ok {
			return nil, "", fmt.Errorf("store index %q is undefined", s.Index)
		}
		val, ok := env[s.Val]
		if !ok {
			return nil, "", fmt.Errorf("store value %q is undefined", s.Val)
		}
		b.Store(s.Memory, index, val)
		return b.InsertionBlock().Ops[len(b.InsertionBlock().Ops)-1], "", nil
	}

	a := stmt.Assign
	switch {
	case a.Expr.Load != nil:
		index, ok := env[a.Expr.Load.Index]
		if !ok {
			return nil, "", fmt.Errorf("load index %q is undefined", a.Expr.Load.Index)
		}
		b.Load(a.Expr.Load.Memory, index, a.Name)
	case a.Expr.Binary != nil:
		bin := a.Expr.Binary
		lhs, ok := env[bin.LHS]
		if !ok {
			return nil, "", fmt.Errorf("operand %q is undefined", bin.LHS)
		}
		rhs, ok := env[bin.RHS]
		if !ok {
			return nil, "", fmt.Errorf("operand %q is undefined", bin.RHS)
		}
		if pred, isCmp := cmpPredicate(bin.Op); isCmp {
			b.Cmp(pred, lhs, rhs, a.Name)
		} else {
			b.Binary(bin.Op, lhs, rhs, a.Name)
		}
	case a.Expr.Select != nil:
		s := a.Expr.Select
		cond, ok := env[s.Cond]
		if !ok {
			return nil, "", fmt.Errorf("select condition %q is undefined", s.Cond)
		}
		tv, ok := env[s.TrueVal]
		if !ok {
			return nil, "", fmt.Errorf("select true value %q is undefined", s.TrueVal)
		}
		fv, ok := env[s.FalseVal]
		if !ok {
			return nil, "", fmt.Errorf("select false value %q is undefined", s.FalseVal)
		}
		b.Select(cond, tv, fv, a.Name)
	case a.Expr.Number != nil:
		n, err := parseInt(*a.Expr.Number)
		if err != nil {
			return nil, "", err
		}
		b.Const(n, a.Name)
	default:
		return nil, "", fmt.Errorf("statement %q has no recognized right-hand side", a.Name)
	}
	ops := b.InsertionBlock().Ops
	return ops[len(ops)-1], a.Name, nil
}

func cmpPredicate(op string) (string, bool) {
	switch op {
	case "cmp.lt":
		return "lt", true
	case "cmp.le":
		return "le", true
	case "cmp.gt":
		return "gt", true
	case "cmp.ge":
		return "ge", true
	case "cmp.eq":
		return "eq", true
	case "cmp.ne":
		return "ne", true
	default:
		return "", false
	}
}

func parseInt(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing integer %q: %w", s, err)
	}
	return n, nil
}
