package ir

import "fmt"

// ForOp is the counted loop the whole transform operates on: induction
// variable `iv`, constant bounds, a body region whose block arguments are
// `[iv, a1, ..., ak]`, and a `yield` terminator supplying the next
// iteration's region arguments. ForOp's own results are the loop's final
// iter-arg values — what callers outside the loop observe.
type ForOp struct {
	id       int
	LB       *Value
	UB       *Value
	Step     *Value
	InitArgs []*Value
	Body     *Region
	results  []*Value
	blk      *Block
}

// NewForOp builds a new counted loop. bodyArgTypes/bodyArgNames describe the
// body block's arguments in order [iv, a1, ..., ak]; initArgs supplies the
// loop's initial operand for each aj (parallel to bodyArgTypes[1:]).
func NewForOp(alloc *IDAllocator, lb, ub, step *Value, initArgs []*Value, bodyArgTypes []Type, bodyArgNames []string) *ForOp {
	op := &ForOp{id: alloc.NewOpID(), LB: lb, UB: ub, Step: step, InitArgs: append([]*Value{}, initArgs...)}
	body := NewBlock(alloc, bodyArgTypes, bodyArgNames)
	op.Body = &Region{Owner: op, Body: body}
	body.Parent = op.Body
	for range initArgs {
		op.results = append(op.results, &Value{ID: alloc.NewValueID(), Typ: I64, DefOp: op, ResultNo: len(op.results)})
	}
	return op
}

func (o *ForOp) ID() int          { return o.id }
func (o *ForOp) Mnemonic() string { return "for" }
func (o *ForOp) Operands() []*Value {
	ops := []*Value{o.LB, o.UB, o.Step}
	return append(ops, o.InitArgs...)
}
func (o *ForOp) SetOperand(i int, v *Value) {
	switch {
	case i == 0:
		o.LB = v
	case i == 1:
		o.UB = v
	case i == 2:
		o.Step = v
	case i-3 < len(o.InitArgs):
		o.InitArgs[i-3] = v
	}
}
func (o *ForOp) Results() []*Value  { return o.results }
func (o *ForOp) Block() *Block      { return o.blk }
func (o *ForOp) setBlock(b *Block)  { o.blk = b }
func (o *ForOp) IsTerminator() bool { return false }
func (o *ForOp) Regions() []*Region { return []*Region{o.Body} }
func (o *ForOp) GetEffects() []Effect {
	// Conservative: a for loop's effects are the union of its body's
	// effects, which callers that care can compute by walking Body.Body.
	return []Effect{&PureEffect{}}
}
func (o *ForOp) String() string {
	return fmt.Sprintf("for %%iv = %s to %s step %s (%d iter-args)", o.LB, o.UB, o.Step, len(o.InitArgs))
}

// InductionVar returns the body block's first argument, `iv`.
func (o *ForOp) InductionVar() *Value { return o.Body.Body.Args[0] }

// IterArgs returns the body block's iter-arg arguments, `a1..ak`.
func (o *ForOp) IterArgs() []*Value { return o.Body.Body.Args[1:] }

// Yield returns the body's terminator as a *YieldOp.
func (o *ForOp) Yield() *YieldOp { return o.Body.Body.Terminator.(*YieldOp) }

// Clone deep-clones the loop, including its body, through a fresh mapping
// seeded with iv/iter-arg correspondences. Not used by the transform itself,
// which builds the kernel loop directly rather than cloning the original.
func (o *ForOp) Clone(m *Mapping, alloc *IDAllocator) Op {
	lb, ub, step := m.Lookup(o.LB), m.Lookup(o.UB), m.Lookup(o.Step)
	initArgs := make([]*Value, len(o.InitArgs))
	for i, v := range o.InitArgs {
		initArgs[i] = m.Lookup(v)
	}
	argTypes := make([]Type, len(o.Body.Body.Args))
	argNames := make([]string, len(o.Body.Body.Args))
	for i, a := range o.Body.Body.Args {
		argTypes[i] = a.Typ
		argNames[i] = a.Name
	}
	clone := NewForOp(alloc, lb, ub, step, initArgs, argTypes, argNames)
	for i, a := range o.Body.Body.Args {
		m.Set(a, clone.Body.Body.Args[i])
	}
	for _, op := range o.Body.Body.Ops {
		clone.Body.Body.Append(op.Clone(m, alloc))
	}
	clone.Body.Body.SetTerminator(o.Body.Body.Terminator.Clone(m, alloc))
	for i := range o.results {
		m.Set(o.results[i], clone.results[i])
	}
	return clone
}
