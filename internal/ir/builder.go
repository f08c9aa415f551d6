package ir

// Builder provides a small fluent API for constructing a counted loop and
// its body in-memory, standing in for the teacher's AST-to-IR builder: the
// role is the same ("turn some input into well-formed IR"), only the input
// here is direct Go calls (or, for the demo CLI and DSL-driven tests, a
// tiny textual grammar — see internal/dsl) rather than a parsed AST.
type Builder struct {
	Alloc *IDAllocator
	block *Block
}

// NewBuilder creates a builder with a fresh ID allocator.
func NewBuilder() *Builder {
	return &Builder{Alloc: NewIDAllocator(0, 0)}
}

// SetInsertionBlock directs the ops built by subsequent calls at blk.
func (b *Builder) SetInsertionBlock(blk *Block) { b.block = blk }

// InsertionBlock returns the block currently receiving new ops.
func (b *Builder) InsertionBlock() *Block { return b.block }

func (b *Builder) Const(value int64, name string) *Value {
	op := NewConstant(b.Alloc, value, name)
	b.block.Append(op)
	return op.Result
}

func (b *Builder) Cmp(pred string, lhs, rhs *Value, name string) *Value {
	op := NewCmp(b.Alloc, pred, lhs, rhs, name)
	b.block.Append(op)
	return op.Result
}

func (b *Builder) Binary(opName string, lhs, rhs *Value, name string) *Value {
	op := NewBinary(b.Alloc, opName, lhs, rhs, name)
	b.block.Append(op)
	return op.Result
}

func (b *Builder) Load(memory string, index *Value, name string) *Value {
	op := NewLoad(b.Alloc, memory, index, name)
	b.block.Append(op)
	return op.Result
}

func (b *Builder) Store(memory string, index, val *Value) {
	b.block.Append(NewStore(b.Alloc, memory, index, val))
}

func (b *Builder) Select(cond, trueVal, falseVal *Value, name string) *Value {
	op := NewSelect(b.Alloc, cond, trueVal, falseVal, name)
	b.block.Append(op)
	return op.Result
}

func (b *Builder) Yield(vals ...*Value) {
	b.block.SetTerminator(NewYield(b.Alloc, vals))
}

// BeginFor creates a new ForOp in the current block, switches the
// insertion block to its body, and returns the op so the caller can later
// read InductionVar()/IterArgs() while building the body. EndFor restores
// the insertion block to the loop's parent.
func (b *Builder) BeginFor(lb, ub, step *Value, initArgs []*Value, iterArgNames []string) *ForOp {
	argTypes := make([]Type, len(initArgs)+1)
	argNames := make([]string, len(initArgs)+1)
	argTypes[0] = I64
	argNames[0] = "iv"
	for i := range initArgs {
		argTypes[i+1] = initArgs[i].Typ
		if i < len(iterArgNames) {
			argNames[i+1] = iterArgNames[i]
		}
	}
	op := NewForOp(b.Alloc, lb, ub, step, initArgs, argTypes, argNames)
	b.block.Append(op)
	b.block = op.Body.Body
	return op
}

// EndFor switches the insertion block back to the loop's enclosing block.
func (b *Builder) EndFor(op *ForOp) {
	b.block = op.Block()
}
