package ir

import "fmt"

// Concrete dialect ops. These stand in for the spec's "dialect-specific
// operations for constants, comparisons, arithmetic, and selects" and for
// the loads/stores a pipelined loop body typically contains — all declared
// out of scope of the transform itself, but needed somewhere in a complete
// module so the transform has something real to rewrite.

// ConstantOp materializes a compile-time integer constant.
type ConstantOp struct {
	id     int
	Result *Value
	Value_ int64
	blk    *Block
}

func NewConstant(alloc *IDAllocator, value int64, name string) *ConstantOp {
	op := &ConstantOp{id: alloc.NewOpID(), Value_: value}
	op.Result = &Value{ID: alloc.NewValueID(), Name: name, Typ: I64, DefOp: op, ResultNo: 0}
	return op
}

func (o *ConstantOp) ID() int                 { return o.id }
func (o *ConstantOp) Mnemonic() string        { return "const" }
func (o *ConstantOp) Operands() []*Value      { return nil }
func (o *ConstantOp) SetOperand(i int, v *Value) {}
func (o *ConstantOp) Results() []*Value       { return []*Value{o.Result} }
func (o *ConstantOp) Block() *Block           { return o.blk }
func (o *ConstantOp) setBlock(b *Block)       { o.blk = b }
func (o *ConstantOp) IsTerminator() bool      { return false }
func (o *ConstantOp) Regions() []*Region      { return nil }
func (o *ConstantOp) GetEffects() []Effect    { return []Effect{&PureEffect{}} }
func (o *ConstantOp) String() string {
	return fmt.Sprintf("%s = const %d", o.Result, o.Value_)
}

func (o *ConstantOp) Clone(m *Mapping, alloc *IDAllocator) Op {
	clone := NewConstant(alloc, o.Value_, o.Result.Name)
	m.Set(o.Result, clone.Result)
	return clone
}

// CmpOp computes a boolean predicate from two operands.
type CmpOp struct {
	id     int
	Result *Value
	Pred   string // "lt", "le", "gt", "ge", "eq", "ne"
	LHS    *Value
	RHS    *Value
	blk    *Block
}

func NewCmp(alloc *IDAllocator, pred string, lhs, rhs *Value, name string) *CmpOp {
	op := &CmpOp{id: alloc.NewOpID(), Pred: pred, LHS: lhs, RHS: rhs}
	op.Result = &Value{ID: alloc.NewValueID(), Name: name, Typ: I1, DefOp: op, ResultNo: 0}
	return op
}

func (o *CmpOp) ID() int            { return o.id }
func (o *CmpOp) Mnemonic() string   { return "cmp." + o.Pred }
func (o *CmpOp) Operands() []*Value { return []*Value{o.LHS, o.RHS} }
func (o *CmpOp) SetOperand(i int, v *Value) {
	switch i {
	case 0:
		o.LHS = v
	case 1:
		o.RHS = v
	}
}
func (o *CmpOp) Results() []*Value  { return []*Value{o.Result} }
func (o *CmpOp) Block() *Block      { return o.blk }
func (o *CmpOp) setBlock(b *Block)  { o.blk = b }
func (o *CmpOp) IsTerminator() bool { return false }
func (o *CmpOp) Regions() []*Region { return nil }
func (o *CmpOp) GetEffects() []Effect { return []Effect{&PureEffect{}} }
func (o *CmpOp) String() string {
	return fmt.Sprintf("%s = cmp.%s %s, %s", o.Result, o.Pred, o.LHS, o.RHS)
}

func (o *CmpOp) Clone(m *Mapping, alloc *IDAllocator) Op {
	clone := NewCmp(alloc, o.Pred, m.Lookup(o.LHS), m.Lookup(o.RHS), o.Result.Name)
	m.Set(o.Result, clone.Result)
	return clone
}

// BinaryOp computes a binary arithmetic result.
type BinaryOp struct {
	id     int
	Result *Value
	Op     string // "add", "sub", "mul"
	LHS    *Value
	RHS    *Value
	blk    *Block
}

func NewBinary(alloc *IDAllocator, op string, lhs, rhs *Value, name string) *BinaryOp {
	o := &BinaryOp{id: alloc.NewOpID(), Op: op, LHS: lhs, RHS: rhs}
	o.Result = &Value{ID: alloc.NewValueID(), Name: name, Typ: I64, DefOp: o, ResultNo: 0}
	return o
}

func (o *BinaryOp) ID() int            { return o.id }
func (o *BinaryOp) Mnemonic() string   { return o.Op }
func (o *BinaryOp) Operands() []*Value { return []*Value{o.LHS, o.RHS} }
func (o *BinaryOp) SetOperand(i int, v *Value) {
	switch i {
	case 0:
		o.LHS = v
	case 1:
		o.RHS = v
	}
}
func (o *BinaryOp) Results() []*Value  { return []*Value{o.Result} }
func (o *BinaryOp) Block() *Block      { return o.blk }
func (o *BinaryOp) setBlock(b *Block)  { o.blk = b }
func (o *BinaryOp) IsTerminator() bool { return false }
func (o *BinaryOp) Regions() []*Region { return nil }
func (o *BinaryOp) GetEffects() []Effect { return []Effect{&PureEffect{}} }
func (o *BinaryOp) String() string {
	return fmt.Sprintf("%s = %s %s, %s", o.Result, o.Op, o.LHS, o.RHS)
}

func (o *BinaryOp) Clone(m *Mapping, alloc *IDAllocator) Op {
	clone := NewBinary(alloc, o.Op, m.Lookup(o.LHS), m.Lookup(o.RHS), o.Result.Name)
	m.Set(o.Result, clone.Result)
	return clone
}

// LoadOp reads a[Index] from the named abstract memory "a".
type LoadOp struct {
	id     int
	Result *Value
	Memory string
	Index  *Value
	blk    *Block
}

func NewLoad(alloc *IDAllocator, memory string, index *Value, name string) *LoadOp {
	o := &LoadOp{id: alloc.NewOpID(), Memory: memory, Index: index}
	o.Result = &Value{ID: alloc.NewValueID(), Name: name, Typ: I64, DefOp: o, ResultNo: 0}
	return o
}

func (o *LoadOp) ID() int            { return o.id }
func (o *LoadOp) Mnemonic() string   { return "load" }
func (o *LoadOp) Operands() []*Value { return []*Value{o.Index} }
func (o *LoadOp) SetOperand(i int, v *Value) {
	if i == 0 {
		o.Index = v
	}
}
func (o *LoadOp) Results() []*Value  { return []*Value{o.Result} }
func (o *LoadOp) Block() *Block      { return o.blk }
func (o *LoadOp) setBlock(b *Block)  { o.blk = b }
func (o *LoadOp) IsTerminator() bool { return false }
func (o *LoadOp) Regions() []*Region { return nil }
func (o *LoadOp) GetEffects() []Effect {
	return []Effect{&MemoryEffect{Memory: o.Memory, Kind: MemoryEffectRead}}
}
func (o *LoadOp) String() string {
	return fmt.Sprintf("%s = load %s[%s]", o.Result, o.Memory, o.Index)
}

func (o *LoadOp) Clone(m *Mapping, alloc *IDAllocator) Op {
	clone := NewLoad(alloc, o.Memory, m.Lookup(o.Index), o.Result.Name)
	m.Set(o.Result, clone.Result)
	return clone
}

// StoreOp writes Val into r[Index] in the named abstract memory "r". It has
// no result and its side effect must never be dropped by predication.
type StoreOp struct {
	id     int
	Memory string
	Index  *Value
	Val    *Value
	blk    *Block
}

func NewStore(alloc *IDAllocator, memory string, index, val *Value) *StoreOp {
	return &StoreOp{id: alloc.NewOpID(), Memory: memory, Index: index, Val: val}
}

func (o *StoreOp) ID() int            { return o.id }
func (o *StoreOp) Mnemonic() string   { return "store" }
func (o *StoreOp) Operands() []*Value { return []*Value{o.Index, o.Val} }
func (o *StoreOp) SetOperand(i int, v *Value) {
	switch i {
	case 0:
		o.Index = v
	case 1:
		o.Val = v
	}
}
func (o *StoreOp) Results() []*Value  { return nil }
func (o *StoreOp) Block() *Block      { return o.blk }
func (o *StoreOp) setBlock(b *Block)  { o.blk = b }
func (o *StoreOp) IsTerminator() bool { return false }
func (o *StoreOp) Regions() []*Region { return nil }
func (o *StoreOp) GetEffects() []Effect {
	return []Effect{&MemoryEffect{Memory: o.Memory, Kind: MemoryEffectWrite}}
}
func (o *StoreOp) String() string {
	return fmt.Sprintf("store %s[%s], %s", o.Memory, o.Index, o.Val)
}

func (o *StoreOp) Clone(m *Mapping, alloc *IDAllocator) Op {
	return NewStore(alloc, o.Memory, m.Lookup(o.Index), m.Lookup(o.Val))
}

// SelectOp picks TrueVal when Cond holds, else FalseVal — used to splice a
// predicated stage's previous-iteration value back in for escaping results
// in trailing-tail mode (Section 4.4's yield-building exception).
type SelectOp struct {
	id       int
	Result   *Value
	Cond     *Value
	TrueVal  *Value
	FalseVal *Value
	blk      *Block
}

func NewSelect(alloc *IDAllocator, cond, trueVal, falseVal *Value, name string) *SelectOp {
	o := &SelectOp{id: alloc.NewOpID(), Cond: cond, TrueVal: trueVal, FalseVal: falseVal}
	o.Result = &Value{ID: alloc.NewValueID(), Name: name, Typ: trueVal.Typ, DefOp: o, ResultNo: 0}
	return o
}

func (o *SelectOp) ID() int            { return o.id }
func (o *SelectOp) Mnemonic() string   { return "select" }
func (o *SelectOp) Operands() []*Value { return []*Value{o.Cond, o.TrueVal, o.FalseVal} }
func (o *SelectOp) SetOperand(i int, v *Value) {
	switch i {
	case 0:
		o.Cond = v
	case 1:
		o.TrueVal = v
	case 2:
		o.FalseVal = v
	}
}
func (o *SelectOp) Results() []*Value  { return []*Value{o.Result} }
func (o *SelectOp) Block() *Block      { return o.blk }
func (o *SelectOp) setBlock(b *Block)  { o.blk = b }
func (o *SelectOp) IsTerminator() bool { return false }
func (o *SelectOp) Regions() []*Region { return nil }
func (o *SelectOp) GetEffects() []Effect { return []Effect{&PureEffect{}} }
func (o *SelectOp) String() string {
	return fmt.Sprintf("%s = select %s, %s, %s", o.Result, o.Cond, o.TrueVal, o.FalseVal)
}

func (o *SelectOp) Clone(m *Mapping, alloc *IDAllocator) Op {
	clone := NewSelect(alloc, m.Lookup(o.Cond), m.Lookup(o.TrueVal), m.Lookup(o.FalseVal), o.Result.Name)
	m.Set(o.Result, clone.Result)
	return clone
}

// YieldOp is the body block's terminator: its operands become the next
// iteration's region arguments (loop-carried values).
type YieldOp struct {
	id   int
	Vals []*Value
	blk  *Block
}

func NewYield(alloc *IDAllocator, vals []*Value) *YieldOp {
	return &YieldOp{id: alloc.NewOpID(), Vals: vals}
}

func (o *YieldOp) ID() int            { return o.id }
func (o *YieldOp) Mnemonic() string   { return "yield" }
func (o *YieldOp) Operands() []*Value { return o.Vals }
func (o *YieldOp) SetOperand(i int, v *Value) {
	if i >= 0 && i < len(o.Vals) {
		o.Vals[i] = v
	}
}
func (o *YieldOp) Results() []*Value  { return nil }
func (o *YieldOp) Block() *Block      { return o.blk }
func (o *YieldOp) setBlock(b *Block)  { o.blk = b }
func (o *YieldOp) IsTerminator() bool { return true }
func (o *YieldOp) Regions() []*Region { return nil }
func (o *YieldOp) GetEffects() []Effect { return []Effect{&PureEffect{}} }
func (o *YieldOp) String() string {
	return fmt.Sprintf("yield %v", o.Vals)
}

func (o *YieldOp) Clone(m *Mapping, alloc *IDAllocator) Op {
	vals := make([]*Value, len(o.Vals))
	for i, v := range o.Vals {
		vals[i] = m.Lookup(v)
	}
	return NewYield(alloc, vals)
}
