// Package rewrite provides the IR-construction primitives the pipelining
// transform (and any other rewrite) is built from: an insertion cursor that
// can be saved and restored while a pass hops between blocks, plus the
// use-replacement and erasure helpers a pass needs once it has built a
// replacement and wants to retire the original ops. Grounded on the
// teacher's whole-program OptimizationPass/OptimizationPipeline shape,
// generalized here from "rewrite the whole program in place" down to
// "build a replacement elsewhere, then swap it in."
package rewrite

import "swpipe/internal/ir"

// InsertionPoint is an opaque cursor a Rewriter can save and later restore,
// so a pass can temporarily redirect construction at another block (e.g.
// the pipelined kernel's body) and come back to where it left off.
type InsertionPoint struct {
	block *ir.Block
}

// Rewriter is a thin builder with a movable insertion point. Unlike
// ir.Builder, which always appends at the tail of whatever block it's
// pointed at, Rewriter additionally knows how to erase ops and redirect
// uses, which the pipelining phases need once the kernel/prologue/epilogue
// bodies are constructed and the original loop must be retired.
type Rewriter struct {
	Alloc *ir.IDAllocator
	point InsertionPoint
}

// NewRewriter creates a rewriter sharing alloc with whatever ID allocator
// produced the program being rewritten, so new ops never collide with
// existing IDs.
func NewRewriter(alloc *ir.IDAllocator) *Rewriter {
	return &Rewriter{Alloc: alloc}
}

// SetInsertionPointToEnd directs subsequent construction at the end of b.
func (r *Rewriter) SetInsertionPointToEnd(b *ir.Block) {
	r.point = InsertionPoint{block: b}
}

// SaveInsertionPoint snapshots the current cursor.
func (r *Rewriter) SaveInsertionPoint() InsertionPoint { return r.point }

// RestoreInsertionPoint returns the cursor to a previously saved point.
func (r *Rewriter) RestoreInsertionPoint(ip InsertionPoint) { r.point = ip }

// InsertionBlock returns the block currently receiving new ops.
func (r *Rewriter) InsertionBlock() *ir.Block { return r.point.block }

// Clone appends a structural copy of op (with operands resolved through m)
// at the current insertion point and returns it.
func (r *Rewriter) Clone(op ir.Op, m *ir.Mapping) ir.Op {
	clone := op.Clone(m, r.Alloc)
	r.point.block.Append(clone)
	return clone
}

// Const materializes a constant at the current insertion point.
func (r *Rewriter) Const(value int64, name string) *ir.Value {
	op := ir.NewConstant(r.Alloc, value, name)
	r.point.block.Append(op)
	return op.Result
}

// Binary materializes an arithmetic op (e.g. an induction-variable offset
// computation) at the current insertion point.
func (r *Rewriter) Binary(opName string, lhs, rhs *ir.Value, name string) *ir.Value {
	op := ir.NewBinary(r.Alloc, opName, lhs, rhs, name)
	r.point.block.Append(op)
	return op.Result
}

// Cmp materializes a predicate comparison at the current insertion point.
func (r *Rewriter) Cmp(pred string, lhs, rhs *ir.Value, name string) *ir.Value {
	op := ir.NewCmp(r.Alloc, pred, lhs, rhs, name)
	r.point.block.Append(op)
	return op.Result
}

// Select materializes a select (used to gate predicated stages' escaping
// values or memory writes) at the current insertion point.
func (r *Rewriter) Select(cond, trueVal, falseVal *ir.Value, name string) *ir.Value {
	op := ir.NewSelect(r.Alloc, cond, trueVal, falseVal, name)
	r.point.block.Append(op)
	return op.Result
}

// Erase removes op from its owning block. It is the caller's responsibility
// to have already redirected any uses of op's results (ReplaceAllUsesWith)
// before calling Erase, or the "no dangling uses" property is violated.
func (r *Rewriter) Erase(op ir.Op) {
	if b := op.Block(); b != nil {
		b.Remove(op)
	}
}

// WalkBlockOperandRefs visits every operand slot reachable from scope: each
// op's own operands plus, recursively, the operands of ops nested in any
// region the op owns (e.g. a ForOp's body).
func WalkBlockOperandRefs(scope *ir.Block, visit func(ref ir.OperandRef)) {
	for _, op := range scope.AllOps() {
		ir.WalkOperandRefs(op, visit)
	}
}

// ReplaceAllUsesWith rewrites every operand slot in scope that currently
// reads old so that it reads new instead. scope is normally the block that
// contains (or once contained) the op defining old — the search does not
// cross block boundaries upward, matching the fact that a value's uses can
// only appear in its own definition's dominance scope.
func ReplaceAllUsesWith(scope *ir.Block, old, new *ir.Value) {
	WalkBlockOperandRefs(scope, func(ref ir.OperandRef) {
		if ref.Get() == old {
			ref.Set(new)
		}
	})
}

// HasUses reports whether any operand slot in scope still reads v — the
// check behind the "no dangling uses" property after a rewrite retires the
// ops that used to define v.
func HasUses(scope *ir.Block, v *ir.Value) bool {
	found := false
	WalkBlockOperandRefs(scope, func(ref ir.OperandRef) {
		if ref.Get() == v {
			found = true
		}
	})
	return found
}
