package pipeline

import (
	"swpipe/internal/errors"
	"swpipe/internal/ir"
	"swpipe/internal/rewrite"
)

// Schedule maps every non-terminator op in a loop body to its assigned
// pipeline stage (0-indexed, dense in [0, numStages)).
type Schedule map[ir.Op]int

// Part identifies which peeled region of a pipelined loop a callback is
// being invoked for.
type Part int

const (
	Prologue Part = iota
	Kernel
	Epilogue
)

func (p Part) String() string {
	switch p {
	case Prologue:
		return "prologue"
	case Kernel:
		return "kernel"
	case Epilogue:
		return "epilogue"
	default:
		return "unknown"
	}
}

// GetScheduleFunc is the external scheduling oracle. Given a candidate
// loop, it either returns a stage assignment for every op in the body plus
// the stage count, or reports ok=false, meaning it has no opinion about
// this loop and pipelining simply does not apply.
type GetScheduleFunc func(loop *ir.ForOp) (schedule Schedule, numStages int, ok bool)

// PredicateFunc is the external predication oracle, consulted for each
// kernel-cloned op when the caller asked for a predicated tail instead of a
// peeled epilogue. guard is true while the trip the op was cloned for is
// still a real iteration of the original loop; r is positioned where the
// clone is about to be inserted, so any code the oracle builds lands ahead
// of it (typically a Select feeding a store's address or a load's index,
// patched into the clone with SetOperand). Returning false
// means the op could not be safely predicated, which aborts pipelining
// with ErrorPredicationRefused.
type PredicateFunc func(part Part, stage int, original, clone ir.Op, guard *ir.Value, r *rewrite.Rewriter) bool

// AnnotateFunc is an optional hook invoked once per cloned op, letting
// callers attach their own bookkeeping (e.g. provenance comments) to
// pipelined code without the transform itself needing to know about it.
type AnnotateFunc func(part Part, stage int, original, clone ir.Op)

// PipeliningOptions configures a single PipelineLoop call.
type PipeliningOptions struct {
	GetSchedule GetScheduleFunc

	// PeelEpilogue requests a fully peeled, unconditional drain: numStages-1
	// extra copies of the tail of the loop, one per draining trip. It is
	// mutually complementary with PredicateFn — at least one of the two
	// must be set, or pipelining does not apply (NotApplicable).
	PeelEpilogue bool
	PredicateFn  PredicateFunc
	AnnotateFn   AnnotateFunc
}

// DefaultOptions returns options requesting full epilogue peeling and no
// annotation, for callers with no predication oracle of their own.
func DefaultOptions(getSchedule GetScheduleFunc) PipeliningOptions {
	return PipeliningOptions{GetSchedule: getSchedule, PeelEpilogue: true}
}

// Result is the outcome of PipelineLoop: exactly one of *NewLoop,
// NotApplicable, or *DiagnosticResult.
type Result interface{ isResult() }

// NewLoop carries the pipelined replacement loop and the values that now
// stand in for the original ForOp's results.
type NewLoop struct {
	Loop    *ir.ForOp
	Results []*ir.Value
}

func (*NewLoop) isResult() {}

// NotApplicable means the loop was left untouched: pipelining was not
// attempted at all (e.g. no schedule, non-constant bounds, trip count
// shorter than the pipeline depth).
type NotApplicable struct{ Reason string }

func (NotApplicable) isResult() {}

// DiagnosticResult means pipelining was refused with a Diagnostic explaining
// why: either validation rejected the loop's stages, or PredicateFn declined
// a kernel op (ErrorPredicationRefused).
type DiagnosticResult struct{ Diagnostic errors.Diagnostic }

func (*DiagnosticResult) isResult() {}

func diagnosticResult(code string, op ir.Op, msg string) Result {
	label := "<no op>"
	if op != nil {
		label = op.String()
	}
	return &DiagnosticResult{Diagnostic: errors.Diagnostic{
		Severity: errors.Error,
		Code:     code,
		Message:  msg,
		OpLabel:  label,
		HelpText: errors.GetErrorDescription(code),
	}}
}
