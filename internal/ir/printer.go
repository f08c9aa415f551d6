package ir

import (
	"fmt"
	"strings"
)

// Printer provides pretty-printing for IR, in the teacher's indent/writeLine
// style, adapted from a whole-contract printer down to the shape this
// dialect actually has: a block of ops around (at most) one ForOp.
type Printer struct {
	indent int
	output strings.Builder
}

// NewPrinter creates a new IR printer.
func NewPrinter() *Printer {
	return &Printer{indent: 0}
}

// PrintBlock returns the string representation of a block and its ops.
func PrintBlock(block *Block) string {
	p := NewPrinter()
	p.printBlock(block)
	return p.output.String()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printBlock(block *Block) {
	argStrs := make([]string, len(block.Args))
	for i, a := range block.Args {
		argStrs[i] = fmt.Sprintf("%s: %s", a, a.Typ)
	}
	p.writeLine("^bb(%s):", strings.Join(argStrs, ", "))
	p.indent++
	for _, op := range block.Ops {
		p.printOp(op)
	}
	if block.Terminator != nil {
		p.printOp(block.Terminator)
	}
	p.indent--
}

func (p *Printer) printOp(op Op) {
	switch o := op.(type) {
	case *ForOp:
		p.writeLine("%s = for %%iv = %s to %s step %s iter_args(%s) {",
			p.resultList(o.Results()), o.LB, o.UB, o.Step, p.operandList(o.InitArgs))
		p.indent++
		p.printBlock(o.Body.Body)
		p.indent--
		p.writeLine("}")
	default:
		p.writeLine("%s", op.String())
	}
}

func (p *Printer) resultList(vals []*Value) string {
	if len(vals) == 0 {
		return "_"
	}
	strs := make([]string, len(vals))
	for i, v := range vals {
		strs[i] = v.String()
	}
	return strings.Join(strs, ", ")
}

func (p *Printer) operandList(vals []*Value) string {
	strs := make([]string, len(vals))
	for i, v := range vals {
		strs[i] = v.String()
	}
	return strings.Join(strs, ", ")
}
