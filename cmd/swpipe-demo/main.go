package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"swpipe/internal/dsl"
	"swpipe/internal/errors"
	"swpipe/internal/ir"
	"swpipe/internal/pipeline"
)

func main() {
	commonlog.Configure(1, nil)

	if len(os.Args) < 2 {
		fmt.Println("Usage: swpipe-demo <file.loop>")
		os.Exit(1)
	}

	path := os.Args[1]
	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read file: %s", err)
		os.Exit(1)
	}

	prog, err := dsl.Parse(string(source))
	if err != nil {
		reportParseError(string(source), err)
		os.Exit(1)
	}

	b, loop, schedule, err := dsl.Build(prog)
	if err != nil {
		color.Red("failed to build IR: %s", err)
		os.Exit(1)
	}

	numStages := 0
	for _, s := range schedule {
		if s+1 > numStages {
			numStages = s + 1
		}
	}

	fmt.Println("--- original ---")
	fmt.Print(ir.PrintBlock(b.InsertionBlock()))

	opts := pipeline.DefaultOptions(func(l *ir.ForOp) (pipeline.Schedule, int, bool) {
		if l != loop {
			return nil, 0, false
		}
		return schedule, numStages, true
	})

	result := pipeline.PipelineLoop(loop, b.Alloc, opts)
	pipeline.LogOutcome(path, result)

	reporter := errors.NewReporter()
	switch r := result.(type) {
	case *pipeline.NewLoop:
		color.Green("pipelined into a %d-stage kernel", numStages)
		fmt.Println("--- pipelined ---")
		fmt.Print(ir.PrintBlock(b.InsertionBlock()))
	case pipeline.NotApplicable:
		color.Yellow("not applicable: %s", r.Reason)
	case *pipeline.DiagnosticResult:
		fmt.Print(reporter.Format(r.Diagnostic))
		os.Exit(1)
	}
}

func reportParseError(src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("unexpected error: %s", err)
		return
	}
	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("syntax error at unknown location: %s", err)
		return
	}
	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", pos.Column-1) + "^"
	color.Red("syntax error in %s at line %d, column %d:", pos.Filename, pos.Line, pos.Column)
	fmt.Println(line)
	color.HiRed(caret)
	fmt.Printf("-> %s\n", pe.Message())
}
