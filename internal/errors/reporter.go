package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Severity represents how serious a diagnostic is.
type Severity string

const (
	Error   Severity = "error"
	Warning Severity = "warning"
	Note    Severity = "note"
	Help    Severity = "help"
)

// Diagnostic is a structured message anchored on an IR operation rather than
// a source-text position: the pipelining transform operates on IR that may
// have no surviving source location, so the anchor is a short op label
// (e.g. "store (id 7)") instead of a line/column pair.
type Diagnostic struct {
	Severity Severity
	Code     string // e.g. E1001
	Message  string
	OpLabel  string // stand-in for a source position
	Notes    []string
	HelpText string
}

// Reporter renders Diagnostics with the same caret-and-box-drawing style the
// compiler's textual error reporter uses, minus the source-line context —
// there is no source text to quote at the IR level.
type Reporter struct{}

// NewReporter creates a new diagnostic reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// Format renders a single diagnostic.
func (r *Reporter) Format(d Diagnostic) string {
	var result strings.Builder

	levelColor := r.getLevelColor(d.Severity)
	dim := color.New(color.Faint).SprintFunc()

	if d.Code != "" {
		result.WriteString(fmt.Sprintf("%s[%s]: %s\n", levelColor(string(d.Severity)), d.Code, d.Message))
	} else {
		result.WriteString(fmt.Sprintf("%s: %s\n", levelColor(string(d.Severity)), d.Message))
	}

	if d.OpLabel != "" {
		result.WriteString(fmt.Sprintf("    %s %s\n", dim("-->"), d.OpLabel))
	}

	for _, note := range d.Notes {
		noteColor := color.New(color.FgBlue).SprintFunc()
		result.WriteString(fmt.Sprintf("    %s %s %s\n", dim("│"), noteColor("note:"), note))
	}

	if d.HelpText != "" {
		helpColor := color.New(color.FgGreen).SprintFunc()
		result.WriteString(fmt.Sprintf("    %s %s %s\n", dim("│"), helpColor("help:"), d.HelpText))
	}

	return result.String()
}

func (r *Reporter) getLevelColor(level Severity) func(...interface{}) string {
	switch level {
	case Error:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case Note:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	case Help:
		return color.New(color.FgGreen, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}
