package dsl

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
)

// Parse parses a loop source string into its AST form.
func Parse(source string) (*Program, error) {
	parser, err := participle.Build[Program](
		participle.Lexer(loopLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, fmt.Errorf("building dsl parser: %w", err)
	}
	program, err := parser.ParseString("<dsl>", source)
	if err != nil {
		return nil, fmt.Errorf("parsing loop source: %w", err)
	}
	return program, nil
}
