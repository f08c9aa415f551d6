package dsl

import "github.com/alecthomas/participle/v2/lexer"

var loopLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_.]*`, nil},
		{"Integer", `-?[0-9]+`, nil},
		{"Punctuation", `[{}()\[\],:=]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
