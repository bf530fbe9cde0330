// Package parse is a parser-combinator engine for hand-written recursive
// descent grammars.
//
// # Overview
//
// A grammar supplies a Scanner that recognises one token at a time. The
// Lexer turns it into a pull-based token stream with position bookkeeping,
// and grammar code composes Parser functions that thread the lexer by value:
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Source    │────▶│   Lexer     │────▶│   Parser    │
//	│   (text)    │     │  (tokens)   │     │  (values)   │
//	└─────────────┘     └─────────────┘     └─────────────┘
//	                           │                   │
//	                           ▼                   ▼
//	                    ┌─────────────┐     ┌─────────────┐
//	                    │    Span     │     │   Context   │
//	                    │  Tracking   │     │  and Sink   │
//	                    └─────────────┘     └─────────────┘
//
// # Backtracking
//
// Copying a Lexer is the snapshot operation. Every Parser receives a lexer
// and returns a Result holding the continuation lexer, so a combinator that
// wants to speculate keeps the lexer it was given and simply discards the
// failed attempt.
//
// # Failures
//
// A failing Result carries the lexer at the point the failure was detected
// and a structured *Error. Maybe turns any failure into an empty Optional.
// Atomic and Choice only do so when the attempt consumed no visible token:
// once a prefix of a production has been recognised the failure is final.
//
// # Recovery
//
// Errors that a grammar can survive (a malformed list item, a missing
// element) are sent to the Sink held by the Context. When no sink is
// configured the same errors abort the parse instead:
//
//	sink := &parse.Collector{}
//	ctx := parse.NewContext(parse.WithSink(sink))
//	res := parse.Run(program, lexer, ctx)
//	for _, err := range sink.Errors() {
//	    diag.Render(os.Stderr, err.Diagnostic())
//	}
//
// # Recursion
//
// Recursive grammars are written as mutually recursive functions with the
// Parser signature. Recursion depth is bounded by the goroutine stack, so
// pathologically nested input is the grammar author's concern.
//
// # Thread Safety
//
// A single parse is not safe for concurrent use. Independent parses may run
// on different goroutines, each with its own Context.
package parse
