// Package parsevm is the thin public API (spec.md §6): compile grammar
// surface syntax to bytecode, run it against a token stream, and stream
// out the resulting parse trees. Everything it does is a direct call
// into grammar, compiler, vm, and stream — it adds no behavior of its
// own beyond tying those packages together and surfacing syntax errors.
package parsevm

import (
	"io"

	"github.com/halvard/parsevm/compiler"
	"github.com/halvard/parsevm/stream"
	"github.com/halvard/parsevm/syntax"
	"github.com/halvard/parsevm/vm"
)

// CompiledGrammar is the flat bytecode program produced by Compile.
type CompiledGrammar = compiler.CompiledGrammar

// ParsedTrees is the result of Run: every successful derivation,
// streamable on demand.
type ParsedTrees = stream.ParsedTrees

// Handler receives the start/end/term events of one replayed derivation.
type Handler = stream.Handler

// MatchFunc decides whether the token at tokIdx satisfies literal.
type MatchFunc = vm.MatchFunc

// Compile parses grammarText in the surface syntax documented in
// spec.md §6 and lowers it to a CompiledGrammar. Surface-syntax errors
// are returned as a *syntax.Errors.
func Compile(grammarText string) (*CompiledGrammar, error) {
	g, err := syntax.ParseString(grammarText)
	if err != nil {
		return nil, err
	}
	return compiler.Compile(g), nil
}

// CompileReader is Compile for grammar source already held in an
// io.Reader, avoiding a full read into memory for callers who already
// have a stream (e.g. an uploaded file).
func CompileReader(r io.Reader) (*CompiledGrammar, error) {
	g, err := syntax.Parse(r)
	if err != nil {
		return nil, err
	}
	return compiler.Compile(g), nil
}

// Run executes cg starting from startNT against the token stream
// implied by matchFn, exploring every derivation, and returns every
// completed parse that consumed at least minMatch tokens.
//
// Run panics if startNT is not a nonterminal of cg (spec.md §7) — that
// is a programmer error, not a parse failure.
func Run(startNT string, cg *CompiledGrammar, matchFn MatchFunc, minMatch int) *ParsedTrees {
	return vm.Run(startNT, cg, matchFn, minMatch)
}
