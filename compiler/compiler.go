// Package compiler lowers a grammar.Grammar to a flat bytecode program:
// an interned string table, an ordered sequence of Opcodes, and a map
// from nonterminal name index to the addresses at which its productions
// begin. This is the "Compiler" module of the parser VM (spec.md §4.1).
package compiler

import "github.com/halvard/parsevm/grammar"

// OpKind tags the three opcode shapes the VM understands.
type OpKind uint8

const (
	// Match expects the current token to satisfy the literal at Idx,
	// optionally binding it under Name.
	Match OpKind = iota
	// Fork nondeterministically enters every production of the
	// nonterminal at Idx, optionally binding the resulting subtree
	// under Name.
	Fork
	// Return ends a production of the nonterminal at Idx, optionally
	// labeled with the production name at Name.
	Return
)

func (k OpKind) String() string {
	switch k {
	case Match:
		return "Match"
	case Fork:
		return "Fork"
	case Return:
		return "Return"
	default:
		return "?"
	}
}

// NoName marks the absence of an optional binding/production name.
const NoName = -1

// Opcode is a single compiled instruction. Idx is a string-table index
// whose meaning depends on Kind: the literal being matched (Match), the
// nonterminal being forked into (Fork), or the nonterminal whose
// production is ending (Return). Name is a string-table index for the
// optional binding/production label, or NoName.
type Opcode struct {
	Kind OpKind
	Idx  int
	Name int
}

// CompiledGrammar is the immutable, flat bytecode program produced by
// Compile. Addresses are indices into the opcode slice.
type CompiledGrammar struct {
	strings   []string
	internIdx map[string]int
	opcodes   []Opcode
	// nontermAddrs maps a nonterminal's string-table index to the
	// ordered list of addresses at which its productions begin, one
	// entry per production, in source order.
	nontermAddrs map[int][]int
}

// At returns the opcode at address ip.
func (cg *CompiledGrammar) At(ip int) Opcode {
	return cg.opcodes[ip]
}

// Len returns the number of opcodes in the program.
func (cg *CompiledGrammar) Len() int {
	return len(cg.opcodes)
}

// String returns the interned string at idx.
func (cg *CompiledGrammar) String(idx int) string {
	return cg.strings[idx]
}

// Strings returns the interned string table. Callers that need their own
// independent copy (e.g. stream.New) must clone it themselves; this
// returns the CompiledGrammar's own backing slice.
func (cg *CompiledGrammar) Strings() []string {
	return cg.strings
}

// StringCount returns the number of distinct interned strings. Callers
// that need a per-token scratch cache the size of the string table (see
// vm.Run's match-dedup cache) use this to size it.
func (cg *CompiledGrammar) StringCount() int {
	return len(cg.strings)
}

// LookupString returns the string-table index of s, if interned.
func (cg *CompiledGrammar) LookupString(s string) (int, bool) {
	idx, ok := cg.internIdx[s]
	return idx, ok
}

// LookupNonterm returns the start addresses of ntIdx's productions, in
// source order. It returns nil if ntIdx has no productions (e.g. it was
// referenced but never defined).
func (cg *CompiledGrammar) LookupNonterm(ntIdx int) []int {
	return cg.nontermAddrs[ntIdx]
}

func (cg *CompiledGrammar) intern(s string) int {
	if idx, ok := cg.internIdx[s]; ok {
		return idx
	}
	idx := len(cg.strings)
	cg.strings = append(cg.strings, s)
	cg.internIdx[s] = idx
	return idx
}

func internOptional(cg *CompiledGrammar, s string) int {
	if s == "" {
		return NoName
	}
	return cg.intern(s)
}

// Compile lowers g to a CompiledGrammar following spec.md §4.1: for each
// nonterminal, in grammar-definition order, and for each of its
// productions in definition order, record the nonterminal's current
// opcode-length as a start address, emit one Fork/Match per component in
// left-to-right order, then emit a single Return. An empty production
// compiles to a sole Return instruction.
func Compile(g *grammar.Grammar) *CompiledGrammar {
	cg := &CompiledGrammar{
		internIdx:    make(map[string]int),
		nontermAddrs: make(map[int][]int),
	}

	for _, nt := range g.Nonterminals() {
		ntIdx := cg.intern(nt)
		for _, prod := range g.Productions(nt) {
			addr := len(cg.opcodes)
			cg.nontermAddrs[ntIdx] = append(cg.nontermAddrs[ntIdx], addr)

			for _, comp := range prod.Components {
				nameIdx := internOptional(cg, comp.Name)
				if comp.Kind == grammar.Nonterminal {
					cg.opcodes = append(cg.opcodes, Opcode{
						Kind: Fork,
						Idx:  cg.intern(comp.Value),
						Name: nameIdx,
					})
				} else {
					cg.opcodes = append(cg.opcodes, Opcode{
						Kind: Match,
						Idx:  cg.intern(comp.Value),
						Name: nameIdx,
					})
				}
			}

			cg.opcodes = append(cg.opcodes, Opcode{
				Kind: Return,
				Idx:  ntIdx,
				Name: internOptional(cg, prod.Name),
			})
		}
	}

	return cg
}
