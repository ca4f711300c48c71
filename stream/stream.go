// Package stream implements the parse-tree streamer (spec.md §4.5): it
// reconstructs any one chosen complete derivation by walking backward
// from its tail fragment to the root, then replaying that spine forward
// as a sequence of start/term/end events to a caller-supplied Handler.
package stream

import "github.com/halvard/parsevm/forest"

// Tail identifies one completed top-level derivation: the fragment the
// thread held when it returned with an empty stack, and how many tokens
// it had consumed at that point.
type Tail struct {
	Frag           forest.Index
	TokensConsumed int
}

// Handler receives the events of one replayed derivation. Every Start
// has a matching later End on the same ntName, and every Term call falls
// strictly between the Start/End pair that encloses it. Start's name is
// the binding name of the nonterminal reference; End's name is the label
// of the production that completed, except for the outermost rule, whose
// End repeats its Start's name. The two names of one pair can therefore
// differ. name is "" when the binding or label is absent in the surface
// syntax.
type Handler interface {
	Start(ntName, name string)
	End(ntName, name string)
	Term(tokIdx int, name string)
}

// ParsedTrees is the immutable result of vm.Run: the fragment arena, the
// list of completed tails, and an independent copy of the string table
// (spec.md §3) so a ParsedTrees can outlive the CompiledGrammar that
// produced it.
type ParsedTrees struct {
	arena   *forest.Arena
	tails   []Tail
	strings []string
}

// New builds a ParsedTrees. strings is cloned so later mutation of the
// caller's slice (there should be none, but the contract is explicit)
// can never be observed here.
func New(arena *forest.Arena, tails []Tail, strings []string) *ParsedTrees {
	cloned := make([]string, len(strings))
	copy(cloned, strings)
	return &ParsedTrees{arena: arena, tails: tails, strings: cloned}
}

// Count returns the number of successful parses.
func (pt *ParsedTrees) Count() int {
	return len(pt.tails)
}

// CountAtN returns the number of parses that consumed at least n tokens.
func (pt *ParsedTrees) CountAtN(n int) int {
	count := 0
	for _, t := range pt.tails {
		if t.TokensConsumed >= n {
			count++
		}
	}
	return count
}

// Tails exposes the raw completed-derivation list, mainly for tooling
// that wants to report per-tail token counts without replaying events.
func (pt *ParsedTrees) Tails() []Tail {
	out := make([]Tail, len(pt.tails))
	copy(out, pt.tails)
	return out
}

func (pt *ParsedTrees) name(idx int) string {
	if idx == forest.NoName {
		return ""
	}
	return pt.strings[idx]
}

// Execute replays the tidx'th completed derivation against handler.
// Execute panics if tidx is out of range — an out-of-bounds tidx is a
// programmer error (spec.md §7).
func (pt *ParsedTrees) Execute(tidx int, handler Handler) {
	tail := pt.tails[tidx]

	var spine []forest.Index
	for cur := tail.Frag; cur != forest.Nil; {
		spine = append(spine, cur)
		cur = pt.arena.Get(cur).Link
	}
	// spine was collected tail-to-root; reverse it to root-to-tail so
	// index 0 is the opening RuleStart.
	for i, j := 0, len(spine)-1; i < j; i, j = i+1, j-1 {
		spine[i], spine[j] = spine[j], spine[i]
	}

	pt.replay(spine, 0, handler)
}

// replay walks the spine starting at index, emitting the event for
// spine[index] and then recursing into the rest of the spine. Because the
// spine is already in root-to-tail order, this follows the original
// derivation's left-to-right token order. Only the root RuleStart (index
// 0) emits anything after recursing: the final End that closes the whole
// derivation.
func (pt *ParsedTrees) replay(spine []forest.Index, index int, handler Handler) {
	f := pt.arena.Get(spine[index])

	switch f.Kind {
	case forest.RuleStart:
		ntName := pt.strings[f.Idx]
		name := pt.name(f.Name)
		handler.Start(ntName, name)
		if index < len(spine)-1 {
			pt.replay(spine, index+1, handler)
		}
		if index == 0 {
			handler.End(ntName, name)
		}

	case forest.RuleTermValue:
		handler.Term(f.Idx, pt.name(f.Name))
		if index < len(spine)-1 {
			pt.replay(spine, index+1, handler)
		}

	case forest.RuleNonTerm:
		ntName := pt.strings[f.Idx]
		handler.End(ntName, pt.name(f.Name))
		if index < len(spine)-1 {
			pt.replay(spine, index+1, handler)
		}
	}
}
