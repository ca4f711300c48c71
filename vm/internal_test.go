package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/parsevm/compiler"
	"github.com/halvard/parsevm/forest"
	"github.com/halvard/parsevm/grammar"
	"github.com/halvard/parsevm/stream"
)

// TestLiveRefcountInvariantHoldsMidRun drives a real ambiguous run — two
// productions of X sharing one ForkStart, one completing a token before
// the other — through the unexported step observer and checks spec.md
// §8's invariant ("sum of refcounts over live fragments == #live
// threads + #tails") at every token-step boundary where a still-running
// thread and a completed tail coexist. It is a white-box test because
// that boundary state isn't observable through vm.Run's public
// signature.
func TestLiveRefcountInvariantHoldsMidRun(t *testing.T) {
	g := grammar.New()
	g.AddProduction("S", grammar.Production{
		Components: []grammar.Component{{Kind: grammar.Nonterminal, Value: "X"}},
	})
	g.AddProduction("X", grammar.Production{
		Components: []grammar.Component{{Kind: grammar.Terminal, Value: "x", Quoted: true}},
	})
	g.AddProduction("X", grammar.Production{
		Components: []grammar.Component{
			{Kind: grammar.Terminal, Value: "x", Quoted: true},
			{Kind: grammar.Terminal, Value: "y", Quoted: true},
		},
	})
	cg := compiler.Compile(g)

	tokens := []string{"x", "y"}
	matchFn := func(literal string, tokIdx int) bool {
		return tokIdx < len(tokens) && tokens[tokIdx] == literal
	}

	var checked int
	observe := func(arena *forest.Arena, live []Thread, tails []stream.Tail) {
		if len(live) == 0 || len(tails) == 0 {
			return
		}
		checked++
		frontier := make([]forest.Index, 0, len(live)+len(tails))
		for _, th := range live {
			frontier = append(frontier, th.Frag)
		}
		for _, tl := range tails {
			frontier = append(frontier, tl.Frag)
		}
		assert.Equal(t, len(live)+len(tails), arena.LiveRefcount(frontier...))
	}

	pt := run("S", cg, matchFn, 0, observe)

	require.Greater(t, checked, 0, "the observer never saw a live thread and a tail at the same step")
	assert.Equal(t, 2, pt.Count(), "both productions of X must still survive as distinct derivations")
}
