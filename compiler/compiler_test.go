package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/parsevm/grammar"
)

func term(value, name string, quoted bool) grammar.Component {
	return grammar.Component{Kind: grammar.Terminal, Value: value, Name: name, Quoted: quoted}
}

func nt(value, name string) grammar.Component {
	return grammar.Component{Kind: grammar.Nonterminal, Value: value, Name: name}
}

func TestCompileEmptyProduction(t *testing.T) {
	g := grammar.New()
	g.AddProduction("E", grammar.Production{})

	cg := Compile(g)

	require.Equal(t, 1, cg.Len())
	op := cg.At(0)
	assert.Equal(t, Return, op.Kind)
	assert.Equal(t, NoName, op.Name)
	ntIdx, ok := cg.LookupString("E")
	require.True(t, ok)
	assert.Equal(t, ntIdx, op.Idx)
}

func TestCompileProducesStartAddressesInSourceOrder(t *testing.T) {
	g := grammar.New()
	g.AddProduction("R", grammar.Production{Components: []grammar.Component{term("a", "", true), nt("R", "")}})
	g.AddProduction("R", grammar.Production{Components: []grammar.Component{term("b", "", true)}})

	cg := Compile(g)

	rIdx, _ := cg.LookupString("R")
	addrs := cg.LookupNonterm(rIdx)
	require.Len(t, addrs, 2)
	assert.Equal(t, 0, addrs[0])

	op0 := cg.At(addrs[0])
	assert.Equal(t, Match, op0.Kind)
	aIdx, _ := cg.LookupString("a")
	assert.Equal(t, aIdx, op0.Idx)

	op1 := cg.At(addrs[0] + 1)
	assert.Equal(t, Fork, op1.Kind)
	assert.Equal(t, rIdx, op1.Idx)

	op2 := cg.At(addrs[0] + 2)
	assert.Equal(t, Return, op2.Kind)

	op3 := cg.At(addrs[1])
	assert.Equal(t, Match, op3.Kind)
	bIdx, _ := cg.LookupString("b")
	assert.Equal(t, bIdx, op3.Idx)
}

func TestCompileInternsRepeatedNamesOnce(t *testing.T) {
	g := grammar.New()
	g.AddProduction("A", grammar.Production{Components: []grammar.Component{term("x", "", true)}})
	g.AddProduction("B", grammar.Production{Components: []grammar.Component{term("x", "", true)}})

	cg := Compile(g)

	xInA, _ := cg.LookupString("x")
	for ip := 0; ip < cg.Len(); ip++ {
		if cg.At(ip).Kind == Match {
			assert.Equal(t, xInA, cg.At(ip).Idx, "the literal \"x\" must share one string-table slot")
		}
	}
}

func TestCompileProductionLabelAndBindings(t *testing.T) {
	g := grammar.New()
	g.AddProduction("WT", grammar.Production{
		Name: "wt",
		Components: []grammar.Component{
			term("sunny", "s", true),
			term("world", "w", true),
		},
	})

	cg := Compile(g)

	ret := cg.At(cg.Len() - 1)
	require.Equal(t, Return, ret.Kind)
	labelIdx, ok := cg.LookupString("wt")
	require.True(t, ok)
	assert.Equal(t, labelIdx, ret.Name)

	bind0 := cg.At(0)
	nameIdx, _ := cg.LookupString("s")
	assert.Equal(t, nameIdx, bind0.Name)
}
