package grammar

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestAddProductionPreservesOrder(t *testing.T) {
	g := New()
	g.AddProduction("B", Production{Name: "b1"})
	g.AddProduction("A", Production{Name: "a1"})
	g.AddProduction("A", Production{Name: "a2"})

	assert.Equal(t, []string{"B", "A"}, g.Nonterminals())
	assert.Len(t, g.Productions("A"), 2)
	assert.Equal(t, "a1", g.Productions("A")[0].Name)
	assert.Equal(t, "a2", g.Productions("A")[1].Name)
	assert.Nil(t, g.Productions("C"))
}

func TestResolveReclassifiesBareIdentifiers(t *testing.T) {
	g := New()
	g.AddProduction("A", Production{})
	g.AddProduction("START", Production{
		Components: []Component{
			{Kind: Terminal, Value: "begin", Quoted: true},
			{Kind: Terminal, Value: "A"},            // bare -> should resolve to nonterminal
			{Kind: Terminal, Value: "A", Quoted: true}, // quoted -> stays terminal
		},
	})

	g.Resolve()

	comps := g.Productions("START")[0].Components
	assert.Equal(t, Terminal, comps[0].Kind)
	assert.Equal(t, Nonterminal, comps[1].Kind)
	assert.Equal(t, Terminal, comps[2].Kind)
}

func TestResolveLeavesUnambiguousComponentsUntouched(t *testing.T) {
	g := New()
	g.AddProduction("START", Production{
		Components: []Component{
			{Kind: Terminal, Value: "begin", Quoted: true, Name: "b"},
			{Kind: Terminal, Value: "end", Quoted: true},
		},
	})

	g.Resolve()

	want := []Component{
		{Kind: Terminal, Value: "begin", Quoted: true, Name: "b"},
		{Kind: Terminal, Value: "end", Quoted: true},
	}
	if diff := cmp.Diff(want, g.Productions("START")[0].Components); diff != "" {
		t.Errorf("components mismatch (-want +got):\n%s", diff)
	}
}

func TestHasNonterminal(t *testing.T) {
	g := New()
	g.AddProduction("A", Production{})
	assert.True(t, g.HasNonterminal("A"))
	assert.False(t, g.HasNonterminal("B"))
}
