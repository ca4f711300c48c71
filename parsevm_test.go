package parsevm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/parsevm"
)

func TestCompileAndRunEndToEnd(t *testing.T) {
	cg, err := parsevm.Compile(`S : 'a' 'b' ;`)
	require.NoError(t, err)

	toks := []string{"a", "b"}
	matchFn := func(literal string, tokIdx int) bool {
		return tokIdx < len(toks) && toks[tokIdx] == literal
	}

	pt := parsevm.Run("S", cg, matchFn, 0)
	assert.Equal(t, 1, pt.Count())
}

func TestCompileSurfacesSyntaxErrors(t *testing.T) {
	_, err := parsevm.Compile(`S ?? 'a' ;`)
	assert.Error(t, err)
}

func TestRunPanicsOnUnknownStartNonterminal(t *testing.T) {
	cg, err := parsevm.Compile(`S : 'a' ;`)
	require.NoError(t, err)

	assert.Panics(t, func() {
		parsevm.Run("MISSING", cg, func(string, int) bool { return true }, 0)
	})
}
