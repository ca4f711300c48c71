package fixture_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/parsevm/fixture"
)

const sample = `a simple two-token match
---
S : 'a' 'b' ;
---
start: S
tokens: a b
min_match: 0
want_count: 1
`

func TestParseExtractsAllThreeParts(t *testing.T) {
	sc, err := fixture.Parse(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, "a simple two-token match", sc.Description)
	assert.Contains(t, sc.Grammar, "S : 'a' 'b' ;")
	assert.Equal(t, "S", sc.StartNT)
	assert.Equal(t, []string{"a", "b"}, sc.Tokens)
	assert.Equal(t, 1, sc.WantCount)
}

func TestParseRejectsWrongPartCount(t *testing.T) {
	_, err := fixture.Parse(strings.NewReader("only one part"))
	assert.Error(t, err)
}

func TestParseRejectsMissingStart(t *testing.T) {
	_, err := fixture.Parse(strings.NewReader("desc\n---\nS : 'a' ;\n---\ntokens: a\nwant_count: 1\n"))
	assert.Error(t, err)
}

func TestRunPassesWhenCountMatches(t *testing.T) {
	sc, err := fixture.Parse(strings.NewReader(sample))
	require.NoError(t, err)
	assert.NoError(t, fixture.Run(sc))
}

func TestRunFailsWhenCountMismatches(t *testing.T) {
	sc, err := fixture.Parse(strings.NewReader(sample))
	require.NoError(t, err)
	sc.WantCount = 2
	assert.Error(t, fixture.Run(sc))
}

func TestRunAllWalksDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ok.fixture"), []byte(sample), 0o644))

	bad := strings.Replace(sample, "want_count: 1", "want_count: 9", 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.fixture"), []byte(bad), 0o644))

	results, err := fixture.RunAll(dir)
	require.NoError(t, err)
	require.Len(t, results, 2)

	var passed, failed int
	for _, r := range results {
		if r.Error == nil {
			passed++
		} else {
			failed++
		}
	}
	assert.Equal(t, 1, passed)
	assert.Equal(t, 1, failed)
}
