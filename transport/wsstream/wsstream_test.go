package wsstream_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/parsevm"
	"github.com/halvard/parsevm/transport/wsstream"
)

func TestStreamSendsBalancedEvents(t *testing.T) {
	cg, err := parsevm.Compile(`S : 'a' 'b' ;`)
	require.NoError(t, err)

	toks := []string{"a", "b"}
	pt := parsevm.Run("S", cg, func(literal string, tokIdx int) bool {
		return tokIdx < len(toks) && toks[tokIdx] == literal
	}, 0)
	require.Equal(t, 1, pt.Count())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, wsstream.Stream(w, r, pt, 0))
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer ws.Close()

	var kinds []string
	for i := 0; i < 4; i++ {
		_, data, err := ws.ReadMessage()
		require.NoError(t, err)
		var ev struct {
			Kind string `json:"kind"`
		}
		require.NoError(t, json.Unmarshal(data, &ev))
		kinds = append(kinds, ev.Kind)
	}

	assert.Equal(t, []string{"start:S", "term", "term", "end:S"}, kinds)
}
