package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/parsevm/transport/httpapi"
)

func newTestServer() *httptest.Server {
	r := chi.NewRouter()
	httpapi.New().Routes(r)
	return httptest.NewServer(r)
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func TestPostGrammarThenRun(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp := postJSON(t, srv.URL+httpapi.PathPrefix+"/grammars", map[string]string{
		"text": "S : 'a' 'b' ;",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var grammarResp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&grammarResp))
	resp.Body.Close()
	assert.NotEmpty(t, grammarResp.ID)

	resp = postJSON(t, srv.URL+httpapi.PathPrefix+"/runs", map[string]any{
		"grammar_id": grammarResp.ID,
		"start":      "S",
		"tokens":     []string{"a", "b"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var runResp struct {
		ID    string `json:"id"`
		Count int    `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&runResp))
	resp.Body.Close()
	assert.Equal(t, 1, runResp.Count)

	resp, err := http.Get(srv.URL + httpapi.PathPrefix + "/runs/" + runResp.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestPostGrammarRejectsMalformedGrammar(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp := postJSON(t, srv.URL+httpapi.PathPrefix+"/grammars", map[string]string{
		"text": "S ?? 'a' ;",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()
}

func TestPostRunRejectsUnknownGrammarID(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp := postJSON(t, srv.URL+httpapi.PathPrefix+"/runs", map[string]any{
		"grammar_id": "00000000-0000-0000-0000-000000000000",
		"start":      "S",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestGetRunUnknownIDIsNotFound(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + httpapi.PathPrefix + "/runs/00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
