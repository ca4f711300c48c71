// Package httpapi is a stateless HTTP front end for parsevm (SPEC_FULL.md
// §11): POST a grammar, POST a run against it, then stream that run's
// derivations over transport/wsstream. It holds compiled grammars and
// completed runs in memory only — there is no persistence layer, since
// nothing in spec.md names accounts, sessions, or stored entities.
package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/halvard/parsevm"
)

// PathPrefix is the prefix every route in this package is mounted under.
const PathPrefix = "/api/v1"

// API holds every compiled grammar and completed run this process has
// seen. The zero value is not usable; construct one with New.
type API struct {
	mu       sync.Mutex
	grammars map[uuid.UUID]*parsevm.CompiledGrammar
	runs     map[uuid.UUID]*parsevm.ParsedTrees
}

// New returns an empty API.
func New() *API {
	return &API{
		grammars: make(map[uuid.UUID]*parsevm.CompiledGrammar),
		runs:     make(map[uuid.UUID]*parsevm.ParsedTrees),
	}
}

// Routes mounts this API's endpoints on r, under PathPrefix.
func (a *API) Routes(r chi.Router) {
	r.Route(PathPrefix, func(r chi.Router) {
		r.Post("/grammars", a.postGrammar)
		r.Post("/runs", a.postRun)
		r.Get("/runs/{id}", a.getRun)
	})
}

// Grammar looks up a compiled grammar by ID, as postRun does before
// running it.
func (a *API) Grammar(id uuid.UUID) (*parsevm.CompiledGrammar, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	cg, ok := a.grammars[id]
	return cg, ok
}

// Run looks up a completed run by ID.
func (a *API) Run(id uuid.UUID) (*parsevm.ParsedTrees, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	pt, ok := a.runs[id]
	return pt, ok
}

type postGrammarRequest struct {
	Text string `json:"text"`
}

type postGrammarResponse struct {
	ID string `json:"id"`
}

func (a *API) postGrammar(w http.ResponseWriter, r *http.Request) {
	var req postGrammarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("malformed JSON body: %w", err))
		return
	}

	cg, err := parsevm.Compile(req.Text)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	id := uuid.New()
	a.mu.Lock()
	a.grammars[id] = cg
	a.mu.Unlock()

	writeJSON(w, http.StatusCreated, postGrammarResponse{ID: id.String()})
}

type postRunRequest struct {
	GrammarID string   `json:"grammar_id"`
	Start     string   `json:"start"`
	Tokens    []string `json:"tokens"`
	MinMatch  int      `json:"min_match"`
}

type postRunResponse struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

func (a *API) postRun(w http.ResponseWriter, r *http.Request) {
	var req postRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("malformed JSON body: %w", err))
		return
	}

	gid, err := uuid.Parse(req.GrammarID)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("grammar_id: %w", err))
		return
	}
	cg, ok := a.Grammar(gid)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("no grammar with id %v", gid))
		return
	}

	result, err := runGuarded(req.Start, cg, req.Tokens, req.MinMatch)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	id := uuid.New()
	a.mu.Lock()
	a.runs[id] = result
	a.mu.Unlock()

	writeJSON(w, http.StatusCreated, postRunResponse{ID: id.String(), Count: result.Count()})
}

// runGuarded calls parsevm.Run, converting its panic on an unknown start
// nonterminal (spec.md §7: a programmer error) into a request-level
// error, since here the nonterminal name came from an HTTP client rather
// than trusted caller code.
func runGuarded(start string, cg *parsevm.CompiledGrammar, tokens []string, minMatch int) (pt *parsevm.ParsedTrees, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()
	matchFn := func(literal string, tokIdx int) bool {
		return tokIdx < len(tokens) && tokens[tokIdx] == literal
	}
	return parsevm.Run(start, cg, matchFn, minMatch), nil
}

func (a *API) getRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	pt, ok := a.Run(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("no run with id %v", id))
		return
	}
	writeJSON(w, http.StatusOK, postRunResponse{ID: id.String(), Count: pt.Count()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
