package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/halvard/parsevm/transport/httpapi"
	"github.com/halvard/parsevm/transport/wsstream"
)

var serveFlags = struct {
	addr *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the compile/run HTTP API and a derivation WebSocket stream",
		Example: `  parsevm serve --addr :8080`,
		Args:    cobra.NoArgs,
		RunE:    runServe,
	}
	serveFlags.addr = cmd.Flags().String("addr", "", "listen address (defaults to parsevm.toml's serve.addr, or :8080)")
	rootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := *serveFlags.addr
	if addr == "" {
		addr = loadedConfig.Serve.Addr
	}

	api := httpapi.New()

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	api.Routes(r)
	r.Get(httpapi.PathPrefix+"/runs/{id}/stream", streamHandler(api))

	fmt.Printf("parsevm serving on %s\n", addr)
	return http.ListenAndServe(addr, r)
}

// streamHandler replays a previously completed run's first derivation
// over a WebSocket, looking the run up by the id path parameter that
// transport/httpapi's postRun response returned.
func streamHandler(api *httpapi.API) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		pt, ok := api.Run(id)
		if !ok {
			http.Error(w, fmt.Sprintf("no run with id %v", id), http.StatusNotFound)
			return
		}
		if err := wsstream.Stream(w, r, pt, 0); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
