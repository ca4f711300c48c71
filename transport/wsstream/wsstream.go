// Package wsstream pushes one ParsedTrees derivation's start/end/term
// events to a WebSocket client as JSON, one event object per text
// message — the streaming counterpart to httpapi's
// synchronous POST /runs endpoint, grounded on the upgrade-then-push-loop
// shape of odvcencio-mane/web/server.go's handleWebSocket/Broadcast.
package wsstream

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/halvard/parsevm/stream"
)

// Upgrader is the shared websocket.Upgrader used to accept stream
// requests. CheckOrigin always allows: this package has no session or
// origin policy of its own, matching the reference server's permissive
// default for a local developer tool.
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// event is the wire shape of one Handler callback.
type event struct {
	Kind string `json:"kind"` // "start:<nonterminal>", "end:<nonterminal>", or "term"
	Name string `json:"name,omitempty"`
	Tok  int    `json:"tok,omitempty"`
}

// conn adapts a *websocket.Conn to stream.Handler, writing one JSON text
// message per event.
type conn struct {
	ws  *websocket.Conn
	err error
}

func (c *conn) Start(ntName, name string) { c.send(event{Kind: "start:" + ntName, Name: name}) }
func (c *conn) End(ntName, name string)   { c.send(event{Kind: "end:" + ntName, Name: name}) }
func (c *conn) Term(tokIdx int, name string) {
	c.send(event{Kind: "term", Name: name, Tok: tokIdx})
}

func (c *conn) send(e event) {
	if c.err != nil {
		return
	}
	data, err := json.Marshal(e)
	if err != nil {
		c.err = err
		return
	}
	c.err = c.ws.WriteMessage(websocket.TextMessage, data)
}

// Stream upgrades req to a websocket connection and replays the tidx'th
// derivation of pt over it, one JSON message per start/end/term event,
// then closes the connection. It returns the upgrade error, if any;
// write errors mid-stream are not returned, since by that point the
// response has already been hijacked.
func Stream(w http.ResponseWriter, req *http.Request, pt *stream.ParsedTrees, tidx int) error {
	ws, err := Upgrader.Upgrade(w, req, nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	c := &conn{ws: ws}
	pt.Execute(tidx, c)
	return nil
}
