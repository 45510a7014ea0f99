package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"

	"github.com/gluk-w/tabshell/internal/session"
)

// termMsg is the small JSON envelope exchanged alongside binary frames,
// trimmed from control-plane/internal/handlers/terminal.go's termMsg down
// to the message types this core actually needs: raw input is sent as
// binary frames (no "input" JSON variant), since there is exactly one
// session per connection rather than a multiplexed relay to pick apart.
type termMsg struct {
	Type string `json:"type"`
	Cols int    `json:"cols,omitempty"`
	Rows int    `json:"rows,omitempty"`
}

// handleTerminalWS attaches a WebSocket to one already-scheduled session:
// binary frames are raw keystrokes written to the session, JSON text
// frames carry resize/ping control messages, and every OutputEvent the
// session produces is forwarded back as a binary frame.
func (s *Server) handleTerminalWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, ok := s.Manager.Get(id)
	if !ok {
		http.Error(w, "no such session", http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		log.Printf("terminal ws accept: %v", err)
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go relayOutput(ctx, cancel, conn, sess)
	relayInput(ctx, conn, sess)

	conn.Close(websocket.StatusNormalClosure, "")
}

// relayOutput forwards session output events to the client until ctx is
// cancelled or the session's output channel closes.
func relayOutput(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, sess session.Session) {
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case evt, open := <-sess.Output():
			if !open {
				return
			}
			if err := conn.Write(ctx, websocket.MessageBinary, []byte(evt.RawText)); err != nil {
				return
			}
		}
	}
}

// relayInput reads client frames and applies them to sess until the
// connection closes.
func relayInput(ctx context.Context, conn *websocket.Conn, sess session.Session) {
	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		if msgType == websocket.MessageBinary {
			if err := sess.WriteRaw(string(data)); err != nil {
				return
			}
			continue
		}

		var msg termMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "resize":
			// Resize is handled by the underlying PTY/SSH channel; this
			// capability sits outside the shared Session interface and is
			// a no-op for sessions that don't implement it.
			if r, ok := sess.(interface{ Resize(cols, rows int) error }); ok {
				r.Resize(msg.Cols, msg.Rows)
			}
		case "ping":
			pong, _ := json.Marshal(termMsg{Type: "pong"})
			if err := conn.Write(ctx, websocket.MessageText, pong); err != nil {
				return
			}
		}
	}
}
