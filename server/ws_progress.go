package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"Bt1QDL/logger"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocketProgressHandler relays a session's progress frames over a
// websocket, same payloads as the NDJSON stream.
func (h *APIHandler) WebSocketProgressHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	sessionID := mux.Vars(r)["session_id"]
	events, unsubscribe := h.broadcaster.Register(sessionID)
	defer unsubscribe()

	// Drain reads so client close is noticed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, open := <-events:
			if !open {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				logger.Debug("websocket write failed",
					logger.String("sessionId", sessionID),
					logger.ErrorField(err))
				return
			}
		case <-closed:
			return
		}
	}
}
