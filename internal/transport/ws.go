package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"spacecore/internal/events"
	"spacecore/pkg/logger"
)

// upgrader :
// No origin restriction of its own; a deployment that needs one fronts
// this server with the same reverse proxy that terminates TLS.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWS :
// Upgrades the connection and runs two pumps: one draining inbound
// command frames into the dispatcher (replies written back as they
// resolve), and one draining the connection's event Subscription
// outbound channel to the wire (§4.4). Both stop when either the
// socket closes or the read pump errors.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Trace(logger.Warning, "transport", fmt.Sprintf("websocket upgrade failed: %v", err))
		return
	}
	defer conn.Close()

	subscriptionID := uuid.NewString()
	done := make(chan struct{})

	go s.writePump(conn, subscriptionID, done)
	s.readPump(conn, subscriptionID, done)
}

func (s *Server) readPump(conn *websocket.Conn, subscriptionID string, done chan struct{}) {
	defer close(done)
	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		resp := Handle(s.dis, subscriptionID, req)
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
}

func (s *Server) writePump(conn *websocket.Conn, subscriptionID string, done chan struct{}) {
	defer s.dis.Unsubscribe(subscriptionID)

	sub := s.awaitSubscription(subscriptionID, done)
	if sub == nil {
		return
	}

	for {
		select {
		case ev, open := <-sub.Outbound():
			if !open {
				return
			}
			frame, err := json.Marshal(struct {
				Event    string      `json:"event"`
				Sequence int64       `json:"sequence"`
				Payload  interface{} `json:"payload"`
			}{Event: ev.Name, Sequence: ev.Sequence, Payload: ev.Payload})
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// awaitSubscription :
// Blocks until the client has sent `subscribe_my_messages` over the
// read pump (registering this connection's subscription) or the
// connection closes first. Returns nil in the latter case.
func (s *Server) awaitSubscription(subscriptionID string, done chan struct{}) *events.Subscription {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		if sub, ok := s.dis.Subscription(subscriptionID); ok {
			return sub
		}
		select {
		case <-done:
			return nil
		case <-ticker.C:
		}
	}
}
