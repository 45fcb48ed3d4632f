package server

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/EchoCog/atomspace/core/atomspace"
)

// eventMessage is the JSON payload broadcast to every subscribed
// WebSocket client on an AtomSpace lifecycle event.
type eventMessage struct {
	Kind string  `json:"kind"`
	Atom atomDTO `json:"atom"`
}

func eventKindName(k atomspace.EventKind) string {
	switch k {
	case atomspace.EventAdd:
		return "add"
	case atomspace.EventRemove:
		return "remove"
	case atomspace.EventTruthValueChanged:
		return "truth_value_changed"
	case atomspace.EventAttentionValueChanged:
		return "attention_value_changed"
	default:
		return "unknown"
	}
}

// broadcastHub fans AtomSpace lifecycle events out to every connected
// WebSocket client. It implements the observer contract's requirement
// to perform only bounded, non-blocking work inside OnEvent (spec §5):
// each client has its own buffered channel, and a message for a
// slow/stuck client whose buffer is full is dropped rather than
// blocking the AtomSpace's writer lock; the client stays subscribed.
type broadcastHub struct {
	mu      sync.Mutex
	clients map[chan eventMessage]struct{}
}

func newBroadcastHub() *broadcastHub {
	return &broadcastHub{clients: make(map[chan eventMessage]struct{})}
}

func (h *broadcastHub) onEvent(e atomspace.Event) {
	if e.Atom == nil {
		return
	}
	msg := eventMessage{Kind: eventKindName(e.Kind), Atom: toDTO(e.Atom)}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
			// Client too slow to drain; drop the message rather than
			// block the AtomSpace writer.
		}
	}
}

func (h *broadcastHub) subscribe() chan eventMessage {
	ch := make(chan eventMessage, 64)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *broadcastHub) unsubscribe(ch chan eventMessage) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
	close(ch)
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warnw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ch := s.hub.subscribe()
	defer s.hub.unsubscribe(ch)

	// Detect client disconnects: gorilla/websocket requires a reader
	// goroutine even when the server never expects client messages.
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
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
