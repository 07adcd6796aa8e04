package app

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // LAN tool, any origin
	},
}

// liveMessage is what the hub pushes to browsers.
type liveMessage struct {
	Type string `json:"type"` // "baro" or "gps"
	Data any    `json:"data"`
}

// hubWriteWait bounds each websocket write. A client that misses it is dropped.
const hubWriteWait = 2 * time.Second

// hub fans live messages out to every connected websocket client.
type hub struct {
	mu        sync.Mutex
	clients   map[*websocket.Conn]bool
	writeWait time.Duration
}

func newHub() *hub {
	return &hub{clients: make(map[*websocket.Conn]bool), writeWait: hubWriteWait}
}

func (h *hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("web: websocket upgrade error: %v", err)
		return
	}
	defer ws.Close()

	h.mu.Lock()
	h.clients[ws] = true
	h.mu.Unlock()
	log.Debug("web: websocket client connected")

	defer func() {
		h.mu.Lock()
		delete(h.clients, ws)
		h.mu.Unlock()
		log.Debug("web: websocket client disconnected")
	}()

	// Clients only listen; reading detects the close.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends v as JSON to all clients, dropping any that fail.
func (h *hub) Broadcast(v any) {
	message, err := json.Marshal(v)
	if err != nil {
		log.Warnf("web: broadcast marshal error: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.SetWriteDeadline(time.Now().Add(h.writeWait))
		if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Debugf("web: websocket write error: %v", err)
			client.Close()
			delete(h.clients, client)
		}
	}
}

// Len returns the number of connected clients.
func (h *hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
