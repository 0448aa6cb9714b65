package server

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// Hub fans progress snapshots out to connected UI clients.
type Hub struct {
	mu       sync.RWMutex
	conns    map[*wsConn]struct{}
	logger   *log.Logger
	upgrader websocket.Upgrader
}

type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(log.Writer(), "[WS] ", log.LstdFlags)
	}
	return &Hub{
		conns:  make(map[*wsConn]struct{}),
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 10 * time.Second,
			CheckOrigin:      func(r *http.Request) bool { return true },
		},
	}
}

// Broadcast sends a message to every connected client. Write failures
// drop the client.
func (h *Hub) Broadcast(message []byte) {
	h.mu.RLock()
	conns := make([]*wsConn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		c.mu.Lock()
		err := c.conn.WriteMessage(websocket.TextMessage, message)
		c.mu.Unlock()
		if err != nil {
			h.drop(c)
		}
	}
}

// Handler upgrades the request and keeps the connection open until
// the client goes away. Clients only listen; inbound frames are
// discarded.
func (h *Hub) Handler(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	wc := &wsConn{conn: conn}
	h.mu.Lock()
	h.conns[wc] = struct{}{}
	h.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.drop(wc)
	return nil
}

func (h *Hub) drop(c *wsConn) {
	h.mu.Lock()
	if _, ok := h.conns[c]; ok {
		delete(h.conns, c)
		_ = c.conn.Close()
	}
	h.mu.Unlock()
}
