package monitor

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gestured/gestured/internal/adapters/history"
	"github.com/gestured/gestured/pkg/logger"
	"github.com/gestured/gestured/pkg/metrics"
)

// Stream keepalive constants.
const (
	writeWait           = 5 * time.Second
	pongWait            = 60 * time.Second
	pingPeriod          = 30 * time.Second
	maxStreamMessage    = 512
	defaultStreamBuffer = 16
)

// The monitor is a local observability surface; browser dashboards
// connect cross-origin.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// handleStream upgrades GET /v1/stream to a websocket and feeds the
// client every published record until it disconnects or falls behind.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn(r.Context(), "stream upgrade failed", logger.Error(err))
		return
	}

	c := &client{
		conn: conn,
		send: make(chan history.Record, s.streamBuffer),
		done: make(chan struct{}),
	}
	if !s.hub.add(c) {
		_ = conn.Close()
		return
	}

	go c.writeLoop(s.hub)
	c.readLoop(s.hub)
}

// client is one connected stream consumer.
type client struct {
	conn *websocket.Conn
	send chan history.Record
	once sync.Once
	done chan struct{}
}

// shut asks the write loop to close the connection.
func (c *client) shut() {
	c.once.Do(func() { close(c.done) })
}

// readLoop consumes control frames and detects disconnects. The
// keepalive needs a reader to process pong and close frames.
func (c *client) readLoop(h *hub) {
	defer func() {
		h.remove(c)
		c.shut()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxStreamMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeLoop pushes records and pings until the client goes away.
func (c *client) writeLoop(h *hub) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.remove(c)
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return
		case rec := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(rec); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// hub tracks connected stream clients.
type hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

func newHub() *hub {
	return &hub{clients: make(map[*client]struct{})}
}

func (h *hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	metrics.UpdateStreamClients(len(h.clients))

	return true
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	metrics.UpdateStreamClients(len(h.clients))
}

// publish fans a record out without blocking frame processing. A client
// whose buffer is full is disconnected rather than slowing the engine.
func (h *hub) publish(rec history.Record) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- rec:
		default:
			c.shut()
		}
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		c.shut()
		delete(h.clients, c)
	}
	metrics.UpdateStreamClients(0)
}
