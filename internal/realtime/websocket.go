package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	readDeadline = 90 * time.Second
	writeTimeout = 10 * time.Second
	readLimit    = int64(4 << 10)
)

// WSObserver adapts one websocket connection to the hub.
type WSObserver struct {
	conn *websocket.Conn
	wmu  sync.Mutex
}

func NewWSObserver(conn *websocket.Conn) *WSObserver {
	return &WSObserver{conn: conn}
}

// Send writes ev with a deadline; writes are serialized because the pump and the read loop both write.
func (o *WSObserver) Send(ev Event) error {
	o.wmu.Lock()
	defer o.wmu.Unlock()
	_ = o.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return o.conn.WriteJSON(ev)
}

func (o *WSObserver) Close() error {
	return o.conn.Close()
}

type clientFrame struct {
	Type string `json:"type"`
}

// Handler upgrades dashboard connections and registers them with the hub.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	now      func() time.Time
	log      zerolog.Logger
}

func NewHandler(hub *Hub, log zerolog.Logger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			// dashboard is served from anywhere
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		now: time.Now,
		log: log,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	obs := NewWSObserver(conn)
	h.hub.Connect(obs)
	h.log.Info().Str("remote_addr", r.RemoteAddr).Int("observers", h.hub.Len()).Msg("dashboard connected")

	go h.readLoop(obs)
}

// readLoop answers pings and ignores every other frame until the connection drops.
func (h *Handler) readLoop(obs *WSObserver) {
	defer h.hub.Disconnect(obs)

	conn := obs.conn
	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))

		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		if frame.Type == "ping" {
			if err := obs.Send(PongEvent(h.now())); err != nil {
				return
			}
		}
	}
}
