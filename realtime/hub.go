package realtime

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Publisher adalah kemampuan fan-out yang di-inject ke service layer.
// Implementasi produksi adalah *Hub; test memakai recorder atau no-op.
type Publisher interface {
	Publish(room string, event Event)
}

// Conn adalah bagian dari *websocket.Conn yang dipakai hub.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Hub menampung subscriber per room (waiter, kitchen, admin, session:<id>).
// Keanggotaan tidak bertahan melewati umur koneksi; reconnect berarti join ulang.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[Conn]bool
	log   *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[Conn]bool),
		log:   log,
	}
}

// SessionRoom membentuk nama room untuk satu sesi meja.
func SessionRoom(sessionID uint) string {
	return fmt.Sprintf("session:%d", sessionID)
}

// Join mendaftarkan koneksi ke sebuah room.
func (h *Hub) Join(conn Conn, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[Conn]bool)
	}
	h.rooms[room][conn] = true
}

// Leave melepaskan koneksi dari satu room.
func (h *Hub) Leave(conn Conn, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[room]; ok {
		delete(members, conn)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Disconnect melepaskan koneksi dari semua room dan menutupnya.
func (h *Hub) Disconnect(conn Conn) {
	h.mu.Lock()
	for room, members := range h.rooms {
		delete(members, conn)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	h.mu.Unlock()
	conn.Close()
}

// Publish mengirim event ke seluruh anggota room. Best-effort: error tulis
// hanya dicatat, pengiriman ke anggota lain tetap berjalan.
func (h *Hub) Publish(room string, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Errorf("marshal event %s: %v", event.Event, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.rooms[room] {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Warnf("send %s to room %s failed: %v", event.Event, room, err)
		}
	}
}

// RoomSize melaporkan jumlah subscriber sebuah room.
func (h *Hub) RoomSize(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}

// NoopPublisher membuang semua event; dipakai saat fan-out tidak dibutuhkan.
type NoopPublisher struct{}

func (NoopPublisher) Publish(string, Event) {}
