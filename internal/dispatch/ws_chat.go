package dispatch

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/example/ride-booking/internal/models"
)

var ErrNoSession = &NoSessionError{}

type NoSessionError struct{}

func (n *NoSessionError) Error() string { return "no ws session" }

// WSSession represents one connected rider chat client.
type WSSession struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *WSSession) Send(msg models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(msg)
}

// ChatRegistry holds rider websocket sessions keyed by room id and fans
// appended chat messages out to them.
type ChatRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*WSSession
	logger   *slog.Logger
}

func NewChatRegistry(logger *slog.Logger) *ChatRegistry {
	return &ChatRegistry{sessions: make(map[string]*WSSession), logger: logger}
}

// Add registers the connection for a room. A reconnect displaces the
// previous connection, which is closed so its handler unwinds.
func (r *ChatRegistry) Add(room string, conn *websocket.Conn) {
	r.mu.Lock()
	old := r.sessions[room]
	r.sessions[room] = &WSSession{conn: conn}
	r.mu.Unlock()
	if old != nil {
		_ = old.conn.Close()
	}
}

// Remove drops the room's registration only when it still belongs to the
// given connection; a displaced handler must not evict its replacement.
func (r *ChatRegistry) Remove(room string, conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[room]; ok && s.conn == conn {
		delete(r.sessions, room)
	}
}

// Push delivers one message to the room's client, best-effort.
func (r *ChatRegistry) Push(room string, msg models.ChatMessage) error {
	r.mu.RLock()
	s, ok := r.sessions[room]
	r.mu.RUnlock()
	if !ok {
		return ErrNoSession
	}
	if err := s.Send(msg); err != nil {
		if r.logger != nil {
			r.logger.Warn("ws send error", "room", room, "error", err)
		}
		return err
	}
	return nil
}
