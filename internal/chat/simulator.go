package chat

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/ride-booking/internal/models"
	"github.com/example/ride-booking/internal/observability"
)

// ErrNotConnected is reported when a send is attempted outside a room.
// The message is dropped; the caller surfaces a notification and carries on.
var ErrNotConnected = errors.New("chat room not connected")

// Scheduler runs fn after the given delay. Production uses time.AfterFunc;
// tests inject a synchronous implementation.
type Scheduler func(d time.Duration, fn func())

func defaultScheduler(d time.Duration, fn func()) { time.AfterFunc(d, fn) }

const (
	joinDelay = 500 * time.Millisecond
	sendDelay = 100 * time.Millisecond
)

// Simulator emulates a one-room live chat transport without a backend.
// Messages from a single sender land in call order; a send issued right
// after a join may land before or after the welcome message because the
// two delays race. That interleaving is part of the simulation.
type Simulator struct {
	mu        sync.Mutex
	connected bool
	room      string
	gen       uint64 // bumped on join/leave so stale timers no-op
	msgs      []models.ChatMessage
	sched     Scheduler

	// OnAppend, when set, observes every appended message (ws push).
	OnAppend func(room string, msg models.ChatMessage)
}

func NewSimulator(sched Scheduler) *Simulator {
	if sched == nil {
		sched = defaultScheduler
	}
	return &Simulator{sched: sched}
}

// Join resets the log, connects the room, and schedules the System
// welcome message.
func (s *Simulator) Join(roomID string) {
	s.mu.Lock()
	s.connected = true
	s.room = roomID
	s.gen++
	gen := s.gen
	s.msgs = nil
	s.mu.Unlock()

	welcome := models.ChatMessage{Sender: "System", Text: fmt.Sprintf("Welcome to the chat room: %s", roomID)}
	s.sched(joinDelay, func() { s.append(gen, welcome) })
}

// Send appends {sender, text} after the simulated delivery delay.
func (s *Simulator) Send(text, sender string) error {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return ErrNotConnected
	}
	gen := s.gen
	s.mu.Unlock()

	s.sched(sendDelay, func() { s.append(gen, models.ChatMessage{Sender: sender, Text: text}) })
	return nil
}

// Leave disconnects and discards the log; nothing persists across rooms.
func (s *Simulator) Leave() {
	s.mu.Lock()
	s.connected = false
	s.room = ""
	s.gen++
	s.msgs = nil
	s.mu.Unlock()
}

func (s *Simulator) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *Simulator) Room() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

// Messages returns a copy of the current log in append order.
func (s *Simulator) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.msgs))
	copy(out, s.msgs)
	return out
}

func (s *Simulator) append(gen uint64, msg models.ChatMessage) {
	s.mu.Lock()
	if gen != s.gen || !s.connected {
		s.mu.Unlock()
		return
	}
	s.msgs = append(s.msgs, msg)
	room, onAppend := s.room, s.OnAppend
	s.mu.Unlock()

	observability.ChatMessagesTotal.Inc()
	if onAppend != nil {
		onAppend(room, msg)
	}
}
