// Package chat defines the message and room types shared by the transport,
// controller, and render layers.
package chat

import (
	"strconv"
	"sync"
	"time"
)

// Well-known sender names. User messages carry the login username instead.
const (
	SenderAssistant = "Helix"
	SenderSystem    = "system"
)

// Message is a single chat message. Messages are append-only: once created
// they are never mutated, and history is cleared wholesale on room switch.
type Message struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Sender     string `json:"sender"`
	Timestamp  int64  `json:"timestamp"` // milliseconds since epoch
	ActionTool string `json:"action_tool,omitempty"`

	// RoomID tags messages delivered over the real-time connection so
	// receipts can be validated against the active room. Empty for
	// locally-authored messages.
	RoomID string `json:"roomId,omitempty"`
}

// Room is a named chat channel. The room list is static once loaded.
type Room struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IDGenerator produces time-based message IDs that are unique for the life
// of the generator, even when messages are created within the same
// millisecond.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator creates an IDGenerator backed by the wall clock.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// Next returns a strictly increasing millisecond-resolution ID. If the clock
// has not advanced since the previous call, the prior value is bumped by one
// so rapid sequential sends never collide.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return strconv.FormatInt(ms, 10)
}
