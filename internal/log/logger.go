// Package log provides structured event logging.
// This file appends JSON events to log.jsonl.
package log

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event type constants.
const (
	EventLoggedIn         = "logged_in"
	EventConnectFailed    = "connect_failed"
	EventRoomSwitched     = "room_switched"
	EventMessageSent      = "message_sent"
	EventChatTurnFailed   = "chat_turn_failed"
	EventStaleReply       = "stale_reply_dropped"
	EventDuplicateReply   = "duplicate_reply_dropped"
	EventPayloadMalformed = "payload_malformed"
	EventSequenceUpdated  = "sequence_updated"
	EventCampaignCreated  = "campaign_created"
	EventTransportError   = "transport_error"
)

// LogEvent represents a single structured event written to the log.
type LogEvent struct {
	Time          time.Time `json:"time"`
	Event         string    `json:"event"`
	Username      string    `json:"username,omitempty"`
	RoomID        string    `json:"room,omitempty"`
	CampaignID    int64     `json:"campaign,omitempty"`
	SequenceID    int64     `json:"sequence,omitempty"`
	MessageID     string    `json:"message_id,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Stage         string    `json:"stage,omitempty"`
	Detail        string    `json:"detail,omitempty"`
	Error         string    `json:"error,omitempty"`
}

// Logger writes append-only JSONL events to a log file.
type Logger struct {
	path string
	mu   sync.Mutex
}

// NewLogger creates a Logger that writes to .helix/log.jsonl inside dir.
// Creates the .helix/ directory if it does not already exist.
// Does not truncate an existing log file.
func NewLogger(dir string) (*Logger, error) {
	helixDir := filepath.Join(dir, ".helix")
	if err := os.MkdirAll(helixDir, 0755); err != nil {
		return nil, fmt.Errorf("create .helix directory: %w", err)
	}

	return &Logger{
		path: filepath.Join(helixDir, "log.jsonl"),
	}, nil
}

// Append writes a single LogEvent as one JSON line to the log file.
// If event.Time is the zero value, it is automatically set to time.Now().UTC().
// The file is opened in append mode, written to, and then closed.
// Thread-safe via mutex.
func (l *Logger) Append(event LogEvent) error {
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal log event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	// Write the JSON line followed by a newline.
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write log event: %w", err)
	}

	return nil
}

// ReadAll reads and parses all events from the log file.
// Returns an empty slice (not an error) if the file does not exist.
func (l *Logger) ReadAll() ([]LogEvent, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []LogEvent{}, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var events []LogEvent
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event LogEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("parse log line %d: %w", lineNum, err)
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	return events, nil
}
