package log

import (
	"testing"
)

func TestAppendAndReadAll(t *testing.T) {
	tmpDir := t.TempDir()

	logger, err := NewLogger(tmpDir)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	events := []LogEvent{
		{Event: EventLoggedIn, Username: "recruiter", RoomID: "1"},
		{Event: EventMessageSent, RoomID: "1", MessageID: "1700000000000", CorrelationID: "abc"},
		{Event: EventPayloadMalformed, Stage: "output", Detail: "embedded JSON decode failed"},
	}
	for _, e := range events {
		if err := logger.Append(e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := logger.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ReadAll returned %d events, want 3", len(got))
	}
	if got[0].Event != EventLoggedIn || got[0].Username != "recruiter" {
		t.Errorf("first event = %+v", got[0])
	}
	if got[1].CorrelationID != "abc" {
		t.Errorf("second event correlation id = %q", got[1].CorrelationID)
	}
	if got[2].Stage != "output" {
		t.Errorf("third event stage = %q", got[2].Stage)
	}
	for _, e := range got {
		if e.Time.IsZero() {
			t.Error("event time not auto-populated")
		}
	}
}

func TestReadAllMissingFile(t *testing.T) {
	logger, err := NewLogger(t.TempDir())
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	events, err := logger.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll on missing file: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected empty slice, got %d events", len(events))
	}
}
