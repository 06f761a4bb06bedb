package log

import (
	"sync"
	"testing"
)

type mockLogger struct {
	mu     sync.Mutex
	events []Event
}

func (m *mockLogger) Log(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func TestMultiLoggerFansOut(t *testing.T) {
	a, b := &mockLogger{}, &mockLogger{}
	m := NewMultiLogger(a, nil, b)

	m.Log(Event{ConnectionID: "1"})
	m.Log(Event{ConnectionID: "2"})

	if len(a.events) != 2 || len(b.events) != 2 {
		t.Errorf("events: got %d and %d, want 2 and 2", len(a.events), len(b.events))
	}
	if len(m.loggers) != 2 {
		t.Errorf("nil logger not skipped: %d loggers", len(m.loggers))
	}
}

func TestMultiLoggerEmpty(t *testing.T) {
	NewMultiLogger().Log(Event{})
	NoopLogger{}.Log(Event{})
}

func TestMultiLoggerWithFunc(t *testing.T) {
	var ids []string
	m := NewMultiLogger(LoggerFunc(func(e Event) { ids = append(ids, e.ConnectionID) }), NoopLogger{})

	m.Log(Event{ConnectionID: "a"})
	m.Log(Event{ConnectionID: "b"})

	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("ids: got %v", ids)
	}
}
