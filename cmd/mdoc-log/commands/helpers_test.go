package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mdoc-proximity/mdoc-go/pkg/log"
)

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.mlog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

const (
	holderConn = "abc12345-6789-0123-4567-890abcdef012"
	readerConn = "fed09876-5432-1098-7654-3210fedcba98"
	serviceID  = "9a1f3c6e-2b7d-4e8a-9c41-5d0b7e2f6a13"
)

// sessionEvents is a short holder session: connect, one exchange, close.
func sessionEvents() []log.Event {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 123456000, time.UTC)
	return []log.Event{
		{
			Timestamp: ts, ConnectionID: holderConn, Layer: log.LayerTransport,
			Category: log.CategoryState, LocalRole: log.RoleHolder, ServiceUUID: serviceID,
			StateChange: &log.StateChangeEvent{OldState: "IDLE", NewState: "SCANNING"},
		},
		{
			Timestamp: ts.Add(100 * time.Millisecond), ConnectionID: holderConn, Direction: log.DirectionOut,
			Layer: log.LayerRadio, Category: log.CategoryControl, LocalRole: log.RoleHolder, Channel: log.ChannelGATT,
			Marker: &log.MarkerEvent{Type: log.MarkerStart},
		},
		{
			Timestamp: ts.Add(200 * time.Millisecond), ConnectionID: holderConn, Direction: log.DirectionIn,
			Layer: log.LayerRadio, Category: log.CategoryMessage, LocalRole: log.RoleHolder, Channel: log.ChannelGATT,
			Frame: log.NewFrameEvent([]byte{0xa1, 0x01, 0x02}),
		},
		{
			Timestamp: ts.Add(300 * time.Millisecond), ConnectionID: holderConn, Direction: log.DirectionOut,
			Layer: log.LayerRadio, Category: log.CategoryMessage, LocalRole: log.RoleHolder, Channel: log.ChannelGATT,
			Frame: log.NewFrameEvent([]byte{0xa1, 0x01, 0x02, 0x03, 0x04}),
		},
		{
			Timestamp: ts.Add(400 * time.Millisecond), ConnectionID: holderConn, Layer: log.LayerTransport,
			Category: log.CategoryError, LocalRole: log.RoleHolder,
			Error: &log.ErrorEventData{Layer: log.LayerRadio, Message: "link lost", Context: "waitForMessage"},
		},
		{
			Timestamp: ts.Add(time.Second), ConnectionID: readerConn, Layer: log.LayerTransport,
			Category: log.CategoryState, LocalRole: log.RoleReader,
			StateChange: &log.StateChangeEvent{OldState: "CONNECTED", NewState: "CLOSED"},
		},
	}
}
