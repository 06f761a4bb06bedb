package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mdoc-proximity/mdoc-go/pkg/log"
)

func TestCollectStats(t *testing.T) {
	path := createTestLogFile(t, sessionEvents())

	stats, err := CollectStats(path)
	if err != nil {
		t.Fatalf("CollectStats failed: %v", err)
	}

	if stats.TotalEvents != 6 {
		t.Errorf("TotalEvents = %d, want 6", stats.TotalEvents)
	}
	if stats.EventsByLayer[log.LayerRadio] != 3 {
		t.Errorf("radio events = %d, want 3", stats.EventsByLayer[log.LayerRadio])
	}
	if stats.Errors != 1 {
		t.Errorf("Errors = %d, want 1", stats.Errors)
	}
	if len(stats.Connections) != 2 {
		t.Fatalf("Connections = %d, want 2", len(stats.Connections))
	}

	holder := stats.Connections[holderConn]
	if holder.Role != log.RoleHolder {
		t.Errorf("holder role = %v", holder.Role)
	}
	if holder.ServiceUUID != serviceID {
		t.Errorf("ServiceUUID = %q, want %q", holder.ServiceUUID, serviceID)
	}
	if holder.Channel != log.ChannelGATT {
		t.Errorf("Channel = %v, want GATT", holder.Channel)
	}
	if holder.BytesIn != 3 || holder.BytesOut != 5 {
		t.Errorf("bytes = %d in, %d out; want 3 in, 5 out", holder.BytesIn, holder.BytesOut)
	}

	reader := stats.Connections[readerConn]
	if reader.FinalState != "CLOSED" {
		t.Errorf("FinalState = %q, want CLOSED", reader.FinalState)
	}
}

func TestRunStatsOutput(t *testing.T) {
	path := createTestLogFile(t, sessionEvents())

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Total Events: 6",
		"RADIO:",
		"TRANSPORT:",
		"CONTROL:",
		"Connections: 2",
		"[abc12345] HOLDER",
		"Bytes: 3 in, 5 out",
		"Final state: CLOSED",
		"Errors: 1",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got:\n%s", want, output)
		}
	}
}

func TestRunStatsEmptyFile(t *testing.T) {
	path := createTestLogFile(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Total Events: 0") {
		t.Errorf("expected zero events, got: %s", buf.String())
	}
	if strings.Contains(buf.String(), "Time Range") {
		t.Error("empty log should not print a time range")
	}
}
