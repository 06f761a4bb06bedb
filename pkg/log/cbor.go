package log

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// ErrMalformedEvent is returned for a record that decodes as CBOR but is
// not a well-formed event.
var ErrMalformedEvent = errors.New("malformed log event")

// Log records use the same encoding rules as the messages they capture:
// canonical map order, definite lengths, and timestamps as tag 0 tdate
// strings with nanosecond precision.
var (
	logEncMode cbor.EncMode
	logDecMode cbor.DecMode
)

func init() {
	var err error

	logEncMode, err = cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
		TimeTag:       cbor.EncTagRequired,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("log: CBOR encoder mode: %v", err))
	}

	// Untagged timestamps are still accepted so captures written before
	// tdate tagging remain readable.
	logDecMode, err = cbor.DecOptions{
		DupMapKey:       cbor.DupMapKeyQuiet,
		IndefLength:     cbor.IndefLengthAllowed,
		TimeTag:         cbor.DecTagOptional,
		MaxNestedLevels: 8,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("log: CBOR decoder mode: %v", err))
	}
}

// EncodeEvent encodes an Event to CBOR with integer keys.
func EncodeEvent(event Event) ([]byte, error) {
	return logEncMode.Marshal(event)
}

// DecodeEvent decodes a single event and checks its shape.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := logDecMode.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	if err := event.check(); err != nil {
		return Event{}, err
	}
	return event, nil
}

// NewEncoder returns a stream encoder for .mlog records.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return logEncMode.NewEncoder(w)
}

// NewDecoder returns a stream decoder for .mlog records.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return logDecMode.NewDecoder(r)
}

func readEvent(dec *cbor.Decoder) (Event, error) {
	var event Event
	if err := dec.Decode(&event); err != nil {
		return Event{}, err
	}
	if err := event.check(); err != nil {
		return Event{}, err
	}
	return event, nil
}

// check rejects events no producer in this module writes: an unknown
// layer, or more than one payload.
func (e Event) check() error {
	if e.Layer != LayerRadio && e.Layer != LayerTransport {
		return fmt.Errorf("%w: layer %d", ErrMalformedEvent, e.Layer)
	}
	n := 0
	for _, set := range []bool{e.Frame != nil, e.Marker != nil, e.StateChange != nil, e.Error != nil} {
		if set {
			n++
		}
	}
	if n > 1 {
		return fmt.Errorf("%w: %d payloads", ErrMalformedEvent, n)
	}
	return nil
}
