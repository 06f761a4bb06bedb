package log

import (
	"time"
)

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the transport instance (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates data flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// LocalRole indicates whether this endpoint is the holder or the reader.
	LocalRole Role `cbor:"6,keyasint,omitempty"`

	// ServiceUUID is the BLE service the transport is bound to.
	ServiceUUID string `cbor:"7,keyasint,omitempty"`

	// Channel is the framing in use when the event was captured.
	Channel Channel `cbor:"8,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"` // Radio layer
	Marker      *MarkerEvent      `cbor:"11,keyasint,omitempty"` // State characteristic
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"` // Transport state
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of data flow.
type Direction uint8

const (
	// DirectionIn indicates inbound data.
	DirectionIn Direction = 0
	// DirectionOut indicates outbound data.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerRadio is the BLE channel layer (raw frames, markers).
	LayerRadio Layer = 0
	// LayerTransport is the transport state machine.
	LayerTransport Layer = 1
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerRadio:
		return "RADIO"
	case LayerTransport:
		return "TRANSPORT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates an application frame.
	CategoryMessage Category = 0
	// CategoryControl indicates a state characteristic marker (START/END).
	CategoryControl Category = 1
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryControl:
		return "CONTROL"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Role indicates whether the local endpoint presents or reads credentials.
type Role uint8

const (
	// RoleHolder indicates the credential holder (mdoc).
	RoleHolder Role = 0
	// RoleReader indicates the mdoc reader.
	RoleReader Role = 1
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleHolder:
		return "HOLDER"
	case RoleReader:
		return "READER"
	default:
		return "UNKNOWN"
	}
}

// Channel identifies the framing used on the radio link.
type Channel uint8

const (
	// ChannelNone means no data channel is established yet.
	ChannelNone Channel = 0
	// ChannelGATT is characteristic-based framing.
	ChannelGATT Channel = 1
	// ChannelL2CAP is a connection-oriented L2CAP socket.
	ChannelL2CAP Channel = 2
)

// String returns the channel name.
func (c Channel) String() string {
	switch c {
	case ChannelNone:
		return "NONE"
	case ChannelGATT:
		return "GATT"
	case ChannelL2CAP:
		return "L2CAP"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw frame data at the radio layer.
type FrameEvent struct {
	// Size is the message size in bytes.
	Size int `cbor:"1,keyasint"`

	// Data is the raw bytes (may be truncated for large frames).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// MarkerEvent captures a write to the state characteristic.
type MarkerEvent struct {
	// Type of marker.
	Type MarkerType `cbor:"1,keyasint"`
}

// MarkerType indicates the state characteristic value.
type MarkerType uint8

const (
	// MarkerStart signals the central is ready to exchange data.
	MarkerStart MarkerType = 1
	// MarkerEnd signals session termination.
	MarkerEnd MarkerType = 2
)

// String returns the marker name.
func (m MarkerType) String() string {
	switch m {
	case MarkerStart:
		return "START"
	case MarkerEnd:
		return "END"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures transport lifecycle events.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}

// MaxFrameData is the number of payload bytes kept in a FrameEvent.
const MaxFrameData = 512

// NewFrameEvent builds a FrameEvent for data, truncating the captured
// bytes to MaxFrameData.
func NewFrameEvent(data []byte) *FrameEvent {
	fe := &FrameEvent{Size: len(data)}
	if len(data) > MaxFrameData {
		fe.Data = append([]byte(nil), data[:MaxFrameData]...)
		fe.Truncated = true
	} else {
		fe.Data = append([]byte(nil), data...)
	}
	return fe
}
