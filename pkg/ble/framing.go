package ble

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/mdoc-proximity/mdoc-go/pkg/log"
)

// ErrNotCBOR indicates an outbound L2CAP message that is not exactly one
// well-formed CBOR data item. L2CAP carries no length prefix, so message
// boundaries are the CBOR item boundaries.
var ErrNotCBOR = errors.New("message is not a single CBOR data item")

var framingDecMode cbor.DecMode

func init() {
	var err error
	framingDecMode, err = cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyQuiet,
		IndefLength: cbor.IndefLengthAllowed,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create framing CBOR decoder mode: %v", err))
	}
}

// FrameWriter writes CBOR-delimited messages to an L2CAP stream.
type FrameWriter struct {
	w              io.Writer
	maxMessageSize int
	mu             sync.Mutex

	logger log.Logger
	connID string
}

// NewFrameWriter creates a frame writer with DefaultMaxMessageSize.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w, maxMessageSize: DefaultMaxMessageSize}
}

// SetLogger configures protocol logging for this writer.
// Pass nil to disable logging.
func (fw *FrameWriter) SetLogger(logger log.Logger, connID string) {
	fw.logger = logger
	fw.connID = connID
}

// WriteFrame writes one message. Safe for concurrent use.
func (fw *FrameWriter) WriteFrame(data []byte) error {
	if len(data) == 0 {
		return ErrMessageEmpty
	}
	if len(data) > fw.maxMessageSize {
		return fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(data), fw.maxMessageSize)
	}
	if rest, err := splitItem(data); err != nil || len(rest) != 0 {
		return ErrNotCBOR
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, err := fw.w.Write(data); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	if fw.logger != nil {
		fw.logger.Log(frameEvent(fw.connID, data, log.DirectionOut))
	}
	return nil
}

// FrameReader reads CBOR-delimited messages from an L2CAP stream.
type FrameReader struct {
	dec            *cbor.Decoder
	maxMessageSize int

	logger log.Logger
	connID string
}

// NewFrameReader creates a frame reader with DefaultMaxMessageSize.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{dec: framingDecMode.NewDecoder(r), maxMessageSize: DefaultMaxMessageSize}
}

// SetLogger configures protocol logging for this reader.
// Pass nil to disable logging.
func (fr *FrameReader) SetLogger(logger log.Logger, connID string) {
	fr.logger = logger
	fr.connID = connID
}

// ReadFrame reads the next message. It returns io.EOF at a clean end of
// stream and io.ErrUnexpectedEOF when the stream ends inside an item.
func (fr *FrameReader) ReadFrame() ([]byte, error) {
	var raw cbor.RawMessage
	if err := fr.dec.Decode(&raw); err != nil {
		return nil, err
	}
	if len(raw) > fr.maxMessageSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(raw), fr.maxMessageSize)
	}
	if fr.logger != nil {
		fr.logger.Log(frameEvent(fr.connID, raw, log.DirectionIn))
	}
	return raw, nil
}

// Framer combines frame reading and writing over one L2CAP channel.
type Framer struct {
	*FrameReader
	*FrameWriter
}

// NewFramer creates a framer for bidirectional communication.
func NewFramer(rw io.ReadWriter) *Framer {
	return &Framer{
		FrameReader: NewFrameReader(rw),
		FrameWriter: NewFrameWriter(rw),
	}
}

// NewFramerWithMaxSize creates a framer with a custom max message size.
func NewFramerWithMaxSize(rw io.ReadWriter, maxSize int) *Framer {
	f := NewFramer(rw)
	f.FrameReader.maxMessageSize = maxSize
	f.FrameWriter.maxMessageSize = maxSize
	return f
}

// SetLogger configures protocol logging for both directions.
func (f *Framer) SetLogger(logger log.Logger, connID string) {
	f.FrameReader.SetLogger(logger, connID)
	f.FrameWriter.SetLogger(logger, connID)
}

func splitItem(data []byte) (rest []byte, err error) {
	var raw cbor.RawMessage
	return framingDecMode.UnmarshalFirst(data, &raw)
}

func frameEvent(connID string, data []byte, dir log.Direction) log.Event {
	return log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    dir,
		Layer:        log.LayerRadio,
		Category:     log.CategoryMessage,
		Channel:      log.ChannelL2CAP,
		Frame:        log.NewFrameEvent(data),
	}
}
