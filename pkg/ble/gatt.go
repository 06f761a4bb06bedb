package ble

import (
	"errors"
	"fmt"
)

// Chunking errors.
var (
	// ErrMessageEmpty indicates an empty message. Empty messages are reserved
	// for session termination and never travel as data.
	ErrMessageEmpty = errors.New("message is empty")

	// ErrMessageTooLarge indicates the message exceeds the maximum size.
	ErrMessageTooLarge = errors.New("message too large")

	// ErrMTUTooSmall indicates an MTU that cannot carry a prefixed chunk.
	ErrMTUTooSmall = errors.New("mtu too small")

	// ErrInvalidChunk indicates a chunk without a valid continuation prefix.
	ErrInvalidChunk = errors.New("invalid chunk")
)

// DefaultMaxMessageSize bounds reassembled and L2CAP messages (1 MB).
const DefaultMaxMessageSize = 1 << 20

// ChunkSize returns the maximum chunk length, prefix included, for mtu.
func ChunkSize(mtu int) int {
	return mtu - ATTHeaderSize
}

// Fragment splits msg into characteristic writes for the given MTU. Every
// chunk starts with 0x01 if more chunks follow and 0x00 on the last one.
func Fragment(msg []byte, mtu int) ([][]byte, error) {
	if len(msg) == 0 {
		return nil, ErrMessageEmpty
	}
	size := ChunkSize(mtu)
	if size < 2 {
		return nil, fmt.Errorf("%w: %d", ErrMTUTooSmall, mtu)
	}
	payload := size - 1

	chunks := make([][]byte, 0, (len(msg)+payload-1)/payload)
	for off := 0; off < len(msg); off += payload {
		end := min(off+payload, len(msg))
		prefix := chunkMore
		if end == len(msg) {
			prefix = chunkLast
		}
		chunk := make([]byte, 0, 1+end-off)
		chunk = append(chunk, prefix)
		chunk = append(chunk, msg[off:end]...)
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// Reassembler collects chunks written by Fragment into whole messages.
// It is not safe for concurrent use.
type Reassembler struct {
	buf     []byte
	maxSize int
}

// NewReassembler creates a Reassembler that rejects messages above maxSize.
// A maxSize of zero selects DefaultMaxMessageSize.
func NewReassembler(maxSize int) *Reassembler {
	if maxSize <= 0 {
		maxSize = DefaultMaxMessageSize
	}
	return &Reassembler{maxSize: maxSize}
}

// Add consumes one chunk. It returns the complete message once the last
// chunk has arrived, and nil otherwise. A final chunk that completes an
// empty message yields ErrMessageEmpty. After an error the partial message
// is discarded.
func (r *Reassembler) Add(chunk []byte) ([]byte, error) {
	if len(chunk) == 0 {
		r.Reset()
		return nil, fmt.Errorf("%w: empty", ErrInvalidChunk)
	}
	prefix, data := chunk[0], chunk[1:]
	if prefix != chunkMore && prefix != chunkLast {
		r.Reset()
		return nil, fmt.Errorf("%w: prefix 0x%02x", ErrInvalidChunk, prefix)
	}
	if len(r.buf)+len(data) > r.maxSize {
		r.Reset()
		return nil, fmt.Errorf("%w: > %d", ErrMessageTooLarge, r.maxSize)
	}

	r.buf = append(r.buf, data...)
	if prefix == chunkMore {
		return nil, nil
	}

	msg := r.buf
	r.buf = nil
	if len(msg) == 0 {
		return nil, ErrMessageEmpty
	}
	return msg, nil
}

// Pending returns the number of buffered bytes of an incomplete message.
func (r *Reassembler) Pending() int {
	return len(r.buf)
}

// Reset drops any partial message.
func (r *Reassembler) Reset() {
	r.buf = nil
}
