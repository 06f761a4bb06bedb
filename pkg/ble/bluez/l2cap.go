package bluez

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrL2CAPUnsupported is returned by the default dialer on platforms
// without AF_BLUETOOTH sockets.
var ErrL2CAPUnsupported = errors.New("l2cap sockets not supported on this platform")

// Dialer opens an L2CAP connection-oriented channel to the peer at address.
// addressType is the Device1 AddressType property ("public" or "random").
// A channel with SetWriteDeadline lets a cancelled send return without
// ending the link.
type Dialer func(ctx context.Context, address, addressType string, psm int) (io.ReadWriteCloser, error)

// LE address types as understood by the kernel socket layer.
const (
	addrLEPublic uint8 = 0x01
	addrLERandom uint8 = 0x02
)

func leAddressType(s string) uint8 {
	if s == "random" {
		return addrLERandom
	}
	return addrLEPublic
}

// parseAddress converts "AA:BB:CC:DD:EE:FF" to bytes in the same order.
func parseAddress(s string) ([6]byte, error) {
	var addr [6]byte
	parts := strings.Split(s, ":")
	if len(parts) != 6 {
		return addr, fmt.Errorf("invalid bluetooth address %q", s)
	}
	for i, p := range parts {
		if len(p) != 2 {
			return addr, fmt.Errorf("invalid bluetooth address %q", s)
		}
		b, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return addr, fmt.Errorf("invalid bluetooth address %q", s)
		}
		addr[i] = byte(b)
	}
	return addr, nil
}

// parsePSM decodes the L2CAP PSM characteristic value, a big-endian
// integer of two or four bytes.
func parsePSM(value []byte) (int, error) {
	var psm int
	switch len(value) {
	case 2:
		psm = int(binary.BigEndian.Uint16(value))
	case 4:
		psm = int(binary.BigEndian.Uint32(value))
	default:
		return 0, fmt.Errorf("psm characteristic has %d bytes", len(value))
	}
	if psm <= 0 || psm > 0xFFFF {
		return 0, fmt.Errorf("psm %d out of range", psm)
	}
	return psm, nil
}
