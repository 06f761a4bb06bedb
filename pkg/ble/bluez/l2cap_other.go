//go:build !linux

package bluez

import (
	"context"
	"io"
)

func dialL2CAP(ctx context.Context, address, addressType string, psm int) (io.ReadWriteCloser, error) {
	return nil, ErrL2CAPUnsupported
}
