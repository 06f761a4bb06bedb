//go:build linux

package bluez

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// dialL2CAP opens an LE credit-based channel as a byte stream.
func dialL2CAP(ctx context.Context, address, addressType string, psm int) (io.ReadWriteCloser, error) {
	addr, err := parseAddress(address)
	if err != nil {
		return nil, err
	}
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.BTPROTO_L2CAP)
	if err != nil {
		return nil, fmt.Errorf("l2cap socket: %w", err)
	}
	sa := &unix.SockaddrL2{
		PSM:      uint16(psm),
		Addr:     addr,
		AddrType: leAddressType(addressType),
	}

	errc := make(chan error, 1)
	go func() { errc <- unix.Connect(fd, sa) }()

	select {
	case err := <-errc:
		if err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("l2cap connect %s psm %d: %w", address, psm, err)
		}
	case <-ctx.Done():
		// Shutdown aborts the pending connect; the fd is released once it
		// returns.
		_ = unix.Shutdown(fd, unix.SHUT_RDWR)
		go func() {
			<-errc
			unix.Close(fd)
		}()
		return nil, ctx.Err()
	}

	// Non-blocking mode puts the file on the runtime poller, so Close
	// unblocks a pending Read and write deadlines take effect.
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("l2cap socket: %w", err)
	}
	return os.NewFile(uintptr(fd), fmt.Sprintf("l2cap:%s/%d", address, psm)), nil
}
