package blesim

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Air is the shared medium that centrals scan.
type Air struct {
	mu          sync.Mutex
	peripherals map[uuid.UUID]*Peripheral
	changed     chan struct{}
}

// NewAir creates an empty medium.
func NewAir() *Air {
	return &Air{
		peripherals: make(map[uuid.UUID]*Peripheral),
		changed:     make(chan struct{}),
	}
}

func (a *Air) advertise(p *Peripheral) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.peripherals[p.cfg.ServiceUUID] = p
	close(a.changed)
	a.changed = make(chan struct{})
}

func (a *Air) withdraw(p *Peripheral) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.peripherals[p.cfg.ServiceUUID] == p {
		delete(a.peripherals, p.cfg.ServiceUUID)
	}
}

// scan blocks until a peripheral advertising serviceUUID appears.
func (a *Air) scan(ctx context.Context, serviceUUID uuid.UUID) (*Peripheral, error) {
	for {
		a.mu.Lock()
		p := a.peripherals[serviceUUID]
		changed := a.changed
		a.mu.Unlock()

		if p != nil {
			return p, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
