package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mdoc-proximity/mdoc-go/pkg/log"
)

// machine holds the state, locking and cancellation logic shared by every
// transport variant.
type machine struct {
	role        Role
	connID      string
	serviceUUID string
	logger      *slog.Logger
	plog        log.Logger

	// release frees the radio. Called exactly once, on the transition
	// into FAILED or CLOSED.
	release func()

	// mu serializes state mutations, the scanning duration write and
	// task slot assignment. Open and SendMessage hold it throughout.
	mu        sync.Mutex
	state     atomic.Int32 // written only with mu held
	failCause error

	scanningDuration atomic.Pointer[time.Duration]

	// slotMu guards the in-flight task. It is never held across a blocking
	// call, so Close can cancel a task while the task's owner holds mu.
	slotMu        sync.Mutex
	inFlight      context.CancelCauseFunc
	pendingCancel error

	watchMu  sync.Mutex
	watchers map[*watcher]struct{}
}

type watcher struct {
	ch   chan State
	stop func() bool
}

func newMachine(role Role, opts Options, serviceUUID string, release func()) *machine {
	m := &machine{
		role:        role,
		connID:      uuid.NewString(),
		serviceUUID: serviceUUID,
		logger:      opts.Logger,
		plog:        opts.ProtocolLogger,
		release:     release,
		watchers:    make(map[*watcher]struct{}),
	}
	m.logger = m.logger.With("conn_id", m.connID, "role", role.String())
	return m
}

// Role returns the party this endpoint represents.
func (m *machine) Role() Role {
	return m.role
}

// ConnectionID returns the identifier used in log events for this transport.
func (m *machine) ConnectionID() string {
	return m.connID
}

// State returns the current state. It does not block on the transport lock.
func (m *machine) State() State {
	return State(m.state.Load())
}

// ScanningDuration returns the time between power-on and finding the peer.
// It is only available after a successful scan.
func (m *machine) ScanningDuration() (time.Duration, bool) {
	d := m.scanningDuration.Load()
	if d == nil {
		return 0, false
	}
	return *d, true
}

// Watch returns a channel that yields the current state and every later
// change. Slow readers only see the latest state. The channel is closed
// after a terminal state is delivered or when ctx is done.
func (m *machine) Watch(ctx context.Context) <-chan State {
	ch := make(chan State, 1)

	m.watchMu.Lock()
	defer m.watchMu.Unlock()

	cur := m.State()
	ch <- cur
	if cur.IsTerminal() || ctx.Err() != nil {
		close(ch)
		return ch
	}

	w := &watcher{ch: ch}
	m.watchers[w] = struct{}{}
	w.stop = context.AfterFunc(ctx, func() {
		m.watchMu.Lock()
		defer m.watchMu.Unlock()
		if _, ok := m.watchers[w]; ok {
			delete(m.watchers, w)
			close(w.ch)
		}
	})
	return ch
}

func (m *machine) publish(s State) {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()

	for w := range m.watchers {
		select {
		case <-w.ch:
		default:
		}
		w.ch <- s
		if s.IsTerminal() {
			delete(m.watchers, w)
			w.stop()
			close(w.ch)
		}
	}
}

// assertLocked panics unless mu is held.
func (m *machine) assertLocked() {
	if m.mu.TryLock() {
		m.mu.Unlock()
		panic("transport: state mutation without holding the transport lock")
	}
}

func (m *machine) setStateLocked(next State, reason string) {
	m.assertLocked()

	cur := m.State()
	if cur == next {
		return
	}
	if !cur.canTransitionTo(next) {
		panic(fmt.Sprintf("transport: illegal transition %s -> %s", cur, next))
	}
	m.state.Store(int32(next))

	m.logger.Debug("transport state change", "from", cur, "to", next, "reason", reason)
	m.logEvent(log.Event{
		Layer:    log.LayerTransport,
		Category: log.CategoryState,
		StateChange: &log.StateChangeEvent{
			OldState: cur.String(),
			NewState: next.String(),
			Reason:   reason,
		},
	})
	m.publish(next)
}

func (m *machine) recordScanningDurationLocked(d time.Duration) {
	m.assertLocked()
	m.scanningDuration.CompareAndSwap(nil, &d)
}

// failLocked releases the radio and enters FAILED, unless already terminal.
func (m *machine) failLocked(cause error) {
	m.assertLocked()
	if m.State().IsTerminal() {
		return
	}
	m.logger.Warn("failing transport", "error", cause)
	m.logEvent(log.Event{
		Layer:    log.LayerTransport,
		Category: log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerTransport,
			Message: cause.Error(),
			Context: m.State().String(),
		},
	})
	m.failCause = cause
	m.release()
	m.setStateLocked(StateFailed, cause.Error())
}

// closeLocked releases the radio and enters CLOSED, unless already terminal.
func (m *machine) closeLocked(reason string) {
	m.assertLocked()
	if m.State().IsTerminal() {
		return
	}
	m.release()
	m.setStateLocked(StateClosed, reason)
}

// runTask runs fn as the single in-flight task. The caller holds mu for
// the duration; cancelInFlight may interrupt fn from another goroutine.
func (m *machine) runTask(ctx context.Context, fn func(ctx context.Context) error) error {
	m.assertLocked()

	taskCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	m.slotMu.Lock()
	if m.inFlight != nil {
		m.slotMu.Unlock()
		panic("transport: task already in flight")
	}
	m.inFlight = cancel
	if m.pendingCancel != nil {
		cancel(m.pendingCancel)
		m.pendingCancel = nil
	}
	m.slotMu.Unlock()

	defer func() {
		m.slotMu.Lock()
		m.inFlight = nil
		m.slotMu.Unlock()
	}()

	err := fn(taskCtx)
	if err == nil {
		return nil
	}
	if cause := context.Cause(taskCtx); cause != nil && !errors.Is(err, cause) {
		err = fmt.Errorf("%w: %w", cause, err)
	}
	return err
}

// cancelInFlight cancels the running task with cause. With no task in the
// slot the request is remembered and applied to the next task, which
// covers a task that has taken mu but not yet filled the slot.
func (m *machine) cancelInFlight(cause error) {
	m.slotMu.Lock()
	defer m.slotMu.Unlock()

	if m.inFlight != nil {
		m.inFlight(cause)
		return
	}
	m.pendingCancel = cause
}

func (m *machine) logEvent(ev log.Event) {
	ev.Timestamp = time.Now()
	ev.ConnectionID = m.connID
	ev.LocalRole = m.role.logRole()
	ev.ServiceUUID = m.serviceUUID
	m.plog.Log(ev)
}
