package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateString(t *testing.T) {
	assert.Equal(t, "IDLE", StateIdle.String())
	assert.Equal(t, "SCANNING", StateScanning.String())
	assert.Equal(t, "CONNECTING", StateConnecting.String())
	assert.Equal(t, "CONNECTED", StateConnected.String())
	assert.Equal(t, "FAILED", StateFailed.String())
	assert.Equal(t, "CLOSED", StateClosed.String())
	assert.Equal(t, "UNKNOWN", State(42).String())
}

func TestStateTransitions(t *testing.T) {
	all := []State{StateIdle, StateScanning, StateConnecting, StateConnected, StateFailed, StateClosed}

	for _, from := range all {
		for _, to := range all {
			got := from.canTransitionTo(to)
			var want bool
			switch {
			case from.IsTerminal():
				want = false
			case to.IsTerminal():
				want = true
			default:
				want = to > from
			}
			assert.Equal(t, want, got, "%s -> %s", from, to)
		}
	}

	assert.False(t, StateConnected.canTransitionTo(StateScanning))
	assert.False(t, StateClosed.canTransitionTo(StateFailed))
	assert.True(t, StateIdle.canTransitionTo(StateClosed))
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "HOLDER", RoleHolder.String())
	assert.Equal(t, "READER", RoleReader.String())
}
