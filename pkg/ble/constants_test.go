package ble

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCentralClientModeUUIDs(t *testing.T) {
	u := CentralClientModeUUIDs(false)
	assert.Equal(t, "00000005-a123-48ce-896b-4c76973373e6", u.State.String())
	assert.Equal(t, "00000006-a123-48ce-896b-4c76973373e6", u.Client2Server.String())
	assert.Equal(t, "00000007-a123-48ce-896b-4c76973373e6", u.Server2Client.String())
	assert.Equal(t, "00000008-a123-48ce-896b-4c76973373e6", u.Ident.String())
	assert.Nil(t, u.L2CAP)

	u = CentralClientModeUUIDs(true)
	require.NotNil(t, u.L2CAP)
	assert.Equal(t, "0000000b-a123-48ce-896b-4c76973373e6", u.L2CAP.String())
}

func TestPeripheralServerModeUUIDs(t *testing.T) {
	u := PeripheralServerModeUUIDs(true)
	assert.Equal(t, "00000001-a123-48ce-896b-4c76973373e6", u.State.String())
	assert.Equal(t, uuid.Nil, u.Ident)
	require.NotNil(t, u.L2CAP)
	assert.Equal(t, "0000000a-a123-48ce-896b-4c76973373e6", u.L2CAP.String())

	// Returned pointers must not share storage between calls.
	*u.L2CAP = uuid.Nil
	assert.NotEqual(t, uuid.Nil, *PeripheralServerModeUUIDs(true).L2CAP)
}
