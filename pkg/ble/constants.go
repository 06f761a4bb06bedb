package ble

import "github.com/google/uuid"

// State characteristic values.
const (
	// StateStart is written by the central once it is ready to exchange data.
	StateStart byte = 0x01

	// StateEnd signals the end of the session.
	StateEnd byte = 0x02
)

// Chunk prefixes for characteristic-based framing.
const (
	chunkLast byte = 0x00
	chunkMore byte = 0x01
)

// ATTHeaderSize is the ATT write/notify overhead subtracted from the MTU.
const ATTHeaderSize = 3

// DefaultMTU is the ATT MTU before negotiation.
const DefaultMTU = 23

// CharacteristicUUIDs names the characteristics of an mdoc GATT service.
type CharacteristicUUIDs struct {
	State         uuid.UUID
	Client2Server uuid.UUID
	Server2Client uuid.UUID

	// Ident is uuid.Nil in modes without an identification characteristic.
	Ident uuid.UUID

	// L2CAP is nil when L2CAP is not permitted.
	L2CAP *uuid.UUID
}

var (
	centralClientL2CAP    = uuid.MustParse("0000000b-a123-48ce-896b-4c76973373e6")
	peripheralServerL2CAP = uuid.MustParse("0000000a-a123-48ce-896b-4c76973373e6")
)

// CentralClientModeUUIDs returns the characteristic set used when the holder
// acts as GATT client. The L2CAP characteristic is included only if useL2CAP.
func CentralClientModeUUIDs(useL2CAP bool) CharacteristicUUIDs {
	u := CharacteristicUUIDs{
		State:         uuid.MustParse("00000005-a123-48ce-896b-4c76973373e6"),
		Client2Server: uuid.MustParse("00000006-a123-48ce-896b-4c76973373e6"),
		Server2Client: uuid.MustParse("00000007-a123-48ce-896b-4c76973373e6"),
		Ident:         uuid.MustParse("00000008-a123-48ce-896b-4c76973373e6"),
	}
	if useL2CAP {
		l := centralClientL2CAP
		u.L2CAP = &l
	}
	return u
}

// PeripheralServerModeUUIDs returns the characteristic set used when the
// holder acts as GATT server.
func PeripheralServerModeUUIDs(useL2CAP bool) CharacteristicUUIDs {
	u := CharacteristicUUIDs{
		State:         uuid.MustParse("00000001-a123-48ce-896b-4c76973373e6"),
		Client2Server: uuid.MustParse("00000002-a123-48ce-896b-4c76973373e6"),
		Server2Client: uuid.MustParse("00000003-a123-48ce-896b-4c76973373e6"),
	}
	if useL2CAP {
		l := peripheralServerL2CAP
		u.L2CAP = &l
	}
	return u
}
