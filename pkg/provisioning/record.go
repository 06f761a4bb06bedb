package provisioning

import (
	"crypto/ecdh"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/mdoc-proximity/mdoc-go/pkg/cose"
)

var encMode cbor.EncMode
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create provisioning CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create provisioning CBOR decoder mode: %v", err))
	}
}

// issuerDocument is the stored issuer record.
type issuerDocument struct {
	Registration     RegistrationResponse   `cbor:"1,keyasint"`
	ProofingDeadline int64                  `cbor:"2,keyasint"` // Unix milliseconds
	Condition        Condition              `cbor:"3,keyasint"`
	Evidence         map[string]Evidence    `cbor:"4,keyasint"`
	Configuration    *DocumentConfiguration `cbor:"5,keyasint,omitempty"`
	Requests         []credentialRequest    `cbor:"6,keyasint"`
}

// credentialRequest is a queued credential, deliverable after Deadline.
type credentialRequest struct {
	AuthenticationKey []byte           `cbor:"1,keyasint"` // COSE_Key
	Format            CredentialFormat `cbor:"2,keyasint"`
	Data              []byte           `cbor:"3,keyasint"`
	Deadline          int64            `cbor:"4,keyasint"` // Unix milliseconds
}

func newIssuerDocument(resp RegistrationResponse) *issuerDocument {
	return &issuerDocument{
		Registration: resp,
		Condition:    ConditionProofingRequired,
		Evidence:     make(map[string]Evidence),
		Requests:     []credentialRequest{},
	}
}

func (d *issuerDocument) marshal() ([]byte, error) {
	return encMode.Marshal(d)
}

func unmarshalIssuerDocument(data []byte) (*issuerDocument, error) {
	var d issuerDocument
	if err := decMode.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to decode issuer document: %w", err)
	}
	if _, ok := conditionNames[d.Condition]; !ok || d.Condition == ConditionNoSuchDocument {
		return nil, fmt.Errorf("unknown document condition %d", d.Condition)
	}
	if d.Evidence == nil {
		d.Evidence = make(map[string]Evidence)
	}
	return &d, nil
}

func (d *issuerDocument) hasRequestFor(key *ecdh.PublicKey) bool {
	for _, r := range d.Requests {
		pub, err := cose.DecodePublicKey(r.AuthenticationKey)
		if err == nil && pub.Equal(key) {
			return true
		}
	}
	return false
}

func (r credentialRequest) available(now time.Time) bool {
	return now.UnixMilli() >= r.Deadline
}
