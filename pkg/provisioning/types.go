package provisioning

import (
	"crypto/ecdh"
	"fmt"
	"time"
)

// Condition is the issuer-side state of a document.
type Condition uint8

const (
	ConditionProofingRequired       Condition = 0
	ConditionProofingProcessing     Condition = 1
	ConditionProofingFailed         Condition = 2
	ConditionConfigurationAvailable Condition = 3
	ConditionReady                  Condition = 4
	ConditionNoSuchDocument         Condition = 5
)

var conditionNames = map[Condition]string{
	ConditionProofingRequired:       "PROOFING_REQUIRED",
	ConditionProofingProcessing:     "PROOFING_PROCESSING",
	ConditionProofingFailed:         "PROOFING_FAILED",
	ConditionConfigurationAvailable: "CONFIGURATION_AVAILABLE",
	ConditionReady:                  "READY",
	ConditionNoSuchDocument:         "NO_SUCH_DOCUMENT",
}

func (c Condition) String() string {
	if name, ok := conditionNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Condition(%d)", c)
}

// CredentialFormat identifies the presentation format of a credential.
type CredentialFormat string

const (
	FormatMdocMSO CredentialFormat = "MDOC_MSO"
	FormatSDJWTVC CredentialFormat = "SD_JWT_VC"
)

// RegistrationResponse is what the wallet sends when registering a document.
type RegistrationResponse struct {
	DeveloperModeEnabled bool `cbor:"1,keyasint"`
}

// Evidence is one response collected during proofing, keyed by the id of the
// proofing step that produced it.
type Evidence struct {
	Kind string `cbor:"1,keyasint"`
	Data []byte `cbor:"2,keyasint,omitempty"`
}

// DocumentConfiguration describes the provisioned document.
type DocumentConfiguration struct {
	DisplayName     string `cbor:"1,keyasint"`
	TypeDisplayName string `cbor:"2,keyasint"`
	DocType         string `cbor:"3,keyasint,omitempty"`
	Data            []byte `cbor:"4,keyasint,omitempty"`
}

// CredentialConfiguration tells the wallet how to create the keys it will
// ask credentials for.
type CredentialConfiguration struct {
	Challenge            []byte `cbor:"1,keyasint"`
	KeyAssertionRequired bool   `cbor:"2,keyasint"`
	SecureArea           string `cbor:"3,keyasint,omitempty"`
}

// CredentialRequest asks for one credential bound to AuthenticationKey.
type CredentialRequest struct {
	AuthenticationKey *ecdh.PublicKey
}

// CredentialData is an issued credential.
type CredentialData struct {
	AuthenticationKey *ecdh.PublicKey
	ValidFrom         time.Time
	ValidUntil        time.Time
	Format            CredentialFormat
	Data              []byte
}

// DocumentState is a snapshot returned by GetState.
type DocumentState struct {
	Timestamp                      time.Time
	Condition                      Condition
	NumPendingCredentialRequests   int
	NumAvailableCredentialRequests int
}

// Notification announces that the state of a document changed.
type Notification struct {
	DocumentID string
}

// Policy holds the issuer-specific decisions.
type Policy interface {
	// CheckEvidence decides whether proofing succeeded.
	CheckEvidence(evidence map[string]Evidence) bool

	GenerateDocumentConfiguration(evidence map[string]Evidence) (DocumentConfiguration, error)

	CreateCredentialConfiguration(evidence map[string]Evidence) (CredentialConfiguration, error)

	// CreatePresentationData produces the credential bound to authKey.
	CreatePresentationData(format CredentialFormat, cfg DocumentConfiguration, authKey *ecdh.PublicKey) ([]byte, error)

	// DeveloperModeRequestUpdate returns an updated configuration, used to
	// exercise the update path without a real issuer backend.
	DeveloperModeRequestUpdate(current DocumentConfiguration) (DocumentConfiguration, error)
}
