// Package provisioning implements a simple issuing authority: the issuer
// side of document provisioning.
//
// Each document the authority knows about is an issuer record stored as CBOR
// in a storage table. A record moves through the conditions
//
//	PROOFING_REQUIRED -> PROOFING_PROCESSING -> CONFIGURATION_AVAILABLE -> READY
//	                                        \-> PROOFING_FAILED
//
// Proofing completes lazily: once the proofing deadline has passed, the next
// GetState evaluates the collected evidence through the Policy. Credential
// requests likewise become available when their deadline passes and are
// handed out, and forgotten, by GetCredentials.
//
// State changes that the wallet should react to are announced on the
// Notifications channel. Sends never block the operation that caused them.
package provisioning
