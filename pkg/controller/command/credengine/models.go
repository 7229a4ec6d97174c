/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credengine

import (
	"time"

	"github.com/Cainuriel/are-you-kid/pkg/doc/predicate"
)

// All byte fields cross this boundary as lowercase hex strings. Attribute
// values cross as decimal-string or "true"/"false" strings, never native
// booleans or numbers, to keep the canonical encoding end to end.

// GenerateKeyPairRequest is the request to generate a backend key pair.
type GenerateKeyPairRequest struct {
	Backend string `json:"backend"`
}

// GenerateKeyPairResponse is the response of a key generation. The private
// key stays in the key material store and never crosses the boundary.
type GenerateKeyPairResponse struct {
	KeyID     string `json:"keyId"`
	Backend   string `json:"backend"`
	PublicKey string `json:"publicKey"`
}

// IssueCredentialRequest is the request to issue a credential over an
// attribute set.
type IssueCredentialRequest struct {
	IssuerID   string                 `json:"issuerId"`
	Attributes map[string]interface{} `json:"attributes"`
}

// CredentialModel is the boundary form of an issued credential.
type CredentialModel struct {
	CredentialID    string    `json:"credentialId"`
	Backend         string    `json:"backend"`
	Names           []string  `json:"names"`
	Values          []string  `json:"values"`
	Signature       string    `json:"signature"`
	IssuerPublicKey string    `json:"issuerPublicKey"`
	Issued          time.Time `json:"issued"`
}

// CreateProofRequest is the request to derive a selective-disclosure proof.
// Revealed attributes are selected by name; names are translated to vector
// indexes via the credential's canonical ordering. A missing nonce gets fresh
// random bytes.
type CreateProofRequest struct {
	CredentialID           string            `json:"credentialId"`
	RevealedAttributeNames []string          `json:"revealedAttributeNames"`
	Nonce                  string            `json:"nonce,omitempty"`
	Hints                  map[string]string `json:"hints,omitempty"`
}

// ProofModel is the boundary form of a proof. It is self-describing: nonce
// and issuer public key travel with it so it verifies without extra lookups.
type ProofModel struct {
	ProofID         string    `json:"proofId"`
	Backend         string    `json:"backend"`
	Proof           string    `json:"proof"`
	Nonce           string    `json:"nonce"`
	IssuerPublicKey string    `json:"issuerPublicKey"`
	MessagesCount   int       `json:"messagesCount"`
	Revealed        []int     `json:"revealed"`
	DisclosedNames  []string  `json:"disclosedNames"`
	DisclosedValues []string  `json:"disclosedValues"`
	Created         time.Time `json:"created"`
}

// VerifyProofRequest is the request to verify a proof against a predicate.
// The proof is given either by registry id or inline; an inline proof wins.
// Nonce and issuer public key override the proof's embedded values when set.
type VerifyProofRequest struct {
	ProofID         string               `json:"proofId,omitempty"`
	Proof           *ProofModel          `json:"proof,omitempty"`
	Predicate       *predicate.Predicate `json:"predicate"`
	Nonce           string               `json:"nonce,omitempty"`
	IssuerPublicKey string               `json:"issuerPublicKey,omitempty"`
}

// VerifyProofResponse is the outcome of a verification call.
type VerifyProofResponse struct {
	CryptographicallyValid bool              `json:"cryptographicallyValid"`
	PredicateSatisfied     bool              `json:"predicateSatisfied"`
	DisclosedValues        map[string]string `json:"disclosedValues"`
	Simulation             bool              `json:"simulation,omitempty"`
	State                  string            `json:"state"`
	FailureReason          string            `json:"failureReason,omitempty"`
	Timestamp              time.Time         `json:"timestamp"`
}
