/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package credential implements the selective-disclosure credential engine:
// key generation, credential issuance over an ordered attribute vector, proof
// derivation revealing a chosen subset of attributes, and verification of such
// proofs against domain predicates. Two backends are supported behind one
// contract: a BBS+ multi-message signature over BLS12-381 and a simulated
// threshold scheme whose results are always labeled as a simulation.
package credential

import (
	"errors"
	"time"
)

// Backend identifies the anonymous-credential scheme a key pair, credential
// or proof belongs to.
type Backend string

const (
	// BackendPairingSignature is the BBS+ signature scheme over BLS12-381.
	BackendPairingSignature Backend = "pairing_signature"

	// BackendSimulatedThreshold is the simulated Coconut-style threshold scheme.
	// It carries no cryptographic anonymity guarantee and every verification
	// result derived from it is flagged as a simulation.
	BackendSimulatedThreshold Backend = "simulated_threshold"
)

// Engine error kinds. Wrapped errors add the failing field or index.
var (
	// ErrKeyNotFound is returned on lookup of an unknown key pair id.
	ErrKeyNotFound = errors.New("key pair not found")

	// ErrCredentialNotFound is returned on lookup of an unknown credential id.
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrInvalidAttributeSet is returned when an attribute set is empty or a
	// value fails canonical coercion.
	ErrInvalidAttributeSet = errors.New("invalid attribute set")

	// ErrInvalidRevealSet is returned when a revealed index is out of range
	// or duplicated.
	ErrInvalidRevealSet = errors.New("invalid reveal set")

	// ErrMalformedProof is returned when a proof fails structural validation
	// before any cryptographic check.
	ErrMalformedProof = errors.New("malformed proof")
)

// KeyPair holds backend key material. It is owned exclusively by the entity
// that generated it and is never shared by reference across entities.
type KeyPair struct {
	ID         string  `json:"id"`
	Backend    Backend `json:"backend"`
	PublicKey  []byte  `json:"publicKey"`
	PrivateKey []byte  `json:"privateKey"`
}

// Credential is an issued credential: the canonical attribute vector together
// with a multi-message signature over it.
type Credential struct {
	ID              string    `json:"id"`
	Backend         Backend   `json:"backend"`
	Names           []string  `json:"names"`
	Values          []string  `json:"values"`
	Signature       []byte    `json:"signature"`
	IssuerPublicKey []byte    `json:"issuerPublicKey"`
	Issued          time.Time `json:"issued"`
}

// Messages returns the credential's attribute vector in signing form.
func (c *Credential) Messages() [][]byte {
	messages := make([][]byte, len(c.Values))

	for i, v := range c.Values {
		messages[i] = []byte(v)
	}

	return messages
}

// Proof is a selective-disclosure proof. It is self-describing: it carries the
// nonce and the issuer public key so it can be verified without extra lookups.
// Disclosed names and values are index-aligned with Revealed, which is sorted.
type Proof struct {
	ID              string    `json:"id"`
	Backend         Backend   `json:"backend"`
	ProofBytes      []byte    `json:"proofBytes"`
	Nonce           []byte    `json:"nonce"`
	IssuerPublicKey []byte    `json:"issuerPublicKey"`
	MessagesCount   int       `json:"messagesCount"`
	Revealed        []int     `json:"revealed"`
	DisclosedNames  []string  `json:"disclosedNames"`
	DisclosedValues []string  `json:"disclosedValues"`
	Created         time.Time `json:"created"`
}

// Disclosed returns the disclosed attributes as a name to value mapping.
func (p *Proof) Disclosed() map[string]string {
	disclosed := make(map[string]string, len(p.DisclosedNames))

	for i, name := range p.DisclosedNames {
		disclosed[name] = p.DisclosedValues[i]
	}

	return disclosed
}

// Verification states in check order. A failed stage short-circuits: later
// stages are not attempted.
const (
	StateReceived         = "received"
	StateStructureChecked = "structure_checked"
	StateCryptoChecked    = "crypto_checked"
	StatePredicateChecked = "predicate_checked"
)

// VerificationResult is the outcome of a single verification call.
// CryptographicallyValid and PredicateSatisfied are independent: a proof can
// be genuine while its holder does not meet the requested condition. Callers
// must check both. Simulation is true for every result produced by the
// simulated threshold backend.
type VerificationResult struct {
	CryptographicallyValid bool              `json:"cryptographicallyValid"`
	PredicateSatisfied     bool              `json:"predicateSatisfied"`
	DisclosedValues        map[string]string `json:"disclosedValues"`
	Simulation             bool              `json:"simulation,omitempty"`
	State                  string            `json:"state"`
	FailureReason          string            `json:"failureReason,omitempty"`
	Timestamp              time.Time         `json:"timestamp"`
}
