/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package coconutsim contains a simulated approximation of the Coconut threshold
// credential scheme. Credentials are hash commitments over the message vector,
// attested by a quorum of Ed25519 authorities held by the scheme instance. The
// package offers the same surface as a real multi-message signature scheme
// (sign, verify, derive proof, verify proof) but carries no blind-issuance or
// zero-knowledge security property: verification is a recomputation of
// commitments and attestations, nothing more. Callers must label every result
// obtained through this package as a simulation.
package coconutsim

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/google/tink/go/keyset"
	"github.com/google/tink/go/signature"
	"github.com/google/tink/go/tink"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

const (
	defaultAuthorities = 3
	defaultThreshold   = 2

	commitmentSize = blake2b.Size256
	openingSize    = blake2b.Size256
	digestSize     = blake2b.Size256
	bindingSize    = blake2b.Size256
)

type authority struct {
	id       string
	signer   tink.Signer
	verifier tink.Verifier
}

// CoconutSim implements issuance and verification of simulated threshold credentials.
// A single instance plays the part of the whole authority set; issuer, holder and
// verifier roles share it the way a demo deployment shares one authority registry.
type CoconutSim struct {
	authorities []*authority
	threshold   int
}

// New creates a CoconutSim scheme with a default authority set.
func New() (*CoconutSim, error) {
	return NewWithAuthorities(defaultAuthorities, defaultThreshold)
}

// NewWithAuthorities creates a CoconutSim scheme with n authorities and
// a signing quorum of t.
func NewWithAuthorities(n, t int) (*CoconutSim, error) {
	if n < 1 || t < 1 || t > n {
		return nil, errors.New("invalid authority set size")
	}

	authorities := make([]*authority, n)

	for i := 0; i < n; i++ {
		kh, err := keyset.NewHandle(signature.ED25519KeyTemplate())
		if err != nil {
			return nil, fmt.Errorf("create authority keyset: %w", err)
		}

		signer, err := signature.NewSigner(kh)
		if err != nil {
			return nil, fmt.Errorf("create authority signer: %w", err)
		}

		pubKH, err := kh.Public()
		if err != nil {
			return nil, fmt.Errorf("export authority public keyset: %w", err)
		}

		verifier, err := signature.NewVerifier(pubKH)
		if err != nil {
			return nil, fmt.Errorf("create authority verifier: %w", err)
		}

		authorities[i] = &authority{
			id:       uuid.New().String(),
			signer:   signer,
			verifier: verifier,
		}
	}

	return &CoconutSim{
		authorities: authorities,
		threshold:   t,
	}, nil
}

// Threshold returns the attestation quorum of the scheme.
func (cs *CoconutSim) Threshold() int {
	return cs.threshold
}

// Sign issues a simulated threshold signature over the messages. Each message gets
// a hash commitment with an opening derived from the private key, and a quorum of
// authorities attests the digest over all commitments.
func (cs *CoconutSim) Sign(messages [][]byte, privKeyBytes []byte) ([]byte, error) {
	privKey, err := UnmarshalPrivateKey(privKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("unmarshal private key: %w", err)
	}

	return cs.SignWithKey(messages, privKey)
}

// SignWithKey issues a simulated threshold signature over the messages using an
// already parsed private key.
func (cs *CoconutSim) SignWithKey(messages [][]byte, privKey *PrivateKey) ([]byte, error) {
	if len(messages) == 0 {
		return nil, errors.New("messages are not defined")
	}

	skBytes, err := privKey.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal private key: %w", err)
	}

	pkBytes, err := privKey.PublicKey().Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal public key: %w", err)
	}

	openings := make([][]byte, len(messages))
	commitments := make([][]byte, len(messages))

	for i, msg := range messages {
		openings[i] = computeOpening(skBytes, i, msg)
		commitments[i] = computeCommitment(openings[i], i, msg)
	}

	digest := computeDigest(commitments, pkBytes)

	attestations, err := cs.attest(digest)
	if err != nil {
		return nil, fmt.Errorf("attest digest: %w", err)
	}

	sig := &thresholdSignature{
		Commitments:  commitments,
		Openings:     openings,
		Digest:       digest,
		Attestations: attestations,
	}

	return sig.toBytes()
}

// Verify checks a simulated threshold signature against all messages and the
// issuer public key.
func (cs *CoconutSim) Verify(messages [][]byte, sigBytes, pubKeyBytes []byte) error {
	sig, err := parseThresholdSignature(sigBytes)
	if err != nil {
		return fmt.Errorf("parse signature: %w", err)
	}

	if _, err = UnmarshalPublicKey(pubKeyBytes); err != nil {
		return fmt.Errorf("parse public key: %w", err)
	}

	if len(sig.Commitments) != len(messages) || len(sig.Openings) != len(messages) {
		return errors.New("messages mismatch signature")
	}

	for i, msg := range messages {
		commitment := computeCommitment(sig.Openings[i], i, msg)
		if !bytes.Equal(commitment, sig.Commitments[i]) {
			return errors.New("invalid simulated threshold signature")
		}
	}

	digest := computeDigest(sig.Commitments, pubKeyBytes)
	if !bytes.Equal(digest, sig.Digest) {
		return errors.New("invalid simulated threshold signature")
	}

	return cs.verifyAttestations(sig.Attestations, sig.Digest)
}

// DeriveProof derives a disclosure bundle from a simulated threshold signature.
// The bundle reveals the openings of the disclosed message indexes only; hidden
// messages stay behind their commitments. It is shaped like a proof but it is
// not one: a holder willing to break the commitment discipline is not stopped
// by any hardness assumption.
func (cs *CoconutSim) DeriveProof(messages [][]byte, sigBytes, nonce, pubKeyBytes []byte,
	revealedIndexes []int, hints map[string]string) ([]byte, error) {
	if len(revealedIndexes) == 0 {
		return nil, errors.New("no message to reveal")
	}

	sort.Ints(revealedIndexes)

	sig, err := parseThresholdSignature(sigBytes)
	if err != nil {
		return nil, fmt.Errorf("parse signature: %w", err)
	}

	if err = cs.Verify(messages, sigBytes, pubKeyBytes); err != nil {
		return nil, fmt.Errorf("verify input signature: %w", err)
	}

	messagesCount := len(messages)

	if len(revealedIndexes) > messagesCount {
		return nil, fmt.Errorf("invalid size: %d revealed indexes is larger than %d messages",
			len(revealedIndexes), messagesCount)
	}

	openings := make([][]byte, len(revealedIndexes))

	for i, ind := range revealedIndexes {
		if ind >= messagesCount {
			return nil, fmt.Errorf("invalid revealed index: requested index %d is larger than %d messages count",
				ind, messagesCount)
		}

		openings[i] = sig.Openings[ind]
	}

	proof := &thresholdProof{
		MessagesCount: messagesCount,
		Revealed:      revealedIndexes,
		Commitments:   sig.Commitments,
		Openings:      openings,
		Digest:        sig.Digest,
		Binding:       computeBinding(nonce, sig.Digest, pubKeyBytes),
		Attestations:  sig.Attestations,
		Hints:         hints,
	}

	return proof.toBytes()
}

// VerifyProof verifies a disclosure bundle for the revealed messages.
// The check recomputes every value the bundle claims: revealed commitments from
// their openings, the digest over all commitments, the nonce binding, and the
// authority attestations. A hint never makes an otherwise failing bundle pass.
func (cs *CoconutSim) VerifyProof(revealedMessages [][]byte, proofBytes, nonce, pubKeyBytes []byte) error {
	proof, err := parseThresholdProof(proofBytes)
	if err != nil {
		return fmt.Errorf("parse threshold proof: %w", err)
	}

	if _, err = UnmarshalPublicKey(pubKeyBytes); err != nil {
		return fmt.Errorf("parse public key: %w", err)
	}

	if err = proof.validateStructure(cs.threshold); err != nil {
		return fmt.Errorf("malformed threshold proof: %w", err)
	}

	if len(revealedMessages) != len(proof.Revealed) {
		return fmt.Errorf("malformed threshold proof: %d messages provided for %d revealed indexes",
			len(revealedMessages), len(proof.Revealed))
	}

	for i, ind := range proof.Revealed {
		commitment := computeCommitment(proof.Openings[i], ind, revealedMessages[i])
		if !bytes.Equal(commitment, proof.Commitments[ind]) {
			return fmt.Errorf("commitment mismatch at index %d", ind)
		}
	}

	digest := computeDigest(proof.Commitments, pubKeyBytes)
	if !bytes.Equal(digest, proof.Digest) {
		return errors.New("digest mismatch")
	}

	binding := computeBinding(nonce, proof.Digest, pubKeyBytes)
	if !bytes.Equal(binding, proof.Binding) {
		return errors.New("binding mismatch")
	}

	if outcome, ok := proof.Hints[HintExpectedOutcome]; ok && outcome != OutcomeValid {
		return errors.New("proof self-reports a failed outcome")
	}

	return cs.verifyAttestations(proof.Attestations, proof.Digest)
}

func (cs *CoconutSim) attest(digest []byte) ([]*attestation, error) {
	attestations := make([]*attestation, cs.threshold)

	for i := 0; i < cs.threshold; i++ {
		sig, err := cs.authorities[i].signer.Sign(digest)
		if err != nil {
			return nil, fmt.Errorf("authority %s: %w", cs.authorities[i].id, err)
		}

		attestations[i] = &attestation{
			AuthorityID: cs.authorities[i].id,
			Signature:   sig,
		}
	}

	return attestations, nil
}

func (cs *CoconutSim) verifyAttestations(attestations []*attestation, digest []byte) error {
	if len(attestations) < cs.threshold {
		return fmt.Errorf("%d attestations is less than threshold %d", len(attestations), cs.threshold)
	}

	verified := make(map[string]struct{}, len(attestations))

	for _, att := range attestations {
		auth := cs.findAuthority(att.AuthorityID)
		if auth == nil {
			return fmt.Errorf("unknown authority %s", att.AuthorityID)
		}

		if _, ok := verified[att.AuthorityID]; ok {
			return fmt.Errorf("duplicate attestation from authority %s", att.AuthorityID)
		}

		if err := auth.verifier.Verify(att.Signature, digest); err != nil {
			return fmt.Errorf("attestation from authority %s: %w", att.AuthorityID, err)
		}

		verified[att.AuthorityID] = struct{}{}
	}

	return nil
}

func (cs *CoconutSim) findAuthority(id string) *authority {
	for _, auth := range cs.authorities {
		if auth.id == id {
			return auth
		}
	}

	return nil
}

func computeOpening(skBytes []byte, index int, message []byte) []byte {
	return hashConcat(skBytes, uint32ToBytes(uint32(index)), message)
}

func computeCommitment(opening []byte, index int, message []byte) []byte {
	return hashConcat(opening, uint32ToBytes(uint32(index)), message)
}

func computeDigest(commitments [][]byte, pkBytes []byte) []byte {
	parts := make([][]byte, 0, len(commitments)+2)
	parts = append(parts, uint32ToBytes(uint32(len(commitments))))
	parts = append(parts, commitments...)
	parts = append(parts, pkBytes)

	return hashConcat(parts...)
}

func computeBinding(nonce, digest, pkBytes []byte) []byte {
	return hashConcat(nonce, digest, pkBytes)
}

func hashConcat(parts ...[]byte) []byte {
	// We pass a null key so error is impossible here.
	h, _ := blake2b.New256(nil) //nolint:errcheck

	for _, part := range parts {
		_, _ = h.Write(part)
	}

	return h.Sum(nil)
}
