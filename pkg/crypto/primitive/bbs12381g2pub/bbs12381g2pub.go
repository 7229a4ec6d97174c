/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package bbs12381g2pub contains BBS+ signing primitives and keys.
// It implements a multi-message signature over BLS12-381 with selective disclosure:
// a signature over N messages can be turned into a proof of knowledge of the signature
// that reveals any chosen subset of the messages and nothing about the rest.
// BBS+ signature scheme (as defined in https://eprint.iacr.org/2016/663.pdf, section 4.3).
package bbs12381g2pub

import (
	"errors"
	"fmt"
	"sort"

	bls12381 "github.com/kilic/bls12-381"
)

// nolint:gochecknoglobals
var (
	g1 = bls12381.NewG1()
	g2 = bls12381.NewG2()
)

const (
	// Signature length.
	bls12381SignatureLen = 112

	// Default BLS 12-381 public key length in G2 field.
	bls12381G2PublicKeyLen = 96

	// Number of bytes in G1 X coordinate.
	g1CompressedSize = 48

	// Number of bytes in G1 X and Y coordinates.
	g1UncompressedSize = 96

	// Number of bytes in G2 X(a, b) and Y(a, b) coordinates.
	g2UncompressedSize = 192

	// Number of bytes in scalar compressed form.
	frCompressedSize = 32

	// Number of bytes in scalar uncompressed form.
	frUncompressedSize = 48
)

// BBSG2Pub defines BBS+ signature scheme where public key is a point in the field of G2.
type BBSG2Pub struct{}

// New creates a new BBSG2Pub.
func New() *BBSG2Pub {
	return &BBSG2Pub{}
}

// Sign signs one or more messages using a private key in compressed form.
func (bbs *BBSG2Pub) Sign(messages [][]byte, privKeyBytes []byte) ([]byte, error) {
	privKey, err := UnmarshalPrivateKey(privKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("unmarshal private key: %w", err)
	}

	if len(messages) == 0 {
		return nil, errors.New("messages are not defined")
	}

	return bbs.SignWithKey(messages, privKey)
}

// SignWithKey signs one or more messages using a BBS+ key pair.
func (bbs *BBSG2Pub) SignWithKey(messages [][]byte, privKey *PrivateKey) ([]byte, error) {
	pubKey := privKey.PublicKey()

	pubKeyWithGenerators, err := pubKey.ToPublicKeyWithGenerators(len(messages))
	if err != nil {
		return nil, fmt.Errorf("build generators from public key: %w", err)
	}

	messagesFr := make([]*SignatureMessage, len(messages))
	for i := range messages {
		messagesFr[i] = ParseSignatureMessage(messages[i])
	}

	e, s := createRandSignatureFr(), createRandSignatureFr()

	// A = b^(1/(sk+e))
	exp := bls12381.NewFr().Set(privKey.FR)
	exp.Add(exp, e)
	exp.Inverse(exp)

	a := g1.New()
	g1.MulScalar(a, computeB(s, messagesFr, pubKeyWithGenerators), frToRepr(exp))

	signature := &Signature{
		A: a,
		E: e,
		S: s,
	}

	return signature.ToBytes()
}

// Verify makes BLS BBS12-381 signature verification.
func (bbs *BBSG2Pub) Verify(messages [][]byte, sigBytes, pubKeyBytes []byte) error {
	signature, err := ParseSignature(sigBytes)
	if err != nil {
		return fmt.Errorf("parse signature: %w", err)
	}

	pubKey, err := UnmarshalPublicKey(pubKeyBytes)
	if err != nil {
		return fmt.Errorf("parse public key: %w", err)
	}

	publicKeyWithGenerators, err := pubKey.ToPublicKeyWithGenerators(len(messages))
	if err != nil {
		return fmt.Errorf("build generators from public key: %w", err)
	}

	return signature.Verify(messagesToFr(messages), publicKeyWithGenerators)
}

// DeriveProof derives a proof of BBS+ signature with some messages disclosed.
func (bbs *BBSG2Pub) DeriveProof(messages [][]byte, sigBytes, nonce, pubKeyBytes []byte,
	revealedIndexes []int) ([]byte, error) {
	if len(revealedIndexes) == 0 {
		return nil, errors.New("no message to reveal")
	}

	revealed := make([]int, len(revealedIndexes))
	copy(revealed, revealedIndexes)
	sort.Ints(revealed)

	messagesCount := len(messages)

	pubKey, err := UnmarshalPublicKey(pubKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	publicKeyWithGenerators, err := pubKey.ToPublicKeyWithGenerators(messagesCount)
	if err != nil {
		return nil, fmt.Errorf("build generators from public key: %w", err)
	}

	signature, err := ParseSignature(sigBytes)
	if err != nil {
		return nil, fmt.Errorf("parse signature: %w", err)
	}

	pokSignature, err := NewPoKOfSignature(signature, messagesToFr(messages), revealed, publicKeyWithGenerators)
	if err != nil {
		return nil, fmt.Errorf("init proof of knowledge signature: %w", err)
	}

	challengeBytes := pokSignature.ToBytes()
	challengeBytes = append(challengeBytes, ParseProofNonce(nonce).ToBytes()...)

	proof := pokSignature.GenerateProof(frFromOKM(challengeBytes))

	payloadBytes, err := newPoKPayload(messagesCount, revealed).toBytes()
	if err != nil {
		return nil, fmt.Errorf("derive proof: payload to bytes: %w", err)
	}

	return append(payloadBytes, proof.ToBytes()...), nil
}

// VerifyProof verifies a BBS+ signature proof for one or more revealed messages.
func (bbs *BBSG2Pub) VerifyProof(messagesBytes [][]byte, proof, nonce, pubKeyBytes []byte) error {
	payload, err := parsePoKPayload(proof)
	if err != nil {
		return fmt.Errorf("parse signature proof: %w", err)
	}

	signatureProof, err := ParseSignatureProof(proof[payload.lenInBytes():])
	if err != nil {
		return fmt.Errorf("parse signature proof: %w", err)
	}

	pubKey, err := UnmarshalPublicKey(pubKeyBytes)
	if err != nil {
		return fmt.Errorf("parse public key: %w", err)
	}

	publicKeyWithGenerators, err := pubKey.ToPublicKeyWithGenerators(payload.messagesCount)
	if err != nil {
		return fmt.Errorf("build generators from public key: %w", err)
	}

	messages := messagesToFr(messagesBytes)

	if len(payload.revealed) > len(messages) {
		return fmt.Errorf("more revealed indexes than disclosed messages")
	}

	revealedMessages := make(map[int]*SignatureMessage)
	for i := range payload.revealed {
		revealedMessages[payload.revealed[i]] = messages[i]
	}

	challengeBytes := signatureProof.GetBytesForChallenge(revealedMessages, publicKeyWithGenerators)
	challengeBytes = append(challengeBytes, ParseProofNonce(nonce).ToBytes()...)

	return signatureProof.Verify(frFromOKM(challengeBytes), publicKeyWithGenerators, revealedMessages, messages)
}

// computeB computes b = g1 + h0^s + h1^m1 + ... + hn^mn.
func computeB(s *bls12381.Fr, messages []*SignatureMessage, key *PublicKeyWithGenerators) *bls12381.PointG1 {
	bases := make([]*bls12381.PointG1, 0, len(messages)+2)
	scalars := make([]*bls12381.Fr, 0, len(messages)+2)

	bases = append(bases, g1.One(), key.h0)
	scalars = append(scalars, bls12381.NewFr().One(), s)

	for i := 0; i < len(messages); i++ {
		bases = append(bases, key.h[i])
		scalars = append(scalars, messages[i].FR)
	}

	return sumOfG1Products(bases, scalars)
}

func sumOfG1Products(bases []*bls12381.PointG1, scalars []*bls12381.Fr) *bls12381.PointG1 {
	res := g1.Zero()

	for i := 0; i < len(bases); i++ {
		g := g1.New()

		g1.MulScalar(g, bases[i], frToRepr(scalars[i]))
		g1.Add(res, res, g)
	}

	return res
}

func compareTwoPairings(p1 *bls12381.PointG1, q1 *bls12381.PointG2,
	p2 *bls12381.PointG1, q2 *bls12381.PointG2) bool {
	engine := bls12381.NewEngine()

	engine.AddPair(p1, q1)
	engine.AddPair(p2, q2)

	return engine.Check()
}

// ProofNonce is a nonce for a Proof of Knowledge proof.
type ProofNonce struct {
	fr *bls12381.Fr
}

// ParseProofNonce creates a new ProofNonce from bytes.
func ParseProofNonce(proofNonceBytes []byte) *ProofNonce {
	return &ProofNonce{
		frFromOKM(proofNonceBytes),
	}
}

// ToBytes converts ProofNonce into bytes.
func (pn *ProofNonce) ToBytes() []byte {
	return frToRepr(pn.fr).ToBytes()
}
