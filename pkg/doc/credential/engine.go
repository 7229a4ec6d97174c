/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credential

import (
	"crypto/rand"
	"crypto/sha256"
	"sort"
	"time"

	"github.com/btcsuite/btcutil/base58"
	"github.com/google/uuid"
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/pkg/errors"

	"github.com/Cainuriel/are-you-kid/pkg/crypto/primitive/bbs12381g2pub"
	"github.com/Cainuriel/are-you-kid/pkg/crypto/primitive/coconutsim"
	"github.com/Cainuriel/are-you-kid/pkg/doc/attribute"
	"github.com/Cainuriel/are-you-kid/pkg/doc/predicate"
)

const (
	keyIDLen = 16
	nonceLen = 32
)

var logger = log.New("are-you-kid/credential")

// Engine runs issuance, proof derivation and verification for both backends.
// The simulated threshold scheme keeps its authority set on the engine, so
// issuer, holder and verifier roles must share an Engine instance the way
// they would share an authority registry.
type Engine struct {
	bbs     *bbs12381g2pub.BBSG2Pub
	coconut *coconutsim.CoconutSim
}

// NewEngine creates a credential engine with a fresh simulated authority set.
func NewEngine() (*Engine, error) {
	coconut, err := coconutsim.New()
	if err != nil {
		return nil, errors.WithMessage(err, "create simulated threshold scheme")
	}

	return &Engine{
		bbs:     bbs12381g2pub.New(),
		coconut: coconut,
	}, nil
}

// GenerateKeyPair generates a key pair for the given backend. The key id is
// derived from the public key content, so generating from the same key twice
// is idempotent at the store level.
func (e *Engine) GenerateKeyPair(backend Backend) (*KeyPair, error) {
	var (
		pubKeyBytes  []byte
		privKeyBytes []byte
	)

	switch backend {
	case BackendPairingSignature:
		pubKey, privKey, err := bbs12381g2pub.GenerateKeyPair(sha256.New, nil)
		if err != nil {
			return nil, errors.WithMessage(err, "generate BBS+ key pair")
		}

		pubKeyBytes, err = pubKey.Marshal()
		if err != nil {
			return nil, errors.WithMessage(err, "marshal BBS+ public key")
		}

		privKeyBytes, err = privKey.Marshal()
		if err != nil {
			return nil, errors.WithMessage(err, "marshal BBS+ private key")
		}
	case BackendSimulatedThreshold:
		pubKey, privKey, err := coconutsim.GenerateKeyPair(sha256.New, nil)
		if err != nil {
			return nil, errors.WithMessage(err, "generate simulated threshold key pair")
		}

		pubKeyBytes, err = pubKey.Marshal()
		if err != nil {
			return nil, errors.WithMessage(err, "marshal simulated threshold public key")
		}

		privKeyBytes, err = privKey.Marshal()
		if err != nil {
			return nil, errors.WithMessage(err, "marshal simulated threshold private key")
		}
	default:
		return nil, errors.Errorf("unsupported backend %q", backend)
	}

	keyPair := &KeyPair{
		ID:         KeyID(pubKeyBytes),
		Backend:    backend,
		PublicKey:  pubKeyBytes,
		PrivateKey: privKeyBytes,
	}

	logger.Debugf("generated %s key pair %s", backend, keyPair.ID)

	return keyPair, nil
}

// KeyID derives the content-based identifier of a public key.
func KeyID(pubKeyBytes []byte) string {
	digest := sha256.Sum256(pubKeyBytes)

	return base58.Encode(digest[:keyIDLen])
}

// IssueCredential encodes the attribute set into its canonical vector and
// signs it under the issuer's private key.
func (e *Engine) IssueCredential(issuerKeyPair *KeyPair, attributes attribute.Set) (*Credential, error) {
	if issuerKeyPair == nil {
		return nil, errors.Wrap(ErrKeyNotFound, "issuer key pair is not defined")
	}

	encoded, err := attribute.Encode(attributes)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidAttributeSet, err.Error())
	}

	messages := encoded.Messages()

	var signature []byte

	switch issuerKeyPair.Backend {
	case BackendPairingSignature:
		signature, err = e.bbs.Sign(messages, issuerKeyPair.PrivateKey)
		if err != nil {
			return nil, errors.WithMessage(err, "sign with BBS+")
		}
	case BackendSimulatedThreshold:
		signature, err = e.coconut.Sign(messages, issuerKeyPair.PrivateKey)
		if err != nil {
			return nil, errors.WithMessage(err, "sign with simulated threshold scheme")
		}
	default:
		return nil, errors.Errorf("unsupported backend %q", issuerKeyPair.Backend)
	}

	cred := &Credential{
		ID:              uuid.New().String(),
		Backend:         issuerKeyPair.Backend,
		Names:           encoded.Names,
		Values:          encoded.Values,
		Signature:       signature,
		IssuerPublicKey: issuerKeyPair.PublicKey,
		Issued:          time.Now().UTC(),
	}

	logger.Debugf("issued %s credential %s with %d attributes", cred.Backend, cred.ID, len(messages))

	return cred, nil
}

// CreateProof derives a selective-disclosure proof revealing the attributes at
// the given indexes of the credential's canonical vector. A nil nonce gets
// fresh random bytes; callers needing replay binding across a session must
// supply their own.
func (e *Engine) CreateProof(cred *Credential, revealedIndexes []int, nonce []byte) (*Proof, error) {
	return e.CreateProofWithHints(cred, revealedIndexes, nonce, nil)
}

// CreateProofWithHints derives a proof carrying holder-asserted outcome hints.
// Hints exist to model the insecure self-reporting of the simulated scheme and
// are rejected for the pairing backend.
func (e *Engine) CreateProofWithHints(cred *Credential, revealedIndexes []int, nonce []byte,
	hints map[string]string) (*Proof, error) {
	if cred == nil {
		return nil, errors.Wrap(ErrCredentialNotFound, "credential is not defined")
	}

	revealed, err := validateRevealSet(revealedIndexes, len(cred.Values))
	if err != nil {
		return nil, err
	}

	if nonce == nil {
		nonce = make([]byte, nonceLen)

		if _, err = rand.Read(nonce); err != nil {
			return nil, errors.WithMessage(err, "generate nonce")
		}
	}

	messages := cred.Messages()

	var proofBytes []byte

	switch cred.Backend {
	case BackendPairingSignature:
		if len(hints) > 0 {
			return nil, errors.New("outcome hints are not supported by the pairing backend")
		}

		proofBytes, err = e.bbs.DeriveProof(messages, cred.Signature, nonce, cred.IssuerPublicKey, revealed)
		if err != nil {
			return nil, errors.WithMessage(err, "derive BBS+ proof")
		}
	case BackendSimulatedThreshold:
		proofBytes, err = e.coconut.DeriveProof(messages, cred.Signature, nonce, cred.IssuerPublicKey,
			revealed, hints)
		if err != nil {
			return nil, errors.WithMessage(err, "derive simulated threshold proof")
		}
	default:
		return nil, errors.Errorf("unsupported backend %q", cred.Backend)
	}

	disclosedNames := make([]string, len(revealed))
	disclosedValues := make([]string, len(revealed))

	for i, ind := range revealed {
		disclosedNames[i] = cred.Names[ind]
		disclosedValues[i] = cred.Values[ind]
	}

	proof := &Proof{
		ID:              uuid.New().String(),
		Backend:         cred.Backend,
		ProofBytes:      proofBytes,
		Nonce:           nonce,
		IssuerPublicKey: cred.IssuerPublicKey,
		MessagesCount:   len(messages),
		Revealed:        revealed,
		DisclosedNames:  disclosedNames,
		DisclosedValues: disclosedValues,
		Created:         time.Now().UTC(),
	}

	logger.Debugf("created %s proof %s revealing %d of %d attributes",
		proof.Backend, proof.ID, len(revealed), len(messages))

	return proof, nil
}

// VerifyProof checks the proof cryptographically and evaluates the domain
// predicate against the disclosed values. The two outcomes are independent;
// callers must check both. A nil issuerPublicKey or expectedNonce falls back
// to the values embedded in the proof. Structural failures short-circuit
// before any cryptographic work and surface as ErrMalformedProof alongside a
// negative result.
func (e *Engine) VerifyProof(proof *Proof, issuerPublicKey []byte, pred *predicate.Predicate,
	expectedNonce []byte) (*VerificationResult, error) {
	result := &VerificationResult{
		State:     StateReceived,
		Timestamp: time.Now().UTC(),
	}

	if proof == nil {
		return nil, errors.Wrap(ErrMalformedProof, "proof is not defined")
	}

	result.Simulation = proof.Backend == BackendSimulatedThreshold

	if err := validateProofStructure(proof); err != nil {
		wrapped := errors.Wrap(ErrMalformedProof, err.Error())
		result.FailureReason = wrapped.Error()

		return result, wrapped
	}

	result.State = StateStructureChecked
	result.DisclosedValues = proof.Disclosed()

	if issuerPublicKey == nil {
		issuerPublicKey = proof.IssuerPublicKey
	}

	nonce := expectedNonce
	if nonce == nil {
		nonce = proof.Nonce
	}

	revealedMessages := make([][]byte, len(proof.DisclosedValues))
	for i, v := range proof.DisclosedValues {
		revealedMessages[i] = []byte(v)
	}

	var cryptoErr error

	switch proof.Backend {
	case BackendPairingSignature:
		cryptoErr = e.bbs.VerifyProof(revealedMessages, proof.ProofBytes, nonce, issuerPublicKey)
	case BackendSimulatedThreshold:
		cryptoErr = e.coconut.VerifyProof(revealedMessages, proof.ProofBytes, nonce, issuerPublicKey)
	default:
		wrapped := errors.Wrapf(ErrMalformedProof, "unsupported backend %q", proof.Backend)
		result.FailureReason = wrapped.Error()

		return result, wrapped
	}

	if cryptoErr != nil {
		result.FailureReason = cryptoErr.Error()
		logger.Debugf("proof %s failed cryptographic verification: %s", proof.ID, cryptoErr)
	} else {
		result.CryptographicallyValid = true
	}

	result.State = StateCryptoChecked

	satisfied, err := predicate.Evaluate(pred, result.DisclosedValues)
	if err != nil {
		return nil, errors.WithMessage(err, "evaluate predicate")
	}

	result.PredicateSatisfied = satisfied
	result.State = StatePredicateChecked

	return result, nil
}

func validateRevealSet(revealedIndexes []int, messagesCount int) ([]int, error) {
	if len(revealedIndexes) == 0 {
		return nil, errors.Wrap(ErrInvalidRevealSet, "no attribute selected for disclosure")
	}

	seen := make(map[int]struct{}, len(revealedIndexes))
	revealed := make([]int, 0, len(revealedIndexes))

	for _, ind := range revealedIndexes {
		if ind < 0 || ind >= messagesCount {
			return nil, errors.Wrapf(ErrInvalidRevealSet, "index %d out of range [0, %d)", ind, messagesCount)
		}

		if _, ok := seen[ind]; ok {
			return nil, errors.Wrapf(ErrInvalidRevealSet, "duplicate index %d", ind)
		}

		seen[ind] = struct{}{}

		revealed = append(revealed, ind)
	}

	sort.Ints(revealed)

	return revealed, nil
}

func validateProofStructure(proof *Proof) error {
	if len(proof.ProofBytes) == 0 {
		return errors.New("proof bytes are empty")
	}

	if len(proof.Nonce) == 0 {
		return errors.New("nonce is empty")
	}

	if len(proof.IssuerPublicKey) == 0 {
		return errors.New("issuer public key is empty")
	}

	if proof.MessagesCount <= 0 {
		return errors.New("messages count is not positive")
	}

	if len(proof.Revealed) == 0 || len(proof.Revealed) > proof.MessagesCount {
		return errors.New("invalid number of revealed indexes")
	}

	prev := -1

	for _, ind := range proof.Revealed {
		if ind < 0 || ind >= proof.MessagesCount {
			return errors.Errorf("revealed index %d out of range", ind)
		}

		if ind <= prev {
			return errors.Errorf("revealed index %d out of order", ind)
		}

		prev = ind
	}

	if len(proof.DisclosedNames) != len(proof.Revealed) || len(proof.DisclosedValues) != len(proof.Revealed) {
		return errors.New("disclosed attributes are not aligned with revealed indexes")
	}

	return nil
}
