/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package coconutsim

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
)

// Hint keys a holder may attach to a disclosure bundle. Hints are advisory:
// verification recomputes every claim and a hint can only invalidate, never
// validate, a bundle.
const (
	HintExpectedOutcome = "expected_outcome"

	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
)

type attestation struct {
	AuthorityID string `json:"authority_id"`
	Signature   []byte `json:"signature"`
}

type thresholdSignature struct {
	Commitments  [][]byte       `json:"commitments"`
	Openings     [][]byte       `json:"openings"`
	Digest       []byte         `json:"digest"`
	Attestations []*attestation `json:"attestations"`
}

func (ts *thresholdSignature) toBytes() ([]byte, error) {
	return json.Marshal(ts)
}

func parseThresholdSignature(sigBytes []byte) (*thresholdSignature, error) {
	sig := &thresholdSignature{}

	if err := json.Unmarshal(sigBytes, sig); err != nil {
		return nil, errors.New("invalid simulated threshold signature encoding")
	}

	if len(sig.Commitments) == 0 || len(sig.Commitments) != len(sig.Openings) {
		return nil, errors.New("invalid simulated threshold signature structure")
	}

	return sig, nil
}

type thresholdProof struct {
	MessagesCount int               `json:"messages_count"`
	Revealed      []int             `json:"revealed"`
	Commitments   [][]byte          `json:"commitments"`
	Openings      [][]byte          `json:"openings"`
	Digest        []byte            `json:"digest"`
	Binding       []byte            `json:"binding"`
	Attestations  []*attestation    `json:"attestations"`
	Hints         map[string]string `json:"hints,omitempty"`
}

func (tp *thresholdProof) toBytes() ([]byte, error) {
	return json.Marshal(tp)
}

func parseThresholdProof(proofBytes []byte) (*thresholdProof, error) {
	proof := &thresholdProof{}

	if err := json.Unmarshal(proofBytes, proof); err != nil {
		return nil, errors.New("invalid threshold proof encoding")
	}

	return proof, nil
}

// validateStructure checks shape before any recomputation: field presence,
// byte lengths, index bounds and attestation quorum.
func (tp *thresholdProof) validateStructure(threshold int) error {
	if tp.MessagesCount <= 0 {
		return errors.New("messages count is not positive")
	}

	if len(tp.Commitments) != tp.MessagesCount {
		return fmt.Errorf("%d commitments for %d messages", len(tp.Commitments), tp.MessagesCount)
	}

	for i, commitment := range tp.Commitments {
		if len(commitment) != commitmentSize {
			return fmt.Errorf("invalid size of commitment at index %d", i)
		}

		if isZero(commitment) {
			return fmt.Errorf("degenerate commitment at index %d", i)
		}
	}

	if len(tp.Revealed) == 0 || len(tp.Revealed) > tp.MessagesCount {
		return errors.New("invalid number of revealed indexes")
	}

	if len(tp.Openings) != len(tp.Revealed) {
		return fmt.Errorf("%d openings for %d revealed indexes", len(tp.Openings), len(tp.Revealed))
	}

	prev := -1

	for _, ind := range tp.Revealed {
		if ind < 0 || ind >= tp.MessagesCount {
			return fmt.Errorf("revealed index %d out of range", ind)
		}

		if ind <= prev {
			return fmt.Errorf("revealed index %d out of order", ind)
		}

		prev = ind
	}

	for i, opening := range tp.Openings {
		if len(opening) != openingSize {
			return fmt.Errorf("invalid size of opening at index %d", i)
		}
	}

	if len(tp.Digest) != digestSize {
		return errors.New("invalid size of digest")
	}

	if len(tp.Binding) != bindingSize {
		return errors.New("invalid size of binding")
	}

	if len(tp.Attestations) < threshold {
		return fmt.Errorf("%d attestations is less than threshold %d", len(tp.Attestations), threshold)
	}

	for _, att := range tp.Attestations {
		if att == nil || att.AuthorityID == "" || len(att.Signature) == 0 {
			return errors.New("incomplete attestation")
		}
	}

	return nil
}

func isZero(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}

	return true
}

func uint32ToBytes(value uint32) []byte {
	bytes := make([]byte, 4)

	binary.BigEndian.PutUint32(bytes, value)

	return bytes
}
