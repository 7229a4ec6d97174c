/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package proof implements the registry of derived proofs.
package proof

import (
	"encoding/json"

	"github.com/hyperledger/aries-framework-go/spi/storage"
	"github.com/pkg/errors"

	"github.com/Cainuriel/are-you-kid/pkg/doc/credential"
)

// NameSpace for proof store.
const NameSpace = "proof"

// ErrProofNotFound is returned on lookup of an unknown proof id.
var ErrProofNotFound = errors.New("proof not found")

// Store keeps derived proofs, keyed by proof id.
type Store struct {
	store storage.Store
}

type provider interface {
	StorageProvider() storage.Provider
}

// New returns a new proof store.
func New(ctx provider) (*Store, error) {
	store, err := ctx.StorageProvider().OpenStore(NameSpace)
	if err != nil {
		return nil, errors.WithMessage(err, "open proof store")
	}

	return &Store{store: store}, nil
}

// Put saves a proof under its id.
func (s *Store) Put(p *credential.Proof) error {
	if p == nil || p.ID == "" {
		return errors.New("proof id is mandatory")
	}

	proofBytes, err := json.Marshal(p)
	if err != nil {
		return errors.WithMessage(err, "marshal proof")
	}

	if err := s.store.Put(p.ID, proofBytes); err != nil {
		return errors.WithMessage(err, "put proof")
	}

	return nil
}

// Get retrieves a proof by id.
func (s *Store) Get(id string) (*credential.Proof, error) {
	proofBytes, err := s.store.Get(id)
	if err != nil {
		if errors.Is(err, storage.ErrDataNotFound) {
			return nil, errors.Wrapf(ErrProofNotFound, "id %s", id)
		}

		return nil, errors.WithMessage(err, "get proof")
	}

	p := &credential.Proof{}
	if err := json.Unmarshal(proofBytes, p); err != nil {
		return nil, errors.WithMessage(err, "unmarshal proof")
	}

	return p, nil
}
