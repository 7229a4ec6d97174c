/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package key implements the process-wide cache of backend key pairs.
package key

import (
	"encoding/json"

	"github.com/hyperledger/aries-framework-go/spi/storage"
	"github.com/pkg/errors"

	"github.com/Cainuriel/are-you-kid/pkg/doc/credential"
)

// NameSpace for key material store.
const NameSpace = "keymaterial"

// Store caches per-entity key pairs, keyed by their content-derived id.
type Store struct {
	store storage.Store
}

type provider interface {
	StorageProvider() storage.Provider
}

// New returns a new key material store.
func New(ctx provider) (*Store, error) {
	store, err := ctx.StorageProvider().OpenStore(NameSpace)
	if err != nil {
		return nil, errors.WithMessage(err, "open key material store")
	}

	return &Store{store: store}, nil
}

// Put saves a key pair under its id. Re-saving the same key pair is a no-op
// at the data level: the id is derived from the public key content.
func (s *Store) Put(keyPair *credential.KeyPair) error {
	if keyPair == nil || keyPair.ID == "" {
		return errors.New("key pair id is mandatory")
	}

	keyPairBytes, err := json.Marshal(keyPair)
	if err != nil {
		return errors.WithMessage(err, "marshal key pair")
	}

	if err := s.store.Put(keyPair.ID, keyPairBytes); err != nil {
		return errors.WithMessage(err, "put key pair")
	}

	return nil
}

// Get retrieves a key pair by id. Fetching an unknown id fails with
// credential.ErrKeyNotFound.
func (s *Store) Get(id string) (*credential.KeyPair, error) {
	keyPairBytes, err := s.store.Get(id)
	if err != nil {
		if errors.Is(err, storage.ErrDataNotFound) {
			return nil, errors.Wrapf(credential.ErrKeyNotFound, "id %s", id)
		}

		return nil, errors.WithMessage(err, "get key pair")
	}

	keyPair := &credential.KeyPair{}
	if err := json.Unmarshal(keyPairBytes, keyPair); err != nil {
		return nil, errors.WithMessage(err, "unmarshal key pair")
	}

	return keyPair, nil
}
