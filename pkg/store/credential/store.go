/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package credential implements the registry of issued credentials.
package credential

import (
	"encoding/json"

	"github.com/hyperledger/aries-framework-go/spi/storage"
	"github.com/pkg/errors"

	"github.com/Cainuriel/are-you-kid/pkg/doc/credential"
)

// NameSpace for credential store.
const NameSpace = "credential"

// Store keeps issued credentials, keyed by credential id.
type Store struct {
	store storage.Store
}

type provider interface {
	StorageProvider() storage.Provider
}

// New returns a new credential store.
func New(ctx provider) (*Store, error) {
	store, err := ctx.StorageProvider().OpenStore(NameSpace)
	if err != nil {
		return nil, errors.WithMessage(err, "open credential store")
	}

	return &Store{store: store}, nil
}

// Put saves a credential under its id.
func (s *Store) Put(cred *credential.Credential) error {
	if cred == nil || cred.ID == "" {
		return errors.New("credential id is mandatory")
	}

	credBytes, err := json.Marshal(cred)
	if err != nil {
		return errors.WithMessage(err, "marshal credential")
	}

	if err := s.store.Put(cred.ID, credBytes); err != nil {
		return errors.WithMessage(err, "put credential")
	}

	return nil
}

// Get retrieves a credential by id. Fetching an unknown id fails with
// credential.ErrCredentialNotFound.
func (s *Store) Get(id string) (*credential.Credential, error) {
	credBytes, err := s.store.Get(id)
	if err != nil {
		if errors.Is(err, storage.ErrDataNotFound) {
			return nil, errors.Wrapf(credential.ErrCredentialNotFound, "id %s", id)
		}

		return nil, errors.WithMessage(err, "get credential")
	}

	cred := &credential.Credential{}
	if err := json.Unmarshal(credBytes, cred); err != nil {
		return nil, errors.WithMessage(err, "unmarshal credential")
	}

	return cred, nil
}
