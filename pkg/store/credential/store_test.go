/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credential_test

import (
	"testing"

	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/hyperledger/aries-framework-go/spi/storage"
	"github.com/stretchr/testify/require"

	doccredential "github.com/Cainuriel/are-you-kid/pkg/doc/credential"
	"github.com/Cainuriel/are-you-kid/pkg/store/credential"
)

type mockProvider struct {
	provider storage.Provider
}

func (p *mockProvider) StorageProvider() storage.Provider {
	return p.provider
}

func TestStore_PutGet(t *testing.T) {
	store, err := credential.New(&mockProvider{provider: mem.NewProvider()})
	require.NoError(t, err)

	cred := &doccredential.Credential{
		ID:              "cred-1",
		Backend:         doccredential.BackendPairingSignature,
		Names:           []string{"age", "name"},
		Values:          []string{"25", "alice"},
		Signature:       []byte("signature"),
		IssuerPublicKey: []byte("public"),
	}

	require.NoError(t, store.Put(cred))

	retrieved, err := store.Get("cred-1")
	require.NoError(t, err)
	require.Equal(t, cred.ID, retrieved.ID)
	require.Equal(t, cred.Names, retrieved.Names)
	require.Equal(t, cred.Values, retrieved.Values)
	require.Equal(t, cred.Signature, retrieved.Signature)
}

func TestStore_GetNotFound(t *testing.T) {
	store, err := credential.New(&mockProvider{provider: mem.NewProvider()})
	require.NoError(t, err)

	_, err = store.Get("unknown")
	require.Error(t, err)
	require.ErrorIs(t, err, doccredential.ErrCredentialNotFound)
}

func TestStore_PutFailures(t *testing.T) {
	store, err := credential.New(&mockProvider{provider: mem.NewProvider()})
	require.NoError(t, err)

	err = store.Put(nil)
	require.Error(t, err)
	require.EqualError(t, err, "credential id is mandatory")

	err = store.Put(&doccredential.Credential{})
	require.Error(t, err)
	require.EqualError(t, err, "credential id is mandatory")
}
