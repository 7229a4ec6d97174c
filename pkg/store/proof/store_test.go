/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proof_test

import (
	"testing"

	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/hyperledger/aries-framework-go/spi/storage"
	"github.com/stretchr/testify/require"

	"github.com/Cainuriel/are-you-kid/pkg/doc/credential"
	"github.com/Cainuriel/are-you-kid/pkg/store/proof"
)

type mockProvider struct {
	provider storage.Provider
}

func (p *mockProvider) StorageProvider() storage.Provider {
	return p.provider
}

func TestStore_PutGet(t *testing.T) {
	store, err := proof.New(&mockProvider{provider: mem.NewProvider()})
	require.NoError(t, err)

	p := &credential.Proof{
		ID:              "proof-1",
		Backend:         credential.BackendSimulatedThreshold,
		ProofBytes:      []byte("proof"),
		Nonce:           []byte("nonce"),
		IssuerPublicKey: []byte("public"),
		MessagesCount:   3,
		Revealed:        []int{0, 2},
		DisclosedNames:  []string{"age", "name"},
		DisclosedValues: []string{"25", "alice"},
	}

	require.NoError(t, store.Put(p))

	retrieved, err := store.Get("proof-1")
	require.NoError(t, err)
	require.Equal(t, p.ID, retrieved.ID)
	require.Equal(t, p.Revealed, retrieved.Revealed)
	require.Equal(t, p.DisclosedValues, retrieved.DisclosedValues)
}

func TestStore_GetNotFound(t *testing.T) {
	store, err := proof.New(&mockProvider{provider: mem.NewProvider()})
	require.NoError(t, err)

	_, err = store.Get("unknown")
	require.Error(t, err)
	require.ErrorIs(t, err, proof.ErrProofNotFound)
}

func TestStore_PutFailures(t *testing.T) {
	store, err := proof.New(&mockProvider{provider: mem.NewProvider()})
	require.NoError(t, err)

	err = store.Put(nil)
	require.Error(t, err)
	require.EqualError(t, err, "proof id is mandatory")
}
