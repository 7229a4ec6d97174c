/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbs12381g2pub_test

import (
	"crypto/rand"
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcutil/base58"
	"github.com/stretchr/testify/require"

	bbs "github.com/Cainuriel/are-you-kid/pkg/crypto/primitive/bbs12381g2pub"
)

func TestGenerateKeyPair(t *testing.T) {
	seed := make([]byte, 32)

	pubKey, privKey, err := bbs.GenerateKeyPair(sha256.New, seed)
	require.NoError(t, err)
	require.NotNil(t, pubKey)
	require.NotNil(t, privKey)

	// the same seed yields the same key pair
	pubKey2, _, err := bbs.GenerateKeyPair(sha256.New, seed)
	require.NoError(t, err)

	pubKeyBytes, err := pubKey.Marshal()
	require.NoError(t, err)

	pubKey2Bytes, err := pubKey2.Marshal()
	require.NoError(t, err)
	require.Equal(t, pubKeyBytes, pubKey2Bytes)

	// nil seed generates a random key pair
	pubKey, privKey, err = bbs.GenerateKeyPair(sha256.New, nil)
	require.NoError(t, err)
	require.NotNil(t, pubKey)
	require.NotNil(t, privKey)

	pubKey, privKey, err = bbs.GenerateKeyPair(sha256.New, make([]byte, 31))
	require.EqualError(t, err, "invalid size of seed")
	require.Nil(t, pubKey)
	require.Nil(t, privKey)
}

func TestPrivateKey_Marshal(t *testing.T) {
	pubKey, privKey, err := generateKeyPairRandom()
	require.NoError(t, err)

	privKeyBytes, err := privKey.Marshal()
	require.NoError(t, err)
	require.Len(t, privKeyBytes, 32)

	privKeyUnmarshalled, err := bbs.UnmarshalPrivateKey(privKeyBytes)
	require.NoError(t, err)

	privKeyBytesAgain, err := privKeyUnmarshalled.Marshal()
	require.NoError(t, err)
	require.Equal(t, privKeyBytes, privKeyBytesAgain)

	// the round-tripped private key still derives the original public key
	pubKeyBytes, err := pubKey.Marshal()
	require.NoError(t, err)

	derivedPubKeyBytes, err := privKeyUnmarshalled.PublicKey().Marshal()
	require.NoError(t, err)
	require.Equal(t, pubKeyBytes, derivedPubKeyBytes)
}

func TestPublicKey_Marshal(t *testing.T) {
	pubKey, _, err := generateKeyPairRandom()
	require.NoError(t, err)

	pubKeyBytes, err := pubKey.Marshal()
	require.NoError(t, err)
	require.Len(t, pubKeyBytes, 96)

	pubKeyUnmarshalled, err := bbs.UnmarshalPublicKey(pubKeyBytes)
	require.NoError(t, err)

	pubKeyBytesAgain, err := pubKeyUnmarshalled.Marshal()
	require.NoError(t, err)
	require.Equal(t, pubKeyBytes, pubKeyBytesAgain)
}

func TestSignWithStoredKeys(t *testing.T) {
	// key material travels through a base58 registry representation
	// before it is used for issuance and verification
	pubKey, privKey, err := generateKeyPairRandom()
	require.NoError(t, err)

	privKeyBytes, err := privKey.Marshal()
	require.NoError(t, err)

	pubKeyBytes, err := pubKey.Marshal()
	require.NoError(t, err)

	storedPrivKey := base58.Encode(privKeyBytes)
	storedPubKey := base58.Encode(pubKeyBytes)

	messagesBytes := [][]byte{[]byte("25"), []byte("ES"), []byte("true")}

	signatureBytes, err := bbs.New().Sign(messagesBytes, base58.Decode(storedPrivKey))
	require.NoError(t, err)

	err = bbs.New().Verify(messagesBytes, signatureBytes, base58.Decode(storedPubKey))
	require.NoError(t, err)
}

func generateKeyPairRandom() (*bbs.PublicKey, *bbs.PrivateKey, error) {
	seed := make([]byte, 32)

	_, err := rand.Read(seed)
	if err != nil {
		panic(err)
	}

	return bbs.GenerateKeyPair(sha256.New, seed)
}
