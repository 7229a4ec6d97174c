/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package coconutsim_test

import (
	"crypto/rand"
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Cainuriel/are-you-kid/pkg/crypto/primitive/coconutsim"
)

func TestGenerateKeyPair(t *testing.T) {
	h := sha256.New

	seed := make([]byte, 32)

	pubKey, privKey, err := coconutsim.GenerateKeyPair(h, seed)
	require.NoError(t, err)
	require.NotNil(t, pubKey)
	require.NotNil(t, privKey)

	// use random seed
	pubKey, privKey, err = coconutsim.GenerateKeyPair(h, nil)
	require.NoError(t, err)
	require.NotNil(t, pubKey)
	require.NotNil(t, privKey)

	// invalid size of seed
	pubKey, privKey, err = coconutsim.GenerateKeyPair(h, make([]byte, 31))
	require.Error(t, err)
	require.EqualError(t, err, "invalid size of seed")
	require.Nil(t, pubKey)
	require.Nil(t, privKey)
}

func TestKeys_Marshal(t *testing.T) {
	pubKey, privKey, err := generateKeyPairRandom()
	require.NoError(t, err)

	privKeyBytes, err := privKey.Marshal()
	require.NoError(t, err)
	require.Len(t, privKeyBytes, 32)

	privKeyUnmarshalled, err := coconutsim.UnmarshalPrivateKey(privKeyBytes)
	require.NoError(t, err)

	privKeyBytesAgain, err := privKeyUnmarshalled.Marshal()
	require.NoError(t, err)
	require.Equal(t, privKeyBytes, privKeyBytesAgain)

	pubKeyBytes, err := pubKey.Marshal()
	require.NoError(t, err)
	require.Len(t, pubKeyBytes, 48)

	pubKeyUnmarshalled, err := coconutsim.UnmarshalPublicKey(pubKeyBytes)
	require.NoError(t, err)

	pubKeyBytesAgain, err := pubKeyUnmarshalled.Marshal()
	require.NoError(t, err)
	require.Equal(t, pubKeyBytes, pubKeyBytesAgain)

	// public key derived from the round-tripped private key matches the original
	derivedPubKeyBytes, err := privKeyUnmarshalled.PublicKey().Marshal()
	require.NoError(t, err)
	require.Equal(t, pubKeyBytes, derivedPubKeyBytes)

	_, err = coconutsim.UnmarshalPrivateKey([]byte("invalid"))
	require.EqualError(t, err, "invalid size of private key")

	_, err = coconutsim.UnmarshalPublicKey([]byte("invalid"))
	require.EqualError(t, err, "invalid size of public key")
}

func TestCoconutSim_SignVerify(t *testing.T) {
	cs, err := coconutsim.New()
	require.NoError(t, err)

	pubKey, privKey, err := generateKeyPairRandom()
	require.NoError(t, err)

	privKeyBytes, err := privKey.Marshal()
	require.NoError(t, err)

	pubKeyBytes, err := pubKey.Marshal()
	require.NoError(t, err)

	messagesBytes := [][]byte{[]byte("message1"), []byte("message2"), []byte("message3")}

	sigBytes, err := cs.Sign(messagesBytes, privKeyBytes)
	require.NoError(t, err)
	require.NotEmpty(t, sigBytes)

	require.NoError(t, cs.Verify(messagesBytes, sigBytes, pubKeyBytes))

	t.Run("swapped messages", func(t *testing.T) {
		swapped := [][]byte{messagesBytes[1], messagesBytes[0], messagesBytes[2]}

		err = cs.Verify(swapped, sigBytes, pubKeyBytes)
		require.Error(t, err)
		require.EqualError(t, err, "invalid simulated threshold signature")
	})

	t.Run("wrong public key", func(t *testing.T) {
		otherPubKey, _, gErr := generateKeyPairRandom()
		require.NoError(t, gErr)

		otherPubKeyBytes, gErr := otherPubKey.Marshal()
		require.NoError(t, gErr)

		err = cs.Verify(messagesBytes, sigBytes, otherPubKeyBytes)
		require.Error(t, err)
		require.EqualError(t, err, "invalid simulated threshold signature")
	})

	t.Run("no messages", func(t *testing.T) {
		_, err = cs.Sign(nil, privKeyBytes)
		require.EqualError(t, err, "messages are not defined")
	})

	t.Run("invalid private key", func(t *testing.T) {
		_, err = cs.Sign(messagesBytes, []byte("invalid"))
		require.EqualError(t, err, "unmarshal private key: invalid size of private key")
	})

	t.Run("attestations from a different scheme instance", func(t *testing.T) {
		otherCs, gErr := coconutsim.New()
		require.NoError(t, gErr)

		err = otherCs.Verify(messagesBytes, sigBytes, pubKeyBytes)
		require.Error(t, err)
		require.Contains(t, err.Error(), "unknown authority")
	})
}

func TestCoconutSim_DeriveProof(t *testing.T) {
	cs, err := coconutsim.New()
	require.NoError(t, err)

	pubKey, privKey, err := generateKeyPairRandom()
	require.NoError(t, err)

	pubKeyBytes, err := pubKey.Marshal()
	require.NoError(t, err)

	messagesBytes := [][]byte{
		[]byte("25"),
		[]byte("ES"),
		[]byte("alice"),
		[]byte("true"),
		[]byte("true"),
	}

	sigBytes, err := cs.SignWithKey(messagesBytes, privKey)
	require.NoError(t, err)

	nonce := []byte("session nonce")

	proofBytes, err := cs.DeriveProof(messagesBytes, sigBytes, nonce, pubKeyBytes, []int{1, 3}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, proofBytes)

	revealedMessages := [][]byte{messagesBytes[1], messagesBytes[3]}

	require.NoError(t, cs.VerifyProof(revealedMessages, proofBytes, nonce, pubKeyBytes))

	t.Run("different nonce", func(t *testing.T) {
		err = cs.VerifyProof(revealedMessages, proofBytes, []byte("other nonce"), pubKeyBytes)
		require.Error(t, err)
		require.EqualError(t, err, "binding mismatch")
	})

	t.Run("wrong revealed message", func(t *testing.T) {
		err = cs.VerifyProof([][]byte{[]byte("FR"), messagesBytes[3]}, proofBytes, nonce, pubKeyBytes)
		require.Error(t, err)
		require.EqualError(t, err, "commitment mismatch at index 1")
	})

	t.Run("wrong number of revealed messages", func(t *testing.T) {
		err = cs.VerifyProof([][]byte{messagesBytes[1]}, proofBytes, nonce, pubKeyBytes)
		require.Error(t, err)
		require.Contains(t, err.Error(), "1 messages provided for 2 revealed indexes")
	})

	t.Run("wrong public key", func(t *testing.T) {
		otherPubKey, _, gErr := generateKeyPairRandom()
		require.NoError(t, gErr)

		otherPubKeyBytes, gErr := otherPubKey.Marshal()
		require.NoError(t, gErr)

		err = cs.VerifyProof(revealedMessages, proofBytes, nonce, otherPubKeyBytes)
		require.Error(t, err)
		require.EqualError(t, err, "digest mismatch")
	})

	t.Run("garbage proof", func(t *testing.T) {
		err = cs.VerifyProof(revealedMessages, []byte("{"), nonce, pubKeyBytes)
		require.Error(t, err)
		require.EqualError(t, err, "parse threshold proof: invalid threshold proof encoding")
	})

	t.Run("revealed index out of range", func(t *testing.T) {
		_, err = cs.DeriveProof(messagesBytes, sigBytes, nonce, pubKeyBytes, []int{0, 7}, nil)
		require.Error(t, err)
		require.EqualError(t, err,
			"invalid revealed index: requested index 7 is larger than 5 messages count")
	})

	t.Run("no message to reveal", func(t *testing.T) {
		_, err = cs.DeriveProof(messagesBytes, sigBytes, nonce, pubKeyBytes, nil, nil)
		require.Error(t, err)
		require.EqualError(t, err, "no message to reveal")
	})
}

func TestCoconutSim_OutcomeHints(t *testing.T) {
	cs, err := coconutsim.New()
	require.NoError(t, err)

	pubKey, privKey, err := generateKeyPairRandom()
	require.NoError(t, err)

	pubKeyBytes, err := pubKey.Marshal()
	require.NoError(t, err)

	messagesBytes := [][]byte{[]byte("message1"), []byte("message2")}

	sigBytes, err := cs.SignWithKey(messagesBytes, privKey)
	require.NoError(t, err)

	nonce := []byte("nonce")
	revealedMessages := [][]byte{messagesBytes[0]}

	t.Run("valid hint passes through", func(t *testing.T) {
		hints := map[string]string{coconutsim.HintExpectedOutcome: coconutsim.OutcomeValid}

		proofBytes, dErr := cs.DeriveProof(messagesBytes, sigBytes, nonce, pubKeyBytes, []int{0}, hints)
		require.NoError(t, dErr)

		require.NoError(t, cs.VerifyProof(revealedMessages, proofBytes, nonce, pubKeyBytes))
	})

	t.Run("self-reported failure invalidates", func(t *testing.T) {
		hints := map[string]string{coconutsim.HintExpectedOutcome: coconutsim.OutcomeInvalid}

		proofBytes, dErr := cs.DeriveProof(messagesBytes, sigBytes, nonce, pubKeyBytes, []int{0}, hints)
		require.NoError(t, dErr)

		err = cs.VerifyProof(revealedMessages, proofBytes, nonce, pubKeyBytes)
		require.Error(t, err)
		require.EqualError(t, err, "proof self-reports a failed outcome")
	})
}

func TestCoconutSim_TamperedProofBytes(t *testing.T) {
	cs, err := coconutsim.New()
	require.NoError(t, err)

	pubKey, privKey, err := generateKeyPairRandom()
	require.NoError(t, err)

	pubKeyBytes, err := pubKey.Marshal()
	require.NoError(t, err)

	messagesBytes := [][]byte{[]byte("message1"), []byte("message2"), []byte("message3")}

	sigBytes, err := cs.SignWithKey(messagesBytes, privKey)
	require.NoError(t, err)

	nonce := []byte("nonce for tampering checks")

	proofBytes, err := cs.DeriveProof(messagesBytes, sigBytes, nonce, pubKeyBytes, []int{0, 2}, nil)
	require.NoError(t, err)

	revealedMessages := [][]byte{messagesBytes[0], messagesBytes[2]}

	for i := 0; i < len(proofBytes); i += 53 {
		proofBytesCopy := make([]byte, len(proofBytes))
		copy(proofBytesCopy, proofBytes)
		proofBytesCopy[i] ^= 0xff

		err = cs.VerifyProof(revealedMessages, proofBytesCopy, nonce, pubKeyBytes)
		require.Error(t, err, "flipped byte at offset %d", i)
	}
}

func TestNewWithAuthorities(t *testing.T) {
	cs, err := coconutsim.NewWithAuthorities(5, 3)
	require.NoError(t, err)
	require.Equal(t, 3, cs.Threshold())

	_, err = coconutsim.NewWithAuthorities(0, 0)
	require.EqualError(t, err, "invalid authority set size")

	_, err = coconutsim.NewWithAuthorities(2, 3)
	require.EqualError(t, err, "invalid authority set size")
}

func generateKeyPairRandom() (*coconutsim.PublicKey, *coconutsim.PrivateKey, error) {
	seed := make([]byte, 32)

	_, err := rand.Read(seed)
	if err != nil {
		panic(err)
	}

	return coconutsim.GenerateKeyPair(sha256.New, seed)
}
