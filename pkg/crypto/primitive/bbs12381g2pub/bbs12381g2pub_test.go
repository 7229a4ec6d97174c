/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbs12381g2pub_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Cainuriel/are-you-kid/pkg/crypto/primitive/bbs12381g2pub"
)

func TestBBSG2Pub_SignWithKeyPair(t *testing.T) {
	pubKey, privKey, err := generateKeyPairRandom()
	require.NoError(t, err)

	bls := bbs12381g2pub.New()

	messagesBytes := [][]byte{[]byte("message1"), []byte("message2")}

	signatureBytes, err := bls.SignWithKey(messagesBytes, privKey)
	require.NoError(t, err)
	require.NotEmpty(t, signatureBytes)
	require.Len(t, signatureBytes, 112)

	pubKeyBytes, err := pubKey.Marshal()
	require.NoError(t, err)

	require.NoError(t, bls.Verify(messagesBytes, signatureBytes, pubKeyBytes))
}

func TestBBSG2Pub_Sign(t *testing.T) {
	pubKey, privKey, err := generateKeyPairRandom()
	require.NoError(t, err)

	bls := bbs12381g2pub.New()

	messagesBytes := [][]byte{[]byte("message1"), []byte("message2")}

	privKeyBytes, err := privKey.Marshal()
	require.NoError(t, err)

	signatureBytes, err := bls.Sign(messagesBytes, privKeyBytes)
	require.NoError(t, err)
	require.NotEmpty(t, signatureBytes)
	require.Len(t, signatureBytes, 112)

	pubKeyBytes, err := pubKey.Marshal()
	require.NoError(t, err)

	require.NoError(t, bls.Verify(messagesBytes, signatureBytes, pubKeyBytes))

	// invalid private key bytes
	signatureBytes, err = bls.Sign(messagesBytes, []byte("invalid"))
	require.Error(t, err)
	require.EqualError(t, err, "unmarshal private key: invalid size of private key")
	require.Nil(t, signatureBytes)

	// at least one message must be passed
	signatureBytes, err = bls.Sign([][]byte{}, privKeyBytes)
	require.Error(t, err)
	require.EqualError(t, err, "messages are not defined")
	require.Nil(t, signatureBytes)
}

func TestBBSG2Pub_Verify(t *testing.T) {
	pubKey, privKey, err := generateKeyPairRandom()
	require.NoError(t, err)

	pubKeyBytes, err := pubKey.Marshal()
	require.NoError(t, err)

	messagesBytes := default10messages()

	bls := bbs12381g2pub.New()

	signatureBytes, err := bls.SignWithKey(messagesBytes, privKey)
	require.NoError(t, err)

	t.Run("valid signature", func(t *testing.T) {
		err = bls.Verify(messagesBytes, signatureBytes, pubKeyBytes)
		require.NoError(t, err)
	})

	t.Run("invalid signature", func(t *testing.T) {
		// swap messages order
		invalidMessagesBytes := make([][]byte, 10)
		copy(invalidMessagesBytes, messagesBytes)
		invalidMessagesBytes[0] = invalidMessagesBytes[1]

		err = bls.Verify(invalidMessagesBytes, signatureBytes, pubKeyBytes)
		require.Error(t, err)
		require.EqualError(t, err, "invalid BLS12-381 signature")
	})

	t.Run("invalid input public key", func(t *testing.T) {
		err = bls.Verify(messagesBytes, signatureBytes, []byte("invalid"))
		require.Error(t, err)
		require.EqualError(t, err, "parse public key: invalid size of public key")

		pkBytesInvalid := make([]byte, len(pubKeyBytes))

		_, err = rand.Read(pkBytesInvalid)
		require.NoError(t, err)

		err = bls.Verify(messagesBytes, signatureBytes, pkBytesInvalid)
		require.Error(t, err)
		require.Contains(t, err.Error(), "parse public key: deserialize public key")
	})

	t.Run("invalid input signature", func(t *testing.T) {
		err = bls.Verify(messagesBytes, []byte("invalid"), pubKeyBytes)
		require.Error(t, err)
		require.EqualError(t, err, "parse signature: invalid size of signature")

		sigBytesInvalid := make([]byte, len(signatureBytes))

		_, err = rand.Read(sigBytesInvalid)
		require.NoError(t, err)

		err = bls.Verify(messagesBytes, sigBytesInvalid, pubKeyBytes)
		require.Error(t, err)
		require.Contains(t, err.Error(), "parse signature: deserialize G1 compressed signature")
	})
}

func TestBBSG2Pub_DeriveProof(t *testing.T) {
	pubKey, privKey, err := generateKeyPairRandom()
	require.NoError(t, err)

	privKeyBytes, err := privKey.Marshal()
	require.NoError(t, err)

	messagesBytes := default10messages()
	bls := bbs12381g2pub.New()

	signatureBytes, err := bls.Sign(messagesBytes, privKeyBytes)
	require.NoError(t, err)

	pubKeyBytes, err := pubKey.Marshal()
	require.NoError(t, err)

	require.NoError(t, bls.Verify(messagesBytes, signatureBytes, pubKeyBytes))

	nonce := []byte("go0dnonce_for_proofs_0123456789a")
	revealedIndexes := []int{0, 2}
	proofBytes, err := bls.DeriveProof(messagesBytes, signatureBytes, nonce, pubKeyBytes, revealedIndexes)
	require.NoError(t, err)
	require.NotEmpty(t, proofBytes)

	revealedMessages := make([][]byte, len(revealedIndexes))
	for i, ind := range revealedIndexes {
		revealedMessages[i] = messagesBytes[ind]
	}

	require.NoError(t, bls.VerifyProof(revealedMessages, proofBytes, nonce, pubKeyBytes))

	t.Run("different nonce", func(t *testing.T) {
		err = bls.VerifyProof(revealedMessages, proofBytes, []byte("other nonce"), pubKeyBytes)
		require.Error(t, err)
		require.EqualError(t, err, "bad signature")
	})

	t.Run("malformed proof payload", func(t *testing.T) {
		err = bls.VerifyProof(revealedMessages, []byte("?"), nonce, pubKeyBytes)
		require.Error(t, err)
		require.EqualError(t, err, "parse signature proof: invalid size of PoK payload")
	})

	t.Run("truncated proof", func(t *testing.T) {
		proofBytesCopy := make([]byte, 5)

		copy(proofBytesCopy, proofBytes)

		err = bls.VerifyProof(revealedMessages, proofBytesCopy, nonce, pubKeyBytes)
		require.Error(t, err)
		require.EqualError(t, err, "parse signature proof: invalid size of signature proof")
	})

	t.Run("proof cut at its length prefix", func(t *testing.T) {
		// payload (4 bytes) plus the three G1 points, with the VC1
		// length prefix and everything after it missing
		proofBytesCopy := make([]byte, 148)

		copy(proofBytesCopy, proofBytes)

		err = bls.VerifyProof(revealedMessages, proofBytesCopy, nonce, pubKeyBytes)
		require.Error(t, err)
		require.EqualError(t, err, "parse signature proof: invalid size of signature proof")
	})

	t.Run("corrupted length prefix", func(t *testing.T) {
		proofBytesCopy := make([]byte, len(proofBytes))

		copy(proofBytesCopy, proofBytes)
		proofBytesCopy[148] ^= 0xff

		err = bls.VerifyProof(revealedMessages, proofBytesCopy, nonce, pubKeyBytes)
		require.Error(t, err)
		require.EqualError(t, err, "parse signature proof: invalid size of signature proof")
	})

	t.Run("wrong public key", func(t *testing.T) {
		otherPubKey, _, gErr := generateKeyPairRandom()
		require.NoError(t, gErr)

		otherPubKeyBytes, gErr := otherPubKey.Marshal()
		require.NoError(t, gErr)

		err = bls.VerifyProof(revealedMessages, proofBytes, nonce, otherPubKeyBytes)
		require.Error(t, err)
		require.EqualError(t, err, "bad signature")
	})

	t.Run("revealed index out of range", func(t *testing.T) {
		revealedIndexes = []int{0, 2, 4, 7, 9, 11}
		_, err = bls.DeriveProof(messagesBytes, signatureBytes, nonce, pubKeyBytes, revealedIndexes)
		require.EqualError(t, err, "init proof of knowledge signature: "+
			"invalid revealed index: requested index 11 is larger than 10 messages count")
	})

	t.Run("no message to reveal", func(t *testing.T) {
		_, err = bls.DeriveProof(messagesBytes, signatureBytes, nonce, pubKeyBytes, nil)
		require.Error(t, err)
		require.EqualError(t, err, "no message to reveal")
	})
}

func TestBBSG2Pub_DeriveProof_TamperedProofBytes(t *testing.T) {
	pubKey, privKey, err := generateKeyPairRandom()
	require.NoError(t, err)

	bls := bbs12381g2pub.New()

	messagesBytes := default10messages()

	signatureBytes, err := bls.SignWithKey(messagesBytes, privKey)
	require.NoError(t, err)

	pubKeyBytes, err := pubKey.Marshal()
	require.NoError(t, err)

	nonce := []byte("nonce for tampering checks")

	proofBytes, err := bls.DeriveProof(messagesBytes, signatureBytes, nonce, pubKeyBytes, []int{1, 3})
	require.NoError(t, err)

	revealedMessages := [][]byte{messagesBytes[1], messagesBytes[3]}

	// flipping any single byte must fail verification, never panic
	for i := 0; i < len(proofBytes); i++ {
		proofBytesCopy := make([]byte, len(proofBytes))
		copy(proofBytesCopy, proofBytes)
		proofBytesCopy[i] ^= 0xff

		err = bls.VerifyProof(revealedMessages, proofBytesCopy, nonce, pubKeyBytes)
		require.Error(t, err, "flipped byte at offset %d", i)
	}
}

func default10messages() [][]byte {
	return [][]byte{
		[]byte("message1"),
		[]byte("message2"),
		[]byte("message3"),
		[]byte("message4"),
		[]byte("message5"),
		[]byte("message6"),
		[]byte("message7"),
		[]byte("message8"),
		[]byte("message9"),
		[]byte("message10"),
	}
}
