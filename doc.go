/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package areyoukid is a selective-disclosure credential and proof engine.
//
// The engine manages per-identity key material for two anonymous-credential
// backends, issues credentials by signing an ordered vector of identity
// attributes, derives proofs that reveal a chosen subset of attributes while
// keeping the rest hidden, and verifies such proofs both cryptographically and
// against domain predicates such as an age threshold.
//
// Packages for end developer usage
//
// pkg/doc/credential: The credential engine. Key generation, issuance, proof
// derivation and verification for the pairing-based BBS+ backend and the
// simulated threshold backend.
//
// pkg/doc/attribute: Canonical encoding of attribute sets into an ordered
// message vector.
//
// pkg/doc/predicate: Domain predicates evaluated against disclosed attributes.
//
// pkg/controller: Controller commands exposing the engine operations, with
// byte fields hex-encoded at the boundary.
//
// Basic workflow
//
//      1) Create an engine using credential.NewEngine().
//      2) Generate issuer key material with engine.GenerateKeyPair.
//      3) Issue a credential over an attribute set with engine.IssueCredential.
//      4) Derive a proof revealing selected attributes with engine.CreateProof.
//      5) Verify the proof against a predicate with engine.VerifyProof.
package areyoukid
