/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package credengine exposes the credential engine as controller commands:
// key generation, credential issuance, proof derivation and verification.
package credengine

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/spi/storage"

	"github.com/Cainuriel/are-you-kid/pkg/controller/command"
	"github.com/Cainuriel/are-you-kid/pkg/controller/internal/cmdutil"
	"github.com/Cainuriel/are-you-kid/pkg/doc/attribute"
	"github.com/Cainuriel/are-you-kid/pkg/doc/credential"
	"github.com/Cainuriel/are-you-kid/pkg/internal/logutil"
	credentialstore "github.com/Cainuriel/are-you-kid/pkg/store/credential"
	keystore "github.com/Cainuriel/are-you-kid/pkg/store/key"
	proofstore "github.com/Cainuriel/are-you-kid/pkg/store/proof"
)

var logger = log.New("are-you-kid/command/credengine")

// Error codes.
const (
	// InvalidRequestErrorCode is typically a code for invalid requests.
	InvalidRequestErrorCode = command.Code(iota + command.CredEngine)

	// GenerateKeyPairErrorCode for key generation errors.
	GenerateKeyPairErrorCode

	// IssueCredentialErrorCode for credential issuance errors.
	IssueCredentialErrorCode

	// CreateProofErrorCode for proof derivation errors.
	CreateProofErrorCode

	// VerifyProofErrorCode for proof verification errors.
	VerifyProofErrorCode
)

const (
	// CommandName is the name of this command set.
	CommandName = "credengine"

	// command methods.
	GenerateKeyPairCommandMethod = "GenerateKeyPair"
	IssueCredentialCommandMethod = "IssueCredential"
	CreateProofCommandMethod     = "CreateProof"
	VerifyProofCommandMethod     = "VerifyProof"

	// error messages.
	errEmptyIssuerID     = "issuer id is mandatory"
	errEmptyCredentialID = "credential id is mandatory"
	errEmptyPredicate    = "predicate is mandatory"
	errNoProof           = "either proof id or an inline proof is mandatory"
)

type provider interface {
	StorageProvider() storage.Provider
}

// Command contains command operations of the credential engine.
type Command struct {
	engine     *credential.Engine
	keyStore   *keystore.Store
	credStore  *credentialstore.Store
	proofStore *proofstore.Store
}

// New returns a new credengine controller command instance.
func New(p provider) (*Command, error) {
	engine, err := credential.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("new credential engine : %w", err)
	}

	keyStore, err := keystore.New(p)
	if err != nil {
		return nil, fmt.Errorf("new key material store : %w", err)
	}

	credStore, err := credentialstore.New(p)
	if err != nil {
		return nil, fmt.Errorf("new credential store : %w", err)
	}

	proofStore, err := proofstore.New(p)
	if err != nil {
		return nil, fmt.Errorf("new proof store : %w", err)
	}

	return &Command{
		engine:     engine,
		keyStore:   keyStore,
		credStore:  credStore,
		proofStore: proofStore,
	}, nil
}

// GetHandlers returns list of all commands supported by this controller command.
func (o *Command) GetHandlers() []command.Handler {
	return []command.Handler{
		cmdutil.NewCommandHandler(CommandName, GenerateKeyPairCommandMethod, o.GenerateKeyPair),
		cmdutil.NewCommandHandler(CommandName, IssueCredentialCommandMethod, o.IssueCredential),
		cmdutil.NewCommandHandler(CommandName, CreateProofCommandMethod, o.CreateProof),
		cmdutil.NewCommandHandler(CommandName, VerifyProofCommandMethod, o.VerifyProof),
	}
}

// GenerateKeyPair generates a key pair for the requested backend and caches
// it in the key material store under its content-derived id.
func (o *Command) GenerateKeyPair(rw io.Writer, req io.Reader) command.Error {
	request := &GenerateKeyPairRequest{}

	err := json.NewDecoder(req).Decode(&request)
	if err != nil {
		logutil.LogInfo(logger, CommandName, GenerateKeyPairCommandMethod, "request decode : "+err.Error())

		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf("request decode : %w", err))
	}

	keyPair, err := o.engine.GenerateKeyPair(credential.Backend(request.Backend))
	if err != nil {
		logutil.LogError(logger, CommandName, GenerateKeyPairCommandMethod, "generate key pair : "+err.Error())

		return command.NewExecuteError(GenerateKeyPairErrorCode, fmt.Errorf("generate key pair : %w", err))
	}

	if err := o.keyStore.Put(keyPair); err != nil {
		logutil.LogError(logger, CommandName, GenerateKeyPairCommandMethod, "save key pair : "+err.Error())

		return command.NewExecuteError(GenerateKeyPairErrorCode, fmt.Errorf("save key pair : %w", err))
	}

	command.WriteNillableResponse(rw, &GenerateKeyPairResponse{
		KeyID:     keyPair.ID,
		Backend:   string(keyPair.Backend),
		PublicKey: hex.EncodeToString(keyPair.PublicKey),
	}, logger)

	logutil.LogDebug(logger, CommandName, GenerateKeyPairCommandMethod, "success",
		logutil.CreateKeyValueString("keyId", keyPair.ID))

	return nil
}

// IssueCredential issues a credential over the request's attribute set under
// the issuer's cached key pair and saves it in the credential registry.
func (o *Command) IssueCredential(rw io.Writer, req io.Reader) command.Error {
	request := &IssueCredentialRequest{}

	err := json.NewDecoder(req).Decode(&request)
	if err != nil {
		logutil.LogInfo(logger, CommandName, IssueCredentialCommandMethod, "request decode : "+err.Error())

		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf("request decode : %w", err))
	}

	if request.IssuerID == "" {
		logutil.LogDebug(logger, CommandName, IssueCredentialCommandMethod, errEmptyIssuerID)

		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf(errEmptyIssuerID))
	}

	keyPair, err := o.keyStore.Get(request.IssuerID)
	if err != nil {
		logutil.LogError(logger, CommandName, IssueCredentialCommandMethod, "get issuer key pair : "+err.Error(),
			logutil.CreateKeyValueString("issuerId", request.IssuerID))

		return command.NewExecuteError(IssueCredentialErrorCode, fmt.Errorf("get issuer key pair : %w", err))
	}

	cred, err := o.engine.IssueCredential(keyPair, attribute.Set(request.Attributes))
	if err != nil {
		logutil.LogError(logger, CommandName, IssueCredentialCommandMethod, "issue credential : "+err.Error())

		return command.NewExecuteError(IssueCredentialErrorCode, fmt.Errorf("issue credential : %w", err))
	}

	if err := o.credStore.Put(cred); err != nil {
		logutil.LogError(logger, CommandName, IssueCredentialCommandMethod, "save credential : "+err.Error())

		return command.NewExecuteError(IssueCredentialErrorCode, fmt.Errorf("save credential : %w", err))
	}

	command.WriteNillableResponse(rw, credentialToModel(cred), logger)

	logutil.LogDebug(logger, CommandName, IssueCredentialCommandMethod, "success",
		logutil.CreateKeyValueString("credentialId", cred.ID))

	return nil
}

// CreateProof derives a selective-disclosure proof from a stored credential,
// revealing the requested attributes, and saves it in the proof registry.
func (o *Command) CreateProof(rw io.Writer, req io.Reader) command.Error {
	request := &CreateProofRequest{}

	err := json.NewDecoder(req).Decode(&request)
	if err != nil {
		logutil.LogInfo(logger, CommandName, CreateProofCommandMethod, "request decode : "+err.Error())

		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf("request decode : %w", err))
	}

	if request.CredentialID == "" {
		logutil.LogDebug(logger, CommandName, CreateProofCommandMethod, errEmptyCredentialID)

		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf(errEmptyCredentialID))
	}

	cred, err := o.credStore.Get(request.CredentialID)
	if err != nil {
		logutil.LogError(logger, CommandName, CreateProofCommandMethod, "get credential : "+err.Error(),
			logutil.CreateKeyValueString("credentialId", request.CredentialID))

		return command.NewExecuteError(CreateProofErrorCode, fmt.Errorf("get credential : %w", err))
	}

	revealedIndexes, err := namesToIndexes(cred, request.RevealedAttributeNames)
	if err != nil {
		logutil.LogDebug(logger, CommandName, CreateProofCommandMethod, err.Error())

		return command.NewValidationError(InvalidRequestErrorCode, err)
	}

	var nonce []byte

	if request.Nonce != "" {
		nonce, err = hex.DecodeString(request.Nonce)
		if err != nil {
			logutil.LogDebug(logger, CommandName, CreateProofCommandMethod, "nonce decode : "+err.Error())

			return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf("nonce decode : %w", err))
		}
	}

	proof, err := o.engine.CreateProofWithHints(cred, revealedIndexes, nonce, request.Hints)
	if err != nil {
		logutil.LogError(logger, CommandName, CreateProofCommandMethod, "create proof : "+err.Error())

		return command.NewExecuteError(CreateProofErrorCode, fmt.Errorf("create proof : %w", err))
	}

	if err := o.proofStore.Put(proof); err != nil {
		logutil.LogError(logger, CommandName, CreateProofCommandMethod, "save proof : "+err.Error())

		return command.NewExecuteError(CreateProofErrorCode, fmt.Errorf("save proof : %w", err))
	}

	command.WriteNillableResponse(rw, proofToModel(proof), logger)

	logutil.LogDebug(logger, CommandName, CreateProofCommandMethod, "success",
		logutil.CreateKeyValueString("proofId", proof.ID))

	return nil
}

// VerifyProof verifies a proof, given by registry id or inline, against the
// request's predicate.
func (o *Command) VerifyProof(rw io.Writer, req io.Reader) command.Error {
	request := &VerifyProofRequest{}

	err := json.NewDecoder(req).Decode(&request)
	if err != nil {
		logutil.LogInfo(logger, CommandName, VerifyProofCommandMethod, "request decode : "+err.Error())

		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf("request decode : %w", err))
	}

	if request.Predicate == nil {
		logutil.LogDebug(logger, CommandName, VerifyProofCommandMethod, errEmptyPredicate)

		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf(errEmptyPredicate))
	}

	proof, cmdErr := o.resolveProof(request)
	if cmdErr != nil {
		return cmdErr
	}

	var issuerPublicKey []byte

	if request.IssuerPublicKey != "" {
		issuerPublicKey, err = hex.DecodeString(request.IssuerPublicKey)
		if err != nil {
			logutil.LogDebug(logger, CommandName, VerifyProofCommandMethod, "issuer public key decode : "+err.Error())

			return command.NewValidationError(InvalidRequestErrorCode,
				fmt.Errorf("issuer public key decode : %w", err))
		}
	}

	var nonce []byte

	if request.Nonce != "" {
		nonce, err = hex.DecodeString(request.Nonce)
		if err != nil {
			logutil.LogDebug(logger, CommandName, VerifyProofCommandMethod, "nonce decode : "+err.Error())

			return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf("nonce decode : %w", err))
		}
	}

	result, err := o.engine.VerifyProof(proof, issuerPublicKey, request.Predicate, nonce)
	if err != nil && result == nil {
		logutil.LogError(logger, CommandName, VerifyProofCommandMethod, "verify proof : "+err.Error())

		return command.NewExecuteError(VerifyProofErrorCode, fmt.Errorf("verify proof : %w", err))
	}

	// a malformed proof still yields a negative result for the caller
	command.WriteNillableResponse(rw, &VerifyProofResponse{
		CryptographicallyValid: result.CryptographicallyValid,
		PredicateSatisfied:     result.PredicateSatisfied,
		DisclosedValues:        result.DisclosedValues,
		Simulation:             result.Simulation,
		State:                  result.State,
		FailureReason:          result.FailureReason,
		Timestamp:              result.Timestamp,
	}, logger)

	logutil.LogDebug(logger, CommandName, VerifyProofCommandMethod, "success",
		logutil.CreateKeyValueString("state", result.State))

	return nil
}

func (o *Command) resolveProof(request *VerifyProofRequest) (*credential.Proof, command.Error) {
	if request.Proof != nil {
		proof, err := modelToProof(request.Proof)
		if err != nil {
			logutil.LogDebug(logger, CommandName, VerifyProofCommandMethod, "proof decode : "+err.Error())

			return nil, command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf("proof decode : %w", err))
		}

		return proof, nil
	}

	if request.ProofID == "" {
		logutil.LogDebug(logger, CommandName, VerifyProofCommandMethod, errNoProof)

		return nil, command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf(errNoProof))
	}

	proof, err := o.proofStore.Get(request.ProofID)
	if err != nil {
		logutil.LogError(logger, CommandName, VerifyProofCommandMethod, "get proof : "+err.Error(),
			logutil.CreateKeyValueString("proofId", request.ProofID))

		return nil, command.NewExecuteError(VerifyProofErrorCode, fmt.Errorf("get proof : %w", err))
	}

	return proof, nil
}

func namesToIndexes(cred *credential.Credential, names []string) ([]int, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("revealed attribute names are mandatory")
	}

	indexes := make([]int, len(names))

	for i, name := range names {
		index := -1

		for j, n := range cred.Names {
			if n == name {
				index = j

				break
			}
		}

		if index == -1 {
			return nil, fmt.Errorf("attribute %q is not part of the credential", name)
		}

		indexes[i] = index
	}

	return indexes, nil
}

func credentialToModel(cred *credential.Credential) *CredentialModel {
	return &CredentialModel{
		CredentialID:    cred.ID,
		Backend:         string(cred.Backend),
		Names:           cred.Names,
		Values:          cred.Values,
		Signature:       hex.EncodeToString(cred.Signature),
		IssuerPublicKey: hex.EncodeToString(cred.IssuerPublicKey),
		Issued:          cred.Issued,
	}
}

func proofToModel(proof *credential.Proof) *ProofModel {
	return &ProofModel{
		ProofID:         proof.ID,
		Backend:         string(proof.Backend),
		Proof:           hex.EncodeToString(proof.ProofBytes),
		Nonce:           hex.EncodeToString(proof.Nonce),
		IssuerPublicKey: hex.EncodeToString(proof.IssuerPublicKey),
		MessagesCount:   proof.MessagesCount,
		Revealed:        proof.Revealed,
		DisclosedNames:  proof.DisclosedNames,
		DisclosedValues: proof.DisclosedValues,
		Created:         proof.Created,
	}
}

func modelToProof(model *ProofModel) (*credential.Proof, error) {
	proofBytes, err := hex.DecodeString(model.Proof)
	if err != nil {
		return nil, fmt.Errorf("proof bytes : %w", err)
	}

	nonce, err := hex.DecodeString(model.Nonce)
	if err != nil {
		return nil, fmt.Errorf("nonce : %w", err)
	}

	issuerPublicKey, err := hex.DecodeString(model.IssuerPublicKey)
	if err != nil {
		return nil, fmt.Errorf("issuer public key : %w", err)
	}

	return &credential.Proof{
		ID:              model.ProofID,
		Backend:         credential.Backend(model.Backend),
		ProofBytes:      proofBytes,
		Nonce:           nonce,
		IssuerPublicKey: issuerPublicKey,
		MessagesCount:   model.MessagesCount,
		Revealed:        model.Revealed,
		DisclosedNames:  model.DisclosedNames,
		DisclosedValues: model.DisclosedValues,
		Created:         model.Created,
	}, nil
}
