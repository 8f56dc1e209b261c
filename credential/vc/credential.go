// Package vc builds, signs and verifies tourist safety credentials. The
// signing contract is a detached EdDSA JWS over the canonicalized payload;
// verification is a pure function over the credential bytes with no
// network or registry dependency.
package vc

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/sahayatri/go-tourist-credential/credential/common/dto"
	"github.com/sahayatri/go-tourist-credential/credential/common/jsonld"
	"github.com/sahayatri/go-tourist-credential/credential/common/jsonmap"
	"github.com/sahayatri/go-tourist-credential/credential/common/jws"
	"github.com/sahayatri/go-tourist-credential/did"
)

// Credential wraps a credential document, signed or not.
type Credential struct {
	doc jsonmap.JSONMap
}

// CredentialOpt configures credential processing options.
type CredentialOpt func(*credentialOptions)

type credentialOptions struct {
	validateSchema   bool
	validateContexts bool
}

// WithSchemaValidation enables JSON-schema validation of the credential
// shape during parsing and issuance.
func WithSchemaValidation() CredentialOpt {
	return func(c *credentialOptions) {
		c.validateSchema = true
	}
}

// WithContextValidation enables JSON-LD context expansion checks during
// parsing. Requires the declared contexts to be resolvable.
func WithContextValidation() CredentialOpt {
	return func(c *credentialOptions) {
		c.validateContexts = true
	}
}

func getOptions(opts ...CredentialOpt) *credentialOptions {
	options := &credentialOptions{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// Issue builds and signs a credential in one step. Everything issuance
// needs is explicit in the arguments; two calls never share state, so any
// number of issuances may run in parallel.
func Issue(info TouristInfo, issuer *did.Identity, opts ...CredentialOpt) (*Credential, error) {
	payload, err := BuildPayload(info, issuer)
	if err != nil {
		return nil, err
	}

	cred := &Credential{doc: payload}

	options := getOptions(opts...)
	if options.validateSchema {
		if err := validateSchema(cred.doc); err != nil {
			return nil, err
		}
	}

	if err := cred.AddProof(issuer); err != nil {
		return nil, err
	}

	return cred, nil
}

// ParseCredential decodes a serialized credential. Structurally invalid
// input fails with ErrMalformedCredential.
func ParseCredential(raw []byte, opts ...CredentialOpt) (*Credential, error) {
	doc, err := jsonmap.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}

	options := getOptions(opts...)
	if options.validateSchema {
		if err := validateSchema(doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
		}
	}
	if options.validateContexts {
		if err := jsonld.ValidateDocument(doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
		}
	}

	return &Credential{doc: doc}, nil
}

// AddProof signs the payload with the identity's private key and attaches
// the resulting proof block. A credential is immutable once signed; the
// only valid mutation path is attaching this one proof.
func (c *Credential) AddProof(identity *did.Identity) error {
	if identity == nil || len(identity.PrivateKey) != ed25519.PrivateKeySize {
		return fmt.Errorf("%w: invalid issuer key material", ErrSigning)
	}
	if _, exists, _ := c.doc.Proof(); exists {
		return fmt.Errorf("%w: credential already carries a proof", ErrSigning)
	}

	payload, err := c.doc.Canonicalize()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSigning, err)
	}

	detached, err := jws.SignDetached(payload, identity.PrivateKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSigning, err)
	}

	proof := dto.Proof{
		Type:               proofType,
		Created:            time.Now().UTC().Format(time.RFC3339),
		VerificationMethod: identity.VerificationMethod(),
		ProofPurpose:       proofPurpose,
		JWS:                detached,
	}
	if err := c.doc.SetProof(proof); err != nil {
		return fmt.Errorf("%w: %v", ErrSigning, err)
	}

	return nil
}

// Verify checks the credential's proof against its payload.
//
// A structurally broken credential (no proof, proof without a jws or
// verificationMethod) fails with ErrMalformedCredential. A well-formed
// credential whose key cannot be decoded or whose signature does not match
// returns (false, nil). Pure and idempotent; safe for concurrent use.
func (c *Credential) Verify() (bool, error) {
	proof, exists, err := c.doc.Proof()
	if !exists {
		return false, fmt.Errorf("%w: proof is missing", ErrMalformedCredential)
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}
	if proof.JWS == "" {
		return false, fmt.Errorf("%w: proof carries no jws", ErrMalformedCredential)
	}
	if proof.VerificationMethod == "" {
		return false, fmt.Errorf("%w: proof carries no verificationMethod", ErrMalformedCredential)
	}

	pub, err := did.ParseVerificationMethod(proof.VerificationMethod)
	if err != nil {
		// An undecodable key means the signature cannot possibly check
		// out; a negative result, not a malformed credential.
		return false, nil
	}

	payload, err := c.doc.Canonicalize()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}

	return jws.VerifyDetached(proof.JWS, payload, pub), nil
}

// Serialize returns the credential as a compact JSON string.
func (c *Credential) Serialize() (string, error) {
	data, err := c.doc.ToJSON()
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// Doc returns a shallow copy of the underlying document.
func (c *Credential) Doc() jsonmap.JSONMap {
	doc := make(jsonmap.JSONMap, len(c.doc))
	for k, v := range c.doc {
		doc[k] = v
	}

	return doc
}

// Issuer returns the issuer identifier, if present.
func (c *Credential) Issuer() string {
	issuer, _ := c.doc["issuer"].(string)
	return issuer
}

// SubjectInfo extracts the nested tourist attribute block, if present.
func (c *Credential) SubjectInfo() map[string]interface{} {
	subject, ok := c.doc["credentialSubject"].(map[string]interface{})
	if !ok {
		return nil
	}

	info, _ := subject["touristInfo"].(map[string]interface{})
	return info
}
