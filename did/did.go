// Package did generates self-certifying issuer identities. An identifier is
// derived entirely from an Ed25519 public key (did:key style), so resolving
// an identifier back to its key is a pure decode with no registry lookup.
package did

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// Method is the identifier scheme prefix.
const Method = "did:key"

// multicodecEd25519 tags the public key bytes before base58 encoding.
var multicodecEd25519 = []byte{0xed, 0x01}

// ErrKeyGeneration is returned when key material cannot be produced, e.g.
// the system random source is unavailable. Fatal, not retried.
var ErrKeyGeneration = errors.New("key generation failed")

// Identity is an issuer keypair with its derived identifier.
type Identity struct {
	PrivateKey ed25519.PrivateKey
	PublicKey  ed25519.PublicKey
	DID        string
}

// Generate creates a fresh Ed25519 identity from the system random source.
func Generate() (*Identity, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}

	return &Identity{
		PrivateKey: priv,
		PublicKey:  pub,
		DID:        EncodeIdentifier(pub),
	}, nil
}

// FromPrivateKey builds an Identity around a caller-supplied fixed key.
func FromPrivateKey(priv ed25519.PrivateKey) (*Identity, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: private key must be %d bytes, got %d", ErrKeyGeneration, ed25519.PrivateKeySize, len(priv))
	}

	pub := priv.Public().(ed25519.PublicKey)

	return &Identity{
		PrivateKey: priv,
		PublicKey:  pub,
		DID:        EncodeIdentifier(pub),
	}, nil
}

// EncodeIdentifier derives the identifier for a public key: the 2-byte
// multicodec tag prepended to the raw key bytes, base58-encoded, under the
// did:key method prefix.
func EncodeIdentifier(pub ed25519.PublicKey) string {
	prefixed := make([]byte, 0, len(multicodecEd25519)+len(pub))
	prefixed = append(prefixed, multicodecEd25519...)
	prefixed = append(prefixed, pub...)

	return Method + ":" + base58.Encode(prefixed)
}

// Tail returns the base58 portion of the identifier.
func (id *Identity) Tail() string {
	return strings.TrimPrefix(id.DID, Method+":")
}

// VerificationMethod returns the proof reference for this identity,
// "<did>#<base58-tail>".
func (id *Identity) VerificationMethod() string {
	return id.DID + "#" + id.Tail()
}

// ParseVerificationMethod reconstructs the public key referenced by a
// verification method string. It accepts either a bare identifier or the
// "<did>#<tail>" form and decodes the fragment.
func ParseVerificationMethod(vm string) (ed25519.PublicKey, error) {
	if vm == "" {
		return nil, fmt.Errorf("verification method is empty")
	}

	tail := vm
	if idx := strings.LastIndex(vm, "#"); idx >= 0 {
		tail = vm[idx+1:]
	} else {
		tail = strings.TrimPrefix(tail, Method+":")
	}
	if tail == "" {
		return nil, fmt.Errorf("verification method %q has no key fragment", vm)
	}

	decoded, err := base58.Decode(tail)
	if err != nil {
		return nil, fmt.Errorf("failed to base58-decode key fragment: %w", err)
	}

	if len(decoded) != len(multicodecEd25519)+ed25519.PublicKeySize {
		return nil, fmt.Errorf("decoded key fragment has invalid length %d", len(decoded))
	}
	if !bytes.Equal(decoded[:len(multicodecEd25519)], multicodecEd25519) {
		return nil, fmt.Errorf("key fragment does not carry the ed25519 multicodec tag")
	}

	return ed25519.PublicKey(decoded[len(multicodecEd25519):]), nil
}

// FromVerificationMethod extracts the identifier part of a verification
// method string.
func FromVerificationMethod(vm string) (string, error) {
	didPart, _, found := strings.Cut(vm, "#")
	if !found || didPart == "" {
		return "", fmt.Errorf("invalid verification method %q: could not extract DID", vm)
	}
	if !strings.HasPrefix(didPart, "did:") {
		return "", fmt.Errorf("extracted DID %q is invalid, must start with 'did:'", didPart)
	}

	return didPart, nil
}
