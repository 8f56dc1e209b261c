// Package jws implements the detached JWS scheme used to sign credential
// payloads: an EdDSA signature over "<b64url(header)>.<canonical payload>",
// serialized as "<b64url(header)>..<b64url(signature)>" with an empty middle
// segment signalling that the payload travels outside the token.
package jws

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Header is the signing-context header. The b64=false flag declares the
// payload is signed raw rather than base64-encoded, and crit forces
// verifiers to honor it.
type Header struct {
	Alg  string   `json:"alg"`
	B64  bool     `json:"b64"`
	Crit []string `json:"crit"`
}

// EncodedHeader returns the base64url (no padding) encoding of the fixed
// EdDSA detached-payload header. Field order in the struct pins the header
// bytes, so the encoding is stable across processes.
func EncodedHeader() (string, error) {
	header := Header{
		Alg:  "EdDSA",
		B64:  false,
		Crit: []string{"b64"},
	}

	data, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JWS header: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(data), nil
}

// SigningInput builds the byte sequence that is actually signed.
func SigningInput(encodedHeader string, payload []byte) []byte {
	input := make([]byte, 0, len(encodedHeader)+1+len(payload))
	input = append(input, encodedHeader...)
	input = append(input, '.')
	input = append(input, payload...)

	return input
}

// SignDetached signs the payload and returns the detached JWS string.
func SignDetached(payload []byte, priv ed25519.PrivateKey) (string, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return "", fmt.Errorf("invalid private key: expected %d bytes, got %d", ed25519.PrivateKeySize, len(priv))
	}

	encodedHeader, err := EncodedHeader()
	if err != nil {
		return "", err
	}

	signature := ed25519.Sign(priv, SigningInput(encodedHeader, payload))
	encodedSignature := base64.RawURLEncoding.EncodeToString(signature)

	return encodedHeader + ".." + encodedSignature, nil
}

// Split breaks a detached JWS into its header and signature segments. The
// token must have exactly three segments with an empty middle one.
func Split(detached string) (encodedHeader, encodedSignature string, err error) {
	parts := strings.Split(detached, ".")
	if len(parts) != 3 {
		return "", "", fmt.Errorf("invalid detached JWS: expected 3 segments, got %d", len(parts))
	}
	if parts[1] != "" {
		return "", "", fmt.Errorf("invalid detached JWS: payload segment must be empty")
	}

	return parts[0], parts[2], nil
}

// VerifyDetached checks a detached JWS against the given payload bytes and
// public key. Any structural or decoding defect in the token yields false;
// there is no error channel here because a token that cannot be checked is
// simply not a valid signature.
func VerifyDetached(detached string, payload []byte, pub ed25519.PublicKey) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}

	encodedHeader, encodedSignature, err := Split(detached)
	if err != nil {
		return false
	}

	signature, err := DecodeSegment(encodedSignature)
	if err != nil {
		return false
	}

	return ed25519.Verify(pub, SigningInput(encodedHeader, payload), signature)
}

// DecodeSegment decodes a base64url segment regardless of whether padding
// was retained.
func DecodeSegment(segment string) ([]byte, error) {
	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(segment, "="))
	if err != nil {
		return nil, fmt.Errorf("failed to decode JWS segment: %w", err)
	}

	return data, nil
}
