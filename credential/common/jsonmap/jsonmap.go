package jsonmap

import (
	"encoding/json"
	"fmt"

	"github.com/sahayatri/go-tourist-credential/credential/common/canonical"
	"github.com/sahayatri/go-tourist-credential/credential/common/dto"
)

// JSONMap represents a JSON object as a map.
type JSONMap map[string]interface{}

const proofField = "proof"

// Parse decodes a JSON object into a JSONMap.
func Parse(raw []byte) (JSONMap, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("JSON string is empty")
	}

	var m JSONMap
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON object: %w", err)
	}

	return m, nil
}

// ToJSON serializes the JSONMap to JSON.
func (m JSONMap) ToJSON() ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("JSONMap is nil")
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSONMap: %w", err)
	}

	return data, nil
}

// WithoutProof returns a shallow copy of the JSONMap with the proof field
// removed, recovering the exact payload that was signed.
func (m JSONMap) WithoutProof() JSONMap {
	mCopy := make(JSONMap, len(m))
	for k, v := range m {
		if k != proofField {
			mCopy[k] = v
		}
	}

	return mCopy
}

// Canonicalize returns the canonical bytes of the JSONMap with the proof
// field excluded. Signing, verification and anchor fingerprinting all feed
// on this one function so they can never diverge.
func (m JSONMap) Canonicalize() ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("JSONMap is nil")
	}

	return canonical.Marshal(m.WithoutProof())
}

// SetProof attaches a proof to the JSONMap, replacing any existing one.
func (m JSONMap) SetProof(proof dto.Proof) error {
	if m == nil {
		return fmt.Errorf("JSONMap is nil")
	}

	serialized, err := serializeProof(proof)
	if err != nil {
		return err
	}
	m[proofField] = serialized

	return nil
}

// Proof extracts the proof block. The second return value reports whether
// a proof field is present at all.
func (m JSONMap) Proof() (dto.Proof, bool, error) {
	raw, exists := m[proofField]
	if !exists {
		return dto.Proof{}, false, nil
	}

	proof, err := ParseRawToProof(raw)
	if err != nil {
		return dto.Proof{}, true, err
	}

	return proof, true, nil
}

// ParseRawToProof converts a decoded JSON value to a Proof struct.
func ParseRawToProof(raw interface{}) (dto.Proof, error) {
	var result dto.Proof

	proofMap, ok := raw.(map[string]interface{})
	if !ok {
		return result, fmt.Errorf("invalid proof format: expected map[string]interface{}, got %T", raw)
	}

	if t, ok := proofMap["type"].(string); ok {
		result.Type = t
	}
	if created, ok := proofMap["created"].(string); ok {
		result.Created = created
	}
	if vm, ok := proofMap["verificationMethod"].(string); ok {
		result.VerificationMethod = vm
	}
	if purpose, ok := proofMap["proofPurpose"].(string); ok {
		result.ProofPurpose = purpose
	}
	if jws, ok := proofMap["jws"].(string); ok {
		result.JWS = jws
	}

	return result, nil
}

// serializeProof converts a Proof struct into a plain map so the stored
// document round-trips through JSON the same way a parsed one does.
func serializeProof(proof dto.Proof) (map[string]interface{}, error) {
	data, err := json.Marshal(proof)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal proof: %w", err)
	}

	var proofMap map[string]interface{}
	if err := json.Unmarshal(data, &proofMap); err != nil {
		return nil, fmt.Errorf("failed to serialize proof: %w", err)
	}

	return proofMap, nil
}
