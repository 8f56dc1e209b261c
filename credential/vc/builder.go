package vc

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sahayatri/go-tourist-credential/credential/common/jsonmap"
	"github.com/sahayatri/go-tourist-credential/did"
)

// BuildPayload assembles an unsigned credential payload for the given
// subject attributes and issuer identity. The issuance timestamp is taken
// at call time, UTC, second precision.
func BuildPayload(info TouristInfo, issuer *did.Identity) (jsonmap.JSONMap, error) {
	if issuer == nil {
		return nil, fmt.Errorf("issuer identity is required")
	}
	if err := checkRequiredFields(info); err != nil {
		return nil, err
	}

	return jsonmap.JSONMap{
		"@context":     []interface{}{ContextCredentialsV1},
		"id":           "urn:uuid:" + uuid.NewString(),
		"type":         []interface{}{TypeVerifiable, TypeTouristCredential},
		"issuer":       issuer.DID,
		"issuanceDate": time.Now().UTC().Format(time.RFC3339),
		"credentialSubject": map[string]interface{}{
			"id": subjectReference(info.PassportNumber),
			"touristInfo": map[string]interface{}{
				"type":              "Tourist",
				"name":              info.Name,
				"nationality":       info.Nationality,
				"passportNumber":    info.PassportNumber,
				"emergencyContact":  info.EmergencyContact,
				"bloodType":         info.BloodType,
				"insurancePolicyId": info.InsurancePolicyID,
			},
		},
	}, nil
}

// checkRequiredFields reports the first absent subject attribute, in schema
// order.
func checkRequiredFields(info TouristInfo) error {
	fields := []struct {
		name  string
		value string
	}{
		{"name", info.Name},
		{"nationality", info.Nationality},
		{"passportNumber", info.PassportNumber},
		{"emergencyContact", info.EmergencyContact},
		{"bloodType", info.BloodType},
		{"insurancePolicyId", info.InsurancePolicyID},
	}

	for _, f := range fields {
		if f.value == "" {
			return &MissingFieldError{Field: f.name}
		}
	}

	return nil
}

// subjectReference derives the subject's internal reference id as a one-way
// hash of the passport number, so the id is reproducible without embedding
// the raw identifying value.
func subjectReference(passportNumber string) string {
	digest := sha256.Sum256([]byte(passportNumber))
	return subjectDIDMethod + ":" + hex.EncodeToString(digest[:])
}
