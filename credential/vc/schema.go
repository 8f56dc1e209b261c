package vc

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/sahayatri/go-tourist-credential/credential/common/jsonmap"
)

// touristCredentialSchema pins the shape of an issued credential. Embedded
// rather than fetched so validation cannot introduce a network dependency.
const touristCredentialSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "TouristCredential",
  "type": "object",
  "required": ["@context", "id", "type", "issuer", "issuanceDate", "credentialSubject"],
  "properties": {
    "@context": {
      "type": "array",
      "minItems": 1,
      "items": {"type": "string"}
    },
    "id": {"type": "string", "minLength": 1},
    "type": {
      "type": "array",
      "minItems": 1,
      "items": {"type": "string"}
    },
    "issuer": {"type": "string", "minLength": 1},
    "issuanceDate": {"type": "string", "minLength": 1},
    "credentialSubject": {
      "type": "object",
      "required": ["id", "touristInfo"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "touristInfo": {
          "type": "object",
          "required": ["type", "name", "nationality", "passportNumber", "emergencyContact", "bloodType", "insurancePolicyId"],
          "properties": {
            "type": {"type": "string"},
            "name": {"type": "string", "minLength": 1},
            "nationality": {"type": "string", "minLength": 1},
            "passportNumber": {"type": "string", "minLength": 1},
            "emergencyContact": {"type": "string", "minLength": 1},
            "bloodType": {"type": "string", "minLength": 1},
            "insurancePolicyId": {"type": "string", "minLength": 1}
          }
        }
      }
    },
    "proof": {
      "type": "object",
      "required": ["type", "created", "verificationMethod", "proofPurpose", "jws"],
      "properties": {
        "type": {"type": "string"},
        "created": {"type": "string"},
        "verificationMethod": {"type": "string"},
        "proofPurpose": {"type": "string"},
        "jws": {"type": "string"}
      }
    }
  }
}`

// validateSchema checks a credential document against the embedded tourist
// credential schema.
func validateSchema(doc jsonmap.JSONMap) error {
	schemaLoader := gojsonschema.NewStringLoader(touristCredentialSchema)
	documentLoader := gojsonschema.NewGoLoader(map[string]interface{}(doc))

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to run schema validation: %w", err)
	}

	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return fmt.Errorf("credential does not match schema: %s", strings.Join(issues, "; "))
	}

	return nil
}
