package vc

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahayatri/go-tourist-credential/credential/common/jsonmap"
	"github.com/sahayatri/go-tourist-credential/did"
)

func sampleTouristInfo() TouristInfo {
	return TouristInfo{
		Name:              "Priya Sharma",
		Nationality:       "British",
		PassportNumber:    "G987654321",
		EmergencyContact:  "+44 20 7946 0999",
		BloodType:         "O+",
		InsurancePolicyID: "INS-AETNA-5588-XYZ",
	}
}

func TestBuildPayload(t *testing.T) {
	issuer, err := did.Generate()
	require.NoError(t, err)

	payload, err := BuildPayload(sampleTouristInfo(), issuer)
	require.NoError(t, err)

	assert.Equal(t, []interface{}{ContextCredentialsV1}, payload["@context"])
	assert.Equal(t, []interface{}{TypeVerifiable, TypeTouristCredential}, payload["type"])
	assert.Equal(t, issuer.DID, payload["issuer"])
	assert.True(t, strings.HasPrefix(payload["id"].(string), "urn:uuid:"))

	issuanceDate, ok := payload["issuanceDate"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(issuanceDate, "Z"))
	_, err = time.Parse(time.RFC3339, issuanceDate)
	assert.NoError(t, err)

	subject := payload["credentialSubject"].(map[string]interface{})
	subjectID := subject["id"].(string)
	assert.True(t, strings.HasPrefix(subjectID, "did:example:"))
	assert.NotContains(t, subjectID, "G987654321")

	info := subject["touristInfo"].(map[string]interface{})
	assert.Equal(t, "Tourist", info["type"])
	assert.Equal(t, "Priya Sharma", info["name"])
	assert.Equal(t, "O+", info["bloodType"])
}

func TestBuildPayloadSubjectReferenceIsStable(t *testing.T) {
	issuer, err := did.Generate()
	require.NoError(t, err)

	p1, err := BuildPayload(sampleTouristInfo(), issuer)
	require.NoError(t, err)
	p2, err := BuildPayload(sampleTouristInfo(), issuer)
	require.NoError(t, err)

	s1 := p1["credentialSubject"].(map[string]interface{})["id"]
	s2 := p2["credentialSubject"].(map[string]interface{})["id"]
	assert.Equal(t, s1, s2)
}

func TestBuildPayloadMissingFields(t *testing.T) {
	issuer, err := did.Generate()
	require.NoError(t, err)

	tests := []struct {
		name     string
		mutate   func(*TouristInfo)
		expected string
	}{
		{name: "Missing name", mutate: func(i *TouristInfo) { i.Name = "" }, expected: "name"},
		{name: "Missing nationality", mutate: func(i *TouristInfo) { i.Nationality = "" }, expected: "nationality"},
		{name: "Missing passport number", mutate: func(i *TouristInfo) { i.PassportNumber = "" }, expected: "passportNumber"},
		{name: "Missing emergency contact", mutate: func(i *TouristInfo) { i.EmergencyContact = "" }, expected: "emergencyContact"},
		{name: "Missing blood type", mutate: func(i *TouristInfo) { i.BloodType = "" }, expected: "bloodType"},
		{name: "Missing policy id", mutate: func(i *TouristInfo) { i.InsurancePolicyID = "" }, expected: "insurancePolicyId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := sampleTouristInfo()
			tt.mutate(&info)

			_, err := BuildPayload(info, issuer)
			var missing *MissingFieldError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, tt.expected, missing.Field)
		})
	}
}

func TestBuildPayloadReportsFirstMissingField(t *testing.T) {
	issuer, err := did.Generate()
	require.NoError(t, err)

	info := sampleTouristInfo()
	info.Nationality = ""
	info.BloodType = ""

	_, err = BuildPayload(info, issuer)
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "nationality", missing.Field)
}

func TestIssueAndVerify(t *testing.T) {
	issuer, err := did.Generate()
	require.NoError(t, err)

	cred, err := Issue(sampleTouristInfo(), issuer, WithSchemaValidation())
	require.NoError(t, err)

	valid, err := cred.Verify()
	require.NoError(t, err)
	assert.True(t, valid)

	// Verification is idempotent: same input, same result.
	again, err := cred.Verify()
	require.NoError(t, err)
	assert.True(t, again)
}

func TestIssueSerializeParseVerify(t *testing.T) {
	issuer, err := did.Generate()
	require.NoError(t, err)

	cred, err := Issue(sampleTouristInfo(), issuer)
	require.NoError(t, err)

	serialized, err := cred.Serialize()
	require.NoError(t, err)

	parsed, err := ParseCredential([]byte(serialized), WithSchemaValidation())
	require.NoError(t, err)

	valid, err := parsed.Verify()
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestVerifyDetectsPayloadTampering(t *testing.T) {
	issuer, err := did.Generate()
	require.NoError(t, err)

	cred, err := Issue(sampleTouristInfo(), issuer)
	require.NoError(t, err)

	serialized, err := cred.Serialize()
	require.NoError(t, err)

	// Flip one character in bloodType after signing.
	tampered := strings.Replace(serialized, `"O+"`, `"A+"`, 1)
	require.NotEqual(t, serialized, tampered)

	parsed, err := ParseCredential([]byte(tampered))
	require.NoError(t, err)

	valid, err := parsed.Verify()
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestVerifyDetectsAddedField(t *testing.T) {
	issuer, err := did.Generate()
	require.NoError(t, err)

	cred, err := Issue(sampleTouristInfo(), issuer)
	require.NoError(t, err)

	doc := cred.Doc()
	doc["note"] = "added after signing"
	data, err := doc.ToJSON()
	require.NoError(t, err)

	parsed, err := ParseCredential(data)
	require.NoError(t, err)

	valid, err := parsed.Verify()
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestVerifyMalformedCredential(t *testing.T) {
	issuer, err := did.Generate()
	require.NoError(t, err)

	cred, err := Issue(sampleTouristInfo(), issuer)
	require.NoError(t, err)
	signedDoc := cred.Doc()

	tests := []struct {
		name   string
		mutate func(jsonmap.JSONMap)
	}{
		{
			name:   "Proof missing",
			mutate: func(m jsonmap.JSONMap) { delete(m, "proof") },
		},
		{
			name: "Proof without jws",
			mutate: func(m jsonmap.JSONMap) {
				proof := m["proof"].(map[string]interface{})
				delete(proof, "jws")
			},
		},
		{
			name: "Proof without verificationMethod",
			mutate: func(m jsonmap.JSONMap) {
				proof := m["proof"].(map[string]interface{})
				delete(proof, "verificationMethod")
			},
		},
		{
			name:   "Proof of wrong type",
			mutate: func(m jsonmap.JSONMap) { m["proof"] = "not an object" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := signedDoc.ToJSON()
			require.NoError(t, err)
			parsed, err := ParseCredential(data)
			require.NoError(t, err)

			tt.mutate(parsed.doc)

			valid, err := parsed.Verify()
			assert.False(t, valid)
			assert.ErrorIs(t, err, ErrMalformedCredential)
		})
	}
}

func TestVerifyUndecodableKeyIsNegativeNotError(t *testing.T) {
	issuer, err := did.Generate()
	require.NoError(t, err)

	cred, err := Issue(sampleTouristInfo(), issuer)
	require.NoError(t, err)

	proof := cred.doc["proof"].(map[string]interface{})
	proof["verificationMethod"] = "did:key:0OIl#0OIl"

	valid, err := cred.Verify()
	assert.NoError(t, err)
	assert.False(t, valid)
}

func TestVerifyWrongIssuerKey(t *testing.T) {
	issuer, err := did.Generate()
	require.NoError(t, err)
	other, err := did.Generate()
	require.NoError(t, err)

	cred, err := Issue(sampleTouristInfo(), issuer)
	require.NoError(t, err)

	// Point the proof at a different identity's key.
	proof := cred.doc["proof"].(map[string]interface{})
	proof["verificationMethod"] = other.VerificationMethod()

	valid, err := cred.Verify()
	assert.NoError(t, err)
	assert.False(t, valid)
}

func TestParseCredentialErrors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		opts  []CredentialOpt
	}{
		{name: "Empty input", input: nil},
		{name: "Invalid JSON", input: []byte(`{invalid}`)},
		{name: "Non-object", input: []byte(`"just a string"`)},
		{name: "Schema violation", input: []byte(`{"issuer":"did:key:abc"}`), opts: []CredentialOpt{WithSchemaValidation()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCredential(tt.input, tt.opts...)
			assert.ErrorIs(t, err, ErrMalformedCredential)
		})
	}
}

func TestAddProofTwiceFails(t *testing.T) {
	issuer, err := did.Generate()
	require.NoError(t, err)

	cred, err := Issue(sampleTouristInfo(), issuer)
	require.NoError(t, err)

	err = cred.AddProof(issuer)
	assert.ErrorIs(t, err, ErrSigning)
}

func TestIssueWithNilIdentity(t *testing.T) {
	_, err := Issue(sampleTouristInfo(), nil)
	assert.Error(t, err)
}

func TestProofShape(t *testing.T) {
	issuer, err := did.Generate()
	require.NoError(t, err)

	cred, err := Issue(sampleTouristInfo(), issuer)
	require.NoError(t, err)

	proof, exists, err := cred.doc.Proof()
	require.NoError(t, err)
	require.True(t, exists)

	assert.Equal(t, "Ed25519Signature2018", proof.Type)
	assert.Equal(t, "assertionMethod", proof.ProofPurpose)
	assert.Equal(t, issuer.VerificationMethod(), proof.VerificationMethod)
	assert.True(t, strings.HasSuffix(proof.Created, "Z"))

	parts := strings.Split(proof.JWS, ".")
	require.Len(t, parts, 3)
	assert.Empty(t, parts[1])
}
