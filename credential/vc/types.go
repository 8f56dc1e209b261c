package vc

// Credential type and context markers for issued tourist credentials.
const (
	ContextCredentialsV1  = "https://www.w3.org/2018/credentials/v1"
	TypeVerifiable        = "VerifiableCredential"
	TypeTouristCredential = "TouristCredential"

	proofType        = "Ed25519Signature2018"
	proofPurpose     = "assertionMethod"
	subjectDIDMethod = "did:example"
)

// TouristInfo carries the subject attributes bound into a credential. All
// fields are required opaque strings.
type TouristInfo struct {
	Name              string `json:"name" validate:"required"`
	Nationality       string `json:"nationality" validate:"required"`
	PassportNumber    string `json:"passportNumber" validate:"required"`
	EmergencyContact  string `json:"emergencyContact" validate:"required"`
	BloodType         string `json:"bloodType" validate:"required"`
	InsurancePolicyID string `json:"insurancePolicyId" validate:"required"`
}
