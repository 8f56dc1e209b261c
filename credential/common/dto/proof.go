package dto

// Proof represents a Linked Data Proof carrying a detached JWS over the
// canonicalized credential payload.
type Proof struct {
	Type               string `json:"type"`
	Created            string `json:"created"`
	VerificationMethod string `json:"verificationMethod"`
	ProofPurpose       string `json:"proofPurpose"`
	JWS                string `json:"jws,omitempty"`
}
