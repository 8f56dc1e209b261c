package server

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sahayatri/go-tourist-credential/anchor"
	"github.com/sahayatri/go-tourist-credential/credential/vc"
	"github.com/sahayatri/go-tourist-credential/did"
	"github.com/sahayatri/go-tourist-credential/registry"
)

type issueCredentialResponse struct {
	Status          string          `json:"status"`
	Message         string          `json:"message"`
	TransactionHash string          `json:"transactionHash"`
	AnchorDigest    string          `json:"anchorDigest"`
	Credential      json.RawMessage `json:"credential"`
}

// handleIssueCredential generates a fresh issuer identity, issues and signs
// a credential for the posted subject attributes, anchors its fingerprint,
// and only then records the tourist's contact details. Any failure along
// the way aborts the whole issuance with nothing persisted.
func (s *Server) handleIssueCredential(e echo.Context) error {
	var info vc.TouristInfo
	if err := e.Bind(&info); err != nil {
		return inputError(e, "invalid JSON data provided")
	}
	if err := e.Validate(&info); err != nil {
		return inputError(e, err.Error())
	}

	identity, err := did.Generate()
	if err != nil {
		s.logger.Error("identity generation failed", "error", err)
		return serverError(e, "could not generate issuer identity")
	}

	cred, err := vc.Issue(info, identity, vc.WithSchemaValidation())
	if err != nil {
		var missing *vc.MissingFieldError
		if errors.As(err, &missing) {
			return inputError(e, missing.Error())
		}
		s.logger.Error("credential issuance failed", "error", err)
		return serverError(e, "credential issuance failed")
	}

	digest, err := anchor.Fingerprint(cred.Doc())
	if err != nil {
		s.logger.Error("fingerprint computation failed", "error", err)
		return serverError(e, "could not fingerprint credential")
	}

	receipt, err := s.anchors.Anchor(e.Request().Context(), digest)
	if err != nil {
		if errors.Is(err, anchor.ErrTimeout) {
			return anchorTimeoutError(e)
		}
		s.logger.Error("anchor submission failed", "error", err)
		return serverError(e, "failed to anchor the credential")
	}

	if err := s.registry.PutTourist(e.Request().Context(), registry.Tourist{
		DID:              identity.DID,
		Name:             info.Name,
		EmergencyContact: info.EmergencyContact,
	}); err != nil {
		s.logger.Error("failed to store tourist record", "error", err)
		return serverError(e, "failed to store tourist record")
	}

	serialized, err := cred.Serialize()
	if err != nil {
		return serverError(e, "failed to serialize credential")
	}

	return e.JSON(http.StatusCreated, issueCredentialResponse{
		Status:          "success",
		Message:         "credential issued and anchored successfully",
		TransactionHash: receipt.TxHash,
		AnchorDigest:    hex.EncodeToString(digest[:]),
		Credential:      json.RawMessage(serialized),
	})
}
