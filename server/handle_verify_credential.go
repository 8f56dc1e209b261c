package server

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/sahayatri/go-tourist-credential/anchor"
	"github.com/sahayatri/go-tourist-credential/credential/vc"
)

type verifyCredentialRequest struct {
	Credential json.RawMessage `json:"credential" validate:"required"`
}

// verifyCredentialResponse keeps the three verification outcomes
// independent: a credential can be cryptographically valid yet unanchored,
// anchored yet tampered with, or structurally unparseable (a 400 instead).
type verifyCredentialResponse struct {
	Valid        bool   `json:"valid"`
	Anchored     bool   `json:"anchored"`
	AnchorDigest string `json:"anchorDigest"`
}

func (s *Server) handleVerifyCredential(e echo.Context) error {
	var req verifyCredentialRequest
	if err := e.Bind(&req); err != nil {
		return inputError(e, "invalid JSON data provided")
	}
	if err := e.Validate(&req); err != nil {
		return inputError(e, err.Error())
	}

	cred, err := vc.ParseCredential(req.Credential)
	if err != nil {
		return malformedCredentialError(e, err.Error())
	}

	digest, err := anchor.Fingerprint(cred.Doc())
	if err != nil {
		return malformedCredentialError(e, err.Error())
	}

	var (
		valid    bool
		anchored bool
		verr     error
	)

	g, ctx := errgroup.WithContext(e.Request().Context())
	g.Go(func() error {
		valid, verr = cred.Verify()
		return verr
	})
	g.Go(func() error {
		var lerr error
		anchored, lerr = s.anchors.IsAnchored(ctx, digest)
		return lerr
	})

	if err := g.Wait(); err != nil {
		// A malformed proof cancels the lookup goroutine, so report it
		// ahead of whatever error the cancellation produced.
		if errors.Is(verr, vc.ErrMalformedCredential) {
			return malformedCredentialError(e, verr.Error())
		}
		s.logger.Error("anchor lookup failed", "error", err)
		return serverError(e, "anchor lookup failed")
	}

	return e.JSON(http.StatusOK, verifyCredentialResponse{
		Valid:        valid,
		Anchored:     anchored,
		AnchorDigest: hex.EncodeToString(digest[:]),
	})
}
