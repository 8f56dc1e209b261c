package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func inputError(e echo.Context, details string) error {
	return e.JSON(http.StatusBadRequest, errorResponse{
		Error:   "InvalidRequest",
		Details: details,
	})
}

func malformedCredentialError(e echo.Context, details string) error {
	return e.JSON(http.StatusBadRequest, errorResponse{
		Error:   "MalformedCredential",
		Details: details,
	})
}

func serverError(e echo.Context, details string) error {
	return e.JSON(http.StatusInternalServerError, errorResponse{
		Error:   "InternalServerError",
		Details: details,
	})
}

func anchorTimeoutError(e echo.Context) error {
	return e.JSON(http.StatusGatewayTimeout, errorResponse{
		Error:     "AnchorTimeout",
		Details:   "the anchor store did not confirm the write in time",
		Retryable: true,
	})
}
