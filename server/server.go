// Package server exposes the credential engine over HTTP: issuing and
// anchoring tourist credentials, verifying them, and tracking reported
// locations against geofence zones.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"

	"github.com/sahayatri/go-tourist-credential/anchor"
	"github.com/sahayatri/go-tourist-credential/geofence"
	"github.com/sahayatri/go-tourist-credential/notify"
	"github.com/sahayatri/go-tourist-credential/registry"
)

type Server struct {
	echo     *echo.Echo
	httpd    *http.Server
	logger   *slog.Logger
	anchors  *anchor.Adapter
	registry registry.Store
	geo      *geofence.Engine
	alerter  notify.Alerter
	version  string
}

// Args configures a Server. Anchors, Registry and Geofence are required.
type Args struct {
	Addr     string
	Logger   *slog.Logger
	Anchors  *anchor.Adapter
	Registry registry.Store
	Geofence *geofence.Engine
	Alerter  notify.Alerter
	Version  string
}

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	return cv.validator.Struct(i)
}

// New creates a Server and registers its routes.
func New(args *Args) (*Server, error) {
	if args.Anchors == nil || args.Registry == nil || args.Geofence == nil {
		return nil, fmt.Errorf("anchors, registry and geofence are required")
	}

	logger := args.Logger
	if logger == nil {
		logger = slog.Default()
	}

	alerter := args.Alerter
	if alerter == nil {
		alerter = notify.NewLogAlerter(logger)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &CustomValidator{validator: validator.New()}
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())

	s := &Server{
		echo: e,
		httpd: &http.Server{
			Addr:    args.Addr,
			Handler: e,
		},
		logger:   logger,
		anchors:  args.Anchors,
		registry: args.Registry,
		geo:      args.Geofence,
		alerter:  alerter,
		version:  args.Version,
	}

	e.GET("/health", s.handleHealth)
	e.POST("/api/credentials", s.handleIssueCredential)
	e.POST("/api/credentials/verify", s.handleVerifyCredential)
	e.POST("/api/locations", s.handleUpdateLocation)

	return s, nil
}

// Start serves HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting credential service", "addr", s.httpd.Addr, "version", s.version)

	if err := s.httpd.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpd.Shutdown(ctx)
}
