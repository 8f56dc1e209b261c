package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v2"

	"github.com/sahayatri/go-tourist-credential/anchor"
	"github.com/sahayatri/go-tourist-credential/geofence"
	"github.com/sahayatri/go-tourist-credential/registry"
	"github.com/sahayatri/go-tourist-credential/server"
)

var Version = "dev"

func main() {
	app := &cli.App{
		Name:  "sahayatri-credsvc",
		Usage: "Tourist safety credential issuance and verification service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   ":8080",
				EnvVars: []string{"CREDSVC_ADDR"},
			},
			&cli.StringFlag{
				Name:    "db-name",
				Value:   "credsvc.db",
				EnvVars: []string{"CREDSVC_DB_NAME"},
			},
			&cli.StringFlag{
				Name:    "geofence-path",
				Value:   "geofences.json",
				EnvVars: []string{"CREDSVC_GEOFENCE_PATH"},
			},
			&cli.DurationFlag{
				Name:    "stationary-threshold",
				Value:   30 * time.Minute,
				EnvVars: []string{"CREDSVC_STATIONARY_THRESHOLD"},
			},
			&cli.StringFlag{
				Name:    "rpc-url",
				EnvVars: []string{"RPC_URL"},
			},
			&cli.StringFlag{
				Name:    "anchor-address",
				EnvVars: []string{"ANCHOR_CONTRACT_ADDRESS"},
			},
			&cli.Int64Flag{
				Name:    "chain-id",
				Value:   1337,
				EnvVars: []string{"CHAIN_ID"},
			},
			&cli.StringFlag{
				Name:    "deployer-key",
				EnvVars: []string{"DEPLOYER_PRIVATE_KEY"},
			},
			&cli.DurationFlag{
				Name:    "anchor-timeout",
				Value:   anchor.DefaultTimeout,
				EnvVars: []string{"CREDSVC_ANCHOR_TIMEOUT"},
			},
			&cli.BoolFlag{
				Name:    "dev",
				Usage:   "use in-memory anchor store and registry",
				EnvVars: []string{"CREDSVC_DEV"},
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cli.Context) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	zones, err := geofence.LoadZones(cmd.String("geofence-path"))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		logger.Warn("geofence file not found, no zones loaded", "path", cmd.String("geofence-path"))
	}
	geo := geofence.NewEngine(zones, cmd.Duration("stationary-threshold"))

	var (
		anchorStore anchor.Store
		regStore    registry.Store
	)
	if cmd.Bool("dev") {
		logger.Info("dev mode: using in-memory stores")
		anchorStore = anchor.NewMemoryStore()
		regStore = registry.NewMemoryStore()
	} else {
		anchorStore, err = anchor.NewEthereumStore(cmd.Context, anchor.EthereumStoreArgs{
			RPCURL:          cmd.String("rpc-url"),
			ContractAddress: cmd.String("anchor-address"),
			DeployerKeyHex:  cmd.String("deployer-key"),
			ChainID:         cmd.Int64("chain-id"),
			Logger:          logger,
		})
		if err != nil {
			return err
		}

		regStore, err = registry.NewGormStore(cmd.String("db-name"))
		if err != nil {
			return err
		}
	}

	s, err := server.New(&server.Args{
		Addr:     cmd.String("addr"),
		Logger:   logger,
		Anchors:  anchor.NewAdapter(anchorStore, cmd.Duration("anchor-timeout")),
		Registry: regStore,
		Geofence: geo,
		Version:  Version,
	})
	if err != nil {
		return err
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	return s.Start()
}
