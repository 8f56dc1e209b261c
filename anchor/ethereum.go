package anchor

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// anchorRegistryABI is the fixed surface of the on-chain anchor registry:
// a write that records a digest and a view that reports its presence.
const anchorRegistryABI = `[
  {"inputs":[{"internalType":"bytes32","name":"hash","type":"bytes32"}],"name":"anchor","outputs":[],"stateMutability":"nonpayable","type":"function"},
  {"inputs":[{"internalType":"bytes32","name":"hash","type":"bytes32"}],"name":"isAnchored","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"}
]`

// EthereumStore implements Store against the anchor registry contract.
type EthereumStore struct {
	contract *bind.BoundContract
	client   *ethclient.Client
	key      *ecdsa.PrivateKey
	chainID  *big.Int
	logger   *slog.Logger
}

// EthereumStoreArgs configures an EthereumStore.
type EthereumStoreArgs struct {
	RPCURL          string
	ContractAddress string
	DeployerKeyHex  string
	ChainID         int64
	Logger          *slog.Logger
}

// NewEthereumStore dials the RPC endpoint and binds the anchor registry
// contract. The RPC transport is instrumented with otelhttp.
func NewEthereumStore(ctx context.Context, args EthereumStoreArgs) (*EthereumStore, error) {
	if args.RPCURL == "" || args.ContractAddress == "" {
		return nil, fmt.Errorf("invalid configuration: RPC URL or contract address missing")
	}
	if !common.IsHexAddress(args.ContractAddress) {
		return nil, fmt.Errorf("%w: %q is not a valid contract address", ErrRejected, args.ContractAddress)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(args.DeployerKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid deployer key: %w", err)
	}

	httpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	rpcClient, err := rpc.DialOptions(ctx, args.RPCURL, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to dial RPC endpoint: %w", err)
	}
	client := ethclient.NewClient(rpcClient)

	parsedABI, err := abi.JSON(strings.NewReader(anchorRegistryABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse anchor registry ABI: %w", err)
	}

	contractAddr := common.HexToAddress(args.ContractAddress)
	contract := bind.NewBoundContract(contractAddr, parsedABI, client, client, client)

	logger := args.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &EthereumStore{
		contract: contract,
		client:   client,
		key:      key,
		chainID:  big.NewInt(args.ChainID),
		logger:   logger,
	}, nil
}

// Put submits an anchor transaction and waits for it to be mined.
func (s *EthereumStore) Put(ctx context.Context, digest [32]byte) (*Receipt, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(s.key, s.chainID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create transactor: %v", ErrRejected, err)
	}
	auth.Context = ctx

	tx, err := s.contract.Transact(auth, "anchor", digest)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: failed to submit anchor transaction: %v", ErrRejected, err)
	}

	s.logger.Info("anchor transaction submitted", "tx", tx.Hash().Hex())

	receipt, err := bind.WaitMined(ctx, s.client, tx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed waiting for anchor transaction: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: anchor transaction reverted in block %d", ErrRejected, receipt.BlockNumber.Uint64())
	}

	s.logger.Info("anchor transaction confirmed", "tx", tx.Hash().Hex(), "block", receipt.BlockNumber.Uint64())

	return &Receipt{
		TxHash:      tx.Hash().Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
	}, nil
}

// Has calls the registry's read-only lookup.
func (s *EthereumStore) Has(ctx context.Context, digest [32]byte) (bool, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}

	if err := s.contract.Call(opts, &out, "isAnchored", digest); err != nil {
		return false, fmt.Errorf("failed to query anchor registry: %w", err)
	}
	if len(out) != 1 {
		return false, fmt.Errorf("unexpected anchor registry response: %d values", len(out))
	}

	anchored, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected anchor registry response type %T", out[0])
	}

	return anchored, nil
}
