// Package eth implements the outbound ports against live contracts through
// an Ethereum JSON-RPC endpoint.
package eth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/time/rate"

	"github.com/znftmarket/znft-core/internal/pkg/blockchain/abis"
)

// rpcBackend is the slice of the ethclient surface the adapter uses.
// *ethclient.Client satisfies it; tests substitute a stub.
type rpcBackend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// Config holds configuration for the RPC-backed adapter.
type Config struct {
	// RPCURL is the Ethereum JSON-RPC endpoint.
	RPCURL string

	// PrivateKey signs Transfer/TransferFrom transactions, hex-encoded
	// without 0x prefix. Views work without it.
	PrivateKey string

	// ChainID of the target network; required when PrivateKey is set.
	ChainID int64

	// RequestsPerSecond caps outbound RPC calls. Zero applies the default.
	RequestsPerSecond float64

	// ReceiptTimeout bounds the wait for a transfer receipt. Zero applies
	// the default.
	ReceiptTimeout time.Duration
}

// ConfigDefaults returns a config with default values.
func ConfigDefaults() Config {
	return Config{
		RequestsPerSecond: 10,
		ReceiptTimeout:    2 * time.Minute,
	}
}

// Client implements outbound.TokenService and outbound.PriceFeed over a
// JSON-RPC backend. All calls pass through a shared rate limiter; nothing
// is retried.
type Client struct {
	backend        rpcBackend
	limiter        *rate.Limiter
	erc20          abi.ABI
	feed           abi.ABI
	signer         *bind.TransactOpts // nil in read-only mode
	account        common.Address
	receiptTimeout time.Duration
	logger         *slog.Logger
}

// NewClient dials config.RPCURL and builds a client. With a PrivateKey the
// client can sign transfers and Account reports the derived address.
func NewClient(config Config, logger *slog.Logger) (*Client, error) {
	if config.RPCURL == "" {
		return nil, errors.New("RPCURL is required")
	}

	rpc, err := ethclient.Dial(config.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", config.RPCURL, err)
	}
	return newClient(rpc, config, logger)
}

func newClient(backend rpcBackend, config Config, logger *slog.Logger) (*Client, error) {
	defaults := ConfigDefaults()
	if config.RequestsPerSecond == 0 {
		config.RequestsPerSecond = defaults.RequestsPerSecond
	}
	if config.ReceiptTimeout == 0 {
		config.ReceiptTimeout = defaults.ReceiptTimeout
	}

	erc20ABI, err := abis.GetERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parsing ERC20 ABI: %w", err)
	}
	feedABI, err := abis.GetAggregatorV3ABI()
	if err != nil {
		return nil, fmt.Errorf("parsing aggregator ABI: %w", err)
	}

	c := &Client{
		backend:        backend,
		limiter:        rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1),
		erc20:          *erc20ABI,
		feed:           *feedABI,
		receiptTimeout: config.ReceiptTimeout,
		logger:         logger,
	}

	if config.PrivateKey != "" {
		if config.ChainID == 0 {
			return nil, errors.New("ChainID is required when PrivateKey is set")
		}
		key, err := crypto.HexToECDSA(config.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("parsing private key: %w", err)
		}
		signer, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(config.ChainID))
		if err != nil {
			return nil, fmt.Errorf("building transactor: %w", err)
		}
		c.signer = signer
		c.account = crypto.PubkeyToAddress(key.PublicKey)
	}

	return c, nil
}

// Account returns the address derived from the configured key, or the zero
// address in read-only mode.
func (c *Client) Account() common.Address {
	return c.account
}

func (c *Client) bound(target common.Address, contractABI abi.ABI) *bind.BoundContract {
	return bind.NewBoundContract(target, contractABI, c.backend, c.backend, c.backend)
}

// transact submits a state-changing call and reports whether the mined
// receipt succeeded.
func (c *Client) transact(ctx context.Context, target common.Address, contractABI abi.ABI, method string, params ...interface{}) (bool, error) {
	if c.signer == nil {
		return false, errors.New("PrivateKey is required for transfers")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return false, err
	}

	opts := *c.signer
	opts.Context = ctx
	tx, err := c.bound(target, contractABI).Transact(&opts, method, params...)
	if err != nil {
		return false, fmt.Errorf("sending %s to %s: %w", method, target.Hex(), err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.receiptTimeout)
	defer cancel()
	receipt, err := bind.WaitMined(waitCtx, c.backend, tx)
	if err != nil {
		return false, fmt.Errorf("waiting for receipt of %s: %w", tx.Hash().Hex(), err)
	}

	ok := receipt.Status == types.ReceiptStatusSuccessful
	c.logger.Debug("transaction mined",
		"method", method, "tx", tx.Hash().Hex(), "block", receipt.BlockNumber, "ok", ok)
	return ok, nil
}

// view performs a read-only call and returns the unpacked outputs.
func (c *Client) view(ctx context.Context, target common.Address, contractABI abi.ABI, method string, params ...interface{}) ([]interface{}, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var out []interface{}
	err := c.bound(target, contractABI).Call(&bind.CallOpts{Context: ctx}, &out, method, params...)
	if err != nil {
		return nil, fmt.Errorf("calling %s on %s: %w", method, target.Hex(), err)
	}
	return out, nil
}
