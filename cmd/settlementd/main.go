// Package main implements a one-shot operator CLI for the settlement
// engine: it wires the live RPC adapters to an in-process asset registry,
// performs a single registry or payment operation, and exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/ethereum/go-ethereum/common"

	"github.com/znftmarket/znft-core/internal/adapters/outbound/eth"
	"github.com/znftmarket/znft-core/internal/pkg/env"
	"github.com/znftmarket/znft-core/internal/services/registry"
	"github.com/znftmarket/znft-core/internal/services/settlement"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

type cliConfig struct {
	op     string
	ticker string

	addr      common.Address // target of set-*/replace-*
	contract  common.Address // registry preload for payment ops
	oracle    common.Address // registry preload for payment ops
	stable    bool           // registry preload for payment ops
	payer     common.Address
	recipient common.Address
	usd       *big.Int
	amount    *big.Int

	rpcURL     string
	privateKey string
	chainID    int64
}

func parseConfig(args []string) (cliConfig, error) {
	fs := flag.NewFlagSet("settlementd", flag.ContinueOnError)
	op := fs.String("op", "", "operation: set-oracle | set-contract | replace-oracle | replace-contract | mark-stable | pay-stablecoin | pay-oracle | settle")
	ticker := fs.String("ticker", "", "asset ticker (case-sensitive)")
	addr := fs.String("addr", "", "target address for set-*/replace-* operations")
	contract := fs.String("contract", "", "token contract to preload into the registry")
	oracle := fs.String("oracle", "", "price feed to preload into the registry")
	stable := fs.Bool("stable", false, "preload the stablecoin flag (requires -contract)")
	payer := fs.String("payer", "", "payer address for pay-* operations")
	recipient := fs.String("recipient", "", "recipient address for settle")
	usd := fs.String("usd", "", "USD amount, 8-decimal fixed point integer")
	amount := fs.String("amount", "", "token amount for settle, native precision")
	if err := fs.Parse(args); err != nil {
		return cliConfig{}, err
	}

	cfg := cliConfig{op: *op, ticker: *ticker, stable: *stable}
	if cfg.op == "" {
		return cliConfig{}, fmt.Errorf("operation not provided (use -op)")
	}
	if cfg.ticker == "" {
		return cliConfig{}, fmt.Errorf("ticker not provided (use -ticker)")
	}

	var err error
	if cfg.addr, err = parseAddress(*addr, "addr"); err != nil {
		return cliConfig{}, err
	}
	if cfg.contract, err = parseAddress(*contract, "contract"); err != nil {
		return cliConfig{}, err
	}
	if cfg.oracle, err = parseAddress(*oracle, "oracle"); err != nil {
		return cliConfig{}, err
	}
	if cfg.payer, err = parseAddress(*payer, "payer"); err != nil {
		return cliConfig{}, err
	}
	if cfg.recipient, err = parseAddress(*recipient, "recipient"); err != nil {
		return cliConfig{}, err
	}
	if cfg.usd, err = parseAmount(*usd, "usd"); err != nil {
		return cliConfig{}, err
	}
	if cfg.amount, err = parseAmount(*amount, "amount"); err != nil {
		return cliConfig{}, err
	}

	cfg.rpcURL = env.Get("ETH_RPC_URL", "")
	if cfg.rpcURL == "" {
		return cliConfig{}, fmt.Errorf("ETH_RPC_URL environment variable is required")
	}
	cfg.privateKey = env.Get("SETTLEMENT_KEY", "")
	if cfg.privateKey == "" {
		return cliConfig{}, fmt.Errorf("SETTLEMENT_KEY environment variable is required")
	}
	cfg.chainID, err = strconv.ParseInt(env.Get("CHAIN_ID", "1"), 10, 64)
	if err != nil {
		return cliConfig{}, fmt.Errorf("parsing CHAIN_ID: %w", err)
	}

	return cfg, nil
}

func parseAddress(raw, name string) (common.Address, error) {
	if raw == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("-%s: %q is not a hex address", name, raw)
	}
	return common.HexToAddress(raw), nil
}

func parseAmount(raw, name string) (*big.Int, error) {
	if raw == "" {
		return nil, nil
	}
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("-%s: %q is not a non-negative integer", name, raw)
	}
	return v, nil
}

func run(ctx context.Context, args []string) error {
	cfg, err := parseConfig(args)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: env.ParseLogLevel(slog.LevelInfo),
	}))
	slog.SetDefault(logger)

	client, err := eth.NewClient(eth.Config{
		RPCURL:     cfg.rpcURL,
		PrivateKey: cfg.privateKey,
		ChainID:    cfg.chainID,
	}, logger)
	if err != nil {
		return fmt.Errorf("creating RPC client: %w", err)
	}

	admin := client.Account()
	reg := registry.New(admin, logger)
	resolver := settlement.NewResolver(reg, client, client)
	engine := settlement.NewEngine(reg, client, resolver, admin, logger)

	logger.Info("settlement engine ready", "custody", admin.Hex(), "op", cfg.op, "ticker", cfg.ticker)

	// The registry is in-memory: payment operations preload the asset from
	// the -contract/-oracle/-stable flags before executing.
	if err := preload(reg, cfg, admin); err != nil {
		return err
	}

	switch cfg.op {
	case "set-oracle":
		return reg.SetOracle(admin, cfg.ticker, cfg.addr)
	case "set-contract":
		return reg.SetContract(admin, cfg.ticker, cfg.addr)
	case "replace-oracle":
		return reg.ReplaceOracle(admin, cfg.ticker, cfg.addr)
	case "replace-contract":
		return reg.ReplaceContract(admin, cfg.ticker, cfg.addr)
	case "mark-stable":
		return reg.MarkStablecoin(admin, cfg.ticker)
	case "pay-stablecoin":
		if cfg.usd == nil {
			return fmt.Errorf("-usd is required for pay-stablecoin")
		}
		ok, tokens, err := engine.PayStablecoin(ctx, cfg.payer, cfg.ticker, cfg.usd)
		return report(logger, ok, tokens, err)
	case "pay-oracle":
		if cfg.usd == nil {
			return fmt.Errorf("-usd is required for pay-oracle")
		}
		ok, tokens, err := engine.PayWithOracle(ctx, cfg.payer, cfg.ticker, cfg.usd)
		return report(logger, ok, tokens, err)
	case "settle":
		if cfg.amount == nil {
			return fmt.Errorf("-amount is required for settle")
		}
		ok, err := engine.Settle(ctx, cfg.ticker, cfg.amount, cfg.recipient)
		return report(logger, ok, cfg.amount, err)
	default:
		return fmt.Errorf("unknown operation %q", cfg.op)
	}
}

func preload(reg *registry.Registry, cfg cliConfig, admin common.Address) error {
	if cfg.contract != (common.Address{}) {
		if err := reg.SetContract(admin, cfg.ticker, cfg.contract); err != nil {
			return fmt.Errorf("preloading contract: %w", err)
		}
	}
	if cfg.oracle != (common.Address{}) {
		if err := reg.SetOracle(admin, cfg.ticker, cfg.oracle); err != nil {
			return fmt.Errorf("preloading oracle: %w", err)
		}
	}
	if cfg.stable {
		if err := reg.MarkStablecoin(admin, cfg.ticker); err != nil {
			return fmt.Errorf("preloading stablecoin flag: %w", err)
		}
	}
	return nil
}

func report(logger *slog.Logger, ok bool, tokens *big.Int, err error) error {
	if err != nil {
		return err
	}
	logger.Info("transfer result", "ok", ok, "tokens", tokens.String())
	if !ok {
		return fmt.Errorf("token transfer reported failure")
	}
	return nil
}
