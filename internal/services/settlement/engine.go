package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/znftmarket/znft-core/internal/domain/entity"
	"github.com/znftmarket/znft-core/internal/ports/inbound"
	"github.com/znftmarket/znft-core/internal/ports/outbound"
	"github.com/znftmarket/znft-core/internal/services/registry"
)

// Compile-time check that Engine implements inbound.PaymentService.
var _ inbound.PaymentService = (*Engine)(nil)

// Engine orchestrates payments: it validates the asset, computes the token
// amount, verifies the payer's allowance, and instructs the token service
// to move funds into custody. The engine holds no in-flight state; each
// call either completes or fails with no effect.
type Engine struct {
	registry *registry.Registry
	tokens   outbound.TokenService
	resolver *Resolver
	custody  common.Address
	logger   *slog.Logger
}

// NewEngine creates a settlement engine. custody is the engine's own
// account: the spender payers grant allowances to, and the holder of
// collected funds pending disbursement.
func NewEngine(reg *registry.Registry, tokens outbound.TokenService, resolver *Resolver, custody common.Address, logger *slog.Logger) *Engine {
	return &Engine{
		registry: reg,
		tokens:   tokens,
		resolver: resolver,
		custody:  custody,
		logger:   logger,
	}
}

// Custody returns the engine's custody account.
func (e *Engine) Custody() common.Address {
	return e.custody
}

// PayStablecoin settles a USD obligation 1:1 in a pegged stablecoin. The
// returned bool is the token service's success flag for the transfer; a
// false flag is not an error and callers must check it.
func (e *Engine) PayStablecoin(ctx context.Context, payer common.Address, ticker string, usd *big.Int) (bool, *big.Int, error) {
	contract, ok := e.registry.ContractOf(ticker)
	if !ok {
		return false, nil, fmt.Errorf("pay %q: %w", ticker, entity.ErrNotAvailable)
	}
	if !e.registry.IsStable(ticker) {
		return false, nil, fmt.Errorf("pay %q: %w", ticker, entity.ErrNotStablecoin)
	}

	allowance, err := e.tokens.Allowance(ctx, contract, payer, e.custody)
	if err != nil {
		return false, nil, fmt.Errorf("reading allowance for %q: %w", ticker, err)
	}
	// The allowance gate compares against the raw 8-decimal USD figure,
	// not the scaled token amount.
	if allowance.Cmp(usd) < 0 {
		return false, nil, fmt.Errorf("pay %q: %w", ticker, entity.ErrInsufficientAllowance)
	}

	decimals, err := e.tokens.Decimals(ctx, contract)
	if err != nil {
		return false, nil, fmt.Errorf("fetching decimals for %q: %w", ticker, err)
	}
	tokens := scaleUSD(usd, decimals)

	collected, err := e.tokens.TransferFrom(ctx, contract, payer, e.custody, tokens)
	if err != nil {
		return false, nil, fmt.Errorf("collecting %q: %w", ticker, err)
	}

	e.logger.Info("stablecoin payment",
		"ticker", ticker, "payer", payer.Hex(), "usd", usd.String(),
		"tokens", tokens.String(), "collected", collected)
	return collected, tokens, nil
}

// PayWithOracle settles a USD obligation in an oracle-priced token at the
// current exchange rate. Unlike the stablecoin path, the allowance here is
// checked against the computed token amount.
func (e *Engine) PayWithOracle(ctx context.Context, payer common.Address, ticker string, usd *big.Int) (bool, *big.Int, error) {
	contract, ok := e.registry.ContractOf(ticker)
	if !ok {
		return false, nil, fmt.Errorf("pay %q: %w", ticker, entity.ErrNotAvailable)
	}

	amount, err := e.resolver.UsdToTokenAmount(ctx, ticker, usd)
	if err != nil {
		return false, nil, err
	}

	allowance, err := e.tokens.Allowance(ctx, contract, payer, e.custody)
	if err != nil {
		return false, nil, fmt.Errorf("reading allowance for %q: %w", ticker, err)
	}
	if allowance.Cmp(amount) < 0 {
		return false, nil, fmt.Errorf("pay %q: %w", ticker, entity.ErrInsufficientAllowance)
	}

	collected, err := e.tokens.TransferFrom(ctx, contract, payer, e.custody, amount)
	if err != nil {
		return false, nil, fmt.Errorf("collecting %q: %w", ticker, err)
	}

	e.logger.Info("oracle payment",
		"ticker", ticker, "payer", payer.Hex(), "usd", usd.String(),
		"tokens", amount.String(), "collected", collected)
	return collected, amount, nil
}

// Settle disburses amount of ticker's token from custody to recipient. No
// allowance check applies: custody is the token service's own account.
// Insufficient custody balance surfaces as the token service's failure,
// not as a distinct error kind.
func (e *Engine) Settle(ctx context.Context, ticker string, amount *big.Int, recipient common.Address) (bool, error) {
	contract, ok := e.registry.ContractOf(ticker)
	if !ok {
		return false, fmt.Errorf("settle %q: %w", ticker, entity.ErrNotAvailable)
	}

	sent, err := e.tokens.Transfer(ctx, contract, recipient, amount)
	if err != nil {
		return false, fmt.Errorf("disbursing %q: %w", ticker, err)
	}

	e.logger.Info("disbursement",
		"ticker", ticker, "recipient", recipient.Hex(),
		"amount", amount.String(), "sent", sent)
	return sent, nil
}

// scaleUSD converts an 8-decimal USD amount 1:1 into a token amount at the
// token's native precision. The down-scaling branch floors.
func scaleUSD(usd *big.Int, decimals uint8) *big.Int {
	switch {
	case decimals > usdDecimals:
		return new(big.Int).Mul(usd, pow10(int64(decimals-usdDecimals)))
	case decimals < usdDecimals:
		return new(big.Int).Quo(usd, pow10(int64(usdDecimals-decimals)))
	default:
		return new(big.Int).Set(usd)
	}
}
