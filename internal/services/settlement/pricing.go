// Package settlement implements the payment settlement core: oracle price
// resolution, USD-to-token conversion, and the engine that moves funds into
// and out of custody.
package settlement

import (
	"context"
	"fmt"
	"math/big"

	"github.com/znftmarket/znft-core/internal/domain/entity"
	"github.com/znftmarket/znft-core/internal/ports/outbound"
	"github.com/znftmarket/znft-core/internal/services/registry"
)

// usdDecimals is the fixed-point precision of USD amounts at the API
// boundary. pricingDecimals is the 18-decimal intermediate every oracle
// answer is assumed to align with; the engine never rescales an answer by
// the feed's own decimal count.
const (
	usdDecimals     = 8
	pricingDecimals = 18
)

var oneE18 = pow10(pricingDecimals)

func pow10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}

// Resolver turns registered oracle feeds into USD-to-token conversions.
type Resolver struct {
	registry *registry.Registry
	feeds    outbound.PriceFeed
	tokens   outbound.TokenService
}

// NewResolver creates a resolver reading prices through feeds and token
// precision through tokens.
func NewResolver(reg *registry.Registry, feeds outbound.PriceFeed, tokens outbound.TokenService) *Resolver {
	return &Resolver{registry: reg, feeds: feeds, tokens: tokens}
}

// ResolveOraclePrice fetches the most recent price reported by ticker's
// registered oracle. The answer is used in the oracle's native fixed-point
// convention. A non-positive answer is rejected, never coerced.
func (r *Resolver) ResolveOraclePrice(ctx context.Context, ticker string) (*big.Int, error) {
	feed, ok := r.registry.OracleOf(ticker)
	if !ok {
		return nil, fmt.Errorf("no oracle for %q: %w", ticker, entity.ErrNotAvailable)
	}

	answer, updatedAt, err := r.feeds.LatestRoundData(ctx, feed)
	if err != nil {
		return nil, fmt.Errorf("%w: querying feed for %q: %v", entity.ErrOracle, ticker, err)
	}
	if updatedAt.Sign() == 0 {
		return nil, fmt.Errorf("round not complete for %q: %w", ticker, entity.ErrStalePrice)
	}
	if answer.Sign() <= 0 {
		return nil, fmt.Errorf("%w: non-positive answer for %q", entity.ErrOracle, ticker)
	}
	return answer, nil
}

// UsdToTokenAmount converts an 8-decimal USD amount into ticker's token
// units at the current oracle price. The USD figure is scaled straight up
// to the 18-decimal intermediate, floor-divided by the raw oracle answer,
// then floor-corrected down to the token's native precision.
func (r *Resolver) UsdToTokenAmount(ctx context.Context, ticker string, usd *big.Int) (*big.Int, error) {
	value := new(big.Int).Mul(usd, oneE18)

	price, err := r.ResolveOraclePrice(ctx, ticker)
	if err != nil {
		return nil, err
	}

	contract, ok := r.registry.ContractOf(ticker)
	if !ok {
		return nil, fmt.Errorf("no contract for %q: %w", ticker, entity.ErrNotAvailable)
	}
	decimals, err := r.tokens.Decimals(ctx, contract)
	if err != nil {
		return nil, fmt.Errorf("fetching decimals for %q: %w", ticker, err)
	}
	if decimals > pricingDecimals {
		return nil, fmt.Errorf("token for %q has %d decimals: %w", ticker, decimals, entity.ErrUnsupportedDecimals)
	}

	tokens := new(big.Int).Quo(value, price)
	return tokens.Quo(tokens, pow10(int64(pricingDecimals-int(decimals)))), nil
}
