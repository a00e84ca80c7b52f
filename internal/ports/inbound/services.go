// Package inbound contains the primary ports.
// These interfaces define the use cases that the settlement core exposes;
// inbound adapters (CLI, HTTP, tests) call these methods.
package inbound

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// AssetAdmin is the administrator surface of the asset registry. Every
// mutation takes the caller's address explicitly and fails with
// entity.ErrUnauthorized unless it matches the registered administrator.
type AssetAdmin interface {
	SetOracle(caller common.Address, ticker string, oracle common.Address) error
	SetContract(caller common.Address, ticker string, contract common.Address) error
	ReplaceOracle(caller common.Address, ticker string, oracle common.Address) error
	ReplaceContract(caller common.Address, ticker string, contract common.Address) error
	MarkStablecoin(caller common.Address, ticker string) error
}

// PaymentService is the settlement surface. Each call is atomic end-to-end:
// it either completes every gate and instructs the transfer, or fails with
// no effect. The returned bool is the token service's success flag for the
// transfer and is not itself an error.
type PaymentService interface {
	// PayStablecoin settles a USD obligation 1:1 in a pegged stablecoin.
	// usd is an 8-decimal fixed-point amount. Returns the transfer flag and
	// the token amount moved into custody.
	PayStablecoin(ctx context.Context, payer common.Address, ticker string, usd *big.Int) (bool, *big.Int, error)

	// PayWithOracle settles a USD obligation in an oracle-priced token at
	// the current exchange rate.
	PayWithOracle(ctx context.Context, payer common.Address, ticker string, usd *big.Int) (bool, *big.Int, error)

	// Settle disburses previously collected funds from custody to
	// recipient. Insufficient custody balance surfaces through the token
	// service's result, not as a distinct error.
	Settle(ctx context.Context, ticker string, amount *big.Int, recipient common.Address) (bool, error)
}
