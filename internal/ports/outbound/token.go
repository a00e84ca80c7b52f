// Package outbound contains the secondary ports: the collaborator
// interfaces the settlement core calls out through. Adapters under
// internal/adapters/outbound implement them.
package outbound

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TokenService exposes the fungible-token contract operations the engine
// depends on. All calls are synchronous request/response; the core never
// retries a failed call.
type TokenService interface {
	// Decimals returns the token's native decimal precision. It must be
	// truthful and immutable for a given contract address.
	Decimals(ctx context.Context, token common.Address) (uint8, error)

	// BalanceOf returns holder's balance of the token.
	BalanceOf(ctx context.Context, token, holder common.Address) (*big.Int, error)

	// Allowance returns the amount holder has pre-authorized spender to
	// move on their behalf.
	Allowance(ctx context.Context, token, holder, spender common.Address) (*big.Int, error)

	// Transfer moves amount from the service's own account to recipient.
	// The bool is the token contract's reported success flag; a false flag
	// with a nil error is a non-reverting failed transfer, which callers
	// must check.
	Transfer(ctx context.Context, token, recipient common.Address, amount *big.Int) (bool, error)

	// TransferFrom moves amount from payer to recipient against an
	// allowance previously granted to the service's account. Each call
	// moves funds at most once.
	TransferFrom(ctx context.Context, token, payer, recipient common.Address, amount *big.Int) (bool, error)
}
