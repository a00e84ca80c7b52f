package eth

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/znftmarket/znft-core/internal/ports/outbound"
)

// Compile-time check that Client implements outbound.TokenService.
var _ outbound.TokenService = (*Client)(nil)

// Decimals returns the token's native decimal precision.
func (c *Client) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	out, err := c.view(ctx, token, c.erc20, "decimals")
	if err != nil {
		return 0, err
	}
	return out[0].(uint8), nil
}

// BalanceOf returns holder's balance of the token.
func (c *Client) BalanceOf(ctx context.Context, token, holder common.Address) (*big.Int, error) {
	out, err := c.view(ctx, token, c.erc20, "balanceOf", holder)
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

// Allowance returns the amount holder has pre-authorized spender to move.
func (c *Client) Allowance(ctx context.Context, token, holder, spender common.Address) (*big.Int, error) {
	out, err := c.view(ctx, token, c.erc20, "allowance", holder, spender)
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

// Transfer moves amount from the configured account to recipient and
// reports the receipt status.
func (c *Client) Transfer(ctx context.Context, token, recipient common.Address, amount *big.Int) (bool, error) {
	return c.transact(ctx, token, c.erc20, "transfer", recipient, amount)
}

// TransferFrom moves amount from payer to recipient against an allowance
// granted to the configured account, and reports the receipt status.
func (c *Client) TransferFrom(ctx context.Context, token, payer, recipient common.Address, amount *big.Int) (bool, error) {
	return c.transact(ctx, token, c.erc20, "transferFrom", payer, recipient, amount)
}
