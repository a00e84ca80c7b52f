package eth

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/znftmarket/znft-core/internal/ports/outbound"
)

// Compile-time check that Client implements outbound.PriceFeed.
var _ outbound.PriceFeed = (*Client)(nil)

// LatestRoundData reads the feed's most recent round. Feeds that revert on
// latestRoundData() (e.g. Aave SynchronicityPriceAdapters) are retried with
// latestAnswer().
func (c *Client) LatestRoundData(ctx context.Context, feed common.Address) (*big.Int, *big.Int, error) {
	out, err := c.view(ctx, feed, c.feed, "latestRoundData")
	if err != nil {
		return c.latestAnswer(ctx, feed)
	}
	// latestRoundData returns: (uint80 roundId, int256 answer, uint256 startedAt, uint256 updatedAt, uint80 answeredInRound)
	return out[1].(*big.Int), out[3].(*big.Int), nil
}

// latestAnswer is the fallback for adapters that only implement
// latestAnswer(). It carries no round metadata, so a synthetic nonzero
// updatedAt is reported to keep the answer from being read as an
// incomplete round.
func (c *Client) latestAnswer(ctx context.Context, feed common.Address) (*big.Int, *big.Int, error) {
	out, err := c.view(ctx, feed, c.feed, "latestAnswer")
	if err != nil {
		return nil, nil, err
	}

	c.logger.Debug("feed recovered via latestAnswer", "feed", feed.Hex())
	return out[0].(*big.Int), big.NewInt(time.Now().Unix()), nil
}
