package outbound

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PriceFeed reads Chainlink-style aggregator feeds.
type PriceFeed interface {
	// LatestRoundData returns the feed's most recent answer together with
	// the round's updatedAt timestamp. The answer is signed and raw — no
	// decimal normalization is applied. An updatedAt of zero marks a round
	// that has not completed.
	LatestRoundData(ctx context.Context, feed common.Address) (answer, updatedAt *big.Int, err error)
}
