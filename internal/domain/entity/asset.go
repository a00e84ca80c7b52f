// Package entity contains the domain types of the settlement engine.
package entity

import "github.com/ethereum/go-ethereum/common"

// Asset is one registry record, keyed by ticker. Tickers are case-sensitive
// and used verbatim: "BTC" and "btc" are distinct assets. Records
// materialize on the first field write and are never deleted.
type Asset struct {
	Ticker   string
	Oracle   *common.Address // nil until registered; never the zero address
	Contract *common.Address // nil until registered; never the zero address
	Stable   bool            // once true, never reset
}

// Available reports whether the asset can settle payments, i.e. has a
// registered token contract.
func (a *Asset) Available() bool {
	return a != nil && a.Contract != nil
}

// HasOracle reports whether a price oracle is registered for the asset.
func (a *Asset) HasOracle() bool {
	return a != nil && a.Oracle != nil
}
