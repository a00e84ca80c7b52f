package entity

import "errors"

// Error taxonomy for registry and settlement operations. Every failure is
// terminal for the call that raised it; callers branch with errors.Is.
var (
	// ErrUnauthorized means the caller is not the registered administrator.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidAddress means the zero address was supplied where a real
	// address is required.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrAlreadySet means a first-time registration hit an existing entry.
	ErrAlreadySet = errors.New("already set")

	// ErrNotSet means a replacement targeted an entry that does not exist.
	ErrNotSet = errors.New("not set")

	// ErrNotAvailable means the ticker has no registered token contract.
	ErrNotAvailable = errors.New("asset not available")

	// ErrNotStablecoin means a stablecoin-only operation was attempted on a
	// ticker that is not flagged as a stablecoin.
	ErrNotStablecoin = errors.New("asset is not a stablecoin")

	// ErrInsufficientAllowance means the payer has not pre-authorized enough.
	ErrInsufficientAllowance = errors.New("insufficient allowance")

	// ErrUnsupportedDecimals means the token's precision exceeds the
	// engine's 18-decimal ceiling.
	ErrUnsupportedDecimals = errors.New("unsupported token decimals")

	// ErrStalePrice means the oracle's latest round is not complete.
	ErrStalePrice = errors.New("stale price")

	// ErrOracle means the oracle was unreachable or reported a non-positive
	// price.
	ErrOracle = errors.New("oracle error")
)
