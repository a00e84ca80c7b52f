// Package registry implements the asset registry: the administrator-gated
// mapping from tickers to trusted token contracts and price oracles.
//
// First-time registration (Set*) and replacement (Replace*) are separate
// operations so that an accidental overwrite is an explicit failure rather
// than a silent redirect of funds to a wrong contract.
package registry

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/znftmarket/znft-core/internal/domain/entity"
	"github.com/znftmarket/znft-core/internal/ports/inbound"
)

// Compile-time check that Registry implements inbound.AssetAdmin.
var _ inbound.AssetAdmin = (*Registry)(nil)

// Registry exclusively owns all asset records. Mutations are
// administrator-only and serialized behind the write lock; the settlement
// engine reads concurrently through the accessors. Records are never
// deleted.
type Registry struct {
	admin  common.Address
	logger *slog.Logger

	mu     sync.RWMutex
	assets map[string]*entity.Asset
}

// New creates an empty registry administered by admin.
func New(admin common.Address, logger *slog.Logger) *Registry {
	return &Registry{
		admin:  admin,
		logger: logger,
		assets: make(map[string]*entity.Asset),
	}
}

// Admin returns the administrator address.
func (r *Registry) Admin() common.Address {
	return r.admin
}

func (r *Registry) authorize(caller common.Address) error {
	if caller != r.admin {
		return fmt.Errorf("caller %s: %w", caller.Hex(), entity.ErrUnauthorized)
	}
	return nil
}

// record returns the asset record for ticker, materializing an empty one on
// first write. Callers must hold the write lock.
func (r *Registry) record(ticker string) *entity.Asset {
	a, ok := r.assets[ticker]
	if !ok {
		a = &entity.Asset{Ticker: ticker}
		r.assets[ticker] = a
	}
	return a
}

// SetOracle registers the trusted price oracle for ticker. It fails once an
// oracle exists; ReplaceOracle is the explicit overwrite path.
func (r *Registry) SetOracle(caller common.Address, ticker string, oracle common.Address) error {
	if err := r.authorize(caller); err != nil {
		return err
	}
	if oracle == (common.Address{}) {
		return fmt.Errorf("oracle for %q: %w", ticker, entity.ErrInvalidAddress)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a := r.record(ticker)
	if a.Oracle != nil {
		return fmt.Errorf("oracle for %q: %w", ticker, entity.ErrAlreadySet)
	}
	a.Oracle = &oracle

	r.logger.Info("oracle registered", "ticker", ticker, "oracle", oracle.Hex())
	return nil
}

// SetContract registers the trusted token contract for ticker. It fails
// once a contract exists; ReplaceContract is the explicit overwrite path.
func (r *Registry) SetContract(caller common.Address, ticker string, contract common.Address) error {
	if err := r.authorize(caller); err != nil {
		return err
	}
	if contract == (common.Address{}) {
		return fmt.Errorf("contract for %q: %w", ticker, entity.ErrInvalidAddress)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a := r.record(ticker)
	if a.Contract != nil {
		return fmt.Errorf("contract for %q: %w", ticker, entity.ErrAlreadySet)
	}
	a.Contract = &contract

	r.logger.Info("contract registered", "ticker", ticker, "contract", contract.Hex())
	return nil
}

// ReplaceOracle overwrites an existing oracle unconditionally. It fails if
// no oracle is currently registered for ticker.
func (r *Registry) ReplaceOracle(caller common.Address, ticker string, oracle common.Address) error {
	if err := r.authorize(caller); err != nil {
		return err
	}
	if oracle == (common.Address{}) {
		return fmt.Errorf("oracle for %q: %w", ticker, entity.ErrInvalidAddress)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.assets[ticker]
	if !ok || a.Oracle == nil {
		return fmt.Errorf("oracle for %q: %w", ticker, entity.ErrNotSet)
	}
	a.Oracle = &oracle

	r.logger.Info("oracle replaced", "ticker", ticker, "oracle", oracle.Hex())
	return nil
}

// ReplaceContract overwrites an existing token contract unconditionally. It
// fails if no contract is currently registered for ticker.
func (r *Registry) ReplaceContract(caller common.Address, ticker string, contract common.Address) error {
	if err := r.authorize(caller); err != nil {
		return err
	}
	if contract == (common.Address{}) {
		return fmt.Errorf("contract for %q: %w", ticker, entity.ErrInvalidAddress)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.assets[ticker]
	if !ok || a.Contract == nil {
		return fmt.Errorf("contract for %q: %w", ticker, entity.ErrNotSet)
	}
	a.Contract = &contract

	r.logger.Info("contract replaced", "ticker", ticker, "contract", contract.Hex())
	return nil
}

// MarkStablecoin flags ticker as a pegged stablecoin. The token contract
// must be registered first. Idempotent: flagging twice is harmless, and the
// flag is never reset.
func (r *Registry) MarkStablecoin(caller common.Address, ticker string) error {
	if err := r.authorize(caller); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.assets[ticker]
	if !ok || a.Contract == nil {
		return fmt.Errorf("stablecoin flag for %q: %w", ticker, entity.ErrNotAvailable)
	}
	a.Stable = true

	r.logger.Info("stablecoin flagged", "ticker", ticker)
	return nil
}

// IsAvailable reports whether ticker has a registered token contract.
func (r *Registry) IsAvailable(ticker string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.assets[ticker].Available()
}

// IsStable reports whether ticker is flagged as a stablecoin.
func (r *Registry) IsStable(ticker string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a := r.assets[ticker]
	return a != nil && a.Stable
}

// OracleOf returns ticker's registered oracle, if any.
func (r *Registry) OracleOf(ticker string) (common.Address, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a := r.assets[ticker]
	if !a.HasOracle() {
		return common.Address{}, false
	}
	return *a.Oracle, true
}

// ContractOf returns ticker's registered token contract, if any.
func (r *Registry) ContractOf(ticker string) (common.Address, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a := r.assets[ticker]
	if !a.Available() {
		return common.Address{}, false
	}
	return *a.Contract, true
}
