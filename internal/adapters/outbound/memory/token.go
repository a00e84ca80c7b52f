// Package memory provides in-memory implementations of the outbound ports.
// Useful for testing and local development.
package memory

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/znftmarket/znft-core/internal/ports/outbound"
)

// Compile-time check that TokenService implements outbound.TokenService.
var _ outbound.TokenService = (*TokenService)(nil)

type approval struct {
	holder  common.Address
	spender common.Address
}

// TokenService is a deterministic in-memory fungible-token service tracking
// decimals, balances, and allowances for any number of token contracts.
// account acts as the service's own identity: the sender of Transfer and
// the spender consumed by TransferFrom.
type TokenService struct {
	account common.Address

	mu         sync.Mutex
	decimals   map[common.Address]uint8
	balances   map[common.Address]map[common.Address]*big.Int
	allowances map[common.Address]map[approval]*big.Int
}

// NewTokenService creates an empty token service acting as account.
func NewTokenService(account common.Address) *TokenService {
	return &TokenService{
		account:    account,
		decimals:   make(map[common.Address]uint8),
		balances:   make(map[common.Address]map[common.Address]*big.Int),
		allowances: make(map[common.Address]map[approval]*big.Int),
	}
}

// SetDecimals registers token with the given decimal precision.
func (s *TokenService) SetDecimals(token common.Address, decimals uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decimals[token] = decimals
}

// Mint credits amount of token to holder.
func (s *TokenService) Mint(token, holder common.Address, amount *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credit(token, holder, amount)
}

// Approve records holder's authorization for spender to move up to amount
// of token.
func (s *TokenService) Approve(token, holder, spender common.Address, amount *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.allowances[token]
	if !ok {
		m = make(map[approval]*big.Int)
		s.allowances[token] = m
	}
	m[approval{holder: holder, spender: spender}] = new(big.Int).Set(amount)
}

// Decimals returns token's registered precision.
func (s *TokenService) Decimals(_ context.Context, token common.Address) (uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.decimals[token]
	if !ok {
		return 0, fmt.Errorf("unknown token %s", token.Hex())
	}
	return d, nil
}

// BalanceOf returns holder's balance of token; zero if never credited.
func (s *TokenService) BalanceOf(_ context.Context, token, holder common.Address) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return new(big.Int).Set(s.balance(token, holder)), nil
}

// Allowance returns the remaining authorization; zero if never approved.
func (s *TokenService) Allowance(_ context.Context, token, holder, spender common.Address) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return new(big.Int).Set(s.allowance(token, holder, spender)), nil
}

// Transfer moves amount of token from the service's own account to
// recipient. An insufficient balance yields a false flag, mirroring a
// non-reverting token contract.
func (s *TokenService) Transfer(_ context.Context, token, recipient common.Address, amount *big.Int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.balance(token, s.account).Cmp(amount) < 0 {
		return false, nil
	}
	s.debit(token, s.account, amount)
	s.credit(token, recipient, amount)
	return true, nil
}

// TransferFrom moves amount of token from payer to recipient, consuming
// payer's allowance for the service's account. Insufficient allowance or
// balance yields a false flag.
func (s *TokenService) TransferFrom(_ context.Context, token, payer, recipient common.Address, amount *big.Int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	allowance := s.allowance(token, payer, s.account)
	if allowance.Cmp(amount) < 0 {
		return false, nil
	}
	if s.balance(token, payer).Cmp(amount) < 0 {
		return false, nil
	}

	allowance.Sub(allowance, amount)
	s.debit(token, payer, amount)
	s.credit(token, recipient, amount)
	return true, nil
}

// balance returns the live balance entry. Callers must hold the lock.
func (s *TokenService) balance(token, holder common.Address) *big.Int {
	if b, ok := s.balances[token][holder]; ok {
		return b
	}
	return new(big.Int)
}

// allowance returns the live allowance entry. Callers must hold the lock.
func (s *TokenService) allowance(token, holder, spender common.Address) *big.Int {
	if a, ok := s.allowances[token][approval{holder: holder, spender: spender}]; ok {
		return a
	}
	return new(big.Int)
}

func (s *TokenService) credit(token, holder common.Address, amount *big.Int) {
	m, ok := s.balances[token]
	if !ok {
		m = make(map[common.Address]*big.Int)
		s.balances[token] = m
	}
	b, ok := m[holder]
	if !ok {
		b = new(big.Int)
		m[holder] = b
	}
	b.Add(b, amount)
}

func (s *TokenService) debit(token, holder common.Address, amount *big.Int) {
	s.balances[token][holder].Sub(s.balances[token][holder], amount)
}
