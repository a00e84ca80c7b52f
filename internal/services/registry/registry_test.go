package registry

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/znftmarket/znft-core/internal/domain/entity"
)

var (
	admin    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	stranger = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	addrA    = common.HexToAddress("0x0000000000000000000000000000000000000010")
	addrB    = common.HexToAddress("0x0000000000000000000000000000000000000020")
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return New(admin, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestUnauthorizedMutations(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		name string
		call func() error
	}{
		{"SetOracle", func() error { return r.SetOracle(stranger, "BTC", addrA) }},
		{"SetContract", func() error { return r.SetContract(stranger, "BTC", addrA) }},
		{"ReplaceOracle", func() error { return r.ReplaceOracle(stranger, "BTC", addrA) }},
		{"ReplaceContract", func() error { return r.ReplaceContract(stranger, "BTC", addrA) }},
		{"MarkStablecoin", func() error { return r.MarkStablecoin(stranger, "BTC") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, entity.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestSetOracle(t *testing.T) {
	r := newTestRegistry(t)

	if err := r.SetOracle(admin, "BTC", common.Address{}); !errors.Is(err, entity.ErrInvalidAddress) {
		t.Fatalf("zero address: expected ErrInvalidAddress, got %v", err)
	}

	if err := r.SetOracle(admin, "BTC", addrA); err != nil {
		t.Fatalf("first set: %v", err)
	}
	got, ok := r.OracleOf("BTC")
	if !ok || got != addrA {
		t.Fatalf("OracleOf = (%s, %v), want (%s, true)", got.Hex(), ok, addrA.Hex())
	}

	// Second registration must fail regardless of the address.
	if err := r.SetOracle(admin, "BTC", addrA); !errors.Is(err, entity.ErrAlreadySet) {
		t.Fatalf("same address: expected ErrAlreadySet, got %v", err)
	}
	if err := r.SetOracle(admin, "BTC", addrB); !errors.Is(err, entity.ErrAlreadySet) {
		t.Fatalf("new address: expected ErrAlreadySet, got %v", err)
	}
}

func TestSetContract(t *testing.T) {
	r := newTestRegistry(t)

	if err := r.SetContract(admin, "USDX", common.Address{}); !errors.Is(err, entity.ErrInvalidAddress) {
		t.Fatalf("zero address: expected ErrInvalidAddress, got %v", err)
	}

	if err := r.SetContract(admin, "USDX", addrA); err != nil {
		t.Fatalf("first set: %v", err)
	}
	if !r.IsAvailable("USDX") {
		t.Fatal("expected USDX to be available after SetContract")
	}

	if err := r.SetContract(admin, "USDX", addrB); !errors.Is(err, entity.ErrAlreadySet) {
		t.Fatalf("expected ErrAlreadySet, got %v", err)
	}
}

func TestReplaceOracle(t *testing.T) {
	r := newTestRegistry(t)

	if err := r.ReplaceOracle(admin, "BTC", addrB); !errors.Is(err, entity.ErrNotSet) {
		t.Fatalf("unset: expected ErrNotSet, got %v", err)
	}

	if err := r.SetOracle(admin, "BTC", addrA); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := r.ReplaceOracle(admin, "BTC", common.Address{}); !errors.Is(err, entity.ErrInvalidAddress) {
		t.Fatalf("zero address: expected ErrInvalidAddress, got %v", err)
	}

	// Replacement is unconditional: no check against the previous value.
	if err := r.ReplaceOracle(admin, "BTC", addrA); err != nil {
		t.Fatalf("replace with same address: %v", err)
	}
	if err := r.ReplaceOracle(admin, "BTC", addrB); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got, _ := r.OracleOf("BTC"); got != addrB {
		t.Fatalf("OracleOf = %s, want %s", got.Hex(), addrB.Hex())
	}
}

func TestReplaceContract(t *testing.T) {
	r := newTestRegistry(t)

	if err := r.ReplaceContract(admin, "BTC", addrB); !errors.Is(err, entity.ErrNotSet) {
		t.Fatalf("unset: expected ErrNotSet, got %v", err)
	}

	if err := r.SetContract(admin, "BTC", addrA); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := r.ReplaceContract(admin, "BTC", addrB); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got, _ := r.ContractOf("BTC"); got != addrB {
		t.Fatalf("ContractOf = %s, want %s", got.Hex(), addrB.Hex())
	}
}

func TestMarkStablecoin(t *testing.T) {
	r := newTestRegistry(t)

	// Registration order: contract before flag. An oracle alone is not enough.
	if err := r.SetOracle(admin, "USDX", addrB); err != nil {
		t.Fatalf("set oracle: %v", err)
	}
	if err := r.MarkStablecoin(admin, "USDX"); !errors.Is(err, entity.ErrNotAvailable) {
		t.Fatalf("no contract: expected ErrNotAvailable, got %v", err)
	}
	if r.IsStable("USDX") {
		t.Fatal("USDX must not be stable before the contract is registered")
	}

	if err := r.SetContract(admin, "USDX", addrA); err != nil {
		t.Fatalf("set contract: %v", err)
	}
	if err := r.MarkStablecoin(admin, "USDX"); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if !r.IsStable("USDX") {
		t.Fatal("expected USDX to be stable")
	}

	// Idempotent.
	if err := r.MarkStablecoin(admin, "USDX"); err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if !r.IsStable("USDX") {
		t.Fatal("expected USDX to stay stable")
	}
}

func TestTickersAreCaseSensitive(t *testing.T) {
	r := newTestRegistry(t)

	if err := r.SetContract(admin, "BTC", addrA); err != nil {
		t.Fatalf("set: %v", err)
	}

	if r.IsAvailable("btc") {
		t.Fatal("\"btc\" must be a distinct key from \"BTC\"")
	}
	if err := r.SetContract(admin, "btc", addrB); err != nil {
		t.Fatalf("set lowercase: %v", err)
	}
	if got, _ := r.ContractOf("BTC"); got != addrA {
		t.Fatalf("ContractOf(BTC) = %s, want %s", got.Hex(), addrA.Hex())
	}
}

func TestAccessorsOnUnknownTicker(t *testing.T) {
	r := newTestRegistry(t)

	if r.IsAvailable("NOPE") {
		t.Fatal("unknown ticker must not be available")
	}
	if r.IsStable("NOPE") {
		t.Fatal("unknown ticker must not be stable")
	}
	if _, ok := r.OracleOf("NOPE"); ok {
		t.Fatal("unknown ticker must have no oracle")
	}
	if _, ok := r.ContractOf("NOPE"); ok {
		t.Fatal("unknown ticker must have no contract")
	}
}

func TestOracleOnlyAssetIsNotAvailable(t *testing.T) {
	r := newTestRegistry(t)

	if err := r.SetOracle(admin, "TKN", addrA); err != nil {
		t.Fatalf("set oracle: %v", err)
	}
	if r.IsAvailable("TKN") {
		t.Fatal("oracle-only asset must not be available for payment")
	}
	if _, ok := r.OracleOf("TKN"); !ok {
		t.Fatal("oracle must be registered")
	}
}
