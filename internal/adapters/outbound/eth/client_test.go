package eth

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/znftmarket/znft-core/internal/pkg/blockchain/abis"
)

var (
	tokenAddr = common.HexToAddress("0x0000000000000000000000000000000000000010")
	feedAddr  = common.HexToAddress("0x0000000000000000000000000000000000000020")
	holder    = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	spender   = common.HexToAddress("0x00000000000000000000000000000000000000c1")
)

// stubBackend satisfies rpcBackend for view-call testing. Only
// CallContract is live; everything else is unreachable in these tests.
type stubBackend struct {
	callFn func(call ethereum.CallMsg) ([]byte, error)
}

func (b *stubBackend) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	return b.callFn(call)
}

func (b *stubBackend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x01}, nil
}

func (b *stubBackend) PendingCodeAt(context.Context, common.Address) ([]byte, error) {
	return []byte{0x01}, nil
}

func (b *stubBackend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return nil, errors.New("not implemented")
}

func (b *stubBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return 0, errors.New("not implemented")
}

func (b *stubBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return nil, errors.New("not implemented")
}

func (b *stubBackend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return nil, errors.New("not implemented")
}

func (b *stubBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 0, errors.New("not implemented")
}

func (b *stubBackend) SendTransaction(context.Context, *types.Transaction) error {
	return errors.New("not implemented")
}

func (b *stubBackend) FilterLogs(context.Context, ethereum.FilterQuery) ([]types.Log, error) {
	return nil, errors.New("not implemented")
}

func (b *stubBackend) SubscribeFilterLogs(context.Context, ethereum.FilterQuery, chan<- types.Log) (ethereum.Subscription, error) {
	return nil, errors.New("not implemented")
}

func (b *stubBackend) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	return nil, errors.New("not implemented")
}

func newStubClient(t *testing.T, backend *stubBackend) *Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := newClient(backend, Config{RequestsPerSecond: 1000}, logger)
	if err != nil {
		t.Fatalf("newClient: %v", err)
	}
	return c
}

func TestDecimals(t *testing.T) {
	erc20, err := abis.GetERC20ABI()
	if err != nil {
		t.Fatalf("loading ABI: %v", err)
	}
	wantData, err := erc20.Pack("decimals")
	if err != nil {
		t.Fatalf("packing: %v", err)
	}
	output, err := erc20.Methods["decimals"].Outputs.Pack(uint8(6))
	if err != nil {
		t.Fatalf("packing output: %v", err)
	}

	backend := &stubBackend{
		callFn: func(call ethereum.CallMsg) ([]byte, error) {
			if call.To == nil || *call.To != tokenAddr {
				t.Fatalf("call to %v, want %s", call.To, tokenAddr.Hex())
			}
			if !bytes.Equal(call.Data, wantData) {
				t.Fatalf("calldata = %x, want %x", call.Data, wantData)
			}
			return output, nil
		},
	}

	d, err := newStubClient(t, backend).Decimals(context.Background(), tokenAddr)
	if err != nil {
		t.Fatalf("Decimals: %v", err)
	}
	if d != 6 {
		t.Fatalf("decimals = %d, want 6", d)
	}
}

func TestAllowance(t *testing.T) {
	erc20, err := abis.GetERC20ABI()
	if err != nil {
		t.Fatalf("loading ABI: %v", err)
	}
	wantData, err := erc20.Pack("allowance", holder, spender)
	if err != nil {
		t.Fatalf("packing: %v", err)
	}
	want := big.NewInt(123456789)
	output, err := erc20.Methods["allowance"].Outputs.Pack(want)
	if err != nil {
		t.Fatalf("packing output: %v", err)
	}

	backend := &stubBackend{
		callFn: func(call ethereum.CallMsg) ([]byte, error) {
			if !bytes.Equal(call.Data, wantData) {
				t.Fatalf("calldata = %x, want %x", call.Data, wantData)
			}
			return output, nil
		},
	}

	got, err := newStubClient(t, backend).Allowance(context.Background(), tokenAddr, holder, spender)
	if err != nil {
		t.Fatalf("Allowance: %v", err)
	}
	if got.Cmp(want) != 0 {
		t.Fatalf("allowance = %s, want %s", got, want)
	}
}

func TestLatestRoundData(t *testing.T) {
	feedABI, err := abis.GetAggregatorV3ABI()
	if err != nil {
		t.Fatalf("loading ABI: %v", err)
	}
	answer := big.NewInt(200000000)
	updatedAt := big.NewInt(1700000000)
	output, err := feedABI.Methods["latestRoundData"].Outputs.Pack(
		big.NewInt(42), answer, big.NewInt(1699999990), updatedAt, big.NewInt(42))
	if err != nil {
		t.Fatalf("packing output: %v", err)
	}

	backend := &stubBackend{
		callFn: func(call ethereum.CallMsg) ([]byte, error) {
			return output, nil
		},
	}

	gotAnswer, gotUpdatedAt, err := newStubClient(t, backend).LatestRoundData(context.Background(), feedAddr)
	if err != nil {
		t.Fatalf("LatestRoundData: %v", err)
	}
	if gotAnswer.Cmp(answer) != 0 {
		t.Fatalf("answer = %s, want %s", gotAnswer, answer)
	}
	if gotUpdatedAt.Cmp(updatedAt) != 0 {
		t.Fatalf("updatedAt = %s, want %s", gotUpdatedAt, updatedAt)
	}
}

func TestLatestAnswerFallback(t *testing.T) {
	feedABI, err := abis.GetAggregatorV3ABI()
	if err != nil {
		t.Fatalf("loading ABI: %v", err)
	}
	roundID := feedABI.Methods["latestRoundData"].ID
	answerID := feedABI.Methods["latestAnswer"].ID

	answer := big.NewInt(700000000)
	output, err := feedABI.Methods["latestAnswer"].Outputs.Pack(answer)
	if err != nil {
		t.Fatalf("packing output: %v", err)
	}

	backend := &stubBackend{
		callFn: func(call ethereum.CallMsg) ([]byte, error) {
			switch {
			case bytes.Equal(call.Data, roundID):
				return nil, errors.New("execution reverted")
			case bytes.Equal(call.Data, answerID):
				return output, nil
			default:
				t.Fatalf("unexpected calldata %x", call.Data)
				return nil, nil
			}
		},
	}

	gotAnswer, gotUpdatedAt, err := newStubClient(t, backend).LatestRoundData(context.Background(), feedAddr)
	if err != nil {
		t.Fatalf("LatestRoundData: %v", err)
	}
	if gotAnswer.Cmp(answer) != 0 {
		t.Fatalf("answer = %s, want %s", gotAnswer, answer)
	}
	// latestAnswer has no round metadata; the synthetic updatedAt must not
	// read as an incomplete round.
	if gotUpdatedAt.Sign() == 0 {
		t.Fatal("fallback updatedAt must be nonzero")
	}
}

func TestNewClientValidation(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, err := NewClient(Config{}, logger); err == nil {
		t.Fatal("expected error for missing RPCURL")
	}

	_, err := newClient(&stubBackend{}, Config{
		PrivateKey: "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291",
	}, logger)
	if err == nil {
		t.Fatal("expected error for PrivateKey without ChainID")
	}
}

func TestSignerAccount(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, err := newClient(&stubBackend{}, Config{
		PrivateKey: "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291",
		ChainID:    1,
	}, logger)
	if err != nil {
		t.Fatalf("newClient: %v", err)
	}
	if c.Account() == (common.Address{}) {
		t.Fatal("expected a derived account address")
	}

	readonly, err := newClient(&stubBackend{}, Config{}, logger)
	if err != nil {
		t.Fatalf("newClient: %v", err)
	}
	if _, err := readonly.Transfer(context.Background(), tokenAddr, holder, big.NewInt(1)); err == nil {
		t.Fatal("expected error for transfer without a key")
	}
}
