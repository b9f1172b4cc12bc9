package entities

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func writeTokens(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tokens.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeTokens(t, `{"tokens":[
		{"address":"0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2","symbol":"WETH","name":"Wrapped Ether","decimals":18,"intermediate":true},
		{"address":"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48","symbol":"USDC","name":"USD Coin","decimals":6}
	]}`)

	r := NewTokenRegistry()
	if err := r.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if r.Count() != 2 {
		t.Errorf("Count() = %d, want 2", r.Count())
	}

	usdc, ok := r.GetBySymbol("usdc")
	if !ok || usdc.Decimals != 6 {
		t.Errorf("GetBySymbol(usdc) = %+v, %v", usdc, ok)
	}
	if _, ok := r.GetByAddress(WETH.Address); !ok {
		t.Error("WETH not found by address")
	}

	inter := r.Intermediates()
	if len(inter) != 1 || inter[0].Symbol != "WETH" {
		t.Errorf("Intermediates() = %+v, want [WETH]", inter)
	}

	all := r.GetAll()
	if len(all) != 2 || all[0].Symbol != "USDC" {
		t.Errorf("GetAll() not sorted by symbol: %+v", all)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{"tokens":`},
		{"bad address", `{"tokens":[{"address":"0x1234","symbol":"X","decimals":18}]}`},
		{"too many decimals", `{"tokens":[{"address":"0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2","symbol":"X","decimals":40}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewTokenRegistry()
			if err := r.LoadFromFile(writeTokens(t, tt.body)); err == nil {
				t.Error("LoadFromFile() error = nil, want error")
			}
		})
	}

	if err := NewTokenRegistry().LoadFromFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("LoadFromFile(missing) error = nil")
	}
}

func TestLookupUnknown(t *testing.T) {
	r := DefaultRegistry()
	addr := common.HexToAddress("0x00000000000000000000000000000000000000ff")

	got := r.Lookup(addr)
	if got.Symbol != "UNKNOWN" || got.Decimals != 18 || got.Address != addr {
		t.Errorf("Lookup(unknown) = %+v", got)
	}
	if r.Lookup(DAI.Address).Symbol != "DAI" {
		t.Error("Lookup(DAI) did not return registry metadata")
	}
	if len(r.Intermediates()) != 2 {
		t.Errorf("DefaultRegistry intermediates = %d, want 2", len(r.Intermediates()))
	}
}

func TestMarkIntermediateIgnoresUnregistered(t *testing.T) {
	r := NewTokenRegistry()
	r.MarkIntermediate(WETH.Address)
	if len(r.Intermediates()) != 0 {
		t.Error("unregistered token became an intermediate")
	}
}
