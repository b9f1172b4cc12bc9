package entities

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

var (
	testToken0 = Token{Address: common.HexToAddress("0x0000000000000000000000000000000000000001"), Symbol: "T0", Decimals: 18}
	testToken1 = Token{Address: common.HexToAddress("0x0000000000000000000000000000000000000002"), Symbol: "T1", Decimals: 18}
)

func newTestPair(reserve0, reserve1 int64, feeNum, feeDen uint64) *Pair {
	return &Pair{
		Address:        common.HexToAddress("0x00000000000000000000000000000000000000aa"),
		Token0:         testToken0,
		Token1:         testToken1,
		Reserve0:       big.NewInt(reserve0),
		Reserve1:       big.NewInt(reserve1),
		DEX:            DEXUniswapV2,
		FeeNumerator:   feeNum,
		FeeDenominator: feeDen,
	}
}

func TestSpotPrice(t *testing.T) {
	tests := []struct {
		name        string
		reserve0    int64
		reserve1    int64
		inputIsLeft bool
		want        string
	}{
		{"equal reserves", 1000000, 1000000, true, "1"},
		{"2x price ratio", 1000000, 2000000, true, "2"},
		{"0.5x price ratio", 2000000, 1000000, true, "0.5"},
		{"reverse direction", 1000000, 2000000, false, "0.5"},
		{"repeating fraction truncated", 3, 1, true, "0.333333333333333333"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPair(tt.reserve0, tt.reserve1, 3, 1000)
			got, err := p.SpotPrice(tt.inputIsLeft)
			if err != nil {
				t.Fatalf("SpotPrice() error = %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("SpotPrice() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpotPriceEmptyReserve(t *testing.T) {
	p := newTestPair(0, 1000000, 3, 1000)
	if _, err := p.SpotPrice(true); !errors.Is(err, ErrInsufficientLiquidity) {
		t.Errorf("SpotPrice() error = %v, want ErrInsufficientLiquidity", err)
	}
}

func TestExpectedOutputForInput(t *testing.T) {
	tests := []struct {
		name        string
		reserve0    int64
		reserve1    int64
		feeNum      uint64
		feeDen      uint64
		amountIn    int64
		inputIsLeft bool
		wantNet     int64
		wantOut     int64
		wantFee     int64
	}{
		{
			name:     "balanced pool 0.3% fee",
			reserve0: 1000000, reserve1: 1000000,
			feeNum: 3, feeDen: 1000,
			amountIn: 1000, inputIsLeft: true,
			wantNet: 997, wantOut: 996, wantFee: 3,
		},
		{
			name:     "right to left",
			reserve0: 1000000, reserve1: 1000000,
			feeNum: 3, feeDen: 1000,
			amountIn: 1000, inputIsLeft: false,
			wantNet: 997, wantOut: 996, wantFee: 3,
		},
		{
			name:     "zero fee",
			reserve0: 1000000, reserve1: 1000000,
			feeNum: 0, feeDen: 1000,
			amountIn: 1000, inputIsLeft: true,
			wantNet: 1000, wantOut: 999, wantFee: 0,
		},
		{
			name:     "fee in basis points",
			reserve0: 5000000, reserve1: 10000000,
			feeNum: 30, feeDen: 10000,
			amountIn: 10000, inputIsLeft: true,
			// net = 9970, out = floor(1e7*9970/5009970) = 19900
			wantNet: 9970, wantOut: 19900, wantFee: 30,
		},
		{
			name:     "dust input rounds to zero output",
			reserve0: 1000000, reserve1: 1000000,
			feeNum: 3, feeDen: 1000,
			amountIn: 1, inputIsLeft: true,
			wantNet: 0, wantOut: 0, wantFee: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPair(tt.reserve0, tt.reserve1, tt.feeNum, tt.feeDen)
			got, err := p.ExpectedOutputForInput(big.NewInt(tt.amountIn), tt.inputIsLeft)
			if err != nil {
				t.Fatalf("ExpectedOutputForInput() error = %v", err)
			}
			if got.NetInput.Int64() != tt.wantNet {
				t.Errorf("NetInput = %v, want %v", got.NetInput, tt.wantNet)
			}
			if got.AmountOut.Int64() != tt.wantOut {
				t.Errorf("AmountOut = %v, want %v", got.AmountOut, tt.wantOut)
			}
			if got.Fee.Int64() != tt.wantFee {
				t.Errorf("Fee = %v, want %v", got.Fee, tt.wantFee)
			}
			if got.AmountIn.Int64() != tt.amountIn {
				t.Errorf("AmountIn = %v, want %v", got.AmountIn, tt.amountIn)
			}
		})
	}
}

func TestExpectedOutputForInputErrors(t *testing.T) {
	tests := []struct {
		name     string
		pair     *Pair
		amountIn *big.Int
		wantErr  error
	}{
		{"zero amount", newTestPair(1000, 1000, 3, 1000), big.NewInt(0), ErrInvalidAmount},
		{"negative amount", newTestPair(1000, 1000, 3, 1000), big.NewInt(-5), ErrInvalidAmount},
		{"nil amount", newTestPair(1000, 1000, 3, 1000), nil, ErrInvalidAmount},
		{"amount beyond 256 bits", newTestPair(1000, 1000, 3, 1000), new(big.Int).Lsh(big.NewInt(1), 256), ErrInvalidAmount},
		{"empty input reserve", newTestPair(0, 1000, 3, 1000), big.NewInt(10), ErrInsufficientLiquidity},
		{"empty output reserve", newTestPair(1000, 0, 3, 1000), big.NewInt(10), ErrInsufficientLiquidity},
		{"zero fee denominator", newTestPair(1000, 1000, 0, 0), big.NewInt(10), ErrInvalidAmount},
		{"fee of 100%", newTestPair(1000, 1000, 1000, 1000), big.NewInt(10), ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.pair.ExpectedOutputForInput(tt.amountIn, true)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ExpectedOutputForInput() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRequiredInputForOutput(t *testing.T) {
	tests := []struct {
		name         string
		reserve0     int64
		reserve1     int64
		amountOut    int64
		outputIsLeft bool
		wantIn       int64
	}{
		{"inverse of the 1000 -> 996 swap", 1000000, 1000000, 996, false, 1000},
		{"left output", 1000000, 1000000, 996, true, 1000},
		{"single unit", 1000000, 1000000, 1, false, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPair(tt.reserve0, tt.reserve1, 3, 1000)
			got, err := p.RequiredInputForOutput(big.NewInt(tt.amountOut), tt.outputIsLeft)
			if err != nil {
				t.Fatalf("RequiredInputForOutput() error = %v", err)
			}
			if got.AmountIn.Int64() != tt.wantIn {
				t.Errorf("AmountIn = %v, want %v", got.AmountIn, tt.wantIn)
			}

			// feeding the answer forward must deliver at least the target
			fwd, err := p.ExpectedOutputForInput(got.AmountIn, !tt.outputIsLeft)
			if err != nil {
				t.Fatalf("ExpectedOutputForInput() error = %v", err)
			}
			if fwd.AmountOut.Int64() < tt.amountOut {
				t.Errorf("forward output %v < requested %v", fwd.AmountOut, tt.amountOut)
			}
		})
	}
}

func TestRequiredInputForOutputErrors(t *testing.T) {
	p := newTestPair(1000000, 1000000, 3, 1000)

	tests := []struct {
		name      string
		amountOut *big.Int
		wantErr   error
	}{
		{"zero", big.NewInt(0), ErrInvalidAmount},
		{"negative", big.NewInt(-1), ErrInvalidAmount},
		{"whole reserve", big.NewInt(1000000), ErrInsufficientLiquidity},
		{"more than reserve", big.NewInt(2000000), ErrInsufficientLiquidity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.RequiredInputForOutput(tt.amountOut, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("RequiredInputForOutput() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPriceImpact(t *testing.T) {
	tests := []struct {
		name      string
		amountIn  int64
		amountOut int64
		want      string
	}{
		{"small swap", 1000, 996, "0.4"},
		{"no impact", 1000, 1000, "0"},
		{"rounds up", 3, 2, "33.34"},
		{"zero output", 1000, 0, "100"},
	}

	p := newTestPair(1000000, 1000000, 3, 1000)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.PriceImpact(big.NewInt(tt.amountIn), big.NewInt(tt.amountOut), true)
			if err != nil {
				t.Fatalf("PriceImpact() error = %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("PriceImpact() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPairValidate(t *testing.T) {
	tests := []struct {
		name    string
		pair    *Pair
		wantErr error
	}{
		{"valid", newTestPair(1, 1, 3, 1000), nil},
		{"empty reserve", newTestPair(0, 1, 3, 1000), ErrInsufficientLiquidity},
		{"bad fee", newTestPair(1, 1, 5, 5), ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pair.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPairSideAndAmountOut(t *testing.T) {
	p := newTestPair(1000000, 1000000, 3, 1000)

	isLeft, err := p.Side(testToken0.Address)
	if err != nil || !isLeft {
		t.Errorf("Side(token0) = %v, %v; want true, nil", isLeft, err)
	}
	isLeft, err = p.Side(testToken1.Address)
	if err != nil || isLeft {
		t.Errorf("Side(token1) = %v, %v; want false, nil", isLeft, err)
	}
	if _, err := p.Side(common.HexToAddress("0x03")); !errors.Is(err, ErrInvalidRoute) {
		t.Errorf("Side(unknown) error = %v, want ErrInvalidRoute", err)
	}

	out, err := p.AmountOut(big.NewInt(1000), testToken1.Address)
	if err != nil {
		t.Fatalf("AmountOut() error = %v", err)
	}
	if out.Int64() != 996 {
		t.Errorf("AmountOut() = %v, want 996", out)
	}
}

func TestFeeFromBps(t *testing.T) {
	num, den := FeeFromBps(30)
	if num != 30 || den != 10000 {
		t.Errorf("FeeFromBps(30) = %d/%d, want 30/10000", num, den)
	}
}
