package entities

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

var testToken2 = Token{Address: common.HexToAddress("0x0000000000000000000000000000000000000003"), Symbol: "T2", Decimals: 6}

func pairOf(addr string, a, b Token, updatedAt int64) Pair {
	return Pair{
		Address:        common.HexToAddress(addr),
		Token0:         a,
		Token1:         b,
		Reserve0:       big.NewInt(1000000),
		Reserve1:       big.NewInt(1000000),
		DEX:            DEXUniswapV2,
		FeeNumerator:   V2FeeNumerator,
		FeeDenominator: V2FeeDenominator,
		UpdatedAt:      updatedAt,
	}
}

func TestNewRoutePlan(t *testing.T) {
	p01 := pairOf("0xa1", testToken0, testToken1, 100)
	p12 := pairOf("0xa2", testToken1, testToken2, 50)

	plan, err := NewRoutePlan(testToken0.Address, p01, p12)
	if err != nil {
		t.Fatalf("NewRoutePlan() error = %v", err)
	}
	if plan.Source() != testToken0.Address || plan.Target() != testToken2.Address {
		t.Errorf("plan runs %s -> %s", plan.Source().Hex(), plan.Target().Hex())
	}
	if plan.Hops[1].TokenIn != testToken1.Address {
		t.Errorf("junction = %s, want %s", plan.Hops[1].TokenIn.Hex(), testToken1.Address.Hex())
	}
	if err := plan.Validate(testToken0.Address, testToken2.Address); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if got := plan.OldestSnapshot(); got != 50 {
		t.Errorf("OldestSnapshot() = %d, want 50", got)
	}

	// reverse orientation through the same pairs
	back, err := NewRoutePlan(testToken2.Address, p12, p01)
	if err != nil {
		t.Fatalf("NewRoutePlan(reverse) error = %v", err)
	}
	if back.Target() != testToken0.Address {
		t.Errorf("reverse target = %s", back.Target().Hex())
	}

	if _, err := NewRoutePlan(testToken2.Address, p01); !errors.Is(err, ErrInvalidRoute) {
		t.Errorf("disconnected plan error = %v, want ErrInvalidRoute", err)
	}
}

func TestRoutePlanValidate(t *testing.T) {
	p01 := pairOf("0xa1", testToken0, testToken1, 0)
	p12 := pairOf("0xa2", testToken1, testToken2, 0)

	tests := []struct {
		name   string
		plan   RoutePlan
		source common.Address
		target common.Address
	}{
		{
			name:   "empty",
			plan:   RoutePlan{},
			source: testToken0.Address, target: testToken1.Address,
		},
		{
			name: "broken junction",
			plan: RoutePlan{Hops: []Hop{
				{Pair: p01, TokenIn: testToken0.Address, TokenOut: testToken1.Address},
				{Pair: p12, TokenIn: testToken2.Address, TokenOut: testToken1.Address},
			}},
			source: testToken0.Address, target: testToken1.Address,
		},
		{
			name: "token not in pair",
			plan: RoutePlan{Hops: []Hop{
				{Pair: p01, TokenIn: testToken2.Address, TokenOut: testToken1.Address},
			}},
			source: testToken2.Address, target: testToken1.Address,
		},
		{
			name: "tokenOut on the same side",
			plan: RoutePlan{Hops: []Hop{
				{Pair: p01, TokenIn: testToken0.Address, TokenOut: testToken0.Address},
			}},
			source: testToken0.Address, target: testToken0.Address,
		},
		{
			name: "wrong target",
			plan: RoutePlan{Hops: []Hop{
				{Pair: p01, TokenIn: testToken0.Address, TokenOut: testToken1.Address},
			}},
			source: testToken0.Address, target: testToken2.Address,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.plan.Validate(tt.source, tt.target); !errors.Is(err, ErrInvalidRoute) {
				t.Errorf("Validate() error = %v, want ErrInvalidRoute", err)
			}
		})
	}
}

func TestRoutePlanTooLong(t *testing.T) {
	p01 := pairOf("0xa1", testToken0, testToken1, 0)
	pairs := make([]Pair, MaxHops+1)
	for i := range pairs {
		pairs[i] = p01
	}
	plan, err := NewRoutePlan(testToken0.Address, pairs...)
	if err != nil {
		t.Fatalf("NewRoutePlan() error = %v", err)
	}
	if err := plan.Validate(plan.Source(), plan.Target()); !errors.Is(err, ErrInvalidRoute) {
		t.Errorf("Validate() error = %v, want ErrInvalidRoute", err)
	}
}

func TestRouteEvaluationBetter(t *testing.T) {
	eval := func(out int64, hops int, fee int64) *RouteEvaluation {
		return &RouteEvaluation{
			FinalOutputAmount:   big.NewInt(out),
			CompoundedFeeAmount: big.NewInt(fee),
			Hops:                make([]HopEvaluation, hops),
		}
	}

	tests := []struct {
		name string
		a, b *RouteEvaluation
		want bool
	}{
		{"more output wins", eval(10, 2, 9), eval(9, 1, 1), true},
		{"less output loses", eval(9, 1, 1), eval(10, 2, 9), false},
		{"fewer hops breaks tie", eval(10, 1, 9), eval(10, 2, 1), true},
		{"lower fee breaks tie", eval(10, 2, 1), eval(10, 2, 2), true},
		{"full tie is not better", eval(10, 2, 2), eval(10, 2, 2), false},
		{"anything beats nil", eval(0, 1, 0), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Better(tt.b); got != tt.want {
				t.Errorf("Better() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseSwapMode(t *testing.T) {
	tests := []struct {
		in      string
		want    SwapMode
		wantErr bool
	}{
		{"", ExactInput, false},
		{"exact_in", ExactInput, false},
		{"EXACT_OUT", ExactOutput, false},
		{"sideways", "", true},
	}

	for _, tt := range tests {
		got, err := ParseSwapMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseSwapMode(%q) = %q, %v", tt.in, got, err)
		}
	}
}
