package services

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"

	"github.com/bimakw/swap-quoter/internal/domain/entities"
)

func drawPair(t *rapid.T) *entities.Pair {
	den := rapid.SampledFrom([]uint64{100, 1000, 10000}).Draw(t, "feeDenominator")
	p := mockPair(token0, token1,
		rapid.Int64Range(1, 1<<60).Draw(t, "reserve0"),
		rapid.Int64Range(1, 1<<60).Draw(t, "reserve1"),
	)
	p.FeeDenominator = den
	p.FeeNumerator = rapid.Uint64Range(0, den/10).Draw(t, "feeNumerator")
	return p
}

func drawPercent(t *rapid.T, label string) decimal.Decimal {
	// hundredths of a percent in [0, 50)
	return decimal.New(rapid.Int64Range(0, 4999).Draw(t, label), -2)
}

func TestPropertySwapNeverShortsThePool(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := drawPair(t)
		amountIn := big.NewInt(rapid.Int64Range(1, 1<<60).Draw(t, "amountIn"))

		res, err := p.ExpectedOutputForInput(amountIn, true)
		if err != nil {
			t.Fatalf("ExpectedOutputForInput: %v", err)
		}
		if res.AmountOut.Cmp(p.Reserve1) >= 0 {
			t.Fatalf("output %s drains reserve %s", res.AmountOut, p.Reserve1)
		}

		// k = reserve0*reserve1 never decreases
		before := new(big.Int).Mul(p.Reserve0, p.Reserve1)
		after := new(big.Int).Mul(
			new(big.Int).Add(p.Reserve0, res.NetInput),
			new(big.Int).Sub(p.Reserve1, res.AmountOut),
		)
		if after.Cmp(before) < 0 {
			t.Fatalf("k decreased: %s -> %s", before, after)
		}

		if sum := new(big.Int).Add(res.NetInput, res.Fee); sum.Cmp(amountIn) != 0 {
			t.Fatalf("net %s + fee %s != input %s", res.NetInput, res.Fee, amountIn)
		}
	})
}

func TestPropertyOutputIsMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := drawPair(t)
		a := rapid.Int64Range(1, 1<<59).Draw(t, "a")
		b := a + rapid.Int64Range(0, 1<<59).Draw(t, "delta")

		outA, err := p.ExpectedOutputForInput(big.NewInt(a), true)
		if err != nil {
			t.Fatal(err)
		}
		outB, err := p.ExpectedOutputForInput(big.NewInt(b), true)
		if err != nil {
			t.Fatal(err)
		}
		if outA.AmountOut.Cmp(outB.AmountOut) > 0 {
			t.Fatalf("out(%d)=%s > out(%d)=%s", a, outA.AmountOut, b, outB.AmountOut)
		}
	})
}

func TestPropertyExactOutputRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := drawPair(t)
		amountIn := big.NewInt(rapid.Int64Range(1, 1<<60).Draw(t, "amountIn"))

		fwd, err := p.ExpectedOutputForInput(amountIn, true)
		if err != nil {
			t.Fatal(err)
		}
		if fwd.AmountOut.Sign() == 0 {
			t.Skip("dust input")
		}

		inv, err := p.RequiredInputForOutput(fwd.AmountOut, false)
		if err != nil {
			t.Fatalf("RequiredInputForOutput(%s): %v", fwd.AmountOut, err)
		}
		if inv.AmountIn.Cmp(amountIn) > 0 {
			t.Fatalf("required %s exceeds the input %s that produced %s", inv.AmountIn, amountIn, fwd.AmountOut)
		}

		again, err := p.ExpectedOutputForInput(inv.AmountIn, true)
		if err != nil {
			t.Fatal(err)
		}
		if again.AmountOut.Cmp(fwd.AmountOut) < 0 {
			t.Fatalf("required input %s yields %s < %s", inv.AmountIn, again.AmountOut, fwd.AmountOut)
		}
	})
}

func TestPropertySlippageBoundsBracketExpected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		expected := big.NewInt(rapid.Int64Range(0, 1<<62).Draw(t, "expected"))
		pct := drawPercent(t, "slippage")

		minOut, err := MinAcceptableOutput(expected, pct)
		if err != nil {
			t.Fatal(err)
		}
		maxIn, err := MaxAcceptableInput(expected, pct)
		if err != nil {
			t.Fatal(err)
		}
		if minOut.Cmp(expected) > 0 || maxIn.Cmp(expected) < 0 {
			t.Fatalf("bounds %s <= %s <= %s violated at %s%%", minOut, expected, maxIn, pct)
		}
	})
}

func TestPropertyCompoundSlippageGrowsWithHops(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pct := drawPercent(t, "slippage")
		hops := rapid.IntRange(0, entities.MaxHops-1).Draw(t, "hops")

		cur, err := CompoundSlippage(pct, hops)
		if err != nil {
			t.Fatal(err)
		}
		next, err := CompoundSlippage(pct, hops+1)
		if err != nil {
			t.Fatal(err)
		}
		if next.LessThan(cur) {
			t.Fatalf("compound(%s, %d)=%s < compound(%s, %d)=%s", pct, hops+1, next, pct, hops, cur)
		}
		// (1+x)^n >= 1+nx
		if linear := pct.Mul(decimal.NewFromInt(int64(hops))); cur.LessThan(linear) {
			t.Fatalf("compound(%s, %d)=%s below linear %s", pct, hops, cur, linear)
		}
	})
}
