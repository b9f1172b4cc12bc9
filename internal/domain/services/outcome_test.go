package services

import (
	"math/big"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimakw/swap-quoter/internal/domain/entities"
)

func TestEvaluatePlans(t *testing.T) {
	direct, bridged := directAndBridged(t)
	plans := []entities.RoutePlan{bridged, direct}
	half := decimal.RequireFromString("0.5")

	t.Run("exact input", func(t *testing.T) {
		out, err := EvaluatePlans(entities.ExactInput, big.NewInt(1000), half, plans)
		require.NoError(t, err)

		assert.Equal(t, entities.ExactInput, out.Mode)
		assert.Len(t, out.Ranked, 2)
		assert.Equal(t, out.Ranked[0], out.Best)
		assert.Equal(t, int64(996), out.Best.FinalOutputAmount.Int64())
		assert.Equal(t, int64(991), out.MinAmountOut.Int64())
		assert.Nil(t, out.MaxAmountIn)
		assert.True(t, out.EffectiveSlippagePercent.Equal(half))
	})

	t.Run("empty mode means exact input", func(t *testing.T) {
		out, err := EvaluatePlans("", big.NewInt(1000), half, plans)
		require.NoError(t, err)
		assert.Equal(t, entities.ExactInput, out.Mode)
	})

	t.Run("exact output", func(t *testing.T) {
		out, err := EvaluatePlans(entities.ExactOutput, big.NewInt(996), half, plans)
		require.NoError(t, err)

		assert.Equal(t, int64(1000), out.Best.AmountIn.Int64())
		assert.Equal(t, int64(1005), out.MaxAmountIn.Int64())
		assert.Nil(t, out.MinAmountOut)
	})

	t.Run("slippage compounds over the best route's hops", func(t *testing.T) {
		out, err := EvaluatePlans(entities.ExactInput, big.NewInt(1000), half, []entities.RoutePlan{bridged})
		require.NoError(t, err)

		assert.True(t, out.EffectiveSlippagePercent.Equal(decimal.RequireFromString("1.0025")))
		// floor(992 * 98.9975 / 100)
		assert.Equal(t, int64(982), out.MinAmountOut.Int64())
	})
}

func TestEvaluatePlansWarning(t *testing.T) {
	direct, _ := directAndBridged(t)

	out, err := EvaluatePlans(entities.ExactInput, big.NewInt(500000), decimal.Zero, []entities.RoutePlan{direct})
	require.NoError(t, err)
	assert.Equal(t, SeverityExtreme, SeverityOf(out.Best.CompoundedPriceImpactPercent))
	assert.True(t, strings.HasPrefix(out.PriceWarning, "EXTREME"), out.PriceWarning)
	assert.Equal(t, out.Best.FinalOutputAmount, out.MinAmountOut)
}

func TestEvaluatePlansErrors(t *testing.T) {
	direct, _ := directAndBridged(t)
	plans := []entities.RoutePlan{direct}
	half := decimal.RequireFromString("0.5")

	_, err := EvaluatePlans("sideways", big.NewInt(1000), half, plans)
	assert.ErrorIs(t, err, entities.ErrInvalidAmount)

	_, err = EvaluatePlans(entities.ExactInput, big.NewInt(1000), decimal.NewFromInt(100), plans)
	assert.ErrorIs(t, err, entities.ErrInvalidAmount)

	_, err = EvaluatePlans(entities.ExactInput, big.NewInt(1000), half, nil)
	assert.ErrorIs(t, err, entities.ErrNoRouteAvailable)

	_, err = EvaluatePlans(entities.ExactOutput, big.NewInt(1000000), half, plans)
	assert.ErrorIs(t, err, entities.ErrNoRouteAvailable)

	// routes between unrelated tokens are not comparable
	elsewhere := planOf(t, mid, mockPair(mid, token2, 1000000, 1000000))
	_, err = EvaluatePlans(entities.ExactInput, big.NewInt(1000), half, []entities.RoutePlan{direct, elsewhere})
	assert.ErrorIs(t, err, entities.ErrInvalidRoute)
}
