package cmd

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bimakw/swap-quoter/internal/domain/entities"
	"github.com/bimakw/swap-quoter/internal/domain/services"
)

type boundsOutput struct {
	Amount                   *big.Int        `json:"amount"`
	Hops                     int             `json:"hops"`
	SlippagePercent          decimal.Decimal `json:"slippagePercent"`
	EffectiveSlippagePercent decimal.Decimal `json:"effectiveSlippagePercent"`
	MinAmountOut             *big.Int        `json:"minAmountOut"`
	MaxAmountIn              *big.Int        `json:"maxAmountIn"`
}

func newBoundsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bounds",
		Short: "Compute slippage bounds for an expected amount",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amountRaw, _ := cmd.Flags().GetString(flagAmount)
			hops, _ := cmd.Flags().GetInt("hops")

			if hops < 0 || hops > entities.MaxHops {
				return fmt.Errorf("%w: --hops must be between 0 and %d", entities.ErrInvalidAmount, entities.MaxHops)
			}
			amount, err := parseAmount(amountRaw)
			if err != nil {
				return err
			}
			slippage, err := slippageFlag(cmd)
			if err != nil {
				return err
			}
			effective, err := services.CompoundSlippage(slippage, hops)
			if err != nil {
				return err
			}

			out := boundsOutput{
				Amount:                   amount,
				Hops:                     hops,
				SlippagePercent:          slippage,
				EffectiveSlippagePercent: effective,
			}
			if out.MinAmountOut, err = services.MinAcceptableOutput(amount, effective); err != nil {
				return err
			}
			if out.MaxAmountIn, err = services.MaxAcceptableInput(amount, effective); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().String(flagAmount, "", "expected amount (raw units)")
	cmd.Flags().String(flagSlippage, "0.5", "per-hop slippage tolerance in percent")
	cmd.Flags().Int("hops", 1, "number of hops the tolerance compounds over (at most 5)")
	_ = cmd.MarkFlagRequired(flagAmount)
	return cmd
}
