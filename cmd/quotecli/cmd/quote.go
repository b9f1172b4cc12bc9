package cmd

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/bimakw/swap-quoter/internal/domain/entities"
	"github.com/bimakw/swap-quoter/internal/domain/services"
)

var (
	cliTokenIn  = entities.Token{Address: common.HexToAddress("0x0000000000000000000000000000000000000001"), Symbol: "IN"}
	cliTokenOut = entities.Token{Address: common.HexToAddress("0x0000000000000000000000000000000000000002"), Symbol: "OUT"}
)

type quoteOutput struct {
	*entities.SwapQuote
	MinAmountOut *big.Int `json:"minAmountOut,omitempty"`
	MaxAmountIn  *big.Int `json:"maxAmountIn,omitempty"`
	Warning      string   `json:"warning,omitempty"`
}

func newQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a single-pool swap",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			reserveInRaw, _ := flags.GetString("reserve-in")
			reserveOutRaw, _ := flags.GetString("reserve-out")
			feeRaw, _ := flags.GetString("fee")
			amountRaw, _ := flags.GetString(flagAmount)
			modeRaw, _ := flags.GetString(flagMode)

			reserveIn, err := parseAmount(reserveInRaw)
			if err != nil {
				return err
			}
			reserveOut, err := parseAmount(reserveOutRaw)
			if err != nil {
				return err
			}
			amount, err := parseAmount(amountRaw)
			if err != nil {
				return err
			}
			feeNum, feeDen, err := parseFee(feeRaw)
			if err != nil {
				return err
			}
			mode, err := entities.ParseSwapMode(modeRaw)
			if err != nil {
				return err
			}
			slippage, err := slippageFlag(cmd)
			if err != nil {
				return err
			}

			// the input token is always the left side of the synthetic pair
			pair := &entities.Pair{
				Token0:         cliTokenIn,
				Token1:         cliTokenOut,
				Reserve0:       reserveIn,
				Reserve1:       reserveOut,
				DEX:            entities.DEXCustom,
				FeeNumerator:   feeNum,
				FeeDenominator: feeDen,
			}

			out := quoteOutput{}
			if mode == entities.ExactOutput {
				if out.SwapQuote, err = services.QuoteExactOutput(pair, amount, false); err != nil {
					return err
				}
				if out.MaxAmountIn, err = services.MaxAcceptableInput(out.RequiredInputAmount, slippage); err != nil {
					return err
				}
			} else {
				if out.SwapQuote, err = services.QuoteExactInput(pair, amount, true); err != nil {
					return err
				}
				if out.MinAmountOut, err = services.MinAcceptableOutput(out.OutputAmount, slippage); err != nil {
					return err
				}
			}
			out.Warning = services.ImpactWarning(out.PriceImpactPercent)

			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().String("reserve-in", "", "reserve of the input token (raw units)")
	cmd.Flags().String("reserve-out", "", "reserve of the output token (raw units)")
	cmd.Flags().String("fee", "3/1000", "pool fee as N/D or basis points")
	cmd.Flags().String(flagAmount, "", "input amount, or desired output with --mode exact_out")
	cmd.Flags().String(flagMode, string(entities.ExactInput), "exact_in or exact_out")
	cmd.Flags().String(flagSlippage, "0.5", "slippage tolerance in percent")
	_ = cmd.MarkFlagRequired("reserve-in")
	_ = cmd.MarkFlagRequired("reserve-out")
	_ = cmd.MarkFlagRequired(flagAmount)
	return cmd
}
