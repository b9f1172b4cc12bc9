package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bimakw/swap-quoter/internal/domain/entities"
	"github.com/bimakw/swap-quoter/internal/domain/services"
)

func newRouteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Rank candidate routes from a snapshot file",
		Long: `route reads a JSON file of pair snapshots and routes:

  {
    "pairs":  [{"address": "0x..", "token0": "0x..", "token1": "0x..",
                "reserve0": "1000000", "reserve1": "1000000",
                "feeNumerator": 3, "feeDenominator": 1000}],
    "routes": [{"tokenIn": "0x..", "pairs": ["0x.."]}]
  }

and prints every surviving route best-first with the slippage bound of the best.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			amountRaw, _ := cmd.Flags().GetString(flagAmount)
			modeRaw, _ := cmd.Flags().GetString(flagMode)

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read plan file: %w", err)
			}
			var set entities.PlanSet
			if err := json.Unmarshal(data, &set); err != nil {
				return fmt.Errorf("parse plan file: %w", err)
			}

			amount, err := parseAmount(amountRaw)
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

			plans, err := set.Plans(nil)
			if err != nil {
				return err
			}
			outcome, err := services.EvaluatePlans(mode, amount, slippage, plans)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), outcome)
		},
	}

	cmd.Flags().String("file", "", "path to the snapshot/route JSON file")
	cmd.Flags().String(flagAmount, "", "input amount, or desired output with --mode exact_out")
	cmd.Flags().String(flagMode, string(entities.ExactInput), "exact_in or exact_out")
	cmd.Flags().String(flagSlippage, "0.5", "per-hop slippage tolerance in percent")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired(flagAmount)
	return cmd
}
