package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bimakw/swap-quoter/internal/domain/entities"
	"github.com/bimakw/swap-quoter/internal/domain/services"
)

const (
	flagAmount   = "amount"
	flagSlippage = "slippage"
	flagMode     = "mode"
)

// NewRootCmd builds the quotecli command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "quotecli",
		Short: "Constant-product swap calculator",
		Long: `quotecli prices swaps against reserve snapshots you supply.
Only the snapshot command talks to the network.

Examples:
  quotecli quote --reserve-in 1000000 --reserve-out 1000000 --amount 1000
  quotecli quote --reserve-in 1000000 --reserve-out 1000000 --amount 996 --mode exact_out
  quotecli bounds --amount 996 --slippage 0.5 --hops 2
  quotecli snapshot --rpc $ETH_RPC_URL --pair 0xB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc > plan.json
  quotecli route --file plan.json --amount 1000000000000000000`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newQuoteCmd(),
		newBoundsCmd(),
		newRouteCmd(),
		newSnapshotCmd(),
	)
	return root
}

func parseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an integer", entities.ErrInvalidAmount, s)
	}
	return v, nil
}

// parseFee accepts "N/D" or a basis-point integer such as "30".
func parseFee(s string) (uint64, uint64, error) {
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseUint(strings.TrimSpace(num), 10, 64)
		d, err2 := strconv.ParseUint(strings.TrimSpace(den), 10, 64)
		if err1 != nil || err2 != nil {
			return 0, 0, fmt.Errorf("%w: fee %q", entities.ErrInvalidAmount, s)
		}
		return n, d, nil
	}
	bps, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: fee %q", entities.ErrInvalidAmount, s)
	}
	n, d := entities.FeeFromBps(bps)
	return n, d, nil
}

func slippageFlag(cmd *cobra.Command) (decimal.Decimal, error) {
	raw, err := cmd.Flags().GetString(flagSlippage)
	if err != nil {
		return decimal.Zero, err
	}
	return services.ParsePercent(raw)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
