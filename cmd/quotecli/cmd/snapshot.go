package cmd

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/bimakw/swap-quoter/internal/domain/entities"
	"github.com/bimakw/swap-quoter/internal/infrastructure/dex"
	"github.com/bimakw/swap-quoter/internal/infrastructure/ethereum"
)

// dialChain is replaced in tests.
var dialChain = func(ctx context.Context, rpcURL string) (dex.ContractCaller, func(), error) {
	client, err := ethereum.NewClient(ctx, rpcURL)
	if err != nil {
		return nil, nil, err
	}
	return client, client.Close, nil
}

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Read live V2 pair reserves into a snapshot file",
		Long: `snapshot reads token0, token1 and reserves of each --pair from an
Ethereum node and prints them in the format the route command reads.
Routes are left empty for you to fill in.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rpcURL, _ := cmd.Flags().GetString("rpc")
			rawPairs, _ := cmd.Flags().GetStringSlice("pair")
			dexName, _ := cmd.Flags().GetString("dex")

			pairs := make([]common.Address, len(rawPairs))
			for i, raw := range rawPairs {
				if !common.IsHexAddress(raw) {
					return fmt.Errorf("%w: invalid pair address %q", entities.ErrInvalidRoute, raw)
				}
				pairs[i] = common.HexToAddress(raw)
			}

			caller, closeFn, err := dialChain(cmd.Context(), rpcURL)
			if err != nil {
				return err
			}
			defer closeFn()

			var client *dex.UniswapV2Client
			switch entities.DEXType(dexName) {
			case entities.DEXUniswapV2:
				client = dex.NewUniswapV2Client(caller)
			case entities.DEXSushiswap:
				client = dex.NewSushiswapClient(caller)
			default:
				return fmt.Errorf("unsupported dex %q", dexName)
			}

			snaps, err := client.Snapshots(cmd.Context(), pairs)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), entities.PlanSet{
				Pairs:  snaps,
				Routes: []entities.RouteSpec{},
			})
		},
	}

	cmd.Flags().String("rpc", "", "Ethereum JSON-RPC URL")
	cmd.Flags().StringSlice("pair", nil, "pair address (repeatable)")
	cmd.Flags().String("dex", string(entities.DEXUniswapV2), "uniswap_v2 or sushiswap")
	_ = cmd.MarkFlagRequired("rpc")
	_ = cmd.MarkFlagRequired("pair")
	return cmd
}
