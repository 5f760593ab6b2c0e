package cmd

import (
	"github.com/helios-protocol/microblock/foundation/blockchain/fork"
	"github.com/spf13/cobra"
)

var (
	chainID  uint64
	forkName string
)

var decodeCmd = &cobra.Command{
	Use:   "decode <rawBlock>",
	Short: "Decode and verify a signed block",
	Args:  cobra.ExactArgs(1),
	RunE:  decodeRun,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().Uint64VarP(&chainID, "chain-id", "c", 1, "Chain id the block was signed for.")
	decodeCmd.Flags().StringVarP(&forkName, "fork", "f", "", "Fork schema to decode with, chosen from the block when empty.")
}

func decodeRun(cmd *cobra.Command, args []string) error {
	var f *fork.Fork
	if forkName != "" {
		named, err := fork.Parse(forkName)
		if err != nil {
			return err
		}
		f = &named
	}

	core, err := newCore(nil)
	if err != nil {
		return err
	}

	d, err := core.Decode(args[0], chainID, f)
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), d)
}
