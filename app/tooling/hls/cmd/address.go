package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

// addressCmd represents the address command
var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the chain address for the private key",
	RunE: func(cmd *cobra.Command, args []string) error {
		privateKey, err := loadPrivateKey()
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), crypto.PubkeyToAddress(privateKey.PublicKey))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addressCmd)
}
