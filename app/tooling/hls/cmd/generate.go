package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var keyStoreDir string

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate new key pair",
	RunE:  generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&keyStoreDir, "keystore-dir", "", "Create an encrypted keystore account in this directory instead of a key file.")
}

func generateRun(cmd *cobra.Command, args []string) error {
	if keyStoreDir != "" {
		if passphrase == "" {
			return fmt.Errorf("keystore requires a passphrase")
		}

		ks := keystore.NewKeyStore(keyStoreDir, keystore.StandardScryptN, keystore.StandardScryptP)
		acc, err := ks.NewAccount(passphrase)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "New account created: %s\n%s\n", acc.Address.Hex(), acc.URL.Path)
		return nil
	}

	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return err
	}

	if err := crypto.SaveECDSA(getPrivateKeyPath(), privateKey); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), crypto.PubkeyToAddress(privateKey.PublicKey))
	return nil
}
