// Package cmd contains the hls tool for building and signing micro blocks.
package cmd

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/helios-protocol/microblock/business/core/blocksign"
	"github.com/helios-protocol/microblock/foundation/blockchain/genesis"
	"github.com/helios-protocol/microblock/foundation/blockchain/signature"
	"github.com/spf13/cobra"
)

var (
	accountName string
	accountPath string
	keyStore    string
	passphrase  string
	hexKey      string
	genesisPath string
	verbose     bool
)

const (
	keyExtension = ".ecdsa"
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "private.ecdsa", "Path to the private key.")
	rootCmd.PersistentFlags().StringVarP(&accountPath, "account-path", "p", "zblock/accounts/", "Path to the directory with private keys.")
	rootCmd.PersistentFlags().StringVarP(&keyStore, "keystore", "k", "", "Encrypted keystore file holding the private key.")
	rootCmd.PersistentFlags().StringVar(&passphrase, "passphrase", os.Getenv("HLS_PASSPHRASE"), "Passphrase for the keystore file.")
	rootCmd.PersistentFlags().StringVar(&hexKey, "key", "", "Hex encoded private key.")
	rootCmd.PersistentFlags().StringVarP(&genesisPath, "genesis", "g", "", "Genesis file with the fork schedule.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print every pipeline stage to stderr.")
}

var rootCmd = &cobra.Command{
	Use:          "hls",
	Short:        "Build, sign and send Helios micro blocks",
	SilenceUsage: true,
}

// Execute runs the command line tool.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func getPrivateKeyPath() string {
	if !strings.HasSuffix(accountName, keyExtension) {
		accountName += keyExtension
	}

	return filepath.Join(accountPath, accountName)
}

// loadPrivateKey finds the signing key. A hex key wins over a keystore file
// which wins over the account file.
func loadPrivateKey() (*ecdsa.PrivateKey, error) {
	switch {
	case hexKey != "":
		return signature.HexToPrivateKey(hexKey)

	case keyStore != "":
		keyJSON, err := os.ReadFile(keyStore)
		if err != nil {
			return nil, err
		}

		if passphrase == "" {
			return nil, errors.New("keystore requires a passphrase")
		}

		key, err := keystore.DecryptKey(keyJSON, passphrase)
		if err != nil {
			return nil, fmt.Errorf("decrypting keystore: %w", err)
		}
		return key.PrivateKey, nil
	}

	return crypto.LoadECDSA(getPrivateKeyPath())
}

func newCore(ev blocksign.EventHandler) (*blocksign.Core, error) {
	gen := genesis.Default()
	if genesisPath != "" {
		var err error
		if gen, err = genesis.Load(genesisPath); err != nil {
			return nil, fmt.Errorf("unable to load genesis: %w", err)
		}
	}

	return blocksign.NewCore(blocksign.Config{
		Schedule:  gen,
		EvHandler: ev,
	})
}
