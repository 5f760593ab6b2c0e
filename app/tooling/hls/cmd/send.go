package cmd

import (
	"context"
	"strings"
	"time"

	"github.com/helios-protocol/microblock/foundation/blockchain/normalize"
	"github.com/helios-protocol/microblock/foundation/hls"
	"github.com/spf13/cobra"
)

var (
	url     string
	to      string
	value   string
	gas     uint64
	data    []byte
	timeout time.Duration
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Sign a block with one transaction and send it to a node",
	RunE:  sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:30304", "Url of the node.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address receiving the value.")
	sendCmd.Flags().StringVar(&value, "value", "0", "Value to send in wei, decimal or 0x hex.")
	sendCmd.Flags().Uint64Var(&gas, "gas", 0, "Gas limit, defaults to a plain transfer.")
	sendCmd.Flags().BytesHexVarP(&data, "data", "d", nil, "Data to send.")
	sendCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Time allowed for the node calls.")
	sendCmd.MarkFlagRequired("to")
}

func sendRun(cmd *cobra.Command, args []string) error {
	privateKey, err := loadPrivateKey()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	client, err := hls.Dial(ctx, url)
	if err != nil {
		return err
	}
	defer client.Close()

	tx := normalize.SendTxInput{
		To:    normalize.Hex(to),
		Value: amount(value),
		Data:  normalize.Bytes(data),
	}
	if gas != 0 {
		tx.Gas = normalize.Uint(gas)
	}

	core, err := newCore(stageLogger(cmd))
	if err != nil {
		return err
	}

	res, err := core.Submit(ctx, client, privateKey, []normalize.SendTxInput{tx})
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), res)
}

// amount keeps hex amounts as strings and passes decimal amounts through as
// numbers.
func amount(s string) normalize.Value {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return normalize.Hex(s)
	}
	return normalize.Value(s)
}
