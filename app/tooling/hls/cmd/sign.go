package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/helios-protocol/microblock/business/core/blocksign"
	"github.com/spf13/cobra"
)

var requestFile string

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign a block described by a JSON request",
	RunE:  signRun,
}

func init() {
	rootCmd.AddCommand(signCmd)
	signCmd.Flags().StringVarP(&requestFile, "request", "r", "-", "JSON file with the block request, - reads stdin.")
}

func signRun(cmd *cobra.Command, args []string) error {
	privateKey, err := loadPrivateKey()
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	if requestFile != "-" {
		f, err := os.Open(requestFile)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var req blocksign.Request
	if err := decodeJSON(in, &req); err != nil {
		return fmt.Errorf("reading request: %w", err)
	}

	core, err := newCore(stageLogger(cmd))
	if err != nil {
		return err
	}

	res, err := core.SignBlock(req, privateKey)
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), res)
}

// =============================================================================

func stageLogger(cmd *cobra.Command) blocksign.EventHandler {
	if !verbose {
		return nil
	}

	return func(v string, args ...any) {
		fmt.Fprintf(cmd.ErrOrStderr(), v+"\n", args...)
	}
}

func decodeJSON(r io.Reader, val any) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(val)
}

func printJSON(w io.Writer, val any) error {
	data, err := json.MarshalIndent(val, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))
	return err
}
