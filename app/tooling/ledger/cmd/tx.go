package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var txCmd = &cobra.Command{
	Use:   "tx <json>",
	Short: "Submit a transaction to the node",
	Long: `Submit a transaction to the node. Any JSON value is a transaction. Use - to
read the transaction from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data := []byte(args[0])
		if args[0] == "-" {
			var err error
			if data, err = io.ReadAll(cmd.InOrStdin()); err != nil {
				return fmt.Errorf("reading transaction: %w", err)
			}
		}

		if !json.Valid(data) {
			return errors.New("transaction must be a JSON value")
		}

		resp, err := call(newClient("node"), http.MethodPost, "/v1/tx/submit", data)
		if err != nil {
			return err
		}

		return printJSON(cmd, resp)
	},
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List the transactions waiting for a block",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := call(newClient("node"), http.MethodGet, "/v1/tx/uncommitted/list", nil)
		if err != nil {
			return err
		}

		return printJSON(cmd, resp)
	},
}

func init() {
	rootCmd.AddCommand(txCmd)
	rootCmd.AddCommand(pendingCmd)
}
