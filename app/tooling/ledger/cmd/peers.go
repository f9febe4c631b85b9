package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "Manage the peers known to the node",
}

var peersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the peers known to the node",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := call(newClient("private-node"), http.MethodGet, "/v1/node/peers/list", nil)
		if err != nil {
			return err
		}

		return printJSON(cmd, resp)
	},
}

var peersAddCmd = &cobra.Command{
	Use:   "add <host>",
	Short: "Add a peer to the node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := struct {
			Host string `json:"host"`
		}{
			Host: args[0],
		}

		resp, err := call(newClient("private-node"), http.MethodPost, "/v1/node/peers/add", body)
		if err != nil {
			return err
		}

		return printJSON(cmd, resp)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of the node",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := call(newClient("private-node"), http.MethodGet, "/v1/node/status", nil)
		if err != nil {
			return err
		}

		return printJSON(cmd, resp)
	},
}

func init() {
	rootCmd.AddCommand(peersCmd)
	rootCmd.AddCommand(statusCmd)
	peersCmd.AddCommand(peersListCmd)
	peersCmd.AddCommand(peersAddCmd)
}
