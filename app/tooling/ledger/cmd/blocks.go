package cmd

import (
	"net/http"
	"strconv"

	"github.com/spf13/cobra"
)

var blocksCmd = &cobra.Command{
	Use:   "blocks [latest|genesis|<index>]",
	Short: "Read blocks from the node",
	Long:  `Read blocks from the node. Without an argument every block is listed.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/v1/blocks/list"
		if len(args) == 1 {
			switch args[0] {
			case "latest":
				path = "/v1/blocks/latest"
			case "genesis":
				path = "/v1/genesis"
			default:
				if _, err := strconv.ParseUint(args[0], 10, 64); err != nil {
					return err
				}
				path = "/v1/blocks/index/" + args[0]
			}
		}

		resp, err := call(newClient("node"), http.MethodGet, path, nil)
		if err != nil {
			return err
		}

		return printJSON(cmd, resp)
	},
}

var extendCmd = &cobra.Command{
	Use:   "extend",
	Short: "Create a block from the pending transactions linked to the last block",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := call(newClient("node"), http.MethodPost, "/v1/blocks/extend", nil)
		if err != nil {
			return err
		}

		return printJSON(cmd, resp)
	},
}

var newCmd = &cobra.Command{
	Use:   "new [previous-hash]",
	Short: "Create a block from the pending transactions linked to any hash",
	Long: `Create a block from the pending transactions linked to the hash provided. The
hash is not checked against the chain. Without a hash the block is unlinked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := struct {
			PreviousHash *string `json:"previous_hash"`
		}{}
		if len(args) == 1 {
			body.PreviousHash = &args[0]
		}

		resp, err := call(newClient("node"), http.MethodPost, "/v1/blocks/new", body)
		if err != nil {
			return err
		}

		return printJSON(cmd, resp)
	},
}

var remoteMine struct {
	index      int64
	difficulty uint
}

var remoteMineCmd = &cobra.Command{
	Use:   "remote-mine",
	Short: "Ask the node to mine a block and wait for the result",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]any{}
		if remoteMine.index >= 0 {
			body["index"] = remoteMine.index
		}
		if remoteMine.difficulty > 0 {
			body["difficulty"] = remoteMine.difficulty
		}

		resp, err := call(newClient("node"), http.MethodPost, "/v1/blocks/mine", body)
		if err != nil {
			return err
		}

		return printJSON(cmd, resp)
	},
}

func init() {
	rootCmd.AddCommand(blocksCmd)
	rootCmd.AddCommand(extendCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(remoteMineCmd)

	remoteMineCmd.Flags().Int64VarP(&remoteMine.index, "index", "i", -1, "Index of the block to mine. A negative index mines the last block.")
	remoteMineCmd.Flags().UintVarP(&remoteMine.difficulty, "difficulty", "d", 0, "Difficulty to mine with. Zero uses the node difficulty.")
}
