package cmd

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var digestDifficulty uint

var digestCmd = &cobra.Command{
	Use:   "digest <file>",
	Short: "Compute the digest of a block stored as JSON",
	Long: `Compute the digest of a block stored as JSON. A stored hash must match the
digest. Use - to read the block from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := readBlock(cmd, args[0])
		if err != nil {
			return err
		}

		hash, err := b.Digest()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)

		if b.Hash != "" && b.Hash != hash {
			return fmt.Errorf("stored hash %s does not match the digest", b.Hash)
		}

		if digestDifficulty > 0 {
			ok, err := pow.IsAcceptable(hash, digestDifficulty)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("digest does not meet difficulty %d", digestDifficulty)
			}
			color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "digest meets difficulty %d\n", digestDifficulty)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(digestCmd)
	digestCmd.Flags().UintVarP(&digestDifficulty, "difficulty", "d", 0, "Check the digest against this difficulty.")
}
