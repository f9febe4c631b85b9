package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	mineDifficulty uint
	mineTimeout    time.Duration
)

var mineCmd = &cobra.Command{
	Use:   "mine <file>",
	Short: "Find a nonce for a block stored as JSON",
	Long: `Find a nonce for a block stored as JSON and print the mined block. Use - to
read the block from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := readBlock(cmd, args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if mineTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, mineTimeout)
			defer cancel()
		}

		bar := progressbar.NewOptions64(
			-1,
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription(fmt.Sprintf("mining block %d at difficulty %d", b.Index, mineDifficulty)),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)

		var final chain.Event
		ev := func(e chain.Event) {
			switch e.Kind {
			case chain.EventMiningProgress:
				bar.Set64(int64(e.Attempts))
			case chain.EventBlockMined, chain.EventMiningStopped:
				final = e
			}
		}

		mined, err := chain.MineBlock(ctx, b, mineDifficulty, ev)
		bar.Finish()
		if err != nil {
			return err
		}

		color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "mined block %d: attempts[%d]: duration[%v]\n", mined.Index, final.Attempts, final.Duration)

		data, err := json.Marshal(mined)
		if err != nil {
			return err
		}

		return printJSON(cmd, data)
	},
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().UintVarP(&mineDifficulty, "difficulty", "d", chain.DefaultDifficulty, "Number of leading zero bits required.")
	mineCmd.Flags().DurationVar(&mineTimeout, "max-time", 0, "Stop searching after this long. Zero means no limit.")
}
