// Package cmd contains the ledger commands.
package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Work with proof of work ledger blocks",
	Long: `ledger computes block digests and mines blocks offline. It also submits
transactions to a node and reads its chain.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("node", "n", "http://localhost:8080", "Url of the node public api.")
	rootCmd.PersistentFlags().String("private-node", "http://localhost:9080", "Url of the node private api.")
	rootCmd.PersistentFlags().Duration("timeout", 2*time.Minute, "Time allowed for a node request.")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		color.Red("binding flags: %v", err)
	}

	viper.SetEnvPrefix("ledger")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}
