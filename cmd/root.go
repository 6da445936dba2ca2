package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/brogergvhs/jmana/internal/util"

	"github.com/spf13/cobra"
)

var (
	flagIgnoreConfig bool
	flagDebug        bool
	flagBaseURL      string
	flagLogFile      string
)

var rootCmd = &cobra.Command{
	Use:           "jmana",
	Short:         "Browse and download manga from JMana as CBZ files",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagIgnoreConfig, "ignore-config", false, "ignore config and use only CLI flags")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "site base URL (mirror)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "also write logs to this file (rotated)")
}

func Execute() {
	ctx, stop := util.WithInterrupt(context.Background())
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
