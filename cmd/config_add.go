package cmd

import (
	"fmt"

	"github.com/brogergvhs/jmana/internal/config"

	"github.com/spf13/cobra"
)

var configAddCmd = &cobra.Command{
	Use:   "add <label>",
	Short: "Create a new profile with default values",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.CreateConfig(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Created new config: %s\n", path)
		fmt.Printf("Activate it with `jmana config switch %s`.\n", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configAddCmd)
}
