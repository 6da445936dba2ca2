package cmd

import (
	"fmt"

	"github.com/brogergvhs/jmana/internal/config"

	"github.com/spf13/cobra"
)

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the active profile to default values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.ResetActiveConfig()
		if err != nil {
			return err
		}

		fmt.Println("Reset active config:", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configResetCmd)
}
