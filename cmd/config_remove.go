package cmd

import (
	"fmt"

	"github.com/brogergvhs/jmana/internal/config"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var flagForceRemove bool

var configRemoveCmd = &cobra.Command{
	Use:   "remove <label>",
	Short: "Remove a config profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label := args[0]

		if active, _ := config.CurrentLabel(); label == active && !flagForceRemove {
			prompt := promptui.Prompt{
				Label:     fmt.Sprintf("Config %q is active. Remove it anyway", label),
				IsConfirm: true,
			}
			if _, err := prompt.Run(); err != nil {
				fmt.Println("Aborted.")
				return nil
			}
		}

		fallback, err := config.RemoveConfig(label)
		if err != nil {
			return err
		}

		fmt.Printf("Removed config %q\n", label)
		if fallback != "" {
			fmt.Println("Switched to:", fallback)
		}
		return nil
	},
}

func init() {
	configRemoveCmd.Flags().BoolVarP(&flagForceRemove, "force", "f", false, "remove the active profile without asking")
	configCmd.AddCommand(configRemoveCmd)
}
