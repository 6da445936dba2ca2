package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/brogergvhs/jmana/internal/config"

	"github.com/spf13/cobra"
)

var configEditCmd = &cobra.Command{
	Use:   "edit [label]",
	Short: "Open the active or the given profile in $EDITOR",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var label string
		if len(args) == 1 {
			label = args[0]
		} else {
			var err error
			if label, err = config.CurrentLabel(); err != nil {
				return fmt.Errorf("no active config: %w", err)
			}
		}

		path, err := config.ConfigPathByLabel(label)
		if err != nil {
			return err
		}

		// $EDITOR may carry flags, e.g. "code --wait"
		argv := append(strings.Fields(config.Editor()), path)

		editor := exec.CommandContext(cmd.Context(), argv[0], argv[1:]...)
		editor.Stdin = os.Stdin
		editor.Stdout = os.Stdout
		editor.Stderr = os.Stderr

		if err := editor.Run(); err != nil {
			return fmt.Errorf("run editor %s: %w", argv[0], err)
		}

		return nil
	},
}

func init() {
	configCmd.AddCommand(configEditCmd)
}
