package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List the available platforms",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, key := range registry.Keys() {
			marker := " "
			if key == plat.Name {
				marker = "*"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, key)
		}
		return nil
	},
}
