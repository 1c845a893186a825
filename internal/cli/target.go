package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTargetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "target <path>",
		Short: "Print the thread target of a page",
		Long:  "Print the thread target the widget uses for a page path: the locale and the path without leading or trailing slashes.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			target, _, err := resolveTarget(cfg, args[0])
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"target": target.String(),
					"locale": target.Locale(),
					"path":   target.Path(),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), target)
			return nil
		},
	}
}
