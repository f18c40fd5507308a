// File: cmd/version.go
package cmd

import (
	"fmt"

	"eazypaste/pkg/version"

	"github.com/spf13/cobra"
)

// newVersionCommand creates the 'eazypaste version' command. The --short flag prints
// the version number only.
func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display the version of eazypaste",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			short, err := cmd.Flags().GetBool("short")
			if err != nil {
				return fmt.Errorf("error reading flags: %w", err)
			}

			v := version.Get()
			if short {
				printf(cmd.OutOrStdout(), "%s\n", v.Version)
			} else {
				printf(cmd.OutOrStdout(), "%s\n", v.String())
			}
			return nil
		},
	}

	cmd.Flags().BoolP("short", "s", false, "Print the version number only")
	return cmd
}
