package cmd

import (
	"fmt"
	"strings"

	"eazypaste/pkg/settings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// newConfigCommand creates the 'eazypaste config' command group.
func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change saved settings",
		Long:  "Show or change saved settings. Keys: " + strings.Join(settings.Keys(), ", ") + ".",
	}
	cmd.AddCommand(
		newConfigGetCommand(a),
		newConfigSetCommand(a),
		newConfigResetCommand(a),
		newConfigPathCommand(a),
	)
	return cmd
}

func newConfigGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Print one setting, or all settings as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := a.load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				data, err := yaml.Marshal(st)
				if err != nil {
					return fmt.Errorf("failed to encode settings: %w", err)
				}
				printf(out, "%s", data)
				return nil
			}

			values, err := st.Get(args[0])
			if err != nil {
				return err
			}
			for _, v := range values {
				printf(out, "%s\n", v)
			}
			return nil
		},
	}
}

func newConfigSetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set key [values...]",
		Short: "Change one setting",
		Long: `Change one setting. List keys take each value as an element, so giving no
values clears the list. Other keys join the values with spaces.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}

			_, err = store.Set(args[0], args[1:])
			return err
		},
	}
}

func newConfigResetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			_, err = store.Reset()
			return err
		},
	}
}

func newConfigPathCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the settings file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s\n", store.Path())
			return nil
		},
	}
}
