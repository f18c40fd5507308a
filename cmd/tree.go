package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"eazypaste/pkg/tree"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// newTreeCommand creates the 'eazypaste tree' command, which prints the filtered
// folder tree once.
func newTreeCommand(a *app) *cobra.Command {
	var filters filterFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tree [folder]",
		Short: "Print the filtered tree of a folder",
		Long: `Print the folder tree, leaving out entries whose names contain a hidden substring.
With search words, only entries matching a word by name (or, for text files, by
content) are shown, together with the directories leading to them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, st, err := a.load()
			if err != nil {
				return err
			}
			folder, err := a.resolveFolder(store, st, args)
			if err != nil {
				return err
			}
			cfg := filters.apply(cmd, st.FilterConfig())

			nodes, err := a.newBuilder(st).Build(cmd.Context(), folder, cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(nodes)
			}
			return tree.Render(out, folder, nodes, tree.RenderOptions{Color: colorEnabled(out)})
		},
	}

	filters.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the tree as JSON")
	return cmd
}

// colorEnabled reports whether out is a colour-capable terminal.
func colorEnabled(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok || color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// printf writes to out, ignoring errors like fmt.Printf does.
func printf(out io.Writer, format string, a ...interface{}) {
	_, _ = fmt.Fprintf(out, format, a...)
}
