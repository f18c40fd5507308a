// File: pkg/tree/render.go
package tree

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// RenderOptions controls the text rendering of a tree.
type RenderOptions struct {
	Color bool // Highlight directories with ANSI colours
}

// Render writes the tree as an indented listing rooted at label, using box-drawing
// connectors and a trailing '/' on directories.
func Render(w io.Writer, label string, nodes []*Node, opts RenderOptions) error {
	dirColor := color.New(color.FgBlue, color.Bold)
	if opts.Color {
		dirColor.EnableColor()
	} else {
		dirColor.DisableColor()
	}

	var out strings.Builder
	out.WriteString(dirColor.Sprint(strings.TrimSuffix(label, "/") + "/"))
	out.WriteString("\n")
	renderLevel(&out, nodes, "", dirColor)

	_, err := io.WriteString(w, out.String())
	return err
}

// RenderString renders the tree without colours.
func RenderString(label string, nodes []*Node) string {
	var sb strings.Builder
	_ = Render(&sb, label, nodes, RenderOptions{})
	return sb.String()
}

func renderLevel(out *strings.Builder, nodes []*Node, prefix string, dirColor *color.Color) {
	for i, node := range nodes {
		connector := "├── "
		extension := "│   "
		if i == len(nodes)-1 {
			connector = "└── "
			extension = "    "
		}

		if node.IsDirectory {
			fmt.Fprintf(out, "%s%s%s\n", prefix, connector, dirColor.Sprint(node.Name+"/"))
			renderLevel(out, node.Children, prefix+extension, dirColor)
			continue
		}
		fmt.Fprintf(out, "%s%s%s\n", prefix, connector, node.Name)
	}
}
