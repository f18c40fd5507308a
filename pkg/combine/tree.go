// File: pkg/combine/tree.go
package combine

import (
	"path/filepath"
	"strings"

	"eazypaste/pkg/tree"
)

// SelectionTree arranges the selected files below root as a tree. Files outside
// root are listed at the top level under their full path.
func SelectionTree(root string, files []string) []*tree.Node {
	top := tree.NewDir(root)
	var outside []*tree.Node

	for _, file := range files {
		rel := RelativePath(root, file)
		if root == "" || filepath.IsAbs(filepath.FromSlash(rel)) {
			n := tree.NewFile(file)
			n.Name = rel
			outside = append(outside, n)
			continue
		}

		cur := top
		dir := root
		segs := strings.Split(rel, "/")
		for _, seg := range segs[:len(segs)-1] {
			dir = filepath.Join(dir, seg)
			next := cur.Child(seg)
			if next == nil {
				next = tree.NewDir(dir)
				cur.InsertChild(next)
			}
			cur = next
		}
		cur.InsertChild(tree.NewFile(file))
	}

	return append(top.Children, outside...)
}
