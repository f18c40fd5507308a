// Package tree builds and manipulates the filtered folder tree.
package tree

import (
	"encoding/json"
	"path/filepath"
	"strings"
)

// Node represents one file-system entry in a built tree.
type Node struct {
	Name        string  // Base name
	Path        string  // Absolute path, unique within a tree
	IsDirectory bool    // True for directories
	Children    []*Node // Directories first, then files; nil for files
}

// wireNode is the JSON form of a Node. Children is a pointer so that files omit the
// field while empty directories still serialize "children": [].
type wireNode struct {
	Name        string   `json:"name"`
	Path        string   `json:"path"`
	IsDirectory bool     `json:"isDirectory"`
	Children    *[]*Node `json:"children,omitempty"`
}

// MarshalJSON encodes the node with stable field names.
func (n *Node) MarshalJSON() ([]byte, error) {
	w := wireNode{Name: n.Name, Path: n.Path, IsDirectory: n.IsDirectory}
	if n.IsDirectory {
		children := n.Children
		if children == nil {
			children = []*Node{}
		}
		w.Children = &children
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the wire form produced by MarshalJSON.
func (n *Node) UnmarshalJSON(data []byte) error {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	n.Name, n.Path, n.IsDirectory = w.Name, w.Path, w.IsDirectory
	n.Children = nil
	if w.Children != nil {
		n.Children = *w.Children
	}
	if n.IsDirectory && n.Children == nil {
		n.Children = []*Node{}
	}
	return nil
}

// NewDir creates a directory node with no children.
func NewDir(path string) *Node {
	return &Node{Name: filepath.Base(path), Path: path, IsDirectory: true, Children: []*Node{}}
}

// NewFile creates a file node.
func NewFile(path string) *Node {
	return &Node{Name: filepath.Base(path), Path: path}
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Name: n.Name, Path: n.Path, IsDirectory: n.IsDirectory}
	if n.IsDirectory {
		c.Children = CloneAll(n.Children)
	}
	return c
}

// CloneAll deep-copies a slice of nodes. The result is never nil.
func CloneAll(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Clone())
	}
	return out
}

// Find resolves a path in the tree below n (n itself included).
func (n *Node) Find(path string) *Node {
	if n == nil {
		return nil
	}
	if n.Path == path {
		return n
	}
	if !n.IsDirectory || !within(path, n.Path) {
		return nil
	}
	return Find(n.Children, path)
}

// Find resolves a path in a forest of nodes. It only descends into directories that
// are ancestors of path.
func Find(nodes []*Node, path string) *Node {
	for _, n := range nodes {
		if n.Path == path {
			return n
		}
		if n.IsDirectory && within(path, n.Path) {
			return Find(n.Children, path)
		}
	}
	return nil
}

// Child returns the direct child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// InsertChild adds child to n keeping directories before files, each group in the
// order the builder lists entries (byte-wise by name). Inserting a name that already
// exists is a no-op and returns false.
func (n *Node) InsertChild(child *Node) bool {
	if n.Child(child.Name) != nil {
		return false
	}

	at := len(n.Children)
	for i, sibling := range n.Children {
		if child.IsDirectory && !sibling.IsDirectory {
			at = i
			break
		}
		if child.IsDirectory != sibling.IsDirectory {
			continue
		}
		if sibling.Name > child.Name {
			at = i
			break
		}
	}

	n.Children = append(n.Children, nil)
	copy(n.Children[at+1:], n.Children[at:])
	n.Children[at] = child
	return true
}

// RemoveChild removes a child by name from n and returns it.
func (n *Node) RemoveChild(name string) *Node {
	for i, child := range n.Children {
		if child.Name == name {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			return child
		}
	}
	return nil
}

// Count counts all nodes in a forest.
func Count(nodes []*Node) int {
	count := 0
	for _, n := range nodes {
		count++
		count += Count(n.Children)
	}
	return count
}

// Flatten returns all nodes in a flat map keyed by path.
func Flatten(nodes []*Node) map[string]*Node {
	result := make(map[string]*Node)
	var walk func([]*Node)
	walk = func(level []*Node) {
		for _, n := range level {
			result[n.Path] = n
			walk(n.Children)
		}
	}
	walk(nodes)
	return result
}

// Files returns the paths of every file node in depth-first order.
func Files(nodes []*Node) []string {
	var files []string
	for _, n := range nodes {
		if n.IsDirectory {
			files = append(files, Files(n.Children)...)
		} else {
			files = append(files, n.Path)
		}
	}
	return files
}

// within reports whether path lies strictly below dir.
func within(path, dir string) bool {
	if dir == "" {
		return false
	}
	if strings.HasSuffix(dir, string(filepath.Separator)) {
		return strings.HasPrefix(path, dir) && len(path) > len(dir)
	}
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}
