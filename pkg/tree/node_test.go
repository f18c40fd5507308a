package tree

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *Node {
	root := NewDir("/r")
	src := NewDir("/r/src")
	src.InsertChild(NewFile("/r/src/b.ts"))
	src.InsertChild(NewFile("/r/src/a.ts"))
	root.InsertChild(NewFile("/r/README.md"))
	root.InsertChild(src)
	return root
}

func TestInsertChild_OrdersDirectoriesFirstThenByName(t *testing.T) {
	root := sampleTree()
	assert.Equal(t, "src/[a.ts b.ts] README.md", shape(root.Children))

	assert.True(t, root.InsertChild(NewDir("/r/lib")))
	assert.True(t, root.InsertChild(NewFile("/r/go.mod")))
	assert.True(t, root.InsertChild(NewDir("/r/zz")))
	assert.Equal(t, "lib/[] src/[a.ts b.ts] zz/[] README.md go.mod", shape(root.Children))
}

func TestInsertChild_Idempotent(t *testing.T) {
	root := sampleTree()
	before := shape(root.Children)

	assert.False(t, root.InsertChild(NewFile("/r/README.md")))
	assert.Equal(t, before, shape(root.Children))
}

func TestFindAndRemove(t *testing.T) {
	root := sampleTree()

	found := root.Find(filepath.FromSlash("/r/src/a.ts"))
	require.NotNil(t, found)
	assert.Equal(t, "a.ts", found.Name)
	assert.Nil(t, root.Find("/r/src/missing.ts"))
	assert.Nil(t, root.Find("/other/src"))
	assert.Same(t, root, root.Find("/r"))

	src := root.Child("src")
	removed := src.RemoveChild("a.ts")
	require.NotNil(t, removed)
	assert.Nil(t, src.RemoveChild("a.ts"))
	assert.Equal(t, "src/[b.ts] README.md", shape(root.Children))
}

func TestWithin(t *testing.T) {
	assert.True(t, within("/r/src/a", "/r/src"))
	assert.False(t, within("/r/srcx/a", "/r/src"))
	assert.False(t, within("/r/src", "/r/src"))
	assert.True(t, within("/a", "/"))
}

func TestCountFlattenFiles(t *testing.T) {
	root := sampleTree()
	assert.Equal(t, 4, Count(root.Children))
	assert.Len(t, Flatten(root.Children), 4)
	assert.Equal(t, []string{"/r/src/a.ts", "/r/src/b.ts", "/r/README.md"}, Files(root.Children))
}

func TestClone_IsDeep(t *testing.T) {
	root := sampleTree()
	clone := CloneAll(root.Children)

	root.Child("src").RemoveChild("a.ts")
	assert.Equal(t, "src/[a.ts b.ts] README.md", shape(clone))
}

func TestNodeJSON(t *testing.T) {
	nodes := []*Node{NewDir("/r/empty"), NewFile("/r/a.txt")}

	data, err := json.Marshal(nodes)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"name":"empty","path":"/r/empty","isDirectory":true,"children":[]},
		{"name":"a.txt","path":"/r/a.txt","isDirectory":false}
	]`, string(data))

	var decoded []*Node
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, nodes, decoded)
}

func TestRenderString(t *testing.T) {
	root := sampleTree()
	root.Child("src").InsertChild(NewDir("/r/src/util"))

	want := "project/\n" +
		"├── src/\n" +
		"│   ├── util/\n" +
		"│   ├── a.ts\n" +
		"│   └── b.ts\n" +
		"└── README.md\n"
	assert.Equal(t, want, RenderString("project", root.Children))
}
