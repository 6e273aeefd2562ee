package deptree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkDocumentOrderAndDepth(t *testing.T) {
	root := &Node{ArtifactID: "root", Children: []*Node{
		{ArtifactID: "a", Children: []*Node{{ArtifactID: "a1"}, {ArtifactID: "a2"}}},
		{ArtifactID: "b"},
	}}
	var seen []string
	var depths []int
	root.Walk(func(n *Node, depth int) {
		seen = append(seen, n.ArtifactID)
		depths = append(depths, depth)
	})
	assert.Equal(t, []string{"root", "a", "a1", "a2", "b"}, seen)
	assert.Equal(t, []int{0, 1, 2, 2, 1}, depths)
}

func TestWalkNilRoot(t *testing.T) {
	var root *Node
	called := false
	root.Walk(func(*Node, int) { called = true })
	assert.False(t, called)
}

func TestFlexBool(t *testing.T) {
	var n Node
	require.NoError(t, json.Unmarshal([]byte(`{"optional":"true"}`), &n))
	assert.True(t, bool(n.Optional))
	require.NoError(t, json.Unmarshal([]byte(`{"optional":false}`), &n))
	assert.False(t, bool(n.Optional))
	assert.Error(t, json.Unmarshal([]byte(`{"optional":3}`), &n))
}
