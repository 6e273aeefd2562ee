// Package deptree obtains a project's resolved dependency tree from Maven's
// JSON tree output.
package deptree

import (
	"encoding/json"
	"strings"
)

// Node is one artifact in the resolved tree. The root is the project itself.
type Node struct {
	GroupID    string   `json:"groupId"`
	ArtifactID string   `json:"artifactId"`
	Version    string   `json:"version"`
	Type       string   `json:"type,omitempty"`
	Scope      string   `json:"scope,omitempty"`
	Classifier string   `json:"classifier,omitempty"`
	Optional   FlexBool `json:"optional,omitempty"`
	Children   []*Node  `json:"children,omitempty"`
}

// Coordinates renders groupId:artifactId:version.
func (n *Node) Coordinates() string {
	return n.GroupID + ":" + n.ArtifactID + ":" + n.Version
}

// Walk visits n and its descendants depth-first in document order. The root
// is at depth 0.
func (n *Node) Walk(fn func(node *Node, depth int)) {
	if n == nil {
		return
	}
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(node *Node, depth int), depth int) {
	fn(n, depth)
	for _, c := range n.Children {
		if c != nil {
			c.walk(fn, depth+1)
		}
	}
}

// Size is the number of nodes in the tree.
func (n *Node) Size() int {
	count := 0
	n.Walk(func(*Node, int) { count++ })
	return count
}

// FlexBool decodes both JSON booleans and the quoted "true"/"false" strings
// Maven writes.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = FlexBool(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*b = FlexBool(strings.EqualFold(strings.TrimSpace(s), "true"))
	return nil
}
