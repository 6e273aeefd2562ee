// Package versions finds the versions of a package scattered through a
// dependency tree and resolves which of them conflict.
package versions

import (
	"strings"

	"depdoctor/internal/deptree"
)

// Record is one occurrence of an artifact in the tree.
type Record struct {
	Version string `json:"version"`
	Depth   int    `json:"depth"`
}

// Collection maps artifact ids to their records. Artifacts keep the order in
// which the traversal first met them, and records keep traversal order.
type Collection struct {
	order []string
	byID  map[string][]Record
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{byID: make(map[string][]Record)}
}

// Add appends a record under artifactID. Duplicates are kept.
func (c *Collection) Add(artifactID string, r Record) {
	if _, ok := c.byID[artifactID]; !ok {
		c.order = append(c.order, artifactID)
	}
	c.byID[artifactID] = append(c.byID[artifactID], r)
}

// ArtifactIDs lists the collected artifact ids in first-seen order.
func (c *Collection) ArtifactIDs() []string {
	return append([]string(nil), c.order...)
}

// Records returns the records for artifactID.
func (c *Collection) Records(artifactID string) []Record {
	return c.byID[artifactID]
}

// Len is the number of distinct artifact ids.
func (c *Collection) Len() int { return len(c.order) }

// Collect walks root and records (version, depth) for every node whose group
// or artifact id contains pkg, compared case-insensitively. Children are
// visited whether or not their parent matched.
func Collect(root *deptree.Node, pkg string) *Collection {
	c := NewCollection()
	needle := strings.ToLower(pkg)
	root.Walk(func(n *deptree.Node, depth int) {
		if Matches(n, needle) {
			c.Add(n.ArtifactID, Record{Version: n.Version, Depth: depth})
		}
	})
	return c
}

// Matches reports whether a lower-cased needle occurs in n's group or
// artifact id.
func Matches(n *deptree.Node, needle string) bool {
	return strings.Contains(strings.ToLower(n.GroupID), needle) ||
		strings.Contains(strings.ToLower(n.ArtifactID), needle)
}
