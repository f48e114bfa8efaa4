// Package tree maintains the derived hierarchy index for a forest of nodes:
// depth, materialized path and nested-set left/right numbering, computed from
// parent links alone. Path segments are four digits, so pre-order path sorting
// holds up to 9999 children per node (and 9999 roots).
//
// The index is recomputed for the whole forest on every structural change.
// At the record counts of an administrative tool this is cheap, and it keeps
// the invariants trivially true after any insert, move or delete; callers run
// the rebuild inside the same transaction as the triggering mutation so no
// stale derived fields are ever observable.
package tree

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrCycle is returned when the parent links do not form a forest.
var ErrCycle = errors.New("tree: parent links contain a cycle")

// Node carries the hierarchy fields of one record. ID and ParentID are
// input; Depth, Path, Left and Right are overwritten by Rebuild.
type Node struct {
	ID       uuid.UUID
	ParentID *uuid.UUID
	Depth    int
	Path     string
	Left     int
	Right    int
}

// Rebuild recomputes Depth, Path, Left and Right for every node in place.
//
// Sibling order follows the order nodes appear in the input slice, so the
// caller controls it (position, then insertion order). A node whose parent
// is not present in the slice is treated as a root. Returns ErrCycle if any
// node is unreachable from a root, leaving the input unmodified in that case.
func Rebuild(nodes []*Node) error {
	present := make(map[uuid.UUID]bool, len(nodes))
	for _, n := range nodes {
		present[n.ID] = true
	}

	children := make(map[uuid.UUID][]*Node)
	var roots []*Node
	for _, n := range nodes {
		if n.ParentID == nil || !present[*n.ParentID] {
			roots = append(roots, n)
			continue
		}
		children[*n.ParentID] = append(children[*n.ParentID], n)
	}

	// A node not reachable from any root sits on a cycle.
	reachable := 0
	var count func(n *Node)
	count = func(n *Node) {
		reachable++
		for _, c := range children[n.ID] {
			count(c)
		}
	}
	for _, r := range roots {
		count(r)
	}
	if reachable != len(nodes) {
		return ErrCycle
	}

	counter := 1
	var walk func(n *Node, depth int, prefix string, position int)
	walk = func(n *Node, depth int, prefix string, position int) {
		n.Depth = depth
		n.Path = childPath(prefix, position)
		n.Left = counter
		counter++
		for i, c := range children[n.ID] {
			walk(c, depth+1, n.Path, i+1)
		}
		n.Right = counter
		counter++
	}
	for i, r := range roots {
		walk(r, 0, "", i+1)
	}
	return nil
}

// childPath extends a parent path with a sibling position segment. Segments
// are zero-padded so that plain string comparison of paths matches pre-order:
// the separator '.' sorts before any digit, keeping a parent immediately
// ahead of its descendants. Four digits bound a node at 9999 children; past
// that, segment text overflows the pad and path order diverges from
// pre-order.
func childPath(parentPath string, position int) string {
	seg := fmt.Sprintf("%04d", position)
	if parentPath == "" {
		return seg
	}
	return parentPath + "." + seg
}

// IsDescendant reports whether b lies strictly inside a's nested-set
// interval, i.e. b is a descendant of a.
func IsDescendant(a, b *Node) bool {
	return a.Left < b.Left && b.Right < a.Right
}

// Ancestors returns the chain of b's ancestors in root-to-node order,
// selected by strict interval containment over the given pre-order listing.
func Ancestors(preorder []*Node, b *Node) []*Node {
	var out []*Node
	for _, n := range preorder {
		if IsDescendant(n, b) {
			out = append(out, n)
		}
	}
	return out
}

// WouldCycle reports whether re-parenting node under candidate would make
// node its own ancestor. It walks the candidate's ancestor chain through the
// supplied parent map; a nil candidate (detach to root) never cycles.
func WouldCycle(parents map[uuid.UUID]*uuid.UUID, nodeID uuid.UUID, candidate *uuid.UUID) bool {
	for cur := candidate; cur != nil; cur = parents[*cur] {
		if *cur == nodeID {
			return true
		}
	}
	return false
}
