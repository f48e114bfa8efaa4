package tree

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNode(parent *Node) *Node {
	n := &Node{ID: uuid.New()}
	if parent != nil {
		id := parent.ID
		n.ParentID = &id
	}
	return n
}

func TestRebuildSingleRoot(t *testing.T) {
	root := newNode(nil)
	require.NoError(t, Rebuild([]*Node{root}))

	assert.Equal(t, 0, root.Depth)
	assert.Equal(t, "0001", root.Path)
	assert.Equal(t, 1, root.Left)
	assert.Equal(t, 2, root.Right)
}

func TestRebuildForest(t *testing.T) {
	// a            b
	// ├── a1       └── b1
	// │   └── a1x
	// └── a2
	a := newNode(nil)
	a1 := newNode(a)
	a1x := newNode(a1)
	a2 := newNode(a)
	b := newNode(nil)
	b1 := newNode(b)

	nodes := []*Node{a, a1, a1x, a2, b, b1}
	require.NoError(t, Rebuild(nodes))

	assert.Equal(t, []int{0, 1, 2, 1, 0, 1},
		[]int{a.Depth, a1.Depth, a1x.Depth, a2.Depth, b.Depth, b1.Depth})

	assert.Equal(t, "0001", a.Path)
	assert.Equal(t, "0001.0001", a1.Path)
	assert.Equal(t, "0001.0001.0001", a1x.Path)
	assert.Equal(t, "0001.0002", a2.Path)
	assert.Equal(t, "0002", b.Path)
	assert.Equal(t, "0002.0001", b1.Path)

	// Interval containment matches ancestry.
	assert.True(t, IsDescendant(a, a1x))
	assert.True(t, IsDescendant(a1, a1x))
	assert.False(t, IsDescendant(a2, a1x))
	assert.False(t, IsDescendant(b, a1))
	assert.False(t, IsDescendant(a1x, a))

	// Leaf intervals are tight, each node's interval nests in its parent's.
	assert.Equal(t, a1x.Left+1, a1x.Right)
	assert.Greater(t, a1x.Left, a1.Left)
	assert.Less(t, a1x.Right, a1.Right)

	// Left values in input pre-order are strictly increasing for one tree.
	assert.Less(t, a.Left, a1.Left)
	assert.Less(t, a1.Left, a1x.Left)
	assert.Less(t, a1x.Left, a2.Left)
}

func TestRebuildPathSortIsPreorder(t *testing.T) {
	// Eleven children force two-digit positions; zero padding must keep the
	// path sort aligned with pre-order.
	root := newNode(nil)
	nodes := []*Node{root}
	for i := 0; i < 11; i++ {
		nodes = append(nodes, newNode(root))
	}
	grandchild := newNode(nodes[1])
	nodes = append(nodes, grandchild)
	require.NoError(t, Rebuild(nodes))

	// The grandchild sorts directly after its parent, before the parent's
	// next sibling.
	assert.Greater(t, grandchild.Path, nodes[1].Path)
	assert.Less(t, grandchild.Path, nodes[2].Path)
}

func TestRebuildSiblingOrderFollowsInput(t *testing.T) {
	root := newNode(nil)
	first := newNode(root)
	second := newNode(root)

	require.NoError(t, Rebuild([]*Node{root, first, second}))
	assert.Less(t, first.Left, second.Left)

	// Reversing the input order swaps the siblings.
	require.NoError(t, Rebuild([]*Node{root, second, first}))
	assert.Less(t, second.Left, first.Left)
}

func TestRebuildCycleDetected(t *testing.T) {
	a := newNode(nil)
	b := newNode(a)
	// Close the loop.
	bID := b.ID
	a.ParentID = &bID

	a.Depth, a.Path = 7, "unchanged"
	err := Rebuild([]*Node{a, b})
	require.ErrorIs(t, err, ErrCycle)

	// Nothing was rewritten.
	assert.Equal(t, 7, a.Depth)
	assert.Equal(t, "unchanged", a.Path)
}

func TestRebuildMissingParentIsRoot(t *testing.T) {
	ghost := uuid.New()
	orphan := &Node{ID: uuid.New(), ParentID: &ghost}

	require.NoError(t, Rebuild([]*Node{orphan}))
	assert.Equal(t, 0, orphan.Depth)
}

func TestAncestors(t *testing.T) {
	a := newNode(nil)
	a1 := newNode(a)
	a1x := newNode(a1)
	b := newNode(nil)
	nodes := []*Node{a, a1, a1x, b}
	require.NoError(t, Rebuild(nodes))

	chain := Ancestors(nodes, a1x)
	require.Len(t, chain, 2)
	assert.Equal(t, a.ID, chain[0].ID)
	assert.Equal(t, a1.ID, chain[1].ID)

	assert.Empty(t, Ancestors(nodes, a))
}

func TestWouldCycle(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	parents := map[uuid.UUID]*uuid.UUID{
		a: nil,
		b: &a,
		c: &b,
	}

	// Moving a under its grandchild closes a loop.
	assert.True(t, WouldCycle(parents, a, &c))
	assert.True(t, WouldCycle(parents, a, &b))
	assert.True(t, WouldCycle(parents, b, &b))

	// Moving down-tree nodes around is fine.
	assert.False(t, WouldCycle(parents, c, &a))
	assert.False(t, WouldCycle(parents, b, nil))
}
