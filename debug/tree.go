// Package debug renders a reactor effect tree as ASCII art, for dumping
// the live effect/parent-child hierarchy during development.
//
// Grounded on pumped-fn-pumped-go's extensions/graph_debug.go, which
// builds the same kind of dependency-graph visualization with
// github.com/m1gwings/treedrawer; this package borrows that library and
// its recursive tree.AddChild-based construction, simplified from graph_debug's
// resolved/failed/pending executor states down to reactor's clean/dirty/
// maybe-dirty status vocabulary.
package debug

import (
	"fmt"

	"github.com/m1gwings/treedrawer/tree"

	"github.com/corebound/reactor"
	"github.com/corebound/reactor/internal"
)

// Tree renders e's effect subtree (spec §4.3's parent/child effect tree)
// as an ASCII-art tree, each node labeled with its name (or pointer
// identity if unnamed), status, and dependency count.
func Tree(e *reactor.Effect) string {
	root := build(e.Snapshot())
	return root.String()
}

func build(n *internal.DebugNode) *tree.Tree {
	label := fmt.Sprintf("%s [%s, %d deps]", n.Label, n.Status, n.DepCount)
	t := tree.NewTree(tree.NodeString(label))
	for _, child := range n.Children {
		childTree := build(child)
		addAsChild(t, childTree)
	}
	return t
}

func addAsChild(parent *tree.Tree, child *tree.Tree) *tree.Tree {
	newChild := parent.AddChild(child.Val())
	for _, grandchild := range child.Children() {
		addAsChild(newChild, grandchild)
	}
	return newChild
}
