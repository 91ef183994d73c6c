package navtree

// BuildTree rebuilds a rooted tree from items in first-seen order.
//
// The root sits at depth -1. For each item the stack of open groups is
// unwound until its length is depth+1, the item is appended to the top of
// the stack, and groups are pushed so later deeper items can attach to them.
// A depth gap larger than one attaches to the deepest open group; a leaf is
// never pushed and therefore never receives children.
func BuildTree(rootTitle, rootURL string, items []NavItem) *TreeNode {
	root := newNode(rootTitle, rootURL)
	stack := []*TreeNode{root}

	for _, item := range items {
		depth := item.Depth
		if depth < 0 {
			depth = 0
		}
		for len(stack) > depth+1 {
			stack = stack[:len(stack)-1]
		}

		node := newNode(item.Title, item.IdentityKey)
		parent := stack[len(stack)-1]
		parent.Children = append(parent.Children, node)

		if item.IsGroup {
			stack = append(stack, node)
		}
	}

	return root
}

// Count returns the number of nodes in the tree, root included.
func Count(node *TreeNode) int {
	if node == nil {
		return 0
	}
	n := 1
	for _, c := range node.Children {
		n += Count(c)
	}
	return n
}
