package navtree

// NavItem is one row of a navigation list as seen in a single snapshot.
type NavItem struct {
	Title       string // Display text
	IdentityKey string // URL, or a synthesized fragment for link-less group headers
	Depth       int    // Nesting level, 0 = top level
	IsGroup     bool   // Item can contain children
}

// TreeNode is a node of the rebuilt navigation tree.
type TreeNode struct {
	Title    string      `json:"title"`
	URL      string      `json:"url"`
	Children []*TreeNode `json:"children"`
}

// Listing is a complete flat navigation list read from a static document.
type Listing struct {
	Title string    // Root title
	URL   string    // Root URL, also the base for synthesized keys
	Items []NavItem // Full list in visual order

	// Collapsed holds identity keys of groups that start collapsed.
	Collapsed map[string]bool
}

func newNode(title, url string) *TreeNode {
	return &TreeNode{Title: title, URL: url, Children: []*TreeNode{}}
}
