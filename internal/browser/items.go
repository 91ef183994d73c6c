package browser

import (
	"strings"

	"github.com/dgallion1/docnav/internal/navtree"
)

// rawItem is one rendered card as reported by extractScript.
type rawItem struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Level   int    `json:"level"`
	IsGroup bool   `json:"isGroup"`
}

// toNavItems converts rendered cards to items. Cards without a link are
// keyed by a fragment of rootURL; cards without a title are dropped.
func toNavItems(rows []rawItem, rootURL string) []navtree.NavItem {
	items := make([]navtree.NavItem, 0, len(rows))
	for _, r := range rows {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			continue
		}
		key := strings.TrimSpace(r.URL)
		if key == "" {
			key = navtree.FragmentKey(rootURL, title)
		}
		depth := r.Level
		if depth < 0 {
			depth = 0
		}
		items = append(items, navtree.NavItem{
			Title:       title,
			IdentityKey: key,
			Depth:       depth,
			IsGroup:     r.IsGroup,
		})
	}
	return items
}
