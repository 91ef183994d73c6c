package navtree

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Slug lowercases a title and replaces whitespace runs with "-".
func Slug(title string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "-")
}

// FragmentKey synthesizes an identity key for an item with no link of its
// own, e.g. "https://example.com/documentation/swiftui#app-structure".
func FragmentKey(base, title string) string {
	base = strings.TrimSuffix(base, "#")
	if i := strings.IndexByte(base, '#'); i >= 0 {
		base = base[:i]
	}
	return base + "#" + Slug(title)
}

// PathKey is FragmentKey for sources where sibling titles repeat across
// sections. The fragment is the slug path of all ancestors, joined by "/".
func PathKey(base string, titles []string) string {
	slugs := make([]string, 0, len(titles))
	for _, t := range titles {
		if s := Slug(t); s != "" {
			slugs = append(slugs, s)
		}
	}
	return strings.TrimSuffix(base, "#") + "#" + strings.Join(slugs, "/")
}
