package source

import (
	"strings"
	"testing"

	"github.com/dgallion1/docnav/internal/navtree"
	"github.com/google/go-cmp/cmp"
)

const savedSidebar = `<html><head>
<title>SwiftUI</title>
<link rel="canonical" href="https://developer.apple.com/documentation/swiftui">
</head><body>
<nav class="navigator"><div class="card-body">
  <div class="navigator-card-item is-group" data-nesting-index="0"><h3>Essentials</h3></div>
  <div class="navigator-card-item" data-nesting-index="1">
    <a href="/documentation/swiftui/app-organization"><span class="highlight">App organization</span></a>
  </div>
  <div class="navigator-card-item is-group" data-nesting-index="1">
    <button aria-expanded="false"><svg class="inline-chevron-right-icon"></svg></button>
    <a href="/documentation/swiftui/scenes"><span class="highlight">Scenes</span></a>
  </div>
  <div class="navigator-card-item" data-nesting-index="0" style="display: none"><a href="/hidden">Hidden</a></div>
</div></nav>
</body></html>`

func TestHTMLParser_NavigatorCards(t *testing.T) {
	p := &HTMLParser{}
	listing, err := p.Parse(strings.NewReader(savedSidebar), "sidebar.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if listing.Title != "SwiftUI" {
		t.Errorf("expected title %q, got %q", "SwiftUI", listing.Title)
	}
	base := "https://developer.apple.com/documentation/swiftui"
	if listing.URL != base {
		t.Errorf("expected canonical url, got %q", listing.URL)
	}

	want := []navtree.NavItem{
		{Title: "Essentials", IdentityKey: base + "#essentials", Depth: 0, IsGroup: true},
		{Title: "App organization", IdentityKey: base + "/app-organization", Depth: 1},
		{Title: "Scenes", IdentityKey: base + "/scenes", Depth: 1, IsGroup: true},
	}
	if diff := cmp.Diff(want, listing.Items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}

	wantCollapsed := map[string]bool{base + "/scenes": true}
	if diff := cmp.Diff(wantCollapsed, listing.Collapsed); diff != "" {
		t.Errorf("collapsed mismatch (-want +got):\n%s", diff)
	}
}

func TestHTMLParser_NestedNavLists(t *testing.T) {
	input := `<html><body>
<nav><ul>
  <li><a href="intro.html">Introduction</a></li>
  <li>Guides
    <ul><li><a href="setup.html">Setup</a></li></ul>
  </li>
</ul></nav>
</body></html>`

	p := &HTMLParser{}
	listing, err := p.Parse(strings.NewReader(input), "site.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listing.Title != "site" {
		t.Errorf("expected title from filename, got %q", listing.Title)
	}

	want := []navtree.NavItem{
		{Title: "Introduction", IdentityKey: "intro.html", Depth: 0},
		{Title: "Guides", IdentityKey: "site.html#guides", Depth: 0, IsGroup: true},
		{Title: "Setup", IdentityKey: "setup.html", Depth: 1},
	}
	if diff := cmp.Diff(want, listing.Items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestHTMLParser_NoNavigation(t *testing.T) {
	p := &HTMLParser{}
	_, err := p.Parse(strings.NewReader("<html><body><p>hello</p></body></html>"), "page.html")
	if err == nil {
		t.Fatal("expected error for page without navigation")
	}
}
