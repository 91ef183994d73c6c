package navtree

import "testing"

func TestScopeFilter_Admit(t *testing.T) {
	f := ScopeFilter{
		RootTitle: "SwiftUI",
		Scope:     "/swiftui",
		DocPrefix: "/documentation/",
	}

	tests := []struct {
		name string
		item NavItem
		want bool
	}{
		{"in scope link", NavItem{Title: "View", IdentityKey: "https://developer.apple.com/documentation/swiftui/view"}, true},
		{"synthesized header", NavItem{Title: "Essentials", IdentityKey: "https://developer.apple.com/documentation/swiftui#essentials"}, true},
		{"other technology", NavItem{Title: "UIView", IdentityKey: "https://developer.apple.com/documentation/uikit/uiview"}, false},
		{"other technology group", NavItem{Title: "UIKit", IdentityKey: "https://developer.apple.com/documentation/uikit", IsGroup: true}, true},
		{"root title", NavItem{Title: "SwiftUI", IdentityKey: "https://developer.apple.com/documentation/technologies"}, true},
		{"non documentation link", NavItem{Title: "Videos", IdentityKey: "https://developer.apple.com/videos/"}, true},
		{"case insensitive scope", NavItem{Title: "Text", IdentityKey: "https://developer.apple.com/documentation/SwiftUI/Text"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Admit(tt.item); got != tt.want {
				t.Errorf("Admit(%q) = %v, want %v", tt.item.IdentityKey, got, tt.want)
			}
		})
	}
}

func TestScopeFilter_EmptyAdmitsAll(t *testing.T) {
	var f ScopeFilter
	if !f.Admit(NavItem{Title: "x", IdentityKey: "https://example.com/documentation/x"}) {
		t.Error("expected zero filter to admit everything")
	}
}

func TestSlugAndKeys(t *testing.T) {
	if got := Slug("  App  Structure\tand Behavior "); got != "app-structure-and-behavior" {
		t.Errorf("unexpected slug %q", got)
	}
	if got := FragmentKey("https://x.dev/docs/swiftui", "Data and Storage"); got != "https://x.dev/docs/swiftui#data-and-storage" {
		t.Errorf("unexpected fragment key %q", got)
	}
	if got := FragmentKey("https://x.dev/docs/swiftui#old", "New"); got != "https://x.dev/docs/swiftui#new" {
		t.Errorf("expected existing fragment replaced, got %q", got)
	}
	if got := PathKey("guide.pdf", []string{"Part One", "", "Overview"}); got != "guide.pdf#part-one/overview" {
		t.Errorf("unexpected path key %q", got)
	}
}
