package navtree

import "strings"

// Predicate decides whether an extracted item belongs in the result.
type Predicate func(NavItem) bool

// AdmitAll keeps every item.
func AdmitAll(NavItem) bool { return true }

// ScopeFilter keeps items that belong to one documentation section.
type ScopeFilter struct {
	RootTitle string // Title of the section root, always admitted
	Scope     string // Path fragment identifying the section, e.g. "/swiftui"
	DocPrefix string // Path fragment marking documentation links, e.g. "/documentation/"
}

// Admit reports whether item is inside the scope. Groups, the root title,
// keys mentioning the scope and links outside the documentation tree are
// admitted; documentation links of other sections are dropped.
func (f ScopeFilter) Admit(item NavItem) bool {
	if item.IsGroup {
		return true
	}
	if f.RootTitle != "" && item.Title == f.RootTitle {
		return true
	}
	key := strings.ToLower(item.IdentityKey)
	if f.Scope != "" && strings.Contains(key, strings.ToLower(f.Scope)) {
		return true
	}
	if f.DocPrefix == "" {
		return f.Scope == ""
	}
	return !strings.Contains(key, strings.ToLower(f.DocPrefix))
}

// Predicate returns f.Admit as a Predicate.
func (f ScopeFilter) Predicate() Predicate {
	return f.Admit
}
