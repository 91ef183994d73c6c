package source

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docnav/internal/navtree"
)

// ErrNoNavigation is returned when a document contains nothing that can be
// read as navigation.
var ErrNoNavigation = errors.New("no navigation found")

// Parser reads a document into a flat navigation listing.
type Parser interface {
	Parse(r io.Reader, filename string) (*navtree.Listing, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

func baseTitle(filename string) string {
	name := filepath.Base(filename)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// outline accumulates items from sources that express nesting as a level
// (heading rank, indentation, list depth) rather than as a depth. An entry
// encloses every later entry with a higher level; an entry that receives a
// child becomes a group.
type outline struct {
	base  string
	items []navtree.NavItem
	stack []openEntry
}

type openEntry struct {
	level int
	idx   int
	title string
}

func newOutline(base string) *outline {
	return &outline{base: base}
}

// add appends an entry at level. href may be empty, in which case the key
// is synthesized from the titles of the enclosing entries.
func (o *outline) add(level int, title, href string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return
	}
	for len(o.stack) > 0 && o.stack[len(o.stack)-1].level >= level {
		o.stack = o.stack[:len(o.stack)-1]
	}
	if len(o.stack) > 0 {
		o.items[o.stack[len(o.stack)-1].idx].IsGroup = true
	}

	key := resolveHref(o.base, href)
	if key == "" {
		titles := make([]string, 0, len(o.stack)+1)
		for _, e := range o.stack {
			titles = append(titles, e.title)
		}
		key = navtree.PathKey(o.base, append(titles, title))
	}

	o.items = append(o.items, navtree.NavItem{
		Title:       title,
		IdentityKey: key,
		Depth:       len(o.stack),
	})
	o.stack = append(o.stack, openEntry{level: level, idx: len(o.items) - 1, title: title})
}

func (o *outline) listing(title string) (*navtree.Listing, error) {
	if len(o.items) == 0 {
		return nil, ErrNoNavigation
	}
	return &navtree.Listing{
		Title: title,
		URL:   o.base,
		Items: o.items,
	}, nil
}

// resolveHref resolves href against base when base is an absolute URL.
// Fragment-only and javascript: links count as no link.
func resolveHref(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	b, err := url.Parse(base)
	if err != nil || !b.IsAbs() {
		return href
	}
	return b.ResolveReference(ref).String()
}
