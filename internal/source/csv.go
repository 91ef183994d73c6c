package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/docnav/internal/navtree"
)

// CSVParser handles flat listings exported as CSV with the columns
// title, url, depth, is_group and an optional collapsed. A header row is
// detected by its first cell reading "title".
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*navtree.Listing, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) > 0 && strings.EqualFold(strings.TrimSpace(records[0][0]), "title") {
		records = records[1:]
	}

	listing := &navtree.Listing{
		Title:     baseTitle(filename),
		URL:       filename,
		Collapsed: make(map[string]bool),
	}
	for i, rec := range records {
		item, collapsed, err := csvItem(rec, filename)
		if err != nil {
			return nil, fmt.Errorf("parse csv: row %d: %w", i+1, err)
		}
		if item.Title == "" {
			continue
		}
		listing.Items = append(listing.Items, item)
		if collapsed {
			listing.Collapsed[item.IdentityKey] = true
		}
	}
	if len(listing.Items) == 0 {
		return nil, ErrNoNavigation
	}
	return listing, nil
}

func csvItem(rec []string, base string) (navtree.NavItem, bool, error) {
	field := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	item := navtree.NavItem{Title: field(0)}
	item.IdentityKey = field(1)
	if item.IdentityKey == "" {
		item.IdentityKey = navtree.FragmentKey(base, item.Title)
	}

	if d := field(2); d != "" {
		depth, err := strconv.Atoi(d)
		if err != nil {
			return item, false, fmt.Errorf("depth %q: %w", d, err)
		}
		item.Depth = depth
	}
	item.IsGroup = parseFlag(field(3))
	return item, item.IsGroup && parseFlag(field(4)), nil
}

func parseFlag(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return strings.EqualFold(s, "yes") || strings.EqualFold(s, "y")
	}
	return b
}
