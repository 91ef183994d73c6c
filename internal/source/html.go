package source

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dgallion1/docnav/internal/navtree"
	"golang.org/x/net/html"
)

// Selectors for a saved documentation navigator sidebar.
const (
	cardSelector    = ".navigator-card-item"
	titleSelector   = ".highlight"
	headerSelector  = "h3"
	nestingAttr     = "data-nesting-index"
	groupClass      = "is-group"
	toggleSelector  = "[aria-expanded]"
	chevronSelector = "svg.inline-chevron-right-icon"
)

// HTMLParser handles HTML files. Saved navigator sidebars are read card by
// card; any other page falls back to its nested <nav> lists.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*navtree.Listing, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	listing := &navtree.Listing{
		Title: baseTitle(filename),
		URL:   filename,
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		listing.Title = t
	}
	if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok && href != "" {
		listing.URL = href
	}

	if cards := doc.Find(cardSelector); cards.Length() > 0 {
		listing.Items, listing.Collapsed = parseCards(cards, listing.URL)
	} else {
		listing.Items = parseNavLists(doc, listing.URL)
	}
	if len(listing.Items) == 0 {
		return nil, ErrNoNavigation
	}
	return listing, nil
}

func parseCards(cards *goquery.Selection, base string) ([]navtree.NavItem, map[string]bool) {
	var items []navtree.NavItem
	collapsed := make(map[string]bool)

	cards.Each(func(_ int, card *goquery.Selection) {
		if hidden(card) {
			return
		}
		label := card.Find("a").First()
		isLink := label.Length() > 0
		if !isLink {
			label = card.Find(headerSelector).First()
		}
		title := strings.TrimSpace(label.Find(titleSelector).First().Text())
		if title == "" {
			title = strings.TrimSpace(label.Text())
		}
		if title == "" {
			return
		}

		var key string
		if isLink {
			key = resolveHref(base, label.AttrOr("href", ""))
		}
		if key == "" {
			key = navtree.FragmentKey(base, title)
		}

		depth, _ := strconv.Atoi(card.AttrOr(nestingAttr, "0"))
		item := navtree.NavItem{
			Title:       title,
			IdentityKey: key,
			Depth:       depth,
			IsGroup:     card.HasClass(groupClass),
		}
		if item.IsGroup && isCollapsed(card) {
			collapsed[key] = true
		}
		items = append(items, item)
	})
	return items, collapsed
}

// isCollapsed reads the toggle state. Without an aria-expanded attribute a
// chevron alone marks the card as collapsed.
func isCollapsed(card *goquery.Selection) bool {
	if v, ok := card.Find(toggleSelector).First().Attr("aria-expanded"); ok {
		return v == "false"
	}
	return card.Find(chevronSelector).Length() > 0
}

func hidden(s *goquery.Selection) bool {
	if _, ok := s.Attr("hidden"); ok {
		return true
	}
	style := strings.ReplaceAll(strings.ToLower(s.AttrOr("style", "")), " ", "")
	return strings.Contains(style, "display:none")
}

func parseNavLists(doc *goquery.Document, base string) []navtree.NavItem {
	container := doc.Find("nav").First()
	if container.Length() == 0 {
		container = doc.Find("body").First()
	}

	o := newOutline(base)
	container.Find("ul, ol").Each(func(_ int, list *goquery.Selection) {
		// Only start from lists not nested inside another list item of the
		// same container; nested ones are reached by walkList.
		if list.ParentsUntilSelection(container).Filter("li").Length() > 0 {
			return
		}
		walkList(o, list, 0)
	})
	return o.items
}

func walkList(o *outline, list *goquery.Selection, level int) {
	list.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		link := li.ChildrenFiltered("a").First()
		title := strings.TrimSpace(link.Text())
		if title == "" {
			title = ownText(li.Nodes[0])
		}
		o.add(level, title, link.AttrOr("href", ""))
		li.ChildrenFiltered("ul, ol").Each(func(_ int, sub *goquery.Selection) {
			walkList(o, sub, level+1)
		})
	})
}

// ownText returns the text of n excluding nested lists.
func ownText(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
				continue
			}
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}
