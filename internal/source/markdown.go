package source

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/docnav/internal/navtree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// listLevel offsets list nesting below every heading rank.
const listLevel = 100

// MarkdownParser handles Markdown tables of contents using goldmark.
// Headings open sections, nested link lists become entries beneath the
// current heading, and a paragraph of bare links becomes a run of entries.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*navtree.Listing, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	title := baseTitle(filename)
	named := false
	o := newOutline(filename)

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			if node.Level == 1 && len(o.items) == 0 && !named {
				// A leading H1 names the document rather than a section.
				if t := string(node.Text(src)); t != "" {
					title = t
					named = true
					continue
				}
			}
			href := ""
			if link := firstLink(node); link != nil {
				href = string(link.Destination)
			}
			o.add(node.Level, string(node.Text(src)), href)
		case *ast.List:
			walkMarkdownList(o, node, src, listLevel)
		case *ast.Paragraph:
			for _, link := range linkRun(node, src) {
				o.add(listLevel, string(link.Text(src)), string(link.Destination))
			}
		}
	}

	return o.listing(title)
}

func walkMarkdownList(o *outline, list *ast.List, src []byte, level int) {
	for li := list.FirstChild(); li != nil; li = li.NextSibling() {
		var title, href string
		for c := li.FirstChild(); c != nil; c = c.NextSibling() {
			switch block := c.(type) {
			case *ast.List:
				if title != "" {
					o.add(level, title, href)
					title = ""
				}
				walkMarkdownList(o, block, src, level+1)
			default:
				if title != "" {
					continue
				}
				if link := firstLink(block); link != nil {
					title = string(link.Text(src))
					href = string(link.Destination)
				} else {
					title = inlineText(block, src)
				}
			}
		}
		if title != "" {
			o.add(level, title, href)
		}
	}
}

// firstLink returns the first link among n's direct inline children.
func firstLink(n ast.Node) *ast.Link {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if link, ok := c.(*ast.Link); ok {
			return link
		}
	}
	return nil
}

// linkRun returns the links of a paragraph made of nothing but links.
// Prose that merely contains links yields nil.
func linkRun(n ast.Node, src []byte) []*ast.Link {
	var links []*ast.Link
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch inline := c.(type) {
		case *ast.Link:
			links = append(links, inline)
		case *ast.Text:
			if strings.TrimSpace(string(inline.Value(src))) != "" {
				return nil
			}
		default:
			return nil
		}
	}
	return links
}

// inlineText gets the text content of a goldmark block's inline children.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		} else {
			buf.WriteString(inlineText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
