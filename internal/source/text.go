package source

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/docnav/internal/navtree"
)

// tabWidth is the indentation a tab counts for.
const tabWidth = 4

var (
	bulletPrefix = regexp.MustCompile(`^(?:[-*+]|\d+[.)])\s+`)
	inlineLink   = regexp.MustCompile(`^\[(.+)\]\((\S+)\)$`)
)

// TextParser handles indented plain-text outlines. Each non-blank line is
// an entry; deeper indentation nests under the previous shallower line. A
// line may be written as [Title](url) to carry a link.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*navtree.Listing, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	o := newOutline(filename)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent, rest := splitIndent(line)
		rest = bulletPrefix.ReplaceAllString(rest, "")

		title, href := rest, ""
		if m := inlineLink.FindStringSubmatch(rest); m != nil {
			title, href = m[1], m[2]
		}
		o.add(indent, title, href)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return o.listing(baseTitle(filename))
}

func splitIndent(line string) (int, string) {
	width := 0
	for i, r := range line {
		switch r {
		case ' ':
			width++
		case '\t':
			width += tabWidth
		default:
			return width, line[i:]
		}
	}
	return width, ""
}
