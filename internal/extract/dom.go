package extract

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoDocument is returned when there is no page to read from.
var ErrNoDocument = errors.New("no document")

// Document is a parsed, read-only page snapshot.
type Document struct {
	Root *html.Node
	URL  string
}

// Parse reads an HTML document. pageURL is the address the snapshot was taken from.
func Parse(r io.Reader, pageURL string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Document{Root: root, URL: pageURL}, nil
}

// ParseString is Parse over an in-memory snapshot.
func ParseString(src, pageURL string) (*Document, error) {
	return Parse(strings.NewReader(src), pageURL)
}

// matcher selects element nodes.
type matcher func(*html.Node) bool

func tag(a atom.Atom) matcher {
	return func(n *html.Node) bool { return n.DataAtom == a }
}

func class(names ...string) matcher {
	return func(n *html.Node) bool {
		for _, name := range names {
			if !hasClass(n, name) {
				return false
			}
		}
		return true
	}
}

func attrIs(key, val string) matcher {
	return func(n *html.Node) bool {
		v, ok := attr(n, key)
		return ok && v == val
	}
}

func attrHas(key, sub string) matcher {
	return func(n *html.Node) bool {
		v, ok := attr(n, key)
		return ok && strings.Contains(v, sub)
	}
}

func id(val string) matcher { return attrIs("id", val) }

func all(ms ...matcher) matcher {
	return func(n *html.Node) bool {
		for _, m := range ms {
			if !m(n) {
				return false
			}
		}
		return true
	}
}

func anyOf(ms ...matcher) matcher {
	return func(n *html.Node) bool {
		for _, m := range ms {
			if m(n) {
				return true
			}
		}
		return false
	}
}

func attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func attrOr(n *html.Node, key string) string {
	v, _ := attr(n, key)
	return strings.TrimSpace(v)
}

func hasClass(n *html.Node, name string) bool {
	v, ok := attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == name {
			return true
		}
	}
	return false
}

// find returns the first descendant element of n matching m (depth first).
func find(n *html.Node, m matcher) *html.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && m(c) {
			return c
		}
		if found := find(c, m); found != nil {
			return found
		}
	}
	return nil
}

// findPath applies matchers as nested descendant steps, like "a b c".
func findPath(n *html.Node, steps ...matcher) *html.Node {
	cur := n
	for _, step := range steps {
		cur = find(cur, step)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// findAll returns every descendant element of n matching m, in document order.
func findAll(n *html.Node, m matcher) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && m(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return out
}

// children returns the direct element children of n matching m.
func children(n *html.Node, m matcher) []*html.Node {
	var out []*html.Node
	if n == nil {
		return out
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && m(c) {
			out = append(out, c)
		}
	}
	return out
}

// closest walks up from n to the nearest ancestor matching m.
func closest(n *html.Node, m matcher) *html.Node {
	for p := n; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && m(p) {
			return p
		}
	}
	return nil
}

// text returns the whitespace-collapsed text of n. Screen-reader duplicates
// (visually-hidden) are skipped.
func text(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		if p.Type == html.TextNode {
			b.WriteString(p.Data)
			b.WriteByte(' ')
			return
		}
		if p.Type == html.ElementNode {
			if hasClass(p, "visually-hidden") || p.DataAtom == atom.Script || p.DataAtom == atom.Style {
				return
			}
			if p.DataAtom == atom.Br {
				b.WriteByte('\n')
			}
		}
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return collapse(b.String())
}

// visibleSpans returns the texts of aria-hidden spans under n, the pattern
// LinkedIn uses for the visible copy of each label.
func visibleSpans(n *html.Node) []string {
	var out []string
	for _, s := range findAll(n, all(tag(atom.Span), attrIs("aria-hidden", "true"))) {
		if t := text(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func collapse(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if f := strings.Join(strings.Fields(l), " "); f != "" {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, "\n")
}

// metaContent returns <meta property|name=key content=...>.
func metaContent(doc *Document, key string) string {
	m := find(doc.Root, all(tag(atom.Meta), anyOf(attrIs("property", key), attrIs("name", key))))
	return attrOr(m, "content")
}
