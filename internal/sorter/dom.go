package sorter

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// findTable resolves selector against root. Supported selectors are "",
// "table", "#id" and ".class"; root itself is a candidate.
func findTable(root *html.Node, selector string) (*html.Node, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil root", ErrTableNotFound)
	}

	selector = strings.TrimSpace(selector)
	var match func(*html.Node) bool
	switch {
	case selector == "" || strings.EqualFold(selector, "table"):
		match = func(n *html.Node) bool { return n.DataAtom == atom.Table }
	case strings.HasPrefix(selector, "#") && len(selector) > 1:
		id := selector[1:]
		match = func(n *html.Node) bool {
			v, ok := getAttr(n, "id")
			return ok && v == id
		}
	case strings.HasPrefix(selector, ".") && len(selector) > 1:
		class := selector[1:]
		match = func(n *html.Node) bool { return hasClass(n, class) }
	default:
		return nil, fmt.Errorf("%w: unsupported selector %q", ErrTableNotFound, selector)
	}

	n := findFirst(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && match(n)
	})
	if n == nil {
		return nil, fmt.Errorf("%w: %q", ErrTableNotFound, selector)
	}
	if n.DataAtom != atom.Table {
		return nil, fmt.Errorf("%w: %q matched <%s>", ErrNotTable, selector, n.Data)
	}
	return n, nil
}

// findFirst returns the first node in document order (root included)
// satisfying match.
func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	if match(root) {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if n := findFirst(c, match); n != nil {
			return n
		}
	}
	return nil
}

// elementChildren returns the direct element children of n whose atom is
// one of atoms.
func elementChildren(n *html.Node, atoms ...atom.Atom) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && slices.Contains(atoms, c.DataAtom) {
			out = append(out, c)
		}
	}
	return out
}

// cellsOf returns the td/th cells of a row in order.
func cellsOf(row *html.Node) []*html.Node {
	return elementChildren(row, atom.Td, atom.Th)
}

// headerRow picks the row whose cells become the headers: the first row of
// the first non-empty thead, else the first row made only of th cells.
func headerRow(table *html.Node) *html.Node {
	for _, thead := range elementChildren(table, atom.Thead) {
		if rows := elementChildren(thead, atom.Tr); len(rows) > 0 {
			return rows[0]
		}
	}

	for c := table.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		var rows []*html.Node
		switch c.DataAtom {
		case atom.Tr:
			rows = []*html.Node{c}
		case atom.Tbody:
			rows = elementChildren(c, atom.Tr)
		default:
			continue
		}
		for _, row := range rows {
			if allHeaderCells(row) {
				return row
			}
		}
	}
	return nil
}

func allHeaderCells(row *html.Node) bool {
	cells := cellsOf(row)
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if c.DataAtom != atom.Th {
			return false
		}
	}
	return true
}

// section is one independently sorted group of rows.
type section struct {
	parent *html.Node
	rows   []*html.Node
}

// collectSections snapshots the table's sections. Each tbody is a section;
// rows placed directly under the table form one more. The header row is
// never part of a section.
func collectSections(table, header *html.Node) []*section {
	var out []*section
	direct := &section{parent: table}

	for c := table.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Tbody:
			sec := &section{parent: c}
			for _, row := range elementChildren(c, atom.Tr) {
				if row != header {
					sec.rows = append(sec.rows, row)
				}
			}
			out = append(out, sec)
		case atom.Tr:
			if c != header {
				direct.rows = append(direct.rows, c)
			}
		}
	}

	if len(direct.rows) > 0 {
		out = append(out, direct)
	}
	return out
}

// apply moves the section's rows into the sibling slots they occupied
// before the sort, in the given order. Non-row siblings keep their place.
func (s *section) apply(order []int) {
	sorted := make([]*html.Node, len(order))
	for i, idx := range order {
		sorted[i] = s.rows[idx]
	}

	member := make(map[*html.Node]bool, len(s.rows))
	for _, r := range s.rows {
		member[r] = true
	}

	var children []*html.Node
	for c := s.parent.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c)
	}
	for _, c := range children {
		s.parent.RemoveChild(c)
	}

	next := 0
	for _, c := range children {
		if member[c] {
			c = sorted[next]
			next++
		}
		s.parent.AppendChild(c)
	}
	s.rows = sorted
}

// textContent concatenates the text beneath n, skipping the subtrees
// rooted at any node in skip.
func textContent(n *html.Node, skip ...*html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n == nil || slices.Contains(skip, n) {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// contains reports whether n is ancestor or a descendant of it.
func contains(ancestor, n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == ancestor {
			return true
		}
	}
	return false
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	n.Attr = slices.DeleteFunc(n.Attr, func(a html.Attribute) bool {
		return a.Namespace == "" && a.Key == key
	})
}

func classes(n *html.Node) []string {
	v, _ := getAttr(n, "class")
	return strings.Fields(v)
}

func hasClass(n *html.Node, class string) bool {
	return slices.Contains(classes(n), class)
}

func addClass(n *html.Node, class string) {
	if class == "" || hasClass(n, class) {
		return
	}
	setAttr(n, "class", strings.Join(append(classes(n), class), " "))
}

func removeClass(n *html.Node, remove ...string) {
	cs := classes(n)
	kept := slices.DeleteFunc(slices.Clone(cs), func(c string) bool {
		return slices.Contains(remove, c)
	})
	if len(kept) == len(cs) {
		return
	}
	if len(kept) == 0 {
		removeAttr(n, "class")
		return
	}
	setAttr(n, "class", strings.Join(kept, " "))
}

// setText replaces all children of n with a single text node, or with
// nothing when text is empty.
func setText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}
