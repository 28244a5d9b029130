package sorter

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// headerRegistry owns the header cells and the sort state of one table.
type headerRegistry struct {
	row     *html.Node
	headers []Header
	state   SortState
	opts    *Options
}

// newHeaderRegistry indexes the cells of row and prepares them for
// interaction. All headers start unsorted.
func newHeaderRegistry(row *html.Node, opts *Options) (*headerRegistry, error) {
	if row == nil {
		return nil, fmt.Errorf("%w: table has no header row", ErrNoHeaders)
	}
	cells := cellsOf(row)
	if len(cells) == 0 {
		return nil, fmt.Errorf("%w: header row has no cells", ErrNoHeaders)
	}

	r := &headerRegistry{
		row:     row,
		headers: make([]Header, len(cells)),
		state:   SortState{Column: -1},
		opts:    opts,
	}
	for i, cell := range cells {
		r.headers[i] = r.initialize(i, cell)
	}
	return r, nil
}

func (r *headerRegistry) initialize(i int, cell *html.Node) Header {
	declared, _ := getAttr(cell, AttrSortType)
	h := Header{Index: i, Node: cell, Type: ParseColumnType(declared)}

	if *r.opts.ShowIndicators {
		h.indicator = findIndicator(cell, r.opts.IndicatorClass)
		if h.indicator == nil {
			h.indicator = &html.Node{
				Type:     html.ElementNode,
				Data:     "span",
				DataAtom: atom.Span,
				Attr: []html.Attribute{
					{Key: "class", Val: r.opts.IndicatorClass},
					{Key: "aria-hidden", Val: "true"},
				},
			}
			cell.AppendChild(h.indicator)
		}
		setText(h.indicator, "")
		removeClass(h.indicator, r.opts.SortAscendingClass, r.opts.SortDescendingClass)
	}

	setAttr(cell, AttrSortIndex, strconv.Itoa(i))
	setAttr(cell, "tabindex", "0")
	setAttr(cell, "role", "button")
	setAttr(cell, AttrAriaSort, "none")
	if _, ok := getAttr(cell, "aria-label"); !ok {
		label := strings.Join(strings.Fields(textContent(cell, h.indicator)), " ")
		setAttr(cell, "aria-label", label+": activate to sort")
	}
	addClass(cell, r.opts.SortableHeaderClass)
	removeClass(cell, r.opts.SortedHeaderClass, r.opts.SortAscendingClass, r.opts.SortDescendingClass)
	return h
}

// findIndicator returns a span already injected by an earlier Sorter on the
// same table, so re-initialization does not stack indicators.
func findIndicator(cell *html.Node, class string) *html.Node {
	for _, c := range elementChildren(cell, atom.Span) {
		if hasClass(c, class) {
			return c
		}
	}
	return nil
}

// resolveDirection returns explicit when it is valid; otherwise it toggles
// the last direction if col was the last sorted column, else ascending.
func (r *headerRegistry) resolveDirection(col int, explicit ...Direction) Direction {
	if len(explicit) > 0 && explicit[0].Valid() {
		return explicit[0]
	}
	if r.state.Sorted() && r.state.Column == col {
		return r.state.Direction.Opposite()
	}
	return Ascending
}

// commit records the sort and reflects it on every header.
func (r *headerRegistry) commit(col int, dir Direction) {
	o := r.opts
	for i := range r.headers {
		h := &r.headers[i]
		removeClass(h.Node, o.SortedHeaderClass, o.SortAscendingClass, o.SortDescendingClass)
		if h.indicator != nil {
			removeClass(h.indicator, o.SortAscendingClass, o.SortDescendingClass)
		}

		if i != col {
			setAttr(h.Node, AttrAriaSort, "none")
			if h.indicator != nil {
				setText(h.indicator, "")
			}
			continue
		}

		dirClass, glyph := o.SortAscendingClass, o.IndicatorAsc
		if dir == Descending {
			dirClass, glyph = o.SortDescendingClass, o.IndicatorDesc
		}
		addClass(h.Node, o.SortedHeaderClass)
		addClass(h.Node, dirClass)
		setAttr(h.Node, AttrAriaSort, dir.ariaSort())
		if h.indicator != nil {
			addClass(h.indicator, dirClass)
			setText(h.indicator, glyph)
		}
	}
	r.state = SortState{Column: col, Direction: dir}
}

// indexOf returns the index of the header containing n.
func (r *headerRegistry) indexOf(n *html.Node) (int, bool) {
	if n == nil {
		return 0, false
	}
	for _, h := range r.headers {
		if contains(h.Node, n) {
			return h.Index, true
		}
	}
	return 0, false
}
