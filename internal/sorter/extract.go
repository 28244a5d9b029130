package sorter

import (
	"strings"

	"golang.org/x/net/html"
)

// Extract returns the comparison key for row at column: the configured
// ValueGetter's result, else the cell's data-sort-value, else its trimmed
// text. A row without a cell at column yields Empty unless a ValueGetter
// is configured, which then receives a nil cell.
func (s *Sorter) Extract(row *html.Node, column int) any {
	var cell *html.Node
	if cells := cellsOf(row); column >= 0 && column < len(cells) {
		cell = cells[column]
	}

	if s.opts.ValueGetter != nil {
		return s.opts.ValueGetter(cell, row, column)
	}
	if cell == nil {
		return Empty
	}
	if v, ok := getAttr(cell, AttrSortValue); ok {
		return v
	}
	return strings.TrimSpace(textContent(cell))
}
