package sorter

import (
	"fmt"

	"golang.org/x/net/html"
)

// Sorter sorts one table and owns its header state.
type Sorter struct {
	table   *html.Node
	opts    Options
	headers *headerRegistry
	cmp     *comparator
}

// New locates the table under root using selector ("", "table", "#id" or
// ".class"), initializes its headers and, when opts.InitialColumn is set,
// performs the initial sort.
//
// New fails with ErrTableNotFound, ErrNotTable, ErrNoHeaders or
// ErrInvalidOptions; all are configuration errors.
func New(root *html.Node, selector string, opts Options) (*Sorter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	table, err := findTable(root, selector)
	if err != nil {
		return nil, err
	}

	s := &Sorter{table: table, opts: opts}
	s.headers, err = newHeaderRegistry(headerRow(table), &s.opts)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", describe(table), err)
	}
	s.cmp = newComparator(&s.opts, s.headers.headers)

	if opts.InitialColumn != nil {
		if opts.InitialDirection != "" {
			s.SortBy(*opts.InitialColumn, opts.InitialDirection)
		} else {
			s.SortBy(*opts.InitialColumn)
		}
	}
	return s, nil
}

// SortBy sorts every section of the table by column. With no direction,
// or an invalid one, the direction toggles when column was the last sorted
// column and is ascending otherwise.
//
// An out-of-range column is a no-op and SortBy returns false.
func (s *Sorter) SortBy(column int, dir ...Direction) bool {
	log := s.opts.Logger
	if column < 0 || column >= len(s.headers.headers) {
		log.Debug("sorter: column out of range, ignoring",
			"column", column,
			"columns", len(s.headers.headers),
		)
		return false
	}

	d := s.headers.resolveDirection(column, dir...)

	sections := collectSections(s.table, s.headers.row)
	var rows, short int
	for _, sec := range sections {
		short += s.sortSection(sec, column, d)
		rows += len(sec.rows)
	}
	if short > 0 {
		log.Warn("sorter: rows have no cell for the sorted column; treated as empty",
			"table", describe(s.table),
			"column", column,
			"rows", short,
		)
	}

	s.headers.commit(column, d)

	log.Debug("sorter: table sorted",
		"table", describe(s.table),
		"column", column,
		"direction", string(d),
		"sections", len(sections),
		"rows", rows,
	)
	return true
}

// Compare is the ordering relation used for column: a three-way result in
// {-1, 0, 1} before any direction is applied.
func (s *Sorter) Compare(a, b any, column int, rowA, rowB *html.Node) int {
	r, _ := s.cmp.compare(a, b, column, rowA, rowB)
	return r
}

// State returns the last completed sort.
func (s *Sorter) State() SortState {
	return s.headers.state
}

// Headers returns the headers in column order.
func (s *Sorter) Headers() []Header {
	out := make([]Header, len(s.headers.headers))
	copy(out, s.headers.headers)
	return out
}

// Table returns the sorted table element.
func (s *Sorter) Table() *html.Node {
	return s.table
}

// RowCount returns the number of sortable rows: those in a tbody or placed
// directly under the table, less the header row. Rows in a thead or tfoot
// are not counted.
func (s *Sorter) RowCount() int {
	var n int
	for _, sec := range collectSections(s.table, s.headers.row) {
		n += len(sec.rows)
	}
	return n
}

// describe names a table for log output.
func describe(table *html.Node) string {
	if id, ok := getAttr(table, "id"); ok && id != "" {
		return "#" + id
	}
	return "<table>"
}
