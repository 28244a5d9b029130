package sorter

import (
	"cmp"
	"slices"
)

// sortSection stably reorders the rows of sec by column. It returns the
// number of rows that had no cell at column.
func (s *Sorter) sortSection(sec *section, column int, dir Direction) (short int) {
	if len(sec.rows) == 0 {
		return 0
	}

	// Positions are captured before any node moves; they are the tie-break.
	order := make([]int, len(sec.rows))
	for i, row := range sec.rows {
		order[i] = i
		if len(cellsOf(row)) <= column {
			short++
		}
	}

	slices.SortFunc(order, func(i, j int) int {
		rowA, rowB := sec.rows[i], sec.rows[j]
		r, byEmpties := s.cmp.compare(s.Extract(rowA, column), s.Extract(rowB, column), column, rowA, rowB)
		if dir == Descending && !byEmpties {
			r = -r
		}
		if r != 0 {
			return r
		}
		return cmp.Compare(i, j)
	})

	sec.apply(order)
	return short
}
