package sorter

import (
	"strings"

	"golang.org/x/net/html"
)

// Attribute names read and written on the table.
const (
	AttrSortType  = "data-sort-type"  // header: declared column type
	AttrSortValue = "data-sort-value" // cell: literal comparison value
	AttrSortIndex = "data-sort-index" // header: assigned column index
	AttrAriaSort  = "aria-sort"
)

// Direction is the sort direction of a column.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection accepts "asc"/"ascending" and "desc"/"descending",
// case-insensitively.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending, true
	case "desc", "descending":
		return Descending, true
	}
	return "", false
}

// Valid reports whether d is Ascending or Descending.
func (d Direction) Valid() bool {
	return d == Ascending || d == Descending
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// ariaSort returns the aria-sort token for the direction.
func (d Direction) ariaSort() string {
	if d == Descending {
		return "descending"
	}
	return "ascending"
}

// ColumnType is the declared or inferred data type of a column.
type ColumnType int

const (
	TypeInferred ColumnType = iota // no declaration; inferred per comparison
	TypeNumber
	TypeString
	TypeDate
)

// ParseColumnType maps a data-sort-type value to a ColumnType.
// Unknown or empty values yield TypeInferred.
func ParseColumnType(s string) ColumnType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "number":
		return TypeNumber
	case "string":
		return TypeString
	case "date":
		return TypeDate
	}
	return TypeInferred
}

func (t ColumnType) String() string {
	switch t {
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeDate:
		return "date"
	default:
		return ""
	}
}

// EmptiesPolicy places rows with an empty sort key. The placement does not
// depend on the sort direction.
type EmptiesPolicy string

const (
	EmptiesLast  EmptiesPolicy = "last"
	EmptiesFirst EmptiesPolicy = "first"
)

// EmptyValue is the synthetic empty marker. Extracting a column from a row
// that has no cell at that index yields Empty.
type EmptyValue struct{}

// Empty is the value returned for absent cells.
var Empty = EmptyValue{}

// SortState records the last completed sort. Column is -1 before the first
// sort.
type SortState struct {
	Column    int
	Direction Direction
}

// Sorted reports whether any sort has completed.
func (s SortState) Sorted() bool {
	return s.Column >= 0
}

// Header is one sortable column header.
type Header struct {
	Index int
	Node  *html.Node
	Type  ColumnType

	indicator *html.Node
}

// Label returns the header's visible text.
func (h Header) Label() string {
	return strings.TrimSpace(textContent(h.Node, h.indicator))
}

// AriaSort returns the header's current aria-sort token.
func (h Header) AriaSort() string {
	v, _ := getAttr(h.Node, AttrAriaSort)
	return v
}
