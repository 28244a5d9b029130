// Package sorter sorts the rows of an HTML table in place by a chosen column.
//
// The sorter works on a parsed golang.org/x/net/html tree. It never clones
// rows: every sort moves the existing <tr> nodes within their own section
// (tbody), so references held by the caller stay valid.
//
// # Responsibilities
//
// A single [Sorter] composes four parts:
//
//   - Header registry: discovers the header cells, gives each a stable
//     0-based index, makes them focusable and labels them for assistive
//     technology, and reflects the active column through aria-sort, CSS
//     classes and an optional indicator glyph.
//   - Value extractor: produces the comparison key for a (row, column)
//     pair. A configured [Options.ValueGetter] wins, then the cell's
//     data-sort-value attribute, then the cell's trimmed text.
//   - Comparator: three-way, type-directed comparison. Columns declare a
//     type with data-sort-type="number|string|date"; otherwise the type is
//     inferred per comparison (number, then date, then locale-aware string).
//   - Section sorter: sorts every section independently and stably, then
//     commits the header state once for the whole table.
//
// # Usage
//
//	doc, _ := html.Parse(r)
//	s, err := sorter.New(doc, "#orders", sorter.Options{Locale: "de"})
//	if err != nil {
//	    return err // no table, not a table, or no header cells
//	}
//	s.SortBy(2)                    // ascending
//	s.SortBy(2)                    // toggles to descending
//	s.SortBy(0, sorter.Descending) // explicit direction
//
// Activation events ([Event]) are the keyboard and pointer surface: a click,
// or Enter/Space on a header, is equivalent to SortBy with that header's
// index and no explicit direction.
//
// A Sorter is not safe for concurrent use. Callers that share one across
// goroutines must serialize access themselves.
package sorter
