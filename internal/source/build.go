package source

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/JonMunkholm/tablesort/internal/sorter"
)

// Column describes one header cell of a built table.
type Column struct {
	Name string
	Type sorter.ColumnType
}

// Cell is one body cell. SortValue, when set, is emitted as
// data-sort-value so display formatting does not affect ordering.
type Cell struct {
	Text      string
	SortValue string
}

// BuildTable assembles <table><thead>…</thead><tbody>…</tbody></table>.
// Rows may be shorter than columns; they are emitted as they are.
func BuildTable(columns []Column, rows [][]Cell) *html.Node {
	table := element(atom.Table)

	thead := element(atom.Thead)
	headRow := element(atom.Tr)
	for _, col := range columns {
		th := element(atom.Th)
		th.Attr = append(th.Attr, html.Attribute{Key: "scope", Val: "col"})
		if col.Type != sorter.TypeInferred {
			th.Attr = append(th.Attr, html.Attribute{Key: sorter.AttrSortType, Val: col.Type.String()})
		}
		th.AppendChild(text(col.Name))
		headRow.AppendChild(th)
	}
	thead.AppendChild(headRow)
	table.AppendChild(thead)

	tbody := element(atom.Tbody)
	for _, row := range rows {
		tr := element(atom.Tr)
		for _, cell := range row {
			td := element(atom.Td)
			if cell.SortValue != "" {
				td.Attr = append(td.Attr, html.Attribute{Key: sorter.AttrSortValue, Val: cell.SortValue})
			}
			if cell.Text != "" {
				td.AppendChild(text(cell.Text))
			}
			tr.AppendChild(td)
		}
		tbody.AppendChild(tr)
	}
	table.AppendChild(tbody)

	return table
}

// textRows wraps plain string records as cells.
func textRows(records [][]string) [][]Cell {
	rows := make([][]Cell, len(records))
	for i, rec := range records {
		row := make([]Cell, len(rec))
		for j, v := range rec {
			row[j] = Cell{Text: v}
		}
		rows[i] = row
	}
	return rows
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
