// Package templates renders the server's HTML pages and fragments.
//
// The components are written in .templ files; regenerate the _templ.go
// files after editing them:
//
//	templ generate ./internal/web/templates
package templates

import "time"

// HTMXScript is the htmx build the pages load.
const HTMXScript = "https://unpkg.com/htmx.org@2.0.4"

// SortScript cancels the default action of the sort keys on headers.
const SortScript = "/static/tablesort.js"

// TableContainerID is the element id htmx swaps on sort.
const TableContainerID = "widget-table"

// htmxConfig lets error responses swap, so ErrorAlert fragments retargeted
// at #errors are shown.
const htmxConfig = `{"responseHandling":[{"code":"204","swap":false},{"code":"[23]..","swap":true},{"code":"[45]..","swap":true,"error":true}]}`

const styleTag = `<style>
body { font-family: system-ui, sans-serif; margin: 2rem; color: #1f2933; }
table { border-collapse: collapse; margin-top: 1rem; }
th, td { border: 1px solid #cbd2d9; padding: .35rem .75rem; text-align: left; }
th.sortable { cursor: pointer; user-select: none; background: #f5f7fa; }
th.sortable:focus { outline: 2px solid #3e7bfa; outline-offset: -2px; }
th.sorted { background: #e4ecfd; }
.sort-indicator { margin-left: .35rem; font-size: .8em; }
.alert { border: 1px solid #e12d39; background: #ffe3e3; padding: .75rem; margin: 1rem 0; }
.alert code { font-size: .85em; }
.widgets td { white-space: nowrap; }
form { margin: 1rem 0; }
</style>`

// WidgetRow is one line of the dashboard listing.
type WidgetRow struct {
	ID        string
	Name      string
	Source    string
	Columns   int
	Rows      int
	CreatedAt time.Time
}

// DashboardParams feeds Dashboard.
//
// Fields:
//   - Widgets: the listing, oldest first
//   - HasDatabase: shows the query form
//   - MaxUpload: upload limit in bytes, shown next to the file form
type DashboardParams struct {
	Widgets     []WidgetRow
	HasDatabase bool
	MaxUpload   int64
}

// TableViewParams feeds TableView.
type TableViewParams struct {
	ID     string
	Name   string
	Source string
	Rows   int
	Table  string // rendered table HTML
}
