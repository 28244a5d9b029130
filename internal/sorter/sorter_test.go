package sorter

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"
)

// ============================================================================
// Helpers
// ============================================================================

func parseDoc(t *testing.T, markup string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("html.Parse() error = %v", err)
	}
	return doc
}

// singleColumn builds a one-column table with a header and one row per value.
func singleColumn(header string, values ...string) string {
	var b strings.Builder
	b.WriteString("<table><thead><tr>" + header + "</tr></thead><tbody>")
	for _, v := range values {
		b.WriteString("<tr><td>" + v + "</td></tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String()
}

func mustNew(t *testing.T, markup string, opts Options) *Sorter {
	t.Helper()
	s, err := New(parseDoc(t, markup), "", opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

// column returns the trimmed text of column col for every row of section sec.
func column(t *testing.T, s *Sorter, sec, col int) []string {
	t.Helper()
	sections := collectSections(s.table, s.headers.row)
	if sec >= len(sections) {
		t.Fatalf("section %d does not exist (have %d)", sec, len(sections))
	}
	out := make([]string, 0, len(sections[sec].rows))
	for _, row := range sections[sec].rows {
		cells := cellsOf(row)
		if col >= len(cells) {
			out = append(out, "")
			continue
		}
		out = append(out, strings.TrimSpace(textContent(cells[col])))
	}
	return out
}

func assertColumn(t *testing.T, s *Sorter, sec, col int, want []string) {
	t.Helper()
	if diff := cmp.Diff(want, column(t, s, sec, col)); diff != "" {
		t.Errorf("section %d column %d mismatch (-want +got):\n%s", sec, col, diff)
	}
}

// ============================================================================
// Construction
// ============================================================================

func TestNew_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name     string
		markup   string
		selector string
		opts     Options
		wantErr  error
	}{
		{
			name:    "no table",
			markup:  "<p>nothing here</p>",
			wantErr: ErrTableNotFound,
		},
		{
			name:     "selector matches nothing",
			markup:   singleColumn("<th>A</th>", "1"),
			selector: "#missing",
			wantErr:  ErrTableNotFound,
		},
		{
			name:     "selector matches a non-table",
			markup:   `<p id="x">x</p>` + singleColumn("<th>A</th>", "1"),
			selector: "#x",
			wantErr:  ErrNotTable,
		},
		{
			name:     "unsupported selector",
			markup:   singleColumn("<th>A</th>", "1"),
			selector: "div > table",
			wantErr:  ErrTableNotFound,
		},
		{
			name:    "no header cells",
			markup:  "<table><tr><td>1</td></tr><tr><td>2</td></tr></table>",
			wantErr: ErrNoHeaders,
		},
		{
			name:    "invalid empties policy",
			markup:  singleColumn("<th>A</th>", "1"),
			opts:    Options{Empties: "middle"},
			wantErr: ErrInvalidOptions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(parseDoc(t, tt.markup), tt.selector, tt.opts)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_SelectorByClass(t *testing.T) {
	markup := singleColumn("<th>first</th>", "1") +
		`<table class="wide data"><thead><tr><th>second</th></tr></thead><tbody><tr><td>2</td></tr></tbody></table>`

	s, err := New(parseDoc(t, markup), ".data", Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := s.Headers()[0].Label(); got != "second" {
		t.Errorf("header label = %q, want %q", got, "second")
	}
}

func TestNew_InitialSort(t *testing.T) {
	s := mustNew(t, singleColumn("<th>N</th>", "2", "3", "1"), Options{
		InitialColumn:    Int(0),
		InitialDirection: Descending,
	})

	assertColumn(t, s, 0, 0, []string{"3", "2", "1"})
	if st := s.State(); st.Column != 0 || st.Direction != Descending {
		t.Errorf("State() = %+v, want column 0 desc", st)
	}
}

func TestNew_NoInitialSortLeavesOrder(t *testing.T) {
	s := mustNew(t, singleColumn("<th>N</th>", "2", "3", "1"), Options{})

	assertColumn(t, s, 0, 0, []string{"2", "3", "1"})
	if s.State().Sorted() {
		t.Errorf("State().Sorted() = true before any sort")
	}
}

// ============================================================================
// Type inference and declared types
// ============================================================================

func TestRowCount(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   int
	}{
		{"single body", singleColumn("<th>N</th>", "1", "2", "3"), 3},
		{"header only", singleColumn("<th>N</th>"), 0},
		{
			"two header rows and a footer",
			`<table><thead><tr><th colspan="2">Totals</th></tr><tr><th>A</th><th>B</th></tr></thead>` +
				`<tbody><tr><td>1</td><td>2</td></tr></tbody>` +
				`<tfoot><tr><td>sum</td><td>2</td></tr></tfoot></table>`,
			1,
		},
		{
			"header row inside the body",
			`<table><tr><th>N</th></tr><tr><td>1</td></tr><tr><td>2</td></tr></table>`,
			2,
		},
		{
			"several bodies",
			`<table><thead><tr><th>N</th></tr></thead>` +
				`<tbody><tr><td>1</td></tr><tr><td>2</td></tr></tbody>` +
				`<tbody><tr><td>3</td></tr></tbody></table>`,
			3,
		},
		{
			"nested table rows are not counted",
			`<table><thead><tr><th>N</th></tr></thead><tbody>` +
				`<tr><td><table><tr><td>x</td></tr><tr><td>y</td></tr></table></td></tr>` +
				`</tbody></table>`,
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustNew(t, tt.markup, Options{})
			if got := s.RowCount(); got != tt.want {
				t.Errorf("RowCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSortBy_Types(t *testing.T) {
	tests := []struct {
		name   string
		header string
		values []string
		opts   Options
		want   []string
	}{
		{
			name:   "numbers inferred",
			header: "<th>N</th>",
			values: []string{"20", "3"},
			want:   []string{"3", "20"},
		},
		{
			name:   "thousands separators",
			header: "<th>N</th>",
			values: []string{"1,200", "950", " 12 000 "},
			want:   []string{"950", "1,200", "12 000"},
		},
		{
			// Inference is per comparison: 9 and 10 still compare as numbers,
			// and each of them against "apple" compares as strings.
			name:   "mixed column infers per pair",
			header: "<th>N</th>",
			values: []string{"apple", "10", "9"},
			want:   []string{"9", "10", "apple"},
		},
		{
			name:   "case-insensitive strings",
			header: "<th>Fruit</th>",
			values: []string{"Banana", "apple", "cherry"},
			want:   []string{"apple", "Banana", "cherry"},
		},
		{
			name:   "case-insensitive ties keep original order",
			header: "<th>L</th>",
			values: []string{"B", "b", "a"},
			want:   []string{"a", "B", "b"},
		},
		{
			name:   "case-sensitive puts lowercase first",
			header: "<th>L</th>",
			values: []string{"B", "b", "a"},
			opts:   Options{CaseSensitive: true},
			want:   []string{"a", "b", "B"},
		},
		{
			name:   "declared date",
			header: `<th data-sort-type="date">When</th>`,
			values: []string{"2021-01-05", "2020-12-31"},
			want:   []string{"2020-12-31", "2021-01-05"},
		},
		{
			name:   "inferred date beats string order",
			header: "<th>When</th>",
			values: []string{"1/2/2021", "12/31/2020"},
			want:   []string{"12/31/2020", "1/2/2021"},
		},
		{
			name:   "declared string keeps numbers lexicographic",
			header: `<th data-sort-type=" STRING ">S</th>`,
			values: []string{"9", "10"},
			want:   []string{"10", "9"},
		},
		{
			name:   "declared number falls back to strings for bad values",
			header: `<th data-sort-type="number">N</th>`,
			values: []string{"x", "2", "1"},
			want:   []string{"1", "2", "x"},
		},
		{
			name:   "unknown declared type infers",
			header: `<th data-sort-type="currency">N</th>`,
			values: []string{"20", "3"},
			want:   []string{"3", "20"},
		},
		{
			name:   "full precision",
			header: "<th>N</th>",
			values: []string{"1.4", "1.6", "1.5"},
			want:   []string{"1.4", "1.5", "1.6"},
		},
		{
			name:   "precision zero rounds before comparing",
			header: "<th>N</th>",
			values: []string{"1.4", "1.6", "1.5"},
			opts:   Options{NumericPrecision: Int(0)},
			want:   []string{"1.4", "1.6", "1.5"},
		},
		{
			name:   "precision beyond float range",
			header: "<th>N</th>",
			values: []string{"3", "1", "2"},
			opts:   Options{NumericPrecision: Int(400)},
			want:   []string{"1", "2", "3"},
		},
		{
			name:   "large values at high precision",
			header: "<th>N</th>",
			values: []string{"2e300", "1e300"},
			opts:   Options{NumericPrecision: Int(20)},
			want:   []string{"1e300", "2e300"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustNew(t, singleColumn(tt.header, tt.values...), tt.opts)
			if !s.SortBy(0, Ascending) {
				t.Fatal("SortBy() = false")
			}
			assertColumn(t, s, 0, 0, tt.want)
		})
	}
}

func TestSortBy_SortValueOverride(t *testing.T) {
	markup := `<table><thead><tr><th>Month</th></tr></thead><tbody>` +
		`<tr><td data-sort-value="3">March</td></tr>` +
		`<tr><td data-sort-value="1">January</td></tr>` +
		`<tr><td data-sort-value="2">February</td></tr>` +
		`</tbody></table>`
	s := mustNew(t, markup, Options{})

	s.SortBy(0)
	assertColumn(t, s, 0, 0, []string{"January", "February", "March"})
}

// ============================================================================
// Direction state
// ============================================================================

func TestSortBy_ToggleLaw(t *testing.T) {
	markup := `<table><thead><tr><th>A</th><th>B</th></tr></thead><tbody>` +
		`<tr><td>2</td><td>x</td></tr>` +
		`<tr><td>1</td><td>z</td></tr>` +
		`<tr><td>3</td><td>y</td></tr>` +
		`</tbody></table>`
	s := mustNew(t, markup, Options{})

	s.SortBy(0)
	assertColumn(t, s, 0, 0, []string{"1", "2", "3"})
	if st := s.State(); st.Direction != Ascending {
		t.Errorf("first SortBy(0) direction = %q, want asc", st.Direction)
	}

	s.SortBy(0)
	assertColumn(t, s, 0, 0, []string{"3", "2", "1"})
	if st := s.State(); st.Direction != Descending {
		t.Errorf("second SortBy(0) direction = %q, want desc", st.Direction)
	}

	// A different column always starts ascending.
	s.SortBy(1)
	assertColumn(t, s, 0, 1, []string{"x", "y", "z"})
	if st := s.State(); st.Column != 1 || st.Direction != Ascending {
		t.Errorf("SortBy(1) state = %+v, want column 1 asc", st)
	}
}

func TestSortBy_ExplicitDirectionOverridesToggle(t *testing.T) {
	s := mustNew(t, singleColumn("<th>N</th>", "2", "1", "3"), Options{})

	s.SortBy(0, Descending)
	s.SortBy(0, Descending)
	assertColumn(t, s, 0, 0, []string{"3", "2", "1"})

	// An invalid direction is ignored and the toggle applies.
	s.SortBy(0, Direction("sideways"))
	assertColumn(t, s, 0, 0, []string{"1", "2", "3"})
}

func TestSortBy_Idempotent(t *testing.T) {
	markup := `<table><thead><tr><th>K</th><th>ID</th></tr></thead><tbody>` +
		`<tr><td>b</td><td>1</td></tr>` +
		`<tr><td>a</td><td>2</td></tr>` +
		`<tr><td>b</td><td>3</td></tr>` +
		`<tr><td></td><td>4</td></tr>` +
		`<tr><td>a</td><td>5</td></tr>` +
		`</tbody></table>`

	for _, dir := range []Direction{Ascending, Descending} {
		s := mustNew(t, markup, Options{})
		s.SortBy(0, dir)
		first := column(t, s, 0, 1)
		s.SortBy(0, dir)
		if diff := cmp.Diff(first, column(t, s, 0, 1)); diff != "" {
			t.Errorf("%s: second sort changed order (-first +second):\n%s", dir, diff)
		}
	}
}

func TestSortBy_OutOfRangeIsNoop(t *testing.T) {
	s := mustNew(t, singleColumn("<th>N</th>", "2", "1"), Options{})
	s.SortBy(0)

	for _, col := range []int{-1, 1, 99} {
		if s.SortBy(col) {
			t.Errorf("SortBy(%d) = true, want false", col)
		}
	}
	assertColumn(t, s, 0, 0, []string{"1", "2"})
	if st := s.State(); st.Column != 0 || st.Direction != Ascending {
		t.Errorf("State() = %+v, want unchanged column 0 asc", st)
	}
}

// ============================================================================
// Stability, empties, sections
// ============================================================================

func TestSortBy_Stable(t *testing.T) {
	markup := `<table><thead><tr><th>K</th><th>ID</th></tr></thead><tbody>` +
		`<tr><td>b</td><td>1</td></tr>` +
		`<tr><td>a</td><td>2</td></tr>` +
		`<tr><td>b</td><td>3</td></tr>` +
		`<tr><td>a</td><td>4</td></tr>` +
		`</tbody></table>`
	s := mustNew(t, markup, Options{})

	s.SortBy(0)
	assertColumn(t, s, 0, 1, []string{"2", "4", "1", "3"})

	s.SortBy(0)
	assertColumn(t, s, 0, 1, []string{"1", "3", "2", "4"})
}

func TestSortBy_Empties(t *testing.T) {
	markup := `<table><thead><tr><th>K</th><th>ID</th></tr></thead><tbody>` +
		`<tr><td>b</td><td>1</td></tr>` +
		`<tr><td>  </td><td>2</td></tr>` +
		`<tr><td>a</td><td>3</td></tr>` +
		`<tr><td></td><td>4</td></tr>` +
		`</tbody></table>`

	tests := []struct {
		name    string
		empties EmptiesPolicy
		dir     Direction
		want    []string
	}{
		{"last ascending", EmptiesLast, Ascending, []string{"3", "1", "2", "4"}},
		{"last descending", EmptiesLast, Descending, []string{"1", "3", "2", "4"}},
		{"first ascending", EmptiesFirst, Ascending, []string{"2", "4", "3", "1"}},
		{"first descending", EmptiesFirst, Descending, []string{"2", "4", "1", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustNew(t, markup, Options{Empties: tt.empties})
			s.SortBy(0, tt.dir)
			assertColumn(t, s, 0, 1, tt.want)
		})
	}
}

func TestSortBy_ShortRowsAreEmpty(t *testing.T) {
	markup := `<table><thead><tr><th>ID</th><th>V</th></tr></thead><tbody>` +
		`<tr><td>1</td></tr>` +
		`<tr><td>2</td><td>5</td></tr>` +
		`<tr><td>3</td><td>4</td></tr>` +
		`</tbody></table>`
	s := mustNew(t, markup, Options{})

	s.SortBy(1, Descending)
	assertColumn(t, s, 0, 0, []string{"2", "3", "1"})
}

func TestSortBy_SectionsAreIndependent(t *testing.T) {
	markup := `<table><thead><tr><th>N</th></tr></thead>` +
		`<tbody><tr><td>3</td></tr><tr><td>1</td></tr><tr><td>2</td></tr></tbody>` +
		`<tbody><tr><td>z</td></tr><tr><td>y</td></tr></tbody>` +
		`</table>`
	s := mustNew(t, markup, Options{})

	s.SortBy(0)
	assertColumn(t, s, 0, 0, []string{"1", "2", "3"})
	assertColumn(t, s, 1, 0, []string{"y", "z"})

	s.SortBy(0)
	assertColumn(t, s, 0, 0, []string{"3", "2", "1"})
	assertColumn(t, s, 1, 0, []string{"z", "y"})
}

func TestSortBy_HeaderRowInBodyStaysFirst(t *testing.T) {
	markup := `<table>` +
		`<tr><th>N</th></tr>` +
		`<tr><td>3</td></tr>` +
		`<tr><td>1</td></tr>` +
		`</table>`
	s := mustNew(t, markup, Options{})

	s.SortBy(0)
	assertColumn(t, s, 0, 0, []string{"1", "3"})

	body := s.headers.row.Parent
	if first := firstElement(body); first != s.headers.row {
		t.Errorf("header row moved; first row is now %q", textContent(first))
	}
}

func TestSortBy_MovesNodesWithoutCloning(t *testing.T) {
	s := mustNew(t, singleColumn("<th>N</th>", "2", "1"), Options{})
	before := collectSections(s.table, s.headers.row)[0].rows

	s.SortBy(0)
	after := collectSections(s.table, s.headers.row)[0].rows

	if after[0] != before[1] || after[1] != before[0] {
		t.Error("rows were not moved in place")
	}
}

func TestSortBy_KeepsWhitespaceSiblings(t *testing.T) {
	markup := "<table><thead><tr><th>N</th></tr></thead><tbody>\n" +
		"  <tr><td>2</td></tr>\n" +
		"  <tr><td>1</td></tr>\n" +
		"</tbody></table>"
	s := mustNew(t, markup, Options{})

	body := collectSections(s.table, s.headers.row)[0].parent
	countChildren := func() int {
		n := 0
		for c := body.FirstChild; c != nil; c = c.NextSibling {
			n++
		}
		return n
	}
	before := countChildren()

	s.SortBy(0)
	if got := countChildren(); got != before {
		t.Errorf("tbody children = %d, want %d", got, before)
	}
	assertColumn(t, s, 0, 0, []string{"1", "2"})
}

func firstElement(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// ============================================================================
// Callbacks
// ============================================================================

func TestSortBy_CustomCompare(t *testing.T) {
	var calls int
	s := mustNew(t, singleColumn("<th>N</th>", "a", "", "b"), Options{
		// Reverse string order; empties get no special treatment.
		CustomCompare: func(a, b any, _ int, _, _ *html.Node) int {
			calls++
			return strings.Compare(b.(string), a.(string)) * 7
		},
	})

	s.SortBy(0)
	assertColumn(t, s, 0, 0, []string{"b", "a", ""})
	if calls == 0 {
		t.Error("CustomCompare was never called")
	}
}

func TestSortBy_ValueGetter(t *testing.T) {
	s := mustNew(t, singleColumn("<th>Word</th>", "ccc", "a", "bb"), Options{
		ValueGetter: func(cell, _ *html.Node, _ int) any {
			if cell == nil {
				return nil
			}
			return len(strings.TrimSpace(textContent(cell)))
		},
	})

	s.SortBy(0, Descending)
	assertColumn(t, s, 0, 0, []string{"ccc", "bb", "a"})
}

func TestSortBy_ValueGetterBeatsSortValue(t *testing.T) {
	markup := `<table><thead><tr><th>N</th></tr></thead><tbody>` +
		`<tr><td data-sort-value="1">b</td></tr>` +
		`<tr><td data-sort-value="2">a</td></tr>` +
		`</tbody></table>`
	s := mustNew(t, markup, Options{
		ValueGetter: func(cell, _ *html.Node, _ int) any {
			return textContent(cell)
		},
	})

	s.SortBy(0)
	assertColumn(t, s, 0, 0, []string{"a", "b"})
}
