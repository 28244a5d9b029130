package source

// csv.go reads user-provided CSV exports into a table.
//
// Spreadsheet exports are messy: a UTF-8 BOM from Windows tools, invalid
// byte sequences, Excel formula prefixes (="0042") and stray quotes. The
// reader strips all of these so cell text compares cleanly.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrEmptyFile is returned when an input has no header row.
var ErrEmptyFile = errors.New("empty file")

// FromCSV reads a CSV file. The first record is the header row. Records
// may have differing lengths.
func FromCSV(r io.Reader) (*html.Node, error) {
	// Drops a leading BOM and replaces invalid UTF-8 with U+FFFD.
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv: %w", ErrEmptyFile)
	}

	for _, rec := range records {
		for i := range rec {
			rec[i] = CleanCell(rec[i])
		}
	}

	columns := make([]Column, len(records[0]))
	for i, name := range records[0] {
		columns[i] = Column{Name: name}
	}
	return BuildTable(columns, textRows(records[1:])), nil
}

// CleanCell removes common CSV artifacts from a cell value:
//   - surrounding whitespace
//   - the Excel formula prefix (="..." or =...)
//   - surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}
