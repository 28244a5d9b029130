package source

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"
	"golang.org/x/net/html"
)

// FromXLSX reads one worksheet. The first row is the header row; sheet
// names the worksheet, and empty means the first one.
func FromXLSX(r io.Reader, sheet string) (*html.Node, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("xlsx: close failed", "error", err)
		}
	}()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("xlsx: %w", ErrEmptyFile)
		}
		sheet = sheets[0]
	}

	// GetRows returns formatted cell text and trims trailing empty cells,
	// which the sorter treats as absent.
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q: %w", sheet, ErrEmptyFile)
	}

	columns := make([]Column, len(rows[0]))
	for i, name := range rows[0] {
		columns[i] = Column{Name: CleanCell(name)}
	}
	return BuildTable(columns, textRows(rows[1:])), nil
}
