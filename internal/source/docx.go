package source

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/unidoc/unioffice/document"
	"golang.org/x/net/html"
)

// FromDOCX reads a table from a Word document. index picks the table,
// counting from zero in document order. The table's first row is the
// header row.
func FromDOCX(r io.Reader, index int) (*html.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := document.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}

	tables := doc.Tables()
	if index < 0 || index >= len(tables) {
		return nil, fmt.Errorf("docx has %d tables, no table %d: %w", len(tables), index, ErrEmptyFile)
	}

	var records [][]string
	for _, row := range tables[index].Rows() {
		var rec []string
		for _, cell := range row.Cells() {
			var paras []string
			for _, p := range cell.Paragraphs() {
				var b strings.Builder
				for _, run := range p.Runs() {
					b.WriteString(run.Text())
				}
				if s := strings.TrimSpace(b.String()); s != "" {
					paras = append(paras, s)
				}
			}
			rec = append(rec, strings.Join(paras, " "))
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("docx table %d: %w", index, ErrEmptyFile)
	}

	columns := make([]Column, len(records[0]))
	for i, name := range records[0] {
		columns[i] = Column{Name: name}
	}
	return BuildTable(columns, textRows(records[1:])), nil
}
