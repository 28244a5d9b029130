// Package source turns files and query results into HTML tables that the
// sorter can work on.
//
// Every loader returns an *html.Node: a full document for HTML input, or a
// bare <table> element for CSV, XLSX, DOCX and database rows. Built tables carry
// data-sort-type on headers whose type is known (database columns), and
// data-sort-value on cells whose display text differs from their value.
package source

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Format is an input file format.
type Format string

const (
	FormatHTML Format = "html"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatDOCX Format = "docx"
)

// ErrUnsupportedFormat is returned for file extensions with no loader.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ByExtension picks the format from a file name.
func ByExtension(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return FormatHTML, nil
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".docx":
		return FormatDOCX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
}

// Load reads r in the given format. sheet names the XLSX worksheet, or
// for DOCX the zero-based table number; empty means the first.
func Load(r io.Reader, format Format, sheet string) (*html.Node, error) {
	switch format {
	case FormatHTML:
		return ParseHTML(r)
	case FormatCSV:
		return FromCSV(r)
	case FormatXLSX:
		return FromXLSX(r, sheet)
	case FormatDOCX:
		index := 0
		if sheet != "" {
			n, err := strconv.Atoi(sheet)
			if err != nil {
				return nil, fmt.Errorf("docx table %q: must be a number", sheet)
			}
			index = n
		}
		return FromDOCX(r, index)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// ParseHTML parses a full HTML document.
func ParseHTML(r io.Reader) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// Render writes n as HTML.
func Render(w io.Writer, n *html.Node) error {
	if err := html.Render(w, n); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// RenderString renders n to a string.
func RenderString(n *html.Node) (string, error) {
	var b strings.Builder
	if err := Render(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}
