package sorter

import "errors"

// Configuration errors returned by New. They are fatal: no Sorter is built.
var (
	ErrTableNotFound  = errors.New("table not found")
	ErrNotTable       = errors.New("selector does not match a table")
	ErrNoHeaders      = errors.New("no header cells found")
	ErrInvalidOptions = errors.New("invalid sort options")
)
