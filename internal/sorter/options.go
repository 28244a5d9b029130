package sorter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

// Default class names and glyphs.
const (
	DefaultIndicatorAsc        = "▲"
	DefaultIndicatorDesc       = "▼"
	DefaultIndicatorClass      = "sort-indicator"
	DefaultSortableHeaderClass = "sortable"
	DefaultSortedHeaderClass   = "sorted"
	DefaultSortAscendingClass  = "sort-asc"
	DefaultSortDescendingClass = "sort-desc"
)

// CompareFunc fully replaces the built-in comparison. It must return a
// negative, zero or positive number.
type CompareFunc func(a, b any, column int, rowA, rowB *html.Node) int

// ValueGetterFunc fully replaces value extraction. cell is nil when the row
// has no cell at column.
type ValueGetterFunc func(cell, row *html.Node, column int) any

// Options configures a Sorter. The zero value is usable; unset fields take
// the defaults listed on each field.
type Options struct {
	// InitialColumn, when set, sorts the table during New.
	InitialColumn *int `yaml:"initialColumn"`

	// InitialDirection applies to the initial sort (default: ascending).
	InitialDirection Direction `yaml:"initialDirection"`

	// CaseSensitive makes string comparison distinguish letter case
	// (default: false).
	CaseSensitive bool `yaml:"caseSensitive"`

	// Locale is a BCP 47 tag for string collation (default: root collation).
	Locale string `yaml:"locale"`

	// NumericPrecision rounds numbers to this many decimals before they
	// are compared (default: full precision).
	NumericPrecision *int `yaml:"numericPrecision"`

	CustomCompare CompareFunc     `yaml:"-"`
	ValueGetter   ValueGetterFunc `yaml:"-"`

	// ShowIndicators injects an indicator span into each header
	// (default: true).
	ShowIndicators *bool `yaml:"showIndicators"`

	IndicatorAsc        string `yaml:"indicatorAsc"`
	IndicatorDesc       string `yaml:"indicatorDesc"`
	IndicatorClass      string `yaml:"indicatorClass"`
	SortableHeaderClass string `yaml:"sortableHeaderClass"`
	SortedHeaderClass   string `yaml:"sortedHeaderClass"`
	SortAscendingClass  string `yaml:"sortAscendingClass"`
	SortDescendingClass string `yaml:"sortDescendingClass"`

	// Empties places rows with an empty sort key (default: last).
	Empties EmptiesPolicy `yaml:"empties"`

	// Logger receives debug and warning output (default: slog.Default()).
	Logger *slog.Logger `yaml:"-"`
}

// Int returns a pointer to i, for InitialColumn and NumericPrecision.
func Int(i int) *int { return &i }

// Bool returns a pointer to b, for ShowIndicators.
func Bool(b bool) *bool { return &b }

// withDefaults returns a copy of o with every unset field defaulted.
func (o Options) withDefaults() Options {
	if o.ShowIndicators == nil {
		o.ShowIndicators = Bool(true)
	}
	def := func(s *string, v string) {
		if *s == "" {
			*s = v
		}
	}
	def(&o.IndicatorAsc, DefaultIndicatorAsc)
	def(&o.IndicatorDesc, DefaultIndicatorDesc)
	def(&o.IndicatorClass, DefaultIndicatorClass)
	def(&o.SortableHeaderClass, DefaultSortableHeaderClass)
	def(&o.SortedHeaderClass, DefaultSortedHeaderClass)
	def(&o.SortAscendingClass, DefaultSortAscendingClass)
	def(&o.SortDescendingClass, DefaultSortDescendingClass)
	if o.Empties == "" {
		o.Empties = EmptiesLast
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Validate reports every invalid field at once.
func (o Options) Validate() error {
	var errs []error
	if o.Empties != "" && o.Empties != EmptiesFirst && o.Empties != EmptiesLast {
		errs = append(errs, fmt.Errorf("empties %q must be first or last", o.Empties))
	}
	if o.InitialDirection != "" && !o.InitialDirection.Valid() {
		errs = append(errs, fmt.Errorf("initialDirection %q must be asc or desc", o.InitialDirection))
	}
	if o.NumericPrecision != nil && *o.NumericPrecision < 0 {
		errs = append(errs, fmt.Errorf("numericPrecision %d must be non-negative", *o.NumericPrecision))
	}
	if o.InitialColumn != nil && *o.InitialColumn < 0 {
		errs = append(errs, fmt.Errorf("initialColumn %d must be non-negative", *o.InitialColumn))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, errors.Join(errs...))
	}
	return nil
}

// LoadOptions decodes YAML options. Unknown keys are rejected so typos
// surface at startup. Function-valued fields cannot be set this way.
func LoadOptions(r io.Reader) (Options, error) {
	var o Options
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&o); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, fmt.Errorf("%w: decode: %w", ErrInvalidOptions, err)
	}
	if d, ok := ParseDirection(string(o.InitialDirection)); ok {
		o.InitialDirection = d
	}
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}
