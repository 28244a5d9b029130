package sorter

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// dateLayouts are tried in order when text must be read as a date.
// Four-digit years only; numeric-looking values such as 20240105 are
// claimed by the number rule first during inference.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"1/2/2006",
	"01/02/2006",
	"1/2/2006 15:04",
	"1-2-2006",
	"01-02-2006",
	"1.2.2006",
	"01.02.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC850,
	time.ANSIC,
	"20060102",
}

// comparator implements the ordering relation for one Sorter.
type comparator struct {
	custom    CompareFunc
	empties   EmptiesPolicy
	precision *int
	types     []ColumnType
	collator  *collate.Collator
}

func newComparator(opts *Options, headers []Header) *comparator {
	tag := language.Und
	if opts.Locale != "" {
		t, err := language.Parse(opts.Locale)
		if err != nil {
			opts.Logger.Warn("sorter: unknown locale, using root collation",
				"locale", opts.Locale,
				"error", err,
			)
		} else {
			tag = t
		}
	}

	var copts []collate.Option
	if !opts.CaseSensitive {
		copts = append(copts, collate.IgnoreCase)
	}

	types := make([]ColumnType, len(headers))
	for i, h := range headers {
		types[i] = h.Type
	}

	return &comparator{
		custom:    opts.CustomCompare,
		empties:   opts.Empties,
		precision: opts.NumericPrecision,
		types:     types,
		collator:  collate.New(tag, copts...),
	}
}

// compare returns the three-way order of a and b. byEmpties is true when
// the empties rule decided the result; such results must not be negated
// for a descending sort.
func (c *comparator) compare(a, b any, column int, rowA, rowB *html.Node) (result int, byEmpties bool) {
	if c.custom != nil {
		return sign(c.custom(a, b, column, rowA, rowB)), false
	}

	emptyA, emptyB := isEmpty(a), isEmpty(b)
	switch {
	case emptyA && emptyB:
		return 0, true
	case emptyA:
		return c.emptyRank(), true
	case emptyB:
		return -c.emptyRank(), true
	}

	var typ ColumnType
	if column >= 0 && column < len(c.types) {
		typ = c.types[column]
	}

	switch typ {
	case TypeNumber:
		if r, ok := c.compareNumbers(a, b); ok {
			return r, false
		}
	case TypeDate:
		if r, ok := compareDates(a, b); ok {
			return r, false
		}
	case TypeString:
	default:
		if r, ok := c.compareNumbers(a, b); ok {
			return r, false
		}
		if r, ok := compareDates(a, b); ok {
			return r, false
		}
	}
	return c.compareStrings(a, b), false
}

// emptyRank is the result for (empty, non-empty).
func (c *comparator) emptyRank() int {
	if c.empties == EmptiesFirst {
		return -1
	}
	return 1
}

func (c *comparator) compareNumbers(a, b any) (int, bool) {
	x, ok := toNumber(a)
	if !ok {
		return 0, false
	}
	y, ok := toNumber(b)
	if !ok {
		return 0, false
	}
	if c.precision != nil {
		x, y = round(x, *c.precision), round(y, *c.precision)
	}
	return cmp.Compare(x, y), true
}

func compareDates(a, b any) (int, bool) {
	x, ok := toTime(a)
	if !ok {
		return 0, false
	}
	y, ok := toTime(b)
	if !ok {
		return 0, false
	}
	return x.Compare(y), true
}

func (c *comparator) compareStrings(a, b any) int {
	return c.collator.CompareString(toString(a), toString(b))
}

// isEmpty reports whether v counts as an empty sort key.
func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case EmptyValue:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

// toNumber reads v as a finite number. Text may carry whitespace and ","
// thousands separators.
func toNumber(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case string:
		s := strings.Map(func(r rune) rune {
			if r == ',' || unicode.IsSpace(r) {
				return -1
			}
			return r
		}, x)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// round rounds half away from zero to the given number of decimals. When
// scaling would overflow, f already has fewer digits than asked for and is
// returned unchanged.
func round(f float64, decimals int) float64 {
	m := math.Pow(10, float64(decimals))
	if math.IsInf(m, 0) || math.IsInf(f*m, 0) {
		return f
	}
	return math.Round(f*m) / m
}

// toTime reads v as an instant. time.Time values are taken as they are;
// text must match one of dateLayouts.
func toTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, true
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
