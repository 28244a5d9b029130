package sorter

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadOptions(t *testing.T) {
	src := `
initialColumn: 2
initialDirection: Descending
caseSensitive: true
locale: de-CH
numericPrecision: 2
showIndicators: false
indicatorAsc: "^"
empties: first
`
	o, err := LoadOptions(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadOptions() error = %v", err)
	}

	if o.InitialColumn == nil || *o.InitialColumn != 2 {
		t.Errorf("InitialColumn = %v, want 2", o.InitialColumn)
	}
	if o.InitialDirection != Descending {
		t.Errorf("InitialDirection = %q, want desc", o.InitialDirection)
	}
	if !o.CaseSensitive {
		t.Error("CaseSensitive = false, want true")
	}
	if o.Locale != "de-CH" {
		t.Errorf("Locale = %q", o.Locale)
	}
	if o.NumericPrecision == nil || *o.NumericPrecision != 2 {
		t.Errorf("NumericPrecision = %v, want 2", o.NumericPrecision)
	}
	if o.ShowIndicators == nil || *o.ShowIndicators {
		t.Errorf("ShowIndicators = %v, want false", o.ShowIndicators)
	}
	if o.IndicatorAsc != "^" {
		t.Errorf("IndicatorAsc = %q", o.IndicatorAsc)
	}
	if o.Empties != EmptiesFirst {
		t.Errorf("Empties = %q, want first", o.Empties)
	}
}

func TestLoadOptions_Empty(t *testing.T) {
	o, err := LoadOptions(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadOptions() error = %v", err)
	}
	if o.InitialColumn != nil || o.Empties != "" {
		t.Errorf("LoadOptions(\"\") = %+v, want zero options", o)
	}
}

func TestLoadOptions_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{"unknown key", "caseSensitiv: true\n", ErrInvalidOptions},
		{"bad empties", "empties: middle\n", ErrInvalidOptions},
		{"bad direction", "initialDirection: up\n", ErrInvalidOptions},
		{"negative precision", "numericPrecision: -1\n", ErrInvalidOptions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadOptions(strings.NewReader(tt.src))
			if err == nil {
				t.Fatal("LoadOptions() error = nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadOptions() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestOptions_Defaults(t *testing.T) {
	o := Options{}.withDefaults()

	if !*o.ShowIndicators {
		t.Error("ShowIndicators default = false")
	}
	if o.Empties != EmptiesLast {
		t.Errorf("Empties default = %q", o.Empties)
	}
	if o.SortAscendingClass != DefaultSortAscendingClass || o.IndicatorDesc != DefaultIndicatorDesc {
		t.Errorf("class/glyph defaults not applied: %+v", o)
	}
	if o.Logger == nil {
		t.Error("Logger default is nil")
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in     string
		want   Direction
		wantOK bool
	}{
		{"asc", Ascending, true},
		{" DESC ", Descending, true},
		{"ascending", Ascending, true},
		{"", "", false},
		{"up", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseDirection(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseDirection(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
