package units

import (
	"errors"
	"testing"
)

func TestToPoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		px   float64
		want float64
	}{
		{name: "one inch", px: 96, want: 72},
		{name: "zero", px: 0, want: 0},
		{name: "letter width", px: 816, want: 612},
		{name: "letter height", px: 1056, want: 792},
		{name: "rounds measurement noise", px: 815.99999, want: 612},
		{name: "rounds half up", px: 0.5, want: 0.38},
		{name: "rounds negative half toward positive", px: -0.5, want: -0.37},
		{name: "keeps two decimals", px: 1, want: 0.75},
		{name: "negative offset", px: -48, want: -36},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ToPoints(tt.px); got != tt.want {
				t.Errorf("ToPoints(%v) = %v, want %v", tt.px, got, tt.want)
			}
		})
	}
}

func TestToPoints_NotInvolution(t *testing.T) {
	t.Parallel()

	if got := ToPoints(ToPoints(96)); got == 96 {
		t.Errorf("ToPoints(ToPoints(96)) = %v, conversion must not be its own inverse", got)
	}
}

func TestParseLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "bare number is pixels", input: "816", want: 612},
		{name: "pixels", input: "96px", want: 72},
		{name: "points", input: "612pt", want: 612},
		{name: "inches", input: "8.5in", want: 612},
		{name: "millimeters", input: "210mm", want: 595.28},
		{name: "centimeters", input: "2.54cm", want: 72},
		{name: "picas", input: "6pc", want: 72},
		{name: "uppercase unit and spaces", input: " 11 IN ", want: 792},
		{name: "empty", input: "", wantErr: true},
		{name: "unknown unit", input: "10em", wantErr: true},
		{name: "garbage", input: "wide", wantErr: true},
		{name: "negative", input: "-1in", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseLength(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLength) {
					t.Fatalf("ParseLength(%q) error = %v, want ErrInvalidLength", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLength(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLength(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPointsToInches(t *testing.T) {
	t.Parallel()

	if got := PointsToInches(612); got != 8.5 {
		t.Errorf("PointsToInches(612) = %v, want 8.5", got)
	}
}
