// Package units converts CSS lengths to PDF points.
package units

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidLength is returned when a CSS length cannot be parsed.
var ErrInvalidLength = errors.New("invalid length")

// CSS absolute units: 96px = 1in = 72pt.
const (
	PointsPerPixel = 0.75
	PointsPerInch  = 72.0
)

// pointsPerUnit maps a CSS unit suffix to its size in points.
var pointsPerUnit = map[string]float64{
	"px": PointsPerPixel,
	"pt": 1,
	"pc": 12,
	"in": PointsPerInch,
	"cm": PointsPerInch / 2.54,
	"mm": PointsPerInch / 25.4,
}

// ToPoints converts CSS pixels to points rounded to 2 decimals.
// Rounding is half-up so measurement noise like 611.9999 becomes 612.
func ToPoints(px float64) float64 {
	return round2(px * PointsPerPixel)
}

// PointsToInches converts points to inches, the unit Chrome's print API expects.
func PointsToInches(pt float64) float64 {
	return pt / PointsPerInch
}

// ParseLength parses a CSS length ("210mm", "8.5in", "816px", "816")
// and returns its value in points. A bare number is taken as pixels.
func ParseLength(s string) (float64, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidLength)
	}

	unit := "px"
	if len(v) > 2 {
		if _, ok := pointsPerUnit[v[len(v)-2:]]; ok {
			unit = v[len(v)-2:]
			v = strings.TrimSpace(v[:len(v)-2])
		}
	}

	n, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLength, s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidLength, s)
	}

	return round2(n * pointsPerUnit[unit]), nil
}

func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
