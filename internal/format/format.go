// Package format renders grid values for display.
package format

import (
	"math"
	"strconv"
)

// Currency formats n as dollars, scaled to M or K when large enough.
//
//	1500000 -> "$1.50M"
//	15000   -> "$15.00K"
//	27.5    -> "$27.50"
//
// The sign is carried through fixed-point formatting ("$-1.50M").
func Currency(n float64) string {
	abs := math.Abs(n)
	switch {
	case abs >= 1_000_000:
		return "$" + fixed2(n/1_000_000) + "M"
	case abs >= 1_000:
		return "$" + fixed2(n/1_000) + "K"
	default:
		return "$" + fixed2(n)
	}
}

// Number prints n in its shortest exact form, without grouping.
func Number(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Percent prints n followed by a literal percent sign.
func Percent(n float64) string {
	return Number(n) + "%"
}

func fixed2(n float64) string {
	return strconv.FormatFloat(n, 'f', 2, 64)
}
