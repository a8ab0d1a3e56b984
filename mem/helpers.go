package df

import (
	"fmt"
	"math"
	"strings"
	"time"

	d "github.com/invertedv/countyvote"
)

func prettyPrint(header []string, cols ...any) string {
	var colsS [][]string

	for ind := 0; ind < len(cols); ind++ {
		colsS = append(colsS, stringSlice(header[ind], cols[ind]))
	}

	out := ""
	for row := 0; row < len(colsS[0]); row++ {
		for c := 0; c < len(colsS); c++ {
			out += colsS[c][row]
		}
		out += "\n"
	}

	return out
}

func stringSlice(header string, inVal any) []string {
	const pad = 3
	c := []string{header}

	format := ""
	n := 0
	var dt d.DataTypes
	switch x := inVal.(type) {
	case []float64:
		format = selectFormat(x)
		n = len(x)
		dt = d.DTfloat
	case []int:
		format = "%d"
		n = len(x)
		dt = d.DTint
	case []string:
		n = len(x)
		dt = d.DTstring
	case []time.Time:
		n = len(x)
		dt = d.DTdate
	default:
		panic(fmt.Errorf("unsupported data type"))
	}

	maxLen := len(header)
	for ind := 0; ind < n; ind++ {
		var el string
		switch x := inVal.(type) {
		case []float64:
			el = d.NAstring
			if !math.IsNaN(x[ind]) {
				el = fmt.Sprintf(format, x[ind])
			}
		case []int:
			el = fmt.Sprintf(format, x[ind])
		case []string:
			el = x[ind]
		case []time.Time:
			el = x[ind].Format("2006-01-02")
		}

		if l := len(el); l > maxLen {
			maxLen = l
		}

		c = append(c, el)
	}

	for ind, cx := range c {
		padded := cx + strings.Repeat(" ", maxLen-len(cx)+pad)
		if dt == d.DTint || dt == d.DTfloat {
			padded = strings.Repeat(" ", maxLen-len(cx)+pad) + cx
		}
		c[ind] = padded
	}

	return c
}

// selectFormat picks the number of decimal places from the range of the non-NaN values of x.
func selectFormat(x []float64) string {
	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, xv := range x {
		if math.IsNaN(xv) {
			continue
		}

		xva := math.Abs(xv)
		minX = math.Min(minX, xva)
		maxX = math.Max(maxX, xva)
	}

	if minX > maxX {
		return "%.1f"
	}

	rangeX := maxX - minX
	l := math.Log10(rangeX)
	var dp int
	switch {
	case rangeX == 0:
		dp = 2
	case l < -1:
		dp = int(math.Abs(l)+0.5) + 1
	case l > 1:
		dp = 0
	default:
		dp = 2
	}

	return "%." + fmt.Sprintf("%d", dp) + "f"
}

// keyString joins the text of the key columns at row.
func keyString(row int, keys []*d.Vector) (string, bool) {
	parts := make([]string, len(keys))
	for ind, k := range keys {
		if k.IsNA(row) {
			return "", false
		}

		parts[ind] = k.ElementString(row)
	}

	return strings.Join(parts, "\x00"), true
}
