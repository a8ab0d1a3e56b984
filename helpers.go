package df

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var dateFormats = []string{"20060102", "1/2/2006", "01/02/2006", "Jan 2, 2006", "January 2, 2006",
	"Jan 2 2006", "January 2 2006", "2006-01-02"}

// NAstring is how a missing element is written to and recognized in text files.
const NAstring = "NA"

// *********** Conversions ***********

func toFloat(x any) (any, bool) {
	if f, ok := x.(float64); ok {
		return f, true
	}

	if s, ok := x.(string); ok {
		if f, e := strconv.ParseFloat(strings.TrimSpace(s), 64); e == nil {
			return f, true
		}

		return nil, false
	}

	if b, ok := x.([]byte); ok {
		return toFloat(string(b))
	}

	xv := reflect.ValueOf(x)
	if !xv.IsValid() {
		return nil, false
	}

	if xv.CanFloat() {
		return xv.Float(), true
	}

	if xv.CanInt() {
		return float64(xv.Int()), true
	}

	if xv.CanUint() {
		return float64(xv.Uint()), true
	}

	return nil, false
}

func toInt(x any) (any, bool) {
	if i, ok := x.(int); ok {
		return i, true
	}

	if s, ok := x.(string); ok {
		if i, e := strconv.ParseInt(strings.TrimSpace(s), 10, 64); e == nil {
			return int(i), true
		}

		return nil, false
	}

	if b, ok := x.([]byte); ok {
		return toInt(string(b))
	}

	xv := reflect.ValueOf(x)
	if !xv.IsValid() {
		return nil, false
	}

	if xv.CanInt() {
		return int(xv.Int()), true
	}

	if xv.CanUint() {
		return int(xv.Uint()), true
	}

	// only whole numbers
	if xv.CanFloat() {
		if f := xv.Float(); f == math.Trunc(f) {
			return int(f), true
		}
	}

	return nil, false
}

func toString(x any) (any, bool) {
	switch xx := x.(type) {
	case string:
		return xx, true
	case []byte:
		return string(xx), true
	case float64:
		return strconv.FormatFloat(xx, 'g', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(xx), 'g', -1, 32), true
	case int:
		return strconv.Itoa(xx), true
	case int64:
		return strconv.FormatInt(xx, 10), true
	case int32:
		return strconv.FormatInt(int64(xx), 10), true
	case time.Time:
		return xx.Format("2006-01-02"), true
	}

	return nil, false
}

func toDate(x any) (any, bool) {
	if d, ok := x.(time.Time); ok {
		return d, true
	}

	xv := reflect.ValueOf(x)
	if !xv.IsValid() {
		return nil, false
	}

	if xv.CanInt() {
		return toDate(fmt.Sprintf("%d", xv.Int()))
	}

	if xv.CanUint() {
		return toDate(fmt.Sprintf("%d", xv.Uint()))
	}

	if d, ok := x.(string); ok {
		for _, fmtx := range dateFormats {
			if dt, e := time.Parse(fmtx, strings.ReplaceAll(d, "'", "")); e == nil {
				return dt, true
			}
		}
	}

	return nil, false
}

func toDataType(x any, dt DataTypes) (any, bool) {
	switch dt {
	case DTfloat:
		return toFloat(x)
	case DTint:
		return toInt(x)
	case DTdate:
		return toDate(x)
	case DTstring:
		return toString(x)
	case DTany:
		return x, true
	}

	return nil, false
}

// BestType returns the narrowest type a text field can be read as: int, then float, then date, then string.
// Dates must be in a separator-ful format so that 8-digit integers (e.g. FIPS codes) stay ints.
func BestType(xIn string) DataTypes {
	x := strings.TrimSpace(xIn)
	if _, e := strconv.ParseInt(x, 10, 64); e == nil {
		return DTint
	}

	if _, e := strconv.ParseFloat(x, 64); e == nil {
		return DTfloat
	}

	if _, e := time.Parse("2006-01-02", x); e == nil {
		return DTdate
	}

	return DTstring
}

func WhatAmI(val any) DataTypes {
	switch val.(type) {
	case float64, []float64:
		return DTfloat
	case int, []int:
		return DTint
	case string, []string:
		return DTstring
	case time.Time, []time.Time:
		return DTdate
	default:
		return DTunknown
	}
}

func toSlc(xIn any, target DataTypes) (any, bool) {
	typSlc := []reflect.Type{reflect.TypeOf([]float64{}), reflect.TypeOf([]int{}), reflect.TypeOf([]string{""}), reflect.TypeOf([]time.Time{})}
	toFns := []func(a any) (any, bool){toFloat, toInt, toString, toDate}

	x := reflect.ValueOf(xIn)
	if !x.IsValid() {
		return nil, false
	}

	var indx int
	switch target {
	case DTfloat:
		indx = 0
	case DTint:
		indx = 1
	case DTstring:
		indx = 2
	case DTdate:
		indx = 3
	default:
		return nil, false
	}

	outType := typSlc[indx]

	// nothing to do
	if x.Type() == outType {
		return xIn, true
	}

	toFn := toFns[indx]
	if x.Kind() == reflect.Slice {
		xOut := reflect.MakeSlice(outType, x.Len(), x.Len())
		for ind := 0; ind < x.Len(); ind++ {
			var (
				val any
				ok  bool
			)

			if val, ok = toFn(x.Index(ind).Interface()); !ok {
				return nil, false
			}

			xOut.Index(ind).Set(reflect.ValueOf(val))
		}

		return xOut.Interface(), true
	}

	// input is not a slice:
	if val, ok := toFn(xIn); ok {
		xOut := reflect.MakeSlice(outType, 1, 1)
		xOut.Index(0).Set(reflect.ValueOf(val))
		return xOut.Interface(), true
	}

	return nil, false
}

// *********** Other ***********

func Has[C comparable](needle C, haystack []C) bool {
	return Position(needle, haystack) >= 0
}

func Position[C comparable](needle C, haystack []C) int {
	for ind, straw := range haystack {
		if needle == straw {
			return ind
		}
	}

	return -1
}

// RandomLetters generates a string of length "length" by randomly choosing from a-z
func RandomLetters(length int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"

	var (
		randN []int64
		e     error
	)
	if randN, e = randUnifInt(length, len(letters)); e != nil {
		panic(e)
	}

	name := ""
	for ind := 0; ind < length; ind++ {
		name += letters[randN[ind] : randN[ind]+1]
	}

	return name
}

// randUnifInt generates a slice whose elements are random U[0,upper) int64's
func randUnifInt(n, upper int) ([]int64, error) {
	const bytesPerInt = 8

	// generate random bytes
	b1 := make([]byte, bytesPerInt*n)
	if _, e := rand.Read(b1); e != nil {
		return nil, e
	}

	outInts := make([]int64, n)
	rdr := bytes.NewReader(b1)

	for ind := 0; ind < n; ind++ {
		r, e := rand.Int(rdr, big.NewInt(int64(upper)))
		if e != nil {
			return nil, e
		}
		outInts[ind] = r.Int64()
	}

	return outInts, nil
}

func validName(name string) error {
	const illegal = "!@#$%^&*()=+-;:'`/.,>< ~" + `"`

	if name == "" {
		return fmt.Errorf("empty column name")
	}

	if strings.ContainsAny(name, illegal) {
		return fmt.Errorf("illegal column name: %s", name)
	}

	return nil
}
