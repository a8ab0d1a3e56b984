package df

import (
	"fmt"
	"math"
	"time"
)

// Vector is the data of a column: a typed slice plus a mask of missing elements.
// na is nil until the first element is marked missing. Missing float elements hold NaN.
type Vector struct {
	dt DataTypes

	data any
	na   []bool
}

func NewVector(data any, dt DataTypes) (*Vector, error) {
	var (
		v  any
		ok bool
	)
	if v, ok = toSlc(data, dt); !ok {
		return nil, fmt.Errorf("cannot make vector of type %s", dt)
	}

	return &Vector{dt: dt, data: v}, nil
}

func MakeVector(dt DataTypes, n int) *Vector {
	switch dt {
	case DTfloat:
		return &Vector{dt: dt, data: make([]float64, n)}
	case DTint:
		return &Vector{dt: dt, data: make([]int, n)}
	case DTstring:
		return &Vector{dt: dt, data: make([]string, n)}
	case DTdate:
		return &Vector{dt: dt, data: make([]time.Time, n)}
	default:
		panic(fmt.Errorf("cannot make Vector with data type %s", dt))
	}
}

// *********** Setters ***********

func (v *Vector) check(dt DataTypes, indx int) error {
	if v.VectorType() != dt {
		return fmt.Errorf("vector isn't %s", dt)
	}

	if indx < 0 || indx >= v.Len() {
		return fmt.Errorf("index %d out of range", indx)
	}

	return nil
}

func (v *Vector) SetFloat(val float64, indx int) error {
	if e := v.check(DTfloat, indx); e != nil {
		return e
	}

	v.data.([]float64)[indx] = val
	v.clearNA(indx)

	return nil
}

func (v *Vector) SetInt(val, indx int) error {
	if e := v.check(DTint, indx); e != nil {
		return e
	}

	v.data.([]int)[indx] = val
	v.clearNA(indx)

	return nil
}

func (v *Vector) SetString(val string, indx int) error {
	if e := v.check(DTstring, indx); e != nil {
		return e
	}

	v.data.([]string)[indx] = val
	v.clearNA(indx)

	return nil
}

func (v *Vector) SetDate(val time.Time, indx int) error {
	if e := v.check(DTdate, indx); e != nil {
		return e
	}

	v.data.([]time.Time)[indx] = val
	v.clearNA(indx)

	return nil
}

// SetAny converts val to the vector's type and stores it. A nil val marks the element missing.
func (v *Vector) SetAny(val any, indx int) error {
	if val == nil {
		return v.SetNA(indx)
	}

	var (
		x  any
		ok bool
	)
	if x, ok = toDataType(val, v.dt); !ok {
		return fmt.Errorf("cannot convert %v to %s", val, v.dt)
	}

	switch v.dt {
	case DTfloat:
		return v.SetFloat(x.(float64), indx)
	case DTint:
		return v.SetInt(x.(int), indx)
	case DTstring:
		return v.SetString(x.(string), indx)
	case DTdate:
		return v.SetDate(x.(time.Time), indx)
	}

	return fmt.Errorf("unsupported data type %s in SetAny", v.dt)
}

// SetNA marks element indx as missing.
func (v *Vector) SetNA(indx int) error {
	if indx < 0 || indx >= v.Len() {
		return fmt.Errorf("index %d out of range", indx)
	}

	if v.na == nil {
		v.na = make([]bool, v.Len())
	}

	v.na[indx] = true

	switch v.dt {
	case DTfloat:
		v.data.([]float64)[indx] = math.NaN()
	case DTint:
		v.data.([]int)[indx] = 0
	case DTstring:
		v.data.([]string)[indx] = ""
	case DTdate:
		v.data.([]time.Time)[indx] = time.Time{}
	}

	return nil
}

func (v *Vector) clearNA(indx int) {
	if v.na != nil {
		v.na[indx] = false
	}
}

// *********** Getters ***********

func (v *Vector) VectorType() DataTypes {
	return v.dt
}

func (v *Vector) Data() *Vector {
	return v
}

func (v *Vector) AsAny() any {
	return v.data
}

// IsNA returns true if element indx is missing.
func (v *Vector) IsNA(indx int) bool {
	return v.na != nil && v.na[indx]
}

// NACount is the number of missing elements.
func (v *Vector) NACount() int {
	n := 0
	for _, x := range v.na {
		if x {
			n++
		}
	}

	return n
}

func (v *Vector) AsFloat() ([]float64, error) {
	if v.VectorType() == DTfloat {
		return v.data.([]float64), nil
	}

	if v.VectorType() == DTint {
		xOut := make([]float64, v.Len())
		for ind, xx := range v.data.([]int) {
			xOut[ind] = float64(xx)
			if v.IsNA(ind) {
				xOut[ind] = math.NaN()
			}
		}

		return xOut, nil
	}

	var vx *Vector
	if vx = v.Coerce(DTfloat); vx == nil {
		return nil, fmt.Errorf("cannot convert %s to float", v.dt)
	}

	return vx.data.([]float64), nil
}

func (v *Vector) AsInt() ([]int, error) {
	if v.VectorType() == DTint {
		return v.data.([]int), nil
	}

	var vx *Vector
	if vx = v.Coerce(DTint); vx == nil {
		return nil, fmt.Errorf("cannot convert %s to int", v.dt)
	}

	return vx.data.([]int), nil
}

func (v *Vector) AsString() ([]string, error) {
	if v.dt == DTstring {
		return v.data.([]string), nil
	}

	var vx *Vector
	if vx = v.Coerce(DTstring); vx == nil {
		return nil, fmt.Errorf("cannot convert %s to string", v.dt)
	}

	return vx.data.([]string), nil
}

func (v *Vector) AsDate() ([]time.Time, error) {
	if v.dt == DTdate {
		return v.data.([]time.Time), nil
	}

	var vx *Vector
	if vx = v.Coerce(DTdate); vx == nil {
		return nil, fmt.Errorf("cannot convert %s to date", v.dt)
	}

	return vx.data.([]time.Time), nil
}

// Element returns element indx, nil if it is missing.
func (v *Vector) Element(indx int) any {
	if indx < 0 || indx >= v.Len() {
		panic(fmt.Errorf("index out of range"))
	}

	if v.IsNA(indx) {
		return nil
	}

	switch v.dt {
	case DTfloat:
		return v.data.([]float64)[indx]
	case DTint:
		return v.data.([]int)[indx]
	case DTstring:
		return v.data.([]string)[indx]
	case DTdate:
		return v.data.([]time.Time)[indx]
	default:
		panic(fmt.Errorf("error in Element"))
	}
}

// ElementString returns element indx formatted as text, NAstring if missing.
func (v *Vector) ElementString(indx int) string {
	x := v.Element(indx)
	if x == nil {
		return NAstring
	}

	s, _ := toString(x)

	return s.(string)
}

func (v *Vector) Len() int {
	switch v.dt {
	case DTfloat:
		return len(v.data.([]float64))
	case DTint:
		return len(v.data.([]int))
	case DTstring:
		return len(v.data.([]string))
	case DTdate:
		return len(v.data.([]time.Time))
	default:
		return 0
	}
}

// *********** Transforms ***********

func (v *Vector) Copy() *Vector {
	var data any
	switch v.dt {
	case DTfloat:
		data = append([]float64(nil), v.data.([]float64)...)
	case DTint:
		data = append([]int(nil), v.data.([]int)...)
	case DTstring:
		data = append([]string(nil), v.data.([]string)...)
	case DTdate:
		data = append([]time.Time(nil), v.data.([]time.Time)...)
	}

	vOut := &Vector{dt: v.dt, data: data}
	if v.na != nil {
		vOut.na = append([]bool(nil), v.na...)
	}

	return vOut
}

// Take builds a new vector from the rows of v listed in rows. A row of -1 yields a missing element.
func (v *Vector) Take(rows []int) *Vector {
	vOut := MakeVector(v.dt, len(rows))
	for ind, r := range rows {
		if r < 0 || v.IsNA(r) {
			_ = vOut.SetNA(ind)
			continue
		}

		switch v.dt {
		case DTfloat:
			vOut.data.([]float64)[ind] = v.data.([]float64)[r]
		case DTint:
			vOut.data.([]int)[ind] = v.data.([]int)[r]
		case DTstring:
			vOut.data.([]string)[ind] = v.data.([]string)[r]
		case DTdate:
			vOut.data.([]time.Time)[ind] = v.data.([]time.Time)[r]
		}
	}

	return vOut
}

// Coerce returns a copy of v converted to type to, nil if any non-missing element won't convert.
func (v *Vector) Coerce(to DataTypes) *Vector {
	vOut := MakeVector(to, v.Len())
	for ind := 0; ind < v.Len(); ind++ {
		if e := vOut.SetAny(v.Element(ind), ind); e != nil {
			return nil
		}
	}

	return vOut
}
