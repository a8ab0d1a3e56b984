package df

import (
	"fmt"
	"time"
)

// Atomic holds a single value, such as a parameter passed to a column function.
type Atomic struct {
	dt DataTypes

	f *float64
	i *int
	s *string
	d *time.Time
}

func NewAtomic(x any, dt DataTypes) *Atomic {
	var (
		v  any
		ok bool
	)
	if v, ok = toDataType(x, dt); !ok {
		return nil
	}

	switch dt {
	case DTfloat:
		f := v.(float64)
		return &Atomic{dt: dt, f: &f}
	case DTint:
		i := v.(int)
		return &Atomic{dt: dt, i: &i}
	case DTstring:
		s := v.(string)
		return &Atomic{dt: dt, s: &s}
	case DTdate:
		d := v.(time.Time)
		return &Atomic{dt: dt, d: &d}
	}

	return nil
}

// ParseAtomic reads a text parameter as the narrowest type that fits it.
func ParseAtomic(x string) *Atomic {
	return NewAtomic(x, BestType(x))
}

func (a *Atomic) AsFloat() (float64, error) {
	if v, ok := toFloat(a.AsAny()); ok {
		return v.(float64), nil
	}

	return 0, fmt.Errorf("cannot convert %v to float", a.AsAny())
}

func (a *Atomic) AsInt() (int, error) {
	if v, ok := toInt(a.AsAny()); ok {
		return v.(int), nil
	}

	return 0, fmt.Errorf("cannot convert %v to int", a.AsAny())
}

func (a *Atomic) AsString() string {
	v, _ := toString(a.AsAny())
	if s, ok := v.(string); ok {
		return s
	}

	return ""
}

func (a *Atomic) AsAny() any {
	if a.f != nil {
		return *a.f
	}
	if a.i != nil {
		return *a.i
	}
	if a.s != nil {
		return *a.s
	}
	if a.d != nil {
		return *a.d
	}

	return nil
}

func (a *Atomic) AtomType() DataTypes {
	return a.dt
}

//  *********** DataTypes ***********

// DataTypes are the types of data that the package supports
type DataTypes uint8

// values of DataTypes
const (
	DTunknown DataTypes = 0 + iota
	DTstring
	DTfloat
	DTint
	DTdate
	DTany // keep as last entry
)

// MaxDT is max value of DataTypes type
const MaxDT = DTany

var dtNames = [...]string{"DTunknown", "DTstring", "DTfloat", "DTint", "DTdate", "DTany"}

func (d DataTypes) String() string {
	if d > MaxDT {
		return fmt.Sprintf("DataTypes(%d)", d)
	}

	return dtNames[d]
}

func DTFromString(nm string) DataTypes {
	pos := Position(nm, dtNames[:])
	if pos < 0 {
		return DTunknown
	}

	return DataTypes(uint8(pos))
}

func (d DataTypes) IsNumeric() bool {
	return d == DTfloat || d == DTint
}
