package df

import (
	"fmt"
	"strings"
)

// Fn is the function signature for functions run by Apply.
//
//	info   - if info == true, then the function is not run but returns *FnReturn with info fields filled in (Name, Inputs, Output, Params, Varying)
//	params - constant parameters that precede the columns (e.g. a threshold).
//	inputs - the columns the function reads (required only if info=false).
type Fn func(info bool, params []*Atomic, inputs ...Column) *FnReturn

type Fns []Fn

func (fs Fns) Get(fnName string) Fn {
	for _, f := range fs {
		if f(true, nil).Name == fnName {
			return f
		}
	}

	return nil
}

// Names returns the names of the functions in fs.
func (fs Fns) Names() []string {
	var names []string
	for _, f := range fs {
		names = append(names, f(true, nil).Name)
	}

	return names
}

// FnReturn is the return type for Apply functions
type FnReturn struct {
	Value Column // return value of function

	Name string // name of function
	// An element of Inputs is a slice of data types that the function takes as inputs.  For instance,
	//   {DTfloat,DTint}
	// means that the function takes 2 inputs - the first float, the second int.  An int column is
	// accepted where a float is declared.
	Inputs [][]DataTypes

	// Output types corresponding to the input slices.
	Output []DataTypes

	Params int // number of constant parameters the function requires

	Varying bool // if true, the number of inputs varies.

	Err error
}

// RunFn checks params and inputs against the signature of fn and then runs it.
func RunFn(fn Fn, params []*Atomic, inputs []Column) (Column, error) {
	info := fn(true, nil)
	if len(params) != info.Params {
		return nil, fmt.Errorf("got %d parameters to %s, expected %d", len(params), info.Name, info.Params)
	}

	if !info.Varying && info.Inputs != nil && len(inputs) != len(info.Inputs[0]) {
		return nil, fmt.Errorf("got %d arguments to %s, expected %d", len(inputs), info.Name, len(info.Inputs[0]))
	}

	if info.Varying && info.Inputs != nil && len(inputs) < len(info.Inputs[0]) {
		return nil, fmt.Errorf("need at least %d arguments to %s", len(info.Inputs[0]), info.Name)
	}

	for _, inp := range inputs {
		if !accepts(info.Inputs, inp.DataType()) {
			return nil, fmt.Errorf("column %s has type %s, not valid for %s", inp.Name(), inp.DataType(), info.Name)
		}
	}

	var fnR *FnReturn
	if fnR = fn(false, params, inputs...); fnR.Err != nil {
		return nil, fnR.Err
	}

	return fnR.Value, nil
}

func accepts(sigs [][]DataTypes, dt DataTypes) bool {
	if sigs == nil {
		return true
	}

	for _, sig := range sigs {
		for _, s := range sig {
			if s == dt || s == DTany || (s == DTfloat && dt == DTint) {
				return true
			}
		}
	}

	return false
}

// *********

// FnSpec specifies a function that Apply will have access to.
type FnSpec struct {
	// Name is the name of the function Apply recognizes.
	Name string

	// FnDetail is the name of the Go function to call.
	FnDetail string

	// Inputs is a slice that lists all valid combinations of inputs.
	Inputs [][]DataTypes

	// Outputs is a slice that lists the outputs corresponding to each element of Inputs.
	Outputs []DataTypes

	// Params is the number of constant parameters that precede the columns.
	Params int

	// Varying is true if the number of inputs can vary.
	Varying bool
}

// Fmap maps the function name to its spec
type Fmap map[string]*FnSpec

// LoadFunctions loads functions from a string which is an embedded file.
// LoadFunctions expects functions to be separated by "\n"
// Within each line there are 6 fields separated by colons. The fields are:
//
//	function name
//	function detail
//	inputs
//	outputs
//	number of parameters
//	varying inputs (Y = yes).
//
// Inputs are sets of types with in braces separated by commas.
//
//	{int,int},{float,float}
//
// specifies the function takes two inputs which can be either {int,int} or {float,float}.
//
// Corresponding to each set of inputs is an output type.  In the above example, if the function always
// returns a float, the output would be:
//
//	float,float.
//
// Legal types are float, int, string and date.
func LoadFunctions(fns string) Fmap {
	m := make(Fmap)

	for spec := range strings.SplitSeq(fns, "\n") {
		details := strings.Split(strings.TrimSpace(spec), ":")
		if len(details) != 6 {
			continue
		}

		var np int
		if x, ok := toInt(details[4]); ok {
			np = x.(int)
		}

		s := &FnSpec{
			Name:     details[0],
			FnDetail: details[1],
			Inputs:   parseInputs(details[2]),
			Outputs:  parseOutputs(details[3]),
			Params:   np,
			Varying:  details[5] != "" && details[5][0] == 'Y',
		}

		m[s.Name] = s
	}

	return m
}

func parseInputs(inp string) [][]DataTypes {
	var outDT [][]DataTypes
	dts := strings.Split(inp, "{")
	for ind := 1; ind < len(dts); ind++ {
		s := strings.ReplaceAll(dts[ind], "},", "")
		s = strings.ReplaceAll(s, "}", "")
		if s != "" {
			outDT = append(outDT, parseOutputs(s))
		}
	}

	return outDT
}

func parseOutputs(outp string) []DataTypes {
	var outDT []DataTypes

	outs := strings.Split(outp, ",")
	for ind := range len(outs) {
		outDT = append(outDT, DTFromString("DT"+strings.TrimSpace(outs[ind])))
	}

	return outDT
}
