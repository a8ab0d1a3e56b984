package df

import (
	_ "embed"
	"fmt"
	"math"
	"sort"

	d "github.com/invertedv/countyvote"
)

var (
	//go:embed funcs/functions.txt
	functions string
)

// rowFn computes one output element from the float values of a row. ok == false yields a missing element.
type rowFn func(params, x []float64) (val float64, ok bool)

func sumRow(_, x []float64) (float64, bool) {
	s := 0.0
	for _, xv := range x {
		s += xv
	}

	return s, true
}

func divideRow(_, x []float64) (float64, bool) {
	if x[1] == 0 {
		return 0, false
	}

	return x[0] / x[1], true
}

func complementRow(_, x []float64) (float64, bool) {
	return 1 - x[0], true
}

func nonzeroRow(_, x []float64) (float64, bool) {
	return x[0], x[0] != 0
}

func gtRow(params, x []float64) (float64, bool) {
	if x[0] > params[0] {
		return 1, true
	}

	return 0, true
}

var rowFns = map[string]rowFn{
	"sumRow":        sumRow,
	"divideRow":     divideRow,
	"complementRow": complementRow,
	"gtRow":         gtRow,
	"nonzeroRow":    nonzeroRow,
}

// StandardFunctions returns the functions available to DF.Apply:
//
//	sum(x1,...,xn)  row sum
//	divide(n,d)     n/d, missing if d is 0
//	complement(x)   1-x
//	gt(t,x)         1 if x > t, else 0
//	nonzero(x)      x, missing if x is 0
//
// The result is missing whenever any input is missing.
func StandardFunctions() d.Fns {
	fm := d.LoadFunctions(functions)

	var names []string
	for k := range fm {
		names = append(names, k)
	}
	sort.Strings(names)

	var fns d.Fns
	for _, nm := range names {
		spec := fm[nm]
		rf, ok := rowFns[spec.FnDetail]
		if !ok {
			panic(fmt.Errorf("no Go function %s for %s", spec.FnDetail, spec.Name))
		}

		fns = append(fns, buildFn(spec, rf))
	}

	return fns
}

// buildFn creates a d.Fn from *d.FnSpec.
func buildFn(spec *d.FnSpec, rf rowFn) d.Fn {
	return func(info bool, params []*d.Atomic, inputs ...d.Column) *d.FnReturn {
		if info {
			return &d.FnReturn{Name: spec.Name, Inputs: spec.Inputs, Output: spec.Outputs, Params: spec.Params, Varying: spec.Varying}
		}

		var p []float64
		for _, pm := range params {
			pv, e := pm.AsFloat()
			if e != nil {
				return &d.FnReturn{Err: fmt.Errorf("parameter to %s: %w", spec.Name, e)}
			}

			p = append(p, pv)
		}

		var vecs []*d.Vector
		for _, inp := range inputs {
			vecs = append(vecs, inp.Data())
		}

		var (
			v *d.Vector
			e error
		)
		if v, e = applyRows(rf, p, spec.Outputs[0], vecs); e != nil {
			return &d.FnReturn{Err: fmt.Errorf("%s: %w", spec.Name, e)}
		}

		return returnCol(v)
	}
}

// applyRows runs rf over each row of vecs. A row with any missing (or NaN) input yields a missing output.
func applyRows(rf rowFn, params []float64, out d.DataTypes, vecs []*d.Vector) (*d.Vector, error) {
	n := vecs[0].Len()

	var xs [][]float64
	for _, v := range vecs {
		if v.Len() != n {
			return nil, fmt.Errorf("inputs have lengths %d and %d", n, v.Len())
		}

		x, e := v.AsFloat()
		if e != nil {
			return nil, e
		}

		xs = append(xs, x)
	}

	vOut := d.MakeVector(out, n)
	row := make([]float64, len(vecs))
	for ind := 0; ind < n; ind++ {
		na := false
		for c, v := range vecs {
			if v.IsNA(ind) || math.IsNaN(xs[c][ind]) {
				na = true
				break
			}

			row[c] = xs[c][ind]
		}

		var (
			val float64
			ok  bool
		)
		if !na {
			val, ok = rf(params, row)
		}

		if na || !ok {
			_ = vOut.SetNA(ind)
			continue
		}

		if e := vOut.SetAny(val, ind); e != nil {
			return nil, e
		}
	}

	return vOut, nil
}

func returnCol(v *d.Vector) *d.FnReturn {
	var (
		outCol *Col
		e      error
	)

	if outCol, e = NewCol(v, v.VectorType()); e != nil {
		return &d.FnReturn{Err: e}
	}

	return &d.FnReturn{Value: outCol}
}
