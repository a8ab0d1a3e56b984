package df

import (
	"fmt"
	"sort"

	d "github.com/invertedv/countyvote"
)

type Col struct {
	*d.Vector

	*d.ColCore
}

// ***************** Col - Create *****************

// NewCol creates a column from a slice or a *d.Vector. If data is a *d.Vector, dt is ignored.
func NewCol(data any, dt d.DataTypes, opts ...d.ColOpt) (*Col, error) {
	var col *Col
	if v, ok := data.(*d.Vector); ok {
		cx, _ := d.NewColCore(v.VectorType())
		col = &Col{
			Vector:  v,
			ColCore: cx,
		}
	}

	if col == nil {
		var (
			v *d.Vector
			e error
		)
		if v, e = d.NewVector(data, dt); e != nil {
			return nil, e
		}

		cy, _ := d.NewColCore(dt)
		col = &Col{
			Vector:  v,
			ColCore: cy,
		}
	}

	for _, opt := range opts {
		if e := opt(col); e != nil {
			return nil, e
		}
	}

	return col, nil
}

// ***************** Col - Methods *****************

func (c *Col) Copy() d.Column {
	col := &Col{
		Vector:  c.Data().Copy(),
		ColCore: c.Core().Copy(),
	}

	return col
}

func (c *Col) String() string {
	name := c.Name()
	if name == "" {
		name = "unnamed"
	}

	t := fmt.Sprintf("column: %s\ntype: %s\nmissing: %d\n", name, c.DataType(), c.NACount())

	if !c.DataType().IsNumeric() {
		vals, counts := valueCounts(c.Vector)
		header := []string{name, "count"}

		return t + prettyPrint(header, vals, counts)
	}

	s := summarize(name, c.Vector)
	cats := []string{"min", "lq", "median", "mean", "uq", "max", "sd", "n"}
	vals := []float64{s.Min, s.Q25, s.Median, s.Mean, s.Q75, s.Max, s.SD, float64(s.N)}
	header := []string{"metric", "value"}

	return t + prettyPrint(header, cats, vals)
}

// ***************** Helpers *****************

// valueCounts returns the distinct non-missing values of v as text, most frequent first.
func valueCounts(v *d.Vector) (vals []string, counts []int) {
	m := make(map[string]int)
	for ind := 0; ind < v.Len(); ind++ {
		if v.IsNA(ind) {
			continue
		}

		m[v.ElementString(ind)]++
	}

	for k := range m {
		vals = append(vals, k)
	}

	sort.Slice(vals, func(i, j int) bool {
		if m[vals[i]] != m[vals[j]] {
			return m[vals[i]] > m[vals[j]]
		}

		return vals[i] < vals[j]
	})

	for _, k := range vals {
		counts = append(counts, m[k])
	}

	return vals, counts
}
