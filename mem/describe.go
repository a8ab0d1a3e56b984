package df

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"gonum.org/v1/gonum/stat"

	d "github.com/invertedv/countyvote"
)

// Stats are the descriptive statistics of one column, computed over its non-missing elements.
// Statistics of a column with no non-missing elements are NaN.
type Stats struct {
	Name    string
	N       int
	Missing int
	Mean    float64
	SD      float64
	Min     float64
	Q25     float64
	Median  float64
	Q75     float64
	Max     float64
}

type Summary []*Stats

var summaryHeader = []string{"column", "n", "missing", "mean", "sd", "min", "q25", "median", "q75", "max"}

// Describe computes Stats for colNames, every numeric column of df if colNames is empty.
func Describe(df d.DF, colNames ...string) (Summary, error) {
	if len(colNames) == 0 {
		for _, cn := range df.ColumnNames() {
			if df.Column(cn).DataType().IsNumeric() {
				colNames = append(colNames, cn)
			}
		}
	}

	var s Summary
	for _, cn := range colNames {
		c := df.Column(cn)
		if c == nil {
			return nil, fmt.Errorf("column %s not found in Describe", cn)
		}

		if !c.DataType().IsNumeric() {
			return nil, fmt.Errorf("column %s is %s, Describe needs a numeric column", cn, c.DataType())
		}

		s = append(s, summarize(cn, c.Data()))
	}

	return s, nil
}

// Get returns the Stats for colName, nil if it's not in s.
func (s Summary) Get(colName string) *Stats {
	for _, st := range s {
		if st.Name == colName {
			return st
		}
	}

	return nil
}

// Render writes s as a table.
func (s Summary) Render(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(summaryHeader)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, st := range s {
		table.Append([]string{st.Name, strconv.Itoa(st.N), strconv.Itoa(st.Missing),
			fmtStat(st.Mean), fmtStat(st.SD), fmtStat(st.Min), fmtStat(st.Q25),
			fmtStat(st.Median), fmtStat(st.Q75), fmtStat(st.Max)})
	}

	table.Render()
}

func summarize(name string, v *d.Vector) *Stats {
	s := &Stats{Name: name}

	xs, _ := v.AsFloat()
	var x []float64
	for ind, xv := range xs {
		if v.IsNA(ind) || math.IsNaN(xv) {
			continue
		}

		x = append(x, xv)
	}

	s.N = len(x)
	s.Missing = v.Len() - s.N

	if s.N == 0 {
		nan := math.NaN()
		s.Mean, s.SD, s.Min, s.Q25, s.Median, s.Q75, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}

	sort.Float64s(x)
	s.Min, s.Max = x[0], x[len(x)-1]
	s.Q25 = stat.Quantile(0.25, stat.Empirical, x, nil)
	s.Median = stat.Quantile(0.5, stat.Empirical, x, nil)
	s.Q75 = stat.Quantile(0.75, stat.Empirical, x, nil)
	s.Mean = stat.Mean(x, nil)

	s.SD = math.NaN()
	if s.N > 1 {
		s.SD = stat.StdDev(x, nil)
	}

	return s
}

func fmtStat(x float64) string {
	if math.IsNaN(x) {
		return d.NAstring
	}

	return strconv.FormatFloat(x, 'g', 6, 64)
}
