package df

import (
	"fmt"
	"log"
	"strings"

	d "github.com/invertedv/countyvote"
)

// DF is an in-memory dataframe.
type DF struct {
	sourceQuery string
	funcs       d.Fns

	*d.DFcore
}

// ***************** DF - Create *****************

// NewDFcol creates a DF from cols. The columns become part of the DF and are not copied.
func NewDFcol(cols []*Col) (*DF, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("no columns in NewDFcol")
	}

	var cc []d.Column
	for _, c := range cols {
		cc = append(cc, c)
	}

	var (
		dfc *d.DFcore
		e   error
	)
	if dfc, e = d.NewDF(cc); e != nil {
		return nil, e
	}

	df := &DF{DFcore: dfc, funcs: StandardFunctions()}
	for _, c := range cols {
		if ex := d.ColParent(df)(c); ex != nil {
			return nil, ex
		}
	}

	return df, nil
}

// newDFvec creates a DF from parallel slices of names and vectors.
func newDFvec(names []string, vecs []*d.Vector) (*DF, error) {
	if len(names) != len(vecs) {
		return nil, fmt.Errorf("have %d names and %d columns", len(names), len(vecs))
	}

	var cols []*Col
	for ind, v := range vecs {
		var (
			c *Col
			e error
		)
		if c, e = NewCol(v, v.VectorType(), d.ColName(names[ind])); e != nil {
			return nil, e
		}

		cols = append(cols, c)
	}

	return NewDFcol(cols)
}

// DBLoad runs qry against dialect and returns the result as a DF. NULLs are missing.
func DBLoad(qry string, dialect *d.Dialect) (*DF, error) {
	var (
		vecs  []*d.Vector
		names []string
		e     error
	)
	if vecs, names, _, e = dialect.Load(qry); e != nil {
		return nil, e
	}

	var df *DF
	if df, e = newDFvec(names, vecs); e != nil {
		return nil, fmt.Errorf("%s: %w", qry, e)
	}

	df.sourceQuery = qry

	return df, nil
}

// FileLoad reads a CSV with a header row. Empty fields and "NA" are missing.
func FileLoad(fileName string) (*DF, error) {
	var (
		vecs  []*d.Vector
		names []string
		e     error
	)
	if vecs, names, _, e = d.NewFiles().Load(fileName); e != nil {
		return nil, e
	}

	var df *DF
	if df, e = newDFvec(names, vecs); e != nil {
		return nil, fmt.Errorf("%s: %w", fileName, e)
	}

	return df, nil
}

// ***************** DF - Methods *****************

// AppendColumn adds col, which must be a *Col, as the last column.
func (df *DF) AppendColumn(col d.Column) error {
	var (
		c  *Col
		ok bool
	)
	if c, ok = col.(*Col); !ok {
		return fmt.Errorf("AppendColumn requires *Col, got %T", col)
	}

	if e := df.DFcore.AppendColumn(c); e != nil {
		return e
	}

	return d.ColParent(df)(c)
}

// Apply runs the function opName and appends the result as column resultName. Inputs that are not
// columns of df are parameters to the function and must precede the columns, e.g.
//
//	df.Apply("majWhite", "gt", "0.5", "propWhite")
func (df *DF) Apply(resultName, opName string, inputs ...string) error {
	var (
		vals   []d.Column
		params []*d.Atomic
		fn     d.Fn
	)

	if fn = df.funcs.Get(opName); fn == nil {
		return fmt.Errorf("op %s to create %s not defined", opName, resultName)
	}

	doneParams := false
	for ind := 0; ind < len(inputs); ind++ {
		if c := df.Column(inputs[ind]); c != nil {
			doneParams = true
			vals = append(vals, c)
			continue
		}

		if doneParams {
			return fmt.Errorf("missing column %s for %s", inputs[ind], resultName)
		}

		var p *d.Atomic
		if p = d.ParseAtomic(inputs[ind]); p == nil {
			return fmt.Errorf("cannot parse parameter %s for %s", inputs[ind], resultName)
		}

		params = append(params, p)
	}

	if len(vals) == 0 {
		return fmt.Errorf("no input columns for %s", resultName)
	}

	var (
		col d.Column
		e   error
	)
	if col, e = d.RunFn(fn, params, vals); e != nil {
		return fmt.Errorf("%s := %s(%s): %w", resultName, opName, strings.Join(inputs, ","), e)
	}

	if ex := d.ColName(resultName)(col); ex != nil {
		return ex
	}

	return df.AppendColumn(col)
}

func (df *DF) Copy() d.DF {
	dfNew, e := NewDFcol(df.cols())
	if e != nil {
		log.Printf("DF.Copy: %v", e)
		return nil
	}

	dfNew.sourceQuery, dfNew.funcs = df.sourceQuery, df.funcs

	return dfNew
}

// Functions returns the functions available to Apply.
func (df *DF) Functions() d.Fns {
	return df.funcs
}

func (df *DF) RowCount() int {
	names := df.ColumnNames()
	if len(names) == 0 {
		return 0
	}

	return df.Column(names[0]).Len()
}

// SetFunctions replaces the functions available to Apply.
func (df *DF) SetFunctions(fns d.Fns) {
	df.funcs = fns
}

func (df *DF) SourceQuery() string {
	return df.sourceQuery
}

func (df *DF) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "rows: %d\n", df.RowCount())
	for c := df.First(); c != nil; c = df.Next() {
		sb.WriteString(c.String())
		sb.WriteString("\n")
	}

	return sb.String()
}
