package pipeline

import (
	"fmt"
	"log"
	"math"

	d "github.com/invertedv/countyvote"
	m "github.com/invertedv/countyvote/mem"
)

// RegSuffix is appended to registration columns whose names are taken by the other sources.
const RegSuffix = "Reg"

var (
	// Keys identify a county in every source.
	Keys = []string{"State", "County"}

	// RegistrationDrop are the identifying and snapshot columns of the registration data that
	// repeat what the keys and the query already say.
	RegistrationDrop = []string{"CountyName", "StateAbbr", "Year", "Month"}
)

type Opt func(o *options)

type options struct {
	ageCheck bool
	steps    []Step
}

// WithAgeCheck logs a warning for each county whose age buckets don't add to TotalPopulation.
func WithAgeCheck() Opt {
	return func(o *options) {
		o.ageCheck = true
	}
}

// WithSteps replaces the derivation steps run after the join.
func WithSteps(steps []Step) Opt {
	return func(o *options) {
		o.steps = steps
	}
}

// Run joins registration and results to counties on Keys and appends the derived columns of Steps.
// The output has one row per row of counties, in the same order. The inputs are not modified.
func Run(counties, registration, results *m.DF, opts ...Opt) (*m.DF, error) {
	o := &options{steps: Steps()}
	for _, opt := range opts {
		opt(o)
	}

	sources := []struct {
		name string
		df   *m.DF
	}{{"counties", counties}, {"registration", registration}, {"results", results}}

	for _, src := range sources {
		if src.df == nil {
			return nil, fmt.Errorf("no %s data", src.name)
		}

		if e := src.df.CheckKeys(Keys...); e != nil {
			return nil, fmt.Errorf("%s: %w", src.name, e)
		}
	}

	var (
		reg *m.DF
		e   error
	)
	if reg, e = PrepareRegistration(registration, counties, results); e != nil {
		return nil, e
	}

	var out *m.DF
	if out, e = counties.Join(reg, Keys...); e != nil {
		return nil, fmt.Errorf("join registration: %w", e)
	}

	if out, e = out.Join(results, Keys...); e != nil {
		return nil, fmt.Errorf("join results: %w", e)
	}

	if ex := ValidateSteps(out.ColumnNames(), o.steps); ex != nil {
		return nil, ex
	}

	for _, s := range o.steps {
		if ex := out.Apply(s.Output, s.Op, s.args()...); ex != nil {
			return nil, ex
		}
	}

	if o.ageCheck {
		var rows []int
		if rows, e = CheckAgeTotals(out); e != nil {
			return nil, e
		}

		for _, r := range rows {
			log.Printf("age buckets don't sum to TotalPopulation for State %s County %s",
				out.Column("State").Data().ElementString(r), out.Column("County").Data().ElementString(r))
		}
	}

	return out, nil
}

// PrepareRegistration returns a copy of registration ready to join: the RegistrationDrop columns are
// removed and any other non-key column whose name is used by one of others gets RegSuffix.
func PrepareRegistration(registration *m.DF, others ...*m.DF) (*m.DF, error) {
	reg, ok := registration.Copy().(*m.DF)
	if !ok || reg == nil {
		return nil, fmt.Errorf("cannot copy registration data")
	}

	for _, cn := range RegistrationDrop {
		if d.Has(cn, Keys) || !reg.HasColumns(cn) {
			continue
		}

		if e := reg.DropColumns(cn); e != nil {
			return nil, e
		}
	}

	for _, cn := range reg.ColumnNames() {
		if d.Has(cn, Keys) {
			continue
		}

		taken := false
		for _, o := range others {
			if o != nil && o.HasColumns(cn) {
				taken = true
			}
		}

		if !taken {
			continue
		}

		if e := reg.RenameColumn(cn, cn+RegSuffix); e != nil {
			return nil, fmt.Errorf("registration: %w", e)
		}
	}

	return reg, nil
}

// CheckAgeTotals returns the rows of df where the age buckets are all present and don't add up to
// TotalPopulation.
func CheckAgeTotals(df *m.DF) ([]int, error) {
	const tol = 1e-9

	var (
		total []float64
		e     error
	)
	c := df.Column("TotalPopulation")
	if c == nil {
		return nil, fmt.Errorf("no TotalPopulation column")
	}

	if total, e = c.Data().AsFloat(); e != nil {
		return nil, e
	}

	sums := make([]float64, df.RowCount())
	skip := make([]bool, df.RowCount())
	for r := range skip {
		skip[r] = c.Data().IsNA(r)
	}

	for _, b := range AgeBuckets() {
		cb := df.Column(b)
		if cb == nil {
			return nil, fmt.Errorf("no %s column", b)
		}

		var x []float64
		if x, e = cb.Data().AsFloat(); e != nil {
			return nil, e
		}

		for r := range sums {
			if cb.Data().IsNA(r) {
				skip[r] = true
				continue
			}

			sums[r] += x[r]
		}
	}

	var rows []int
	for r := range sums {
		if !skip[r] && math.Abs(sums[r]-total[r]) > tol {
			rows = append(rows, r)
		}
	}

	return rows, nil
}
