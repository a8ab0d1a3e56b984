package pipeline

import (
	"testing"

	d "github.com/invertedv/countyvote"
	m "github.com/invertedv/countyvote/mem"
	"github.com/stretchr/testify/assert"
)

func runTest(t *testing.T, opts ...Opt) *m.DF {
	out, e := Run(testCounties(t), testRegistration(t), testResults(t), opts...)
	assert.Nil(t, e)

	return out
}

func TestRun_RowsAndColumns(t *testing.T) {
	counties := testCounties(t)
	out, e := Run(counties, testRegistration(t), testResults(t))
	assert.Nil(t, e)
	assert.Equal(t, counties.RowCount(), out.RowCount())

	seen := make(map[string]bool)
	for _, cn := range out.ColumnNames() {
		assert.False(t, seen[cn], cn)
		seen[cn] = true
	}

	assert.True(t, out.HasColumns("Other", "OtherReg", "Total", "rPct", "votedTrump"))
	for _, cn := range RegistrationDrop {
		assert.False(t, out.HasColumns(cn), cn)
	}

	for _, s := range Steps() {
		assert.True(t, out.HasColumns(s.Output), s.Output)
	}

	// left order is kept
	cty, _ := out.Column("County").Data().AsInt()
	assert.Equal(t, []int{1, 2, 3, 1, 2}, cty)
}

func TestRun_Proportions(t *testing.T) {
	out := runTest(t)
	for _, s := range Steps() {
		if s.Op != "divide" {
			continue
		}

		res := out.Column(s.Output).Data()
		num := out.Column(s.Inputs[0]).Data()
		den := out.Column(s.Inputs[1]).Data()
		n, _ := num.AsFloat()
		dn, _ := den.AsFloat()

		for r := 0; r < out.RowCount(); r++ {
			if den.IsNA(r) || num.IsNA(r) || dn[r] == 0 {
				assert.True(t, res.IsNA(r), "%s row %d", s.Output, r)
				continue
			}

			assert.Equal(t, n[r]/dn[r], res.Element(r), "%s row %d", s.Output, r)
		}
	}
}

func TestRun_CountyX(t *testing.T) {
	out := runTest(t)
	assert.Equal(t, 200.0, out.Column("totalKids").Data().Element(rowX))
	assert.Equal(t, 0.2, out.Column("propKids").Data().Element(rowX))
	assert.Equal(t, 0.8, out.Column("propAdultsNoTeens").Data().Element(rowX))
	assert.Equal(t, 850.0, out.Column("totalAdultsWithTeens").Data().Element(rowX))
	assert.Equal(t, 800.0, out.Column("totalAdultsNoTeens").Data().Element(rowX))
	assert.Equal(t, 0.14, out.Column("propElders").Data().Element(rowX))
	assert.Equal(t, 250.0/850.0, out.Column("propNeverMarried").Data().Element(rowX))
	assert.Equal(t, 0.125, out.Column("propNoHS").Data().Element(rowX))
	assert.Equal(t, 1, out.Column("majWhite").Data().Element(rowX))
	assert.Equal(t, 0, out.Column("majBlack").Data().Element(rowX))
}

func TestRun_VotedTrump(t *testing.T) {
	out := runTest(t)
	v := out.Column("votedTrump").Data()
	assert.Equal(t, 0, v.Element(rowX))
	assert.Equal(t, 1, v.Element(rowY))
	assert.Equal(t, 0, v.Element(rowZ))
}

func TestRun_MajorityBlack(t *testing.T) {
	out := runTest(t)
	assert.Equal(t, 0, out.Column("majWhite").Data().Element(rowZ))
	assert.Equal(t, 1, out.Column("majBlack").Data().Element(rowZ))
}

func TestRun_ZeroVotes(t *testing.T) {
	out := runTest(t)
	for _, cn := range []string{"votesCast", "propStein", "propJohnson", "propVoters"} {
		assert.True(t, out.Column(cn).Data().IsNA(rowW), cn)
	}

	// the raw count is kept
	assert.Equal(t, 0, out.Column("totalvotes").Data().Element(rowW))
	assert.Equal(t, 650.0, out.Column("votesCast").Data().Element(rowX))
	assert.Equal(t, 650.0/800.0, out.Column("propVoters").Data().Element(rowX))

	// the other counties are fine
	assert.Equal(t, 5.0/600.0, out.Column("propStein").Data().Element(rowY))
}

func TestRun_NoRegistration(t *testing.T) {
	out := runTest(t)

	regSourced := []string{"Democratic", "Republican", "Libertarian", "Green", "OtherReg", "Total",
		"propRegDemocratic", "propRegRepublican"}
	for _, cn := range regSourced {
		assert.True(t, out.Column(cn).Data().IsNA(rowZ), cn)
		assert.False(t, out.Column(cn).Data().IsNA(rowX), cn)
	}

	for _, s := range Steps() {
		if s.Output == "propRegDemocratic" || s.Output == "propRegRepublican" {
			continue
		}

		assert.False(t, out.Column(s.Output).Data().IsNA(rowZ), s.Output)
	}

	assert.Equal(t, 200.0/338.0, out.Column("propRegDemocratic").Data().Element(rowX))
}

func TestRun_NoResults(t *testing.T) {
	out := runTest(t)

	for _, cn := range []string{"Clinton", "Trump", "totalvotes", "rPct", "votesCast",
		"propJohnson", "propStein", "propVoters", "votedTrump"} {
		assert.True(t, out.Column(cn).Data().IsNA(rowV), cn)
		assert.False(t, out.Column(cn).Data().IsNA(rowY), cn)
	}

	// county and registration fields are still there
	assert.Equal(t, 0.2, out.Column("propKids").Data().Element(rowV))
	assert.Equal(t, 1, out.Column("majWhite").Data().Element(rowV))
	assert.Equal(t, 0.14, out.Column("propElders").Data().Element(rowV))
	assert.Equal(t, 150.0/415.0, out.Column("propRegDemocratic").Data().Element(rowV))
}

func TestRun_Idempotent(t *testing.T) {
	counties, registration, results := testCounties(t), testRegistration(t), testResults(t)
	before, _ := d.NewFiles().Bytes(registration)

	out1, e := Run(counties, registration, results)
	assert.Nil(t, e)
	out2, e := Run(counties, registration, results)
	assert.Nil(t, e)

	b1, e := d.NewFiles().Bytes(out1)
	assert.Nil(t, e)
	b2, e := d.NewFiles().Bytes(out2)
	assert.Nil(t, e)
	assert.Equal(t, b1, b2)

	// the inputs are untouched
	after, _ := d.NewFiles().Bytes(registration)
	assert.Equal(t, before, after)
	assert.Equal(t, len(countyColumns), counties.ColumnCount())
}

func TestRun_Errors(t *testing.T) {
	// duplicate key in results
	results := testResults(t)
	assert.Nil(t, results.Column("County").Data().SetInt(1, 3))
	_, e := Run(testCounties(t), testRegistration(t), results)
	assert.NotNil(t, e)

	// missing key
	reg := testRegistration(t)
	assert.Nil(t, reg.DropColumns("County"))
	_, e = Run(testCounties(t), reg, testResults(t))
	assert.NotNil(t, e)

	// missing raw column
	counties := testCounties(t)
	assert.Nil(t, counties.DropColumns("LaborForce"))
	_, e = Run(counties, testRegistration(t), testResults(t))
	assert.NotNil(t, e)

	_, e = Run(nil, testRegistration(t), testResults(t))
	assert.NotNil(t, e)
}

func TestPrepareRegistration(t *testing.T) {
	reg := testRegistration(t)
	out, e := PrepareRegistration(reg, testCounties(t), testResults(t))
	assert.Nil(t, e)
	assert.Equal(t, []string{"State", "County", "Democratic", "Republican", "Libertarian", "Green", "OtherReg", "Total"},
		out.ColumnNames())

	// input unchanged
	assert.True(t, reg.HasColumns("Other", "CountyName", "Year"))

	// with nothing to collide with nothing is renamed
	out, e = PrepareRegistration(reg)
	assert.Nil(t, e)
	assert.True(t, out.HasColumns("Other"))
}

func TestValidateSteps(t *testing.T) {
	out := runTest(t)
	var raw []string
	for _, cn := range out.ColumnNames() {
		isStep := false
		for _, s := range Steps() {
			if s.Output == cn {
				isStep = true
			}
		}

		if !isStep {
			raw = append(raw, cn)
		}
	}

	assert.Nil(t, ValidateSteps(raw, Steps()))

	// out of order
	steps := Steps()
	steps[3], steps[4] = steps[4], steps[3]
	assert.NotNil(t, ValidateSteps(raw, steps))

	// overwrite
	assert.NotNil(t, ValidateSteps(raw, []Step{divide("Male", "Female", "TotalPopulation")}))
	assert.NotNil(t, ValidateSteps(raw, []Step{sum("a", "Male"), sum("a", "Female")}))

	// missing input
	assert.NotNil(t, ValidateSteps(raw, []Step{divide("a", "nope", "TotalPopulation")}))
}

func TestWithSteps(t *testing.T) {
	out, e := Run(testCounties(t), testRegistration(t), testResults(t),
		WithSteps([]Step{divide("propMale", "Male", "TotalPopulation")}))
	assert.Nil(t, e)
	assert.True(t, out.HasColumns("propMale"))
	assert.False(t, out.HasColumns("propFemale"))
}

func TestCheckAgeTotals(t *testing.T) {
	out := runTest(t)
	rows, e := CheckAgeTotals(out)
	assert.Nil(t, e)
	assert.Empty(t, rows)

	counties := testCounties(t)
	assert.Nil(t, counties.Column("Age20_24").Data().SetInt(1, rowY))
	assert.Nil(t, counties.Column("Age0_4").Data().SetNA(rowW))
	out, e = Run(counties, testRegistration(t), testResults(t), WithAgeCheck())
	assert.Nil(t, e)

	rows, e = CheckAgeTotals(out)
	assert.Nil(t, e)
	assert.Equal(t, []int{rowY}, rows)

	// the check does not alter the data
	assert.Equal(t, 1, out.Column("Age20_24").Data().Element(rowY))
	assert.True(t, out.Column("totalKids").Data().IsNA(rowW))

	_, e = CheckAgeTotals(testResults(t))
	assert.NotNil(t, e)
}
