package pipeline

import (
	"testing"

	d "github.com/invertedv/countyvote"
	m "github.com/invertedv/countyvote/mem"
	"github.com/stretchr/testify/assert"
)

// Rows of the test counties:
//
//	0: State 1 County 1 "X" - rPct 0.5
//	1: State 1 County 2 "Y" - rPct 0.55
//	2: State 1 County 3 "Z" - rPct 0.49, no registration row, majority black
//	3: State 2 County 1 "W" - no votes cast
//	4: State 2 County 2 "V" - no results row
const (
	rowX = iota
	rowY
	rowZ
	rowW
	rowV
)

var countyColumns = []string{"State", "County", "TotalPopulation", "Male", "Female",
	"Age0_4", "Age5_9", "Age10_14", "Age15_19", "Age20_24", "Age25_29", "Age30_34", "Age35_39",
	"Age40_44", "Age45_49", "Age50_54", "Age55_59", "Age60_64", "Age65_69", "Age70_74", "Age75_79",
	"Age80_84", "Age85andOlder", "White", "Black", "Hispanic", "Asian", "AmericanIndian",
	"TwoOrMore", "NeverMarried", "Married", "LaborForce", "ManufacturingEmployment2015",
	"Unemployment", "MedianHousingCosts", "MedianHouseholdIncome", "K8", "Grade9to12",
	"HighSchool", "SomeCollege", "Associate", "Bachelor", "Graduate"}

// countyRow returns a county of 1000 people whose age buckets add to TotalPopulation.
func countyRow(state, county int) map[string]int {
	r := map[string]int{
		"State": state, "County": county, "TotalPopulation": 1000, "Male": 480, "Female": 520,
		"Age75_79": 60, "Age80_84": 50, "Age85andOlder": 30,
		"White": 600, "Black": 300, "Hispanic": 50, "Asian": 30, "AmericanIndian": 10, "TwoOrMore": 10,
		"NeverMarried": 250, "Married": 500, "LaborForce": 500, "ManufacturingEmployment2015": 50,
		"Unemployment": 25, "MedianHousingCosts": 900, "MedianHouseholdIncome": 50000,
		"K8": 40, "Grade9to12": 60, "HighSchool": 300, "SomeCollege": 150, "Associate": 80,
		"Bachelor": 120, "Graduate": 50,
	}

	for _, b := range KidBuckets {
		r[b] = 50
	}

	for _, b := range AdultBuckets[:11] {
		r[b] = 60
	}

	return r
}

func intDF(t *testing.T, names []string, rows []map[string]int) *m.DF {
	var cols []*m.Col
	for _, nm := range names {
		x := make([]int, len(rows))
		for r, row := range rows {
			x[r] = row[nm]
		}

		c, e := m.NewCol(x, d.DTint, d.ColName(nm))
		assert.Nil(t, e)
		cols = append(cols, c)
	}

	df, e := m.NewDFcol(cols)
	assert.Nil(t, e)

	return df
}

func addCol(t *testing.T, df *m.DF, name string, data any, dt d.DataTypes) {
	c, e := m.NewCol(data, dt, d.ColName(name))
	assert.Nil(t, e)
	assert.Nil(t, df.AppendColumn(c))
}

func testCounties(t *testing.T) *m.DF {
	z := countyRow(1, 3)
	z["White"], z["Black"] = 200, 700

	rows := []map[string]int{countyRow(1, 1), countyRow(1, 2), z, countyRow(2, 1), countyRow(2, 2)}

	return intDF(t, countyColumns, rows)
}

// testRegistration has no row for County Z and a row for a county that isn't in the county data.
func testRegistration(t *testing.T) *m.DF {
	names := []string{"State", "County"}
	rows := []map[string]int{{"State": 2, "County": 1}, {"State": 1, "County": 2}, {"State": 1, "County": 1},
		{"State": 9, "County": 9}, {"State": 2, "County": 2}}
	df := intDF(t, names, rows)

	addCol(t, df, "CountyName", []string{"W", "Y", "X", "Nowhere", "V"}, d.DTstring)
	addCol(t, df, "StateAbbr", []string{"BB", "AA", "AA", "ZZ", "BB"}, d.DTstring)
	addCol(t, df, "Year", []int{2016, 2016, 2016, 2016, 2016}, d.DTint)
	addCol(t, df, "Month", []int{11, 11, 11, 11, 11}, d.DTint)
	addCol(t, df, "Democratic", []int{100, 300, 200, 1, 150}, d.DTint)
	addCol(t, df, "Republican", []int{200, 300, 100, 1, 250}, d.DTint)
	addCol(t, df, "Libertarian", []int{10, 20, 30, 1, 10}, d.DTint)
	addCol(t, df, "Green", []int{5, 5, 5, 1, 5}, d.DTint)
	addCol(t, df, "Other", []int{1, 2, 3, 1, 0}, d.DTint)
	addCol(t, df, "Total", []int{316, 627, 338, 5, 415}, d.DTint)

	return df
}

// testResults has no row for County V.
func testResults(t *testing.T) *m.DF {
	names := []string{"State", "County", "Clinton", "Trump", "Johnson", "Stein", "Other", "totalvotes"}
	rows := []map[string]int{
		{"State": 1, "County": 3, "Clinton": 490, "Trump": 470, "Johnson": 30, "Stein": 10, "totalvotes": 1000},
		{"State": 2, "County": 1},
		{"State": 1, "County": 1, "Clinton": 300, "Trump": 300, "Johnson": 20, "Stein": 20, "Other": 10, "totalvotes": 650},
		{"State": 1, "County": 2, "Clinton": 250, "Trump": 330, "Johnson": 15, "Stein": 5, "totalvotes": 600},
	}
	df := intDF(t, names, rows)
	addCol(t, df, "rPct", []float64{0.49, 0.6, 0.5, 0.55}, d.DTfloat)

	return df
}
