package pipeline

import "fmt"

// Step creates column Output by running Op on Params followed by the columns Inputs.
type Step struct {
	Output string
	Op     string
	Params []string
	Inputs []string
}

// args returns the arguments to DF.Apply: parameters first, then columns.
func (s Step) args() []string {
	return append(append([]string{}, s.Params...), s.Inputs...)
}

func (s Step) String() string {
	return fmt.Sprintf("%s := %s(%v)", s.Output, s.Op, s.args())
}

func divide(out, num, den string) Step {
	return Step{Output: out, Op: "divide", Inputs: []string{num, den}}
}

func sum(out string, cols ...string) Step {
	return Step{Output: out, Op: "sum", Inputs: cols}
}

func gt(out, threshold, col string) Step {
	return Step{Output: out, Op: "gt", Params: []string{threshold}, Inputs: []string{col}}
}

// Age buckets of the county characteristics, youngest first.
var (
	KidBuckets = []string{"Age0_4", "Age5_9", "Age10_14", "Age15_19"}

	AdultBuckets = []string{"Age20_24", "Age25_29", "Age30_34", "Age35_39", "Age40_44", "Age45_49",
		"Age50_54", "Age55_59", "Age60_64", "Age65_69", "Age70_74", "Age75_79", "Age80_84", "Age85andOlder"}

	ElderBuckets = []string{"Age75_79", "Age80_84", "Age85andOlder"}
)

// AgeBuckets returns every age bucket.
func AgeBuckets() []string {
	return append(append([]string{}, KidBuckets...), AdultBuckets...)
}

// Steps returns the derived columns in the order they are computed. Every proportion names its
// denominator: TotalPopulation, LaborForce, votesCast, Total (registrations) or one of the two
// adult totals. totalAdultsWithTeens is the basis for marital status, totalAdultsNoTeens for
// education and turnout.
//
// votesCast is totalvotes with zero made missing, so a county that reported no votes has missing
// vote shares and turnout. totalvotes itself is left as loaded.
func Steps() []Step {
	withTeens := append([]string{"Age15_19"}, AdultBuckets...)

	return []Step{
		divide("propMale", "Male", "TotalPopulation"),
		divide("propFemale", "Female", "TotalPopulation"),

		sum("totalKids", KidBuckets...),
		divide("propKids", "totalKids", "TotalPopulation"),
		{Output: "propAdultsNoTeens", Op: "complement", Inputs: []string{"propKids"}},
		sum("totalAdultsWithTeens", withTeens...),
		sum("totalAdultsNoTeens", AdultBuckets...),
		sum("totalElders", ElderBuckets...),
		divide("propElders", "totalElders", "TotalPopulation"),

		divide("propNeverMarried", "NeverMarried", "totalAdultsWithTeens"),
		divide("propMarried", "Married", "totalAdultsWithTeens"),

		divide("propWhite", "White", "TotalPopulation"),
		divide("propBlack", "Black", "TotalPopulation"),
		divide("propHispanic", "Hispanic", "TotalPopulation"),
		divide("propAsian", "Asian", "TotalPopulation"),
		divide("propAmericanIndian", "AmericanIndian", "TotalPopulation"),
		divide("propTwoOrMore", "TwoOrMore", "TotalPopulation"),
		gt("majWhite", "0.5", "propWhite"),
		gt("majBlack", "0.5", "propBlack"),

		sum("totalNoHS", "K8", "Grade9to12"),
		divide("propNoHS", "totalNoHS", "totalAdultsNoTeens"),
		divide("propHS", "HighSchool", "totalAdultsNoTeens"),
		sum("totalMoreThanHS", "SomeCollege", "Associate", "Bachelor", "Graduate"),
		divide("propMoreThanHS", "totalMoreThanHS", "totalAdultsNoTeens"),

		divide("propManuf", "ManufacturingEmployment2015", "LaborForce"),
		divide("propUnemp", "Unemployment", "LaborForce"),
		divide("propLaborForce", "LaborForce", "TotalPopulation"),

		divide("propRegDemocratic", "Democratic", "Total"),
		divide("propRegRepublican", "Republican", "Total"),

		{Output: "votesCast", Op: "nonzero", Inputs: []string{"totalvotes"}},
		divide("propJohnson", "Johnson", "votesCast"),
		divide("propStein", "Stein", "votesCast"),
		divide("propVoters", "votesCast", "totalAdultsNoTeens"),

		gt("votedTrump", "0.5", "rPct"),
	}
}

// ValidateSteps checks that every input of every step is either in available or the output of an
// earlier step, and that no output overwrites an existing column.
func ValidateSteps(available []string, steps []Step) error {
	have := make(map[string]bool)
	for _, a := range available {
		have[a] = true
	}

	for ind, s := range steps {
		if len(s.Inputs) == 0 {
			return fmt.Errorf("step %d (%s) has no inputs", ind, s.Output)
		}

		for _, inp := range s.Inputs {
			if !have[inp] {
				return fmt.Errorf("step %d (%s) reads %s before it exists", ind, s, inp)
			}
		}

		if have[s.Output] {
			return fmt.Errorf("step %d (%s) overwrites %s", ind, s, s.Output)
		}

		have[s.Output] = true
	}

	return nil
}
