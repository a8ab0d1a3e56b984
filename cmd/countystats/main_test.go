package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	d "github.com/invertedv/countyvote"
	"github.com/invertedv/countyvote/pipeline"
)

func execute(args ...string) (string, error) {
	var buf bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)

	e := cmd.ExecuteContext(context.Background())

	return buf.String(), e
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("COUNTY_DIALECT", "postgres")
	t.Setenv("COUNTY_PORT", "6543")

	cfg, e := LoadConfig("")
	assert.Nil(t, e)
	assert.Equal(t, d.PG, cfg.Dialect)
	assert.Equal(t, 6543, cfg.port())
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, "default", cfg.User)

	t.Setenv("COUNTY_PORT", "abc")
	_, e = LoadConfig("")
	assert.NotNil(t, e)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	assert.Nil(t, os.WriteFile(envFile, []byte("COUNTY_SQLITE_PATH=/tmp/from-file.db\nCOUNTY_DIALECT=clickhouse\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("COUNTY_SQLITE_PATH") })

	// set variables win over the file
	t.Setenv("COUNTY_DIALECT", "sqlite")

	cfg, e := LoadConfig(envFile)
	assert.Nil(t, e)
	assert.Equal(t, "/tmp/from-file.db", cfg.SQLitePath)
	assert.Equal(t, d.SL, cfg.Dialect)

	// a missing file is fine
	_, e = LoadConfig(filepath.Join(dir, "nope.env"))
	assert.Nil(t, e)
}

func TestConfig_Port(t *testing.T) {
	assert.Equal(t, 9000, (&Config{Dialect: d.CH}).port())
	assert.Equal(t, 5432, (&Config{Dialect: d.PG}).port())
	assert.Equal(t, 0, (&Config{Dialect: d.SL}).port())

	cfg := &Config{Dialect: d.PG, Host: "db", User: "u", Password: "p@ss", DB: "votes"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/votes", cfg.dsn())
}

func TestConfig_Connect(t *testing.T) {
	cfg := &Config{Dialect: d.SL, SQLitePath: filepath.Join(t.TempDir(), "c.db")}
	dialect, e := cfg.Connect()
	assert.Nil(t, e)
	assert.Equal(t, d.SL, dialect.DialectName())
	assert.Nil(t, dialect.Close())

	_, e = (&Config{Dialect: "oracle"}).Connect()
	assert.NotNil(t, e)
}

func TestWrap_ClosesOnError(t *testing.T) {
	db, e := sql.Open("sqlite", filepath.Join(t.TempDir(), "w.db"))
	assert.Nil(t, e)
	assert.Nil(t, db.Ping())

	_, e = wrap("oracle", db)
	assert.NotNil(t, e)
	assert.NotNil(t, db.Ping())

	db, _ = sql.Open("sqlite", filepath.Join(t.TempDir(), "w.db"))
	dialect, e := wrap(d.SL, db)
	assert.Nil(t, e)
	assert.Nil(t, dialect.Close())
}

func TestCommands_Errors(t *testing.T) {
	_, e := execute("files", "a.csv")
	assert.NotNil(t, e)

	dir := t.TempDir()
	_, e = execute("files", filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv"), filepath.Join(dir, "c.csv"))
	assert.NotNil(t, e)

	// an empty database has no source tables
	t.Setenv("COUNTY_SQLITE_PATH", filepath.Join(dir, "empty.db"))
	_, e = execute("run", "--dialect", "sqlite", "--env", "")
	assert.NotNil(t, e)

	_, e = execute("run", "extra")
	assert.NotNil(t, e)
}

// writeCSV writes rows under a header of names; a name missing from a row is written as 0.
func writeCSV(t *testing.T, fileName string, names []string, rows ...map[string]any) {
	lines := []string{strings.Join(names, ",")}
	for _, row := range rows {
		vals := make([]string, len(names))
		for ind, nm := range names {
			vals[ind] = "0"
			if v, ok := row[nm]; ok {
				vals[ind] = fmt.Sprint(v)
			}
		}

		lines = append(lines, strings.Join(vals, ","))
	}

	assert.Nil(t, os.WriteFile(fileName, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
}

// writeSources writes three counties to CSV files; County 2/1 has no election result.
func writeSources(t *testing.T, dir string) (counties, registration, results string) {
	counties = filepath.Join(dir, "counties.csv")
	registration = filepath.Join(dir, "registration.csv")
	results = filepath.Join(dir, "results.csv")

	ctyNames := append([]string{"State", "County", "TotalPopulation", "Male", "Female"}, pipeline.AgeBuckets()...)
	ctyNames = append(ctyNames, "White", "Black", "Hispanic", "Asian", "AmericanIndian", "TwoOrMore",
		"NeverMarried", "Married", "LaborForce", "ManufacturingEmployment2015", "Unemployment",
		"K8", "Grade9to12", "HighSchool", "SomeCollege", "Associate", "Bachelor", "Graduate")

	county := func(state, cty int) map[string]any {
		r := map[string]any{"State": state, "County": cty, "TotalPopulation": 1000, "Male": 490, "Female": 510,
			"White": 700, "Black": 200, "NeverMarried": 300, "Married": 400, "LaborForce": 500,
			"Unemployment": 20, "K8": 50, "HighSchool": 300, "Bachelor": 200}
		for _, b := range pipeline.KidBuckets {
			r[b] = 50
		}
		for _, b := range pipeline.AdultBuckets {
			r[b] = 60
		}
		r["Age80_84"], r["Age85andOlder"] = 50, 30

		return r
	}
	writeCSV(t, counties, ctyNames, county(1, 1), county(1, 2), county(2, 1))

	writeCSV(t, registration,
		[]string{"State", "County", "CountyName", "StateAbbr", "Year", "Month",
			"Democratic", "Republican", "Libertarian", "Green", "Other", "Total"},
		map[string]any{"State": 1, "County": 1, "CountyName": "A", "StateAbbr": "AA", "Year": 2016, "Month": 11,
			"Democratic": 100, "Republican": 100, "Total": 200},
		map[string]any{"State": 1, "County": 2, "CountyName": "B", "StateAbbr": "AA", "Year": 2016, "Month": 11,
			"Democratic": 50, "Republican": 150, "Total": 200},
		map[string]any{"State": 2, "County": 1, "CountyName": "C", "StateAbbr": "BB", "Year": 2016, "Month": 11,
			"Democratic": 120, "Republican": 80, "Total": 200})

	writeCSV(t, results,
		[]string{"State", "County", "Clinton", "Trump", "Johnson", "Stein", "totalvotes", "rPct"},
		map[string]any{"State": 1, "County": 1, "Clinton": 550, "Trump": 450, "totalvotes": 1000, "rPct": 0.45},
		map[string]any{"State": 1, "County": 2, "Clinton": 400, "Trump": 600, "totalvotes": 1000, "rPct": 0.6})

	return counties, registration, results
}

// tableRow returns the cells of the rendered summary row for colName.
func tableRow(t *testing.T, out, colName string) []string {
	for _, line := range strings.Split(out, "\n") {
		var cells []string
		for _, c := range strings.Split(line, "|") {
			if c = strings.TrimSpace(c); c != "" {
				cells = append(cells, c)
			}
		}

		if len(cells) > 0 && cells[0] == colName {
			return cells
		}
	}

	assert.Fail(t, "no row for "+colName)

	return nil
}

func TestFilesCommand(t *testing.T) {
	dir := t.TempDir()
	counties, registration, results := writeSources(t, dir)
	csvOut, xlsxOut := filepath.Join(dir, "out.csv"), filepath.Join(dir, "out.xlsx")

	out, e := execute("files", counties, registration, results, "--env", "",
		"--columns", "propKids,votedTrump", "--csv", csvOut, "--xlsx", xlsxOut, "--check-ages")
	assert.Nil(t, e)

	// column n missing mean sd min q25 median q75 max
	kids := tableRow(t, out, "propKids")
	assert.Len(t, kids, 10)
	assert.Equal(t, []string{"propKids", "3", "0", "0.2"}, kids[:4])
	assert.Equal(t, "0.2", kids[5])

	trump := tableRow(t, out, "votedTrump")
	assert.Len(t, trump, 10)
	assert.Equal(t, []string{"votedTrump", "2", "1", "0.5"}, trump[:4])
	assert.Equal(t, "0", trump[5])
	assert.Equal(t, "1", trump[9])
	assert.NotContains(t, out, "propMale")

	b, e := os.ReadFile(csvOut)
	assert.Nil(t, e)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[0], "votedTrump")
	assert.Contains(t, lines[0], "votesCast")

	_, e = os.Stat(xlsxOut)
	assert.Nil(t, e)
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	src, e := pipeline.LoadFiles(writeSources(t, dir))
	assert.Nil(t, e)

	dbFile := filepath.Join(dir, "counties.db")
	cfg := &Config{Dialect: d.SL, SQLitePath: dbFile}
	dialect, e := cfg.Connect()
	assert.Nil(t, e)
	assert.Nil(t, src.Save(dialect, true))
	assert.Nil(t, dialect.Close())

	t.Setenv("COUNTY_SQLITE_PATH", dbFile)
	out, e := execute("run", "--dialect", "sqlite", "--env", "", "--table", "countyStats", "--columns", "propKids")
	assert.Nil(t, e)
	assert.Equal(t, []string{"propKids", "3", "0", "0.2"}, tableRow(t, out, "propKids")[:4])

	dialect, e = cfg.Connect()
	assert.Nil(t, e)
	defer func() { _ = dialect.Close() }()

	n, e := dialect.RowCount("SELECT * FROM countyStats")
	assert.Nil(t, e)
	assert.Equal(t, 3, n)

	n, e = dialect.RowCount("SELECT * FROM countyStats WHERE votedTrump = 1")
	assert.Nil(t, e)
	assert.Equal(t, 1, n)
}
