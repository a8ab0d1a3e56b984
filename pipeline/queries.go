package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	d "github.com/invertedv/countyvote"
	m "github.com/invertedv/countyvote/mem"
)

// Source tables.
const (
	CountiesTable     = "CountyCharacteristics"
	RegistrationTable = "PartyRegistration"
	ResultsTable      = "PresidentialElectionResults2016"
)

var (
	CountiesQuery     = fmt.Sprintf("SELECT * FROM %s", CountiesTable)
	RegistrationQuery = fmt.Sprintf("SELECT * FROM %s WHERE Year = 2016 AND Month = 11", RegistrationTable)
	ResultsQuery      = fmt.Sprintf("SELECT * FROM %s", ResultsTable)
)

// Sources are the three inputs to Run.
type Sources struct {
	Counties     *m.DF
	Registration *m.DF
	Results      *m.DF
}

// Run runs the pipeline on s.
func (s *Sources) Run(opts ...Opt) (*m.DF, error) {
	return Run(s.Counties, s.Registration, s.Results, opts...)
}

// Fetch runs the three source queries concurrently. Any failure cancels the others and is returned.
func Fetch(ctx context.Context, dialect *d.Dialect) (*Sources, error) {
	s := &Sources{}
	g, gctx := errgroup.WithContext(ctx)

	queries := []struct {
		qry string
		dst **m.DF
	}{
		{CountiesQuery, &s.Counties},
		{RegistrationQuery, &s.Registration},
		{ResultsQuery, &s.Results},
	}

	for _, q := range queries {
		g.Go(func() error {
			if e := gctx.Err(); e != nil {
				return e
			}

			start := time.Now()
			df, e := m.DBLoad(q.qry, dialect)
			if e != nil {
				return fmt.Errorf("fetch %q: %w", q.qry, e)
			}

			log.Printf("fetched %d rows in %s: %s", df.RowCount(), time.Since(start).Round(time.Millisecond), q.qry)
			*q.dst = df

			return nil
		})
	}

	if e := g.Wait(); e != nil {
		return nil, e
	}

	return s, nil
}

// LoadFiles reads the three sources from CSV files. The registration file should already be limited
// to the November 2016 snapshot.
func LoadFiles(counties, registration, results string) (*Sources, error) {
	s := &Sources{}
	files := []struct {
		name string
		dst  **m.DF
	}{
		{counties, &s.Counties},
		{registration, &s.Registration},
		{results, &s.Results},
	}

	for _, f := range files {
		df, e := m.FileLoad(f.name)
		if e != nil {
			return nil, e
		}

		*f.dst = df
	}

	return s, nil
}

// Save writes each source to its table.
func (s *Sources) Save(dialect *d.Dialect, overwrite bool) error {
	tables := []struct {
		name string
		df   *m.DF
	}{
		{CountiesTable, s.Counties},
		{RegistrationTable, s.Registration},
		{ResultsTable, s.Results},
	}

	for _, t := range tables {
		if e := dialect.Save(t.name, "State,County", overwrite, t.df); e != nil {
			return fmt.Errorf("save %s: %w", t.name, e)
		}
	}

	return nil
}
