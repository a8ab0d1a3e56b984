// Command countystats joins county demographics, party registration and 2016 presidential results,
// derives the county proportions and prints a summary of them.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	d "github.com/invertedv/countyvote"
	m "github.com/invertedv/countyvote/mem"
	"github.com/invertedv/countyvote/pipeline"
)

type rootOptions struct {
	envFile   string
	dialect   string
	csv       string
	xlsx      string
	table     string
	columns   []string
	checkAges bool
}

func main() {
	if e := newRootCommand().Execute(); e != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "countystats",
		Short:        "County-level 2016 election dataset",
		Long:         "Joins county characteristics, party registration and 2016 presidential results and derives proportions.",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env", ".env", "file of environment variables to load")
	cmd.PersistentFlags().StringVar(&opts.dialect, "dialect", "", "database dialect, overrides COUNTY_DIALECT (clickhouse|postgres|sqlite)")
	cmd.PersistentFlags().StringVar(&opts.csv, "csv", "", "save the output to this CSV file")
	cmd.PersistentFlags().StringVar(&opts.xlsx, "xlsx", "", "save the output to this xlsx file")
	cmd.PersistentFlags().StringVar(&opts.table, "table", "", "save the output to this database table")
	cmd.PersistentFlags().StringSliceVar(&opts.columns, "columns", nil, "columns to describe, all numeric columns if empty")
	cmd.PersistentFlags().BoolVar(&opts.checkAges, "check-ages", false, "warn about counties whose age buckets don't sum to TotalPopulation")

	cmd.AddCommand(newRunCommand(opts), newFilesCommand(opts))

	return cmd
}

func newRunCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Fetch the sources from the database and build the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dialect, e := opts.connect()
			if e != nil {
				return e
			}
			defer func() { _ = dialect.Close() }()

			src, e := pipeline.Fetch(cmd.Context(), dialect)
			if e != nil {
				return e
			}

			return opts.finish(cmd.OutOrStdout(), src, dialect)
		},
	}
}

func newFilesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "files COUNTIES.csv REGISTRATION.csv RESULTS.csv",
		Short: "Build the dataset from three CSV files",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, e := pipeline.LoadFiles(args[0], args[1], args[2])
			if e != nil {
				return e
			}

			var dialect *d.Dialect
			if opts.table != "" {
				if dialect, e = opts.connect(); e != nil {
					return e
				}
				defer func() { _ = dialect.Close() }()
			}

			return opts.finish(cmd.OutOrStdout(), src, dialect)
		},
	}
}

func (o *rootOptions) connect() (*d.Dialect, error) {
	cfg, e := LoadConfig(o.envFile)
	if e != nil {
		return nil, e
	}

	if o.dialect != "" {
		cfg.Dialect = o.dialect
	}

	return cfg.Connect()
}

// finish runs the pipeline on src, describes the output to w and saves it where asked.
func (o *rootOptions) finish(w io.Writer, src *pipeline.Sources, dialect *d.Dialect) error {
	var opts []pipeline.Opt
	if o.checkAges {
		opts = append(opts, pipeline.WithAgeCheck())
	}

	out, e := src.Run(opts...)
	if e != nil {
		return e
	}

	log.Printf("%d counties, %d columns", out.RowCount(), out.ColumnCount())

	var sum m.Summary
	if sum, e = m.Describe(out, o.columns...); e != nil {
		return e
	}

	sum.Render(w)

	if o.csv != "" {
		if ex := d.NewFiles().Save(o.csv, out); ex != nil {
			return fmt.Errorf("save %s: %w", o.csv, ex)
		}
	}

	if o.xlsx != "" {
		if ex := d.SaveXLSX(o.xlsx, "counties", out); ex != nil {
			return fmt.Errorf("save %s: %w", o.xlsx, ex)
		}
	}

	if o.table != "" {
		if ex := dialect.Save(o.table, "State,County", true, out); ex != nil {
			return fmt.Errorf("save table %s: %w", o.table, ex)
		}
	}

	return nil
}
