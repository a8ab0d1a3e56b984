package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strconv"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/caarlos0/env/v11"
	_ "github.com/jackc/pgx/stdlib"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	d "github.com/invertedv/countyvote"
)

// Config says which database holds the source tables.
type Config struct {
	Dialect    string `env:"COUNTY_DIALECT" envDefault:"clickhouse"`
	Host       string `env:"COUNTY_HOST" envDefault:"127.0.0.1"`
	Port       int    `env:"COUNTY_PORT"`
	User       string `env:"COUNTY_USER" envDefault:"default"`
	Password   string `env:"COUNTY_PASSWORD"`
	DB         string `env:"COUNTY_DB" envDefault:"default"`
	SQLitePath string `env:"COUNTY_SQLITE_PATH" envDefault:"counties.db"`
}

// LoadConfig reads envFile, if there is one, into the environment and then parses the environment.
// Variables already set take precedence over envFile.
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if e := godotenv.Load(envFile); e != nil && !errors.Is(e, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, e)
		}
	}

	cfg := &Config{}
	if e := env.Parse(cfg); e != nil {
		return nil, fmt.Errorf("parse env: %w", e)
	}

	return cfg, nil
}

func (c *Config) port() int {
	if c.Port > 0 {
		return c.Port
	}

	switch c.Dialect {
	case d.CH:
		return 9000
	case d.PG:
		return 5432
	}

	return 0
}

// Connect opens the database named by c.
func (c *Config) Connect() (*d.Dialect, error) {
	var db *sql.DB

	switch c.Dialect {
	case d.CH:
		db = clickhouse.OpenDB(
			&clickhouse.Options{
				Addr: []string{c.Host + ":" + strconv.Itoa(c.port())},
				Auth: clickhouse.Auth{
					Database: c.DB,
					Username: c.User,
					Password: c.Password,
				},
				DialTimeout: 300 * time.Second,
				Compression: &clickhouse.Compression{
					Method: clickhouse.CompressionLZ4,
					Level:  0,
				},
			})
	case d.PG:
		var e error
		if db, e = sql.Open("pgx", c.dsn()); e != nil {
			return nil, e
		}
	case d.SL:
		var e error
		if db, e = sql.Open("sqlite", c.SQLitePath); e != nil {
			return nil, e
		}

		db.SetMaxOpenConns(1)
	default:
		return nil, fmt.Errorf("unsupported dialect %q", c.Dialect)
	}

	if e := db.Ping(); e != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to %s: %w", c.Dialect, e)
	}

	return wrap(c.Dialect, db)
}

// wrap returns db as a dialect, closing db if it can't.
func wrap(dialect string, db *sql.DB) (*d.Dialect, error) {
	dl, e := d.NewDialect(dialect, db)
	if e != nil {
		_ = db.Close()
		return nil, e
	}

	return dl, nil
}

// dsn is the postgres connection URL.
func (c *Config) dsn() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   c.Host + ":" + strconv.Itoa(c.port()),
		Path:   c.DB,
	}

	return u.String()
}
